package impl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"medchain/internal/domain/constants"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/service"
	"medchain/internal/infra/blob"
	ledgermemory "medchain/internal/infra/ledger/memory"
	journalmemory "medchain/internal/infra/persistence/memory"
	"medchain/internal/infra/qrcode"
	"medchain/internal/infra/wallet"
	"medchain/internal/usecase"

	"github.com/stretchr/testify/require"
)

const (
	supplierAddr     = entity.Identity("0x1000000000000000000000000000000000000001")
	manufacturerAddr = entity.Identity("0x2000000000000000000000000000000000000002")
	stakeholderAddr  = entity.Identity("0x3000000000000000000000000000000000000003")
	hospitalAddr     = entity.Identity("0x4000000000000000000000000000000000000004")
	transporterAddr  = entity.Identity("0x5000000000000000000000000000000000000005")
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeMetadata is an in-memory stand-in for the REST metadata backend.
type fakeMetadata struct {
	mu      sync.Mutex
	seq     int
	docs    map[string][]map[string]any
	writes  []entity.MetadataWrite
	failOn  map[string]error
	queries int
}

func newFakeMetadata() *fakeMetadata {
	return &fakeMetadata{
		docs:   make(map[string][]map[string]any),
		failOn: make(map[string]error),
	}
}

// FailNext makes the next write to endpoint fail.
func (m *fakeMetadata) FailNext(endpoint string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failOn[endpoint] = err
}

func (m *fakeMetadata) Writes(endpoint string) []entity.MetadataWrite {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []entity.MetadataWrite
	for _, w := range m.writes {
		if w.Endpoint == endpoint {
			out = append(out, w)
		}
	}

	return out
}

func (m *fakeMetadata) Docs(collection string) []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]map[string]any(nil), m.docs[collection]...)
}

func (m *fakeMetadata) Record(_ context.Context, w entity.MetadataWrite) (entity.StoredRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failOn[w.Endpoint]; ok {
		delete(m.failOn, w.Endpoint)

		return nil, domainerrors.NewBackendUnavailableError(w.Endpoint, http.StatusBadGateway, err).WithTxHash(w.TxHash)
	}
	m.writes = append(m.writes, w)

	doc := maps.Clone(w.Payload)
	switch {
	case w.Endpoint == constants.EndpointRaw:
		return m.insert("raw", doc)
	case w.Endpoint == constants.EndpointRequestAdd:
		doc["usedQuantity"] = 0
		return m.insert("requests", doc)
	case w.Endpoint == constants.EndpointApprovedAction:
		if req := m.find("requests", fmt.Sprint(doc["requestId"])); req != nil {
			req["status"] = doc["status"]
		}
		if doc["status"] != string(entity.RequestApproved) {
			return marshalDoc(doc)
		}
		doc["usedQuantity"] = 0
		return m.insert("approved", doc)
	case w.Endpoint == constants.EndpointApprovedUpdateUsed:
		// The backend keys approved rows by the contract request id, not by _id.
		var approved map[string]any
		if rows := m.where("approved", "requestApproveId", fmt.Sprint(doc["requestId"])); len(rows) == 1 {
			approved = rows[0]
		}
		if approved == nil {
			return nil, domainerrors.NewBackendUnavailableError(w.Endpoint, http.StatusNotFound, nil)
		}
		approved["usedQuantity"] = toInt(approved["usedQuantity"]) + toInt(doc["usedQuantity"])
		return marshalDoc(approved)
	case w.Endpoint == constants.EndpointEquipmentCreate:
		for _, field := range []string{"registered", "verified", "available"} {
			if s, ok := doc[field].(string); ok {
				doc[field] = s == "true"
			}
		}
		return m.insert("equipment", doc)
	case strings.HasPrefix(w.Endpoint, "/api/equipment/verify/"):
		eq := m.find("equipment", strings.TrimPrefix(w.Endpoint, "/api/equipment/verify/"))
		if eq == nil {
			return nil, domainerrors.NewBackendUnavailableError(w.Endpoint, http.StatusNotFound, nil)
		}
		eq["verified"] = true
		eq["available"] = true
		return marshalDoc(eq)
	case w.Endpoint == constants.EndpointStakeholderVerification:
		return m.insert("verifications", doc)
	case w.Endpoint == constants.EndpointOrders:
		return m.insert("orders", doc)
	case w.Endpoint == constants.EndpointTransporterOrder:
		return m.insert("transporter", doc)
	case strings.HasPrefix(w.Endpoint, "/api/orders/ship/"):
		order := m.find("orders", strings.TrimPrefix(w.Endpoint, "/api/orders/ship/"))
		if order == nil {
			return nil, domainerrors.NewBackendUnavailableError(w.Endpoint, http.StatusNotFound, nil)
		}
		order["shipped"] = true
		return marshalDoc(order)
	default:
		return nil, domainerrors.NewBackendUnavailableError(w.Endpoint, http.StatusNotFound, nil)
	}
}

func (m *fakeMetadata) Query(_ context.Context, endpoint string, _ url.Values) ([]entity.StoredRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queries++

	var docs []map[string]any
	switch {
	case endpoint == constants.EndpointRaw || endpoint == constants.EndpointRawAll:
		docs = m.docs["raw"]
	case strings.HasPrefix(endpoint, "/api/raw-material-requests/supplier/"):
		supplier := strings.TrimSuffix(strings.TrimPrefix(endpoint, "/api/raw-material-requests/supplier/"), "/requests")
		docs = m.where("requests", "supplierId", supplier)
	case strings.HasPrefix(endpoint, "/api/supplier-approved-requests/manufacturer/"):
		docs = m.where("approved", "manufacturerAddress", strings.TrimPrefix(endpoint, "/api/supplier-approved-requests/manufacturer/"))
	case endpoint == constants.EndpointEquipment:
		docs = m.docs["equipment"]
	case endpoint == constants.EndpointEquipmentVerified:
		for _, doc := range m.docs["equipment"] {
			if doc["verified"] == true {
				docs = append(docs, doc)
			}
		}
	case endpoint == constants.EndpointEquipmentNames:
		records := make([]entity.StoredRecord, 0, len(m.docs["equipment"]))
		for _, doc := range m.docs["equipment"] {
			b, _ := json.Marshal(doc["name"])
			records = append(records, b)
		}
		return records, nil
	case endpoint == constants.EndpointOrders:
		docs = m.docs["orders"]
	default:
		return nil, domainerrors.NewBackendUnavailableError(endpoint, http.StatusNotFound, nil)
	}

	records := make([]entity.StoredRecord, 0, len(docs))
	for _, doc := range docs {
		record, err := marshalDoc(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func (m *fakeMetadata) insert(collection string, doc map[string]any) (entity.StoredRecord, error) {
	m.seq++
	doc["_id"] = "doc" + strconv.Itoa(m.seq)
	m.docs[collection] = append(m.docs[collection], doc)

	return marshalDoc(doc)
}

func (m *fakeMetadata) find(collection, id string) map[string]any {
	for _, doc := range m.docs[collection] {
		if doc["_id"] == id {
			return doc
		}
	}

	return nil
}

func (m *fakeMetadata) where(collection, field, value string) []map[string]any {
	var out []map[string]any
	for _, doc := range m.docs[collection] {
		if strings.EqualFold(fmt.Sprint(doc[field]), value) {
			out = append(out, doc)
		}
	}

	return out
}

func marshalDoc(doc map[string]any) (entity.StoredRecord, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	return entity.StoredRecord(b), nil
}

func toInt(v any) int64 {
	if n, ok := entity.ToInt64(v); ok {
		return n
	}
	if f, ok := v.(float64); ok {
		return int64(f)
	}

	return 0
}

// stubUsers knows no profiles, so display names fall back.
type stubUsers struct{}

func (stubUsers) Register(context.Context, service.RegisterInput) error { return nil }

func (stubUsers) Login(context.Context, string, string, entity.Identity) (*entity.UserProfile, error) {
	return nil, domainerrors.ErrInvalidCredentials
}

func (stubUsers) Logout(context.Context) error { return nil }

func (stubUsers) Me(context.Context) (*entity.UserProfile, error) {
	return nil, domainerrors.ErrNotLoggedIn
}

func (stubUsers) All(context.Context) ([]entity.UserProfile, error) { return nil, nil }

func (stubUsers) ByWallet(context.Context, string) (*entity.UserProfile, error) {
	return nil, domainerrors.ErrNotFound
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*entity.WorkflowEvent
}

func (p *recordingPublisher) PublishWorkflowEvent(_ context.Context, event *entity.WorkflowEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Last() *entity.WorkflowEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.events) == 0 {
		return nil
	}

	return p.events[len(p.events)-1]
}

// harness wires the coordinator to the in-process ledger, wallet and journal.
type harness struct {
	t        *testing.T
	ledger   *ledgermemory.Ledger
	keys     *ledgermemory.KeyRing
	wallet   *wallet.Store
	metadata *fakeMetadata
	journal  *journalmemory.Journal
	images   service.ImageStore
	events   *recordingPublisher
	uc       usecase.WorkflowUsecase
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := discardLogger()
	keys := ledgermemory.NewKeyRing()
	ledger := ledgermemory.New(keys)
	ledger.RegisterUser(supplierAddr, entity.LedgerUser{Name: "Acme Metals", EmailID: "supply@acme.test", Role: entity.RoleSupplier})
	ledger.RegisterUser(manufacturerAddr, entity.LedgerUser{Name: "MedWorks", EmailID: "build@medworks.test", Role: entity.RoleManufacturer})
	ledger.RegisterUser(stakeholderAddr, entity.LedgerUser{Name: "Health Board", EmailID: "audit@board.test", Role: entity.RoleStakeholder})
	ledger.RegisterUser(hospitalAddr, entity.LedgerUser{Name: "City Hospital", EmailID: "buy@city.test", Role: entity.RoleHospital})
	ledger.RegisterUser(transporterAddr, entity.LedgerUser{Name: "FastFreight", EmailID: "ship@fast.test", Role: entity.RoleTransporter})

	images, err := blob.Open(context.Background(), "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { _ = images.Close() })

	h := &harness{
		t:        t,
		ledger:   ledger,
		keys:     keys,
		wallet:   wallet.NewStore(keys, ledger, logger),
		metadata: newFakeMetadata(),
		journal:  journalmemory.NewJournal(),
		images:   images,
		events:   &recordingPublisher{},
	}
	h.uc = NewCoordinator(CoordinatorParams{
		Wallet:   h.wallet,
		Metadata: h.metadata,
		Users:    stubUsers{},
		Orphans:  h.journal.Repository(),
		Images:   h.images,
		Events:   h.events,
		QRCode:   qrcode.NewQRCodeService(256, "medium"),
		Logger:   logger,
	})

	var nextOrderID int64 = 1000
	h.uc.(*coordinator).newOrderID = func() (int64, error) {
		nextOrderID++

		return nextOrderID, nil
	}

	return h
}

// as connects id and returns its session snapshot.
func (h *harness) as(id entity.Identity) entity.Session {
	h.t.Helper()
	require.NoError(h.t, h.wallet.Switch(context.Background(), id))

	return h.wallet.Snapshot()
}

// asHospital connects the hospital account with a logged-in profile.
func (h *harness) asHospital() entity.Session {
	h.t.Helper()
	require.NoError(h.t, h.wallet.Switch(context.Background(), hospitalAddr))
	h.wallet.SetProfile(&entity.UserProfile{
		Name:          "City Hospital",
		Email:         "buy@city.test",
		Role:          entity.RoleHospital,
		WalletAddress: hospitalAddr.String(),
	})

	return h.wallet.Snapshot()
}

func testImage() *entity.UploadedImage {
	return &entity.UploadedImage{
		Filename:    "lot.png",
		ContentType: "image/png",
		Data:        []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a},
	}
}

// seedApprovedRequest runs create lot, request and approve, and returns the
// backend id of the approved request.
func (h *harness) seedApprovedRequest(lotQty, requestQty int64) string {
	h.t.Helper()
	ctx := context.Background()

	_, err := h.uc.CreateRawMaterial(ctx, h.as(supplierAddr), usecase.CreateRawMaterialInput{
		Name:     "Surgical Steel",
		Quantity: lotQty,
		Price:    10,
		Category: "Metal",
		Image:    testImage(),
	})
	require.NoError(h.t, err)
	rawID := int64(len(h.metadata.Docs("raw")))

	requested, err := h.uc.RequestRawMaterial(ctx, h.as(manufacturerAddr), usecase.RequestRawMaterialInput{
		RawID:    rawID,
		Quantity: requestQty,
	})
	require.NoError(h.t, err)

	_, err = h.uc.ApproveOrCancelRequest(ctx, h.as(supplierAddr), usecase.DecideRequestInput{
		RequestID: requested.Record.ID(),
		Approve:   true,
	})
	require.NoError(h.t, err)

	approved := h.metadata.Docs("approved")
	require.NotEmpty(h.t, approved)

	return fmt.Sprint(approved[len(approved)-1]["_id"])
}

// seedVerifiedEquipment builds and verifies one equipment and returns its ledger id.
func (h *harness) seedVerifiedEquipment(name string) int64 {
	h.t.Helper()
	ctx := context.Background()

	approvedID := h.seedApprovedRequest(100, 10)
	created, err := h.uc.CreateEquipment(ctx, h.as(manufacturerAddr), usecase.CreateEquipmentInput{
		ApprovedRequestID: approvedID,
		Name:              name,
		Price:             250,
		Category:          "Surgical",
		Units:             5,
	})
	require.NoError(h.t, err)

	var eq entity.Equipment
	require.NoError(h.t, created.Record.Decode(&eq))

	_, err = h.uc.VerifyEquipment(ctx, h.as(stakeholderAddr), eq.ID)
	require.NoError(h.t, err)

	return eq.EquipmentID.Int64()
}

// seed stores documents as if another client had written them.
func (m *fakeMetadata) seed(collection string, docs ...map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range docs {
		_, _ = m.insert(collection, doc)
	}
}
