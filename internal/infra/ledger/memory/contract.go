// Package memory simulates the medical supply chain contract in process.
package memory

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"medchain/internal/domain/constants"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/service"
	"medchain/internal/errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type lot struct {
	supplier  entity.Identity
	name      string
	remaining int64
}

type request struct {
	rawID        int64
	manufacturer entity.Identity
	quantity     int64
	status       entity.RequestStatus
}

type equipment struct {
	requestID    int64
	manufacturer entity.Identity
	verified     bool
	available    bool
}

// Ledger is an in-process stand-in for the contract. Every write is mined
// immediately and gets a deterministic tx hash.
type Ledger struct {
	keys service.KeyRing

	mu          sync.Mutex
	block       uint64
	suppliers   map[entity.Identity]bool
	users       map[entity.Identity]entity.LedgerUser
	lots        []*lot
	requests    []*request
	equipment   []*equipment
	shipped     map[int64]bool
	invocations []entity.Invocation
	failures    map[string]error
	dropped     map[string]bool
}

var _ service.Ledger = (*Ledger)(nil)

// New creates an empty contract whose writes must come from accounts held by keys.
func New(keys service.KeyRing) *Ledger {
	return &Ledger{
		keys:      keys,
		suppliers: make(map[entity.Identity]bool),
		users:     make(map[entity.Identity]entity.LedgerUser),
		shipped:   make(map[int64]bool),
		failures:  make(map[string]error),
		dropped:   make(map[string]bool),
	}
}

// RegisterUser stores the contract-side user record. Suppliers are also whitelisted.
func (l *Ledger) RegisterUser(id entity.Identity, user entity.LedgerUser) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.users[id] = user
	if user.Role == entity.RoleSupplier {
		l.suppliers[id] = true
	}
}

// SetEquipmentAvailable toggles whether an equipment can be ordered.
func (l *Ledger) SetEquipmentAvailable(equipmentID int64, available bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if eq := l.equipmentAt(equipmentID); eq != nil {
		eq.available = available
	}
}

// FailNext makes the next write of method revert with err.
func (l *Ledger) FailNext(method string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failures[method] = err
}

// DropReceipt makes the next write of method apply but report no receipt,
// like a tx mined after the caller stopped waiting.
func (l *Ledger) DropReceipt(method string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.dropped[method] = true
}

// Invocations returns every write that was mined, in order.
func (l *Ledger) Invocations() []entity.Invocation {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]entity.Invocation(nil), l.invocations...)
}

// CountInvocations returns how many writes of method were mined.
func (l *Ledger) CountInvocations(method string) int {
	n := 0
	for _, inv := range l.Invocations() {
		if inv.Method == method {
			n++
		}
	}

	return n
}

// Invoke executes a write against the simulated state.
func (l *Ledger) Invoke(ctx context.Context, inv entity.Invocation) (*entity.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.NewLedgerRejectedError(inv.Method, "", err)
	}
	if inv.From.IsZero() || !l.keys.Holds(inv.From) {
		return nil, domainerrors.NewLedgerRejectedError(inv.Method, "", errors.Errorf("sender %s is not held by the wallet", inv.From))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err, ok := l.failures[inv.Method]; ok {
		delete(l.failures, inv.Method)

		return nil, domainerrors.NewLedgerRejectedError(inv.Method, "", err)
	}

	events, err := l.apply(inv)
	if err != nil {
		return nil, domainerrors.NewLedgerRejectedError(inv.Method, "", errors.Wrap(err, "execution reverted"))
	}

	l.block++
	l.invocations = append(l.invocations, inv)
	hash := crypto.Keccak256Hash([]byte(fmt.Sprintf("%s:%s:%d", inv.From, inv.Method, l.block)))

	if l.dropped[inv.Method] {
		delete(l.dropped, inv.Method)

		return nil, domainerrors.NewUnconfirmedTxError(inv.Method, hash.Hex(), errors.Wrap(context.DeadlineExceeded, "failed to wait for tx"))
	}

	return &entity.Receipt{
		TxHash:      hash.Hex(),
		BlockNumber: l.block,
		Events:      events,
	}, nil
}

// Call executes a view method. Outputs mirror ABI decoding.
func (l *Ledger) Call(ctx context.Context, _ entity.Identity, method string, args ...any) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch method {
	case constants.MethodSuppliers:
		addr, err := identityArg(args, 0)
		if err != nil {
			return nil, err
		}

		return []any{l.suppliers[addr]}, nil
	case constants.MethodRawMaterialCount:
		return []any{big.NewInt(int64(len(l.lots)))}, nil
	case constants.MethodIsEquipmentAvailable:
		id, err := intArg(args, 0)
		if err != nil {
			return nil, err
		}
		eq := l.equipmentAt(id)

		return []any{eq != nil && eq.verified && eq.available}, nil
	case constants.MethodUserDetails:
		addr, err := identityArg(args, 0)
		if err != nil {
			return nil, err
		}
		u := l.users[addr]

		return []any{u.Name, u.EmailID, u.Role.String()}, nil
	default:
		return nil, errors.Errorf("contract has no view method %s", method)
	}
}

func (l *Ledger) apply(inv entity.Invocation) (map[string]entity.EventFields, error) {
	switch inv.Method {
	case constants.MethodCreateRawMaterial:
		return l.createRawMaterial(inv)
	case constants.MethodRequestRawMaterial:
		return l.requestRawMaterial(inv)
	case constants.MethodApproveRawMaterialRequest:
		return l.decideRequest(inv, entity.RequestApproved)
	case constants.MethodSupplierCancelRequest:
		return l.decideRequest(inv, entity.RequestCancelled)
	case constants.MethodCreateEquipment:
		return l.createEquipment(inv)
	case constants.MethodVerifyEquipment:
		return l.verifyEquipment(inv)
	case constants.MethodOrderEquipment:
		return l.orderEquipment(inv)
	case constants.MethodShipEquipment:
		return l.shipEquipment(inv)
	default:
		return nil, errors.Errorf("contract has no method %s", inv.Method)
	}
}

func (l *Ledger) createRawMaterial(inv entity.Invocation) (map[string]entity.EventFields, error) {
	if !l.suppliers[inv.From] {
		return nil, errors.New("caller is not a registered supplier")
	}

	name, _ := stringArg(inv.Args, 0)
	qty, err := intArg(inv.Args, 1)
	if err != nil {
		return nil, err
	}
	price, err := intArg(inv.Args, 2)
	if err != nil {
		return nil, err
	}
	if qty <= 0 || price <= 0 {
		return nil, errors.New("quantity and price must be positive")
	}

	l.lots = append(l.lots, &lot{supplier: inv.From, name: name, remaining: qty})
	rawID := int64(len(l.lots))

	return map[string]entity.EventFields{
		constants.EventRawMaterialCreated: {
			"rawId":    big.NewInt(rawID),
			"supplier": inv.From.Address(),
			"name":     name,
			"quantity": big.NewInt(qty),
		},
	}, nil
}

func (l *Ledger) requestRawMaterial(inv entity.Invocation) (map[string]entity.EventFields, error) {
	rawID, err := intArg(inv.Args, 0)
	if err != nil {
		return nil, err
	}
	qty, err := intArg(inv.Args, 1)
	if err != nil {
		return nil, err
	}

	lt := l.lotAt(rawID)
	if lt == nil {
		return nil, errors.Errorf("raw material %d does not exist", rawID)
	}
	if qty <= 0 || qty > lt.remaining {
		return nil, errors.Errorf("requested %d but %d remaining", qty, lt.remaining)
	}

	lt.remaining -= qty
	l.requests = append(l.requests, &request{
		rawID:        rawID,
		manufacturer: inv.From,
		quantity:     qty,
		status:       entity.RequestPending,
	})
	requestID := int64(len(l.requests))

	return map[string]entity.EventFields{
		constants.EventRawMaterialRequested: {
			"requestId":     big.NewInt(requestID),
			"rawMaterialId": big.NewInt(rawID),
			"manufacturer":  inv.From.Address(),
			"quantity":      big.NewInt(qty),
		},
	}, nil
}

func (l *Ledger) decideRequest(inv entity.Invocation, status entity.RequestStatus) (map[string]entity.EventFields, error) {
	requestID, err := intArg(inv.Args, 0)
	if err != nil {
		return nil, err
	}

	req := l.requestAt(requestID)
	if req == nil {
		return nil, errors.Errorf("request %d does not exist", requestID)
	}
	if lt := l.lotAt(req.rawID); lt == nil || lt.supplier != inv.From {
		return nil, errors.New("only the lot supplier can decide")
	}
	if req.status != entity.RequestPending {
		return nil, errors.Errorf("request %d is %s", requestID, req.status)
	}

	req.status = status
	event := "RawMaterialRequestApproved"
	if status == entity.RequestCancelled {
		l.lotAt(req.rawID).remaining += req.quantity
		event = "RawMaterialRequestCancelled"
	}

	return map[string]entity.EventFields{
		event: {"requestId": big.NewInt(requestID), "supplier": inv.From.Address()},
	}, nil
}

func (l *Ledger) createEquipment(inv entity.Invocation) (map[string]entity.EventFields, error) {
	name, _ := stringArg(inv.Args, 0)
	requestID, err := intArg(inv.Args, 1)
	if err != nil {
		return nil, err
	}

	req := l.requestAt(requestID)
	if req == nil || req.status != entity.RequestApproved {
		return nil, errors.Errorf("request %d is not approved", requestID)
	}
	if req.manufacturer != inv.From {
		return nil, errors.New("only the requesting manufacturer can build from this request")
	}

	l.equipment = append(l.equipment, &equipment{requestID: requestID, manufacturer: inv.From, available: true})
	equipmentID := int64(len(l.equipment))

	return map[string]entity.EventFields{
		constants.EventEquipmentCreated: {
			"equipmentId":  big.NewInt(equipmentID),
			"manufacturer": inv.From.Address(),
			"name":         name,
		},
	}, nil
}

func (l *Ledger) verifyEquipment(inv entity.Invocation) (map[string]entity.EventFields, error) {
	equipmentID, err := intArg(inv.Args, 0)
	if err != nil {
		return nil, err
	}

	eq := l.equipmentAt(equipmentID)
	if eq == nil {
		return nil, errors.Errorf("equipment %d does not exist", equipmentID)
	}
	if eq.verified {
		return nil, errors.Errorf("equipment %d already verified", equipmentID)
	}
	eq.verified = true

	return map[string]entity.EventFields{
		"EquipmentVerified": {"equipmentId": big.NewInt(equipmentID), "stakeholder": inv.From.Address()},
	}, nil
}

func (l *Ledger) orderEquipment(inv entity.Invocation) (map[string]entity.EventFields, error) {
	equipmentID, err := intArg(inv.Args, 0)
	if err != nil {
		return nil, err
	}
	qty, err := intArg(inv.Args, 1)
	if err != nil {
		return nil, err
	}

	eq := l.equipmentAt(equipmentID)
	if eq == nil || !eq.verified || !eq.available {
		return nil, errors.Errorf("equipment %d is not available for order", equipmentID)
	}
	if qty <= 0 {
		return nil, errors.New("quantity must be positive")
	}

	return map[string]entity.EventFields{
		"EquipmentOrdered": {"equipmentId": big.NewInt(equipmentID), "buyer": inv.From.Address(), "quantity": big.NewInt(qty)},
	}, nil
}

func (l *Ledger) shipEquipment(inv entity.Invocation) (map[string]entity.EventFields, error) {
	orderID, err := intArg(inv.Args, 0)
	if err != nil {
		return nil, err
	}
	if l.shipped[orderID] {
		return nil, errors.Errorf("order %d already shipped", orderID)
	}
	l.shipped[orderID] = true

	return map[string]entity.EventFields{
		"EquipmentShipped": {"orderId": big.NewInt(orderID), "transporter": inv.From.Address()},
	}, nil
}

func (l *Ledger) lotAt(id int64) *lot {
	if id < 1 || id > int64(len(l.lots)) {
		return nil
	}

	return l.lots[id-1]
}

func (l *Ledger) requestAt(id int64) *request {
	if id < 1 || id > int64(len(l.requests)) {
		return nil
	}

	return l.requests[id-1]
}

func (l *Ledger) equipmentAt(id int64) *equipment {
	if id < 1 || id > int64(len(l.equipment)) {
		return nil
	}

	return l.equipment[id-1]
}

func intArg(args []any, i int) (int64, error) {
	if i >= len(args) {
		return 0, errors.Errorf("missing argument %d", i)
	}
	n, ok := entity.ToInt64(args[i])
	if !ok {
		return 0, errors.Errorf("argument %d is not an integer (%T)", i, args[i])
	}

	return n, nil
}

func stringArg(args []any, i int) (string, error) {
	if i >= len(args) {
		return "", errors.Errorf("missing argument %d", i)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", errors.Errorf("argument %d is not a string (%T)", i, args[i])
	}

	return s, nil
}

func identityArg(args []any, i int) (entity.Identity, error) {
	if i >= len(args) {
		return "", errors.Errorf("missing argument %d", i)
	}
	switch v := args[i].(type) {
	case entity.Identity:
		return v, nil
	case common.Address:
		return entity.IdentityFromAddress(v), nil
	case string:
		return entity.ParseIdentity(v)
	default:
		return "", errors.Errorf("argument %d is not an address (%T)", i, args[i])
	}
}
