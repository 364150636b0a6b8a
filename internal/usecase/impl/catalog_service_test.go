package impl

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"medchain/internal/domain/constants"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// namedUsers resolves display names for known wallets and counts lookups.
type namedUsers struct {
	stubUsers
	names   map[string]string
	lookups atomic.Int32
}

func (u *namedUsers) ByWallet(_ context.Context, wallet string) (*entity.UserProfile, error) {
	u.lookups.Add(1)
	name, ok := u.names[strings.ToLower(wallet)]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}

	return &entity.UserProfile{Name: name, WalletAddress: wallet}, nil
}

func TestCatalog_ResolvesSupplierNamesOnce(t *testing.T) {
	metadata := newFakeMetadata()
	metadata.seed("raw",
		map[string]any{"rawId": 1, "name": "Steel", "supplier": supplierAddr.String()},
		map[string]any{"rawId": 2, "name": "Cotton", "supplier": "0X" + supplierAddr.String()[2:]},
		map[string]any{"rawId": 3, "name": "Resin", "supplier": "0xffff", "supplierName": "Given"},
		map[string]any{"rawId": 4, "name": "Glass", "supplier": "0x5555"},
	)
	users := &namedUsers{names: map[string]string{supplierAddr.String(): "Acme Metals"}}
	uc := NewCatalogService(CatalogParams{Metadata: metadata, Users: users, Logger: discardLogger()})
	ctx := context.Background()

	lots, err := uc.AvailableRawMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, lots, 4)
	assert.Equal(t, "Acme Metals", lots[0].SupplierName)
	assert.Equal(t, "Acme Metals", lots[1].SupplierName)
	assert.Equal(t, "Given", lots[2].SupplierName)
	assert.Equal(t, constants.UnknownName, lots[3].SupplierName)

	before := users.lookups.Load()
	_, err = uc.AvailableRawMaterials(ctx)
	require.NoError(t, err)
	// Only the unresolved wallet is asked again.
	assert.Equal(t, before+1, users.lookups.Load())

	own, err := uc.SupplierRawMaterials(ctx, entity.Session{Identity: supplierAddr})
	require.NoError(t, err)
	assert.Len(t, own, 2)

	_, err = uc.SupplierRawMaterials(ctx, entity.Session{})
	require.ErrorIs(t, err, domainerrors.ErrWalletUnavailable)
}

func TestCatalog_RequestsAndEquipment(t *testing.T) {
	metadata := newFakeMetadata()
	metadata.seed("requests",
		map[string]any{"contractRequestId": 1, "supplierId": supplierAddr.String(), "manufacturerAddress": manufacturerAddr.String()},
		map[string]any{"contractRequestId": 2, "supplierId": "0x9999"},
	)
	metadata.seed("approved",
		map[string]any{"contractRequestId": 1, "manufacturerAddress": manufacturerAddr.String(), "quantity": 20, "usedQuantity": 5},
	)
	metadata.seed("equipment",
		map[string]any{"equipmentId": 1, "name": "Stent", "verified": true, "available": true},
		map[string]any{"equipmentId": 2, "name": "Splint", "verified": true, "available": false},
		map[string]any{"equipmentId": 3, "name": "Gauze", "verified": false, "available": true},
	)
	users := &namedUsers{names: map[string]string{manufacturerAddr.String(): "MedWorks"}}
	uc := NewCatalogService(CatalogParams{Metadata: metadata, Users: users, Logger: discardLogger()})
	ctx := context.Background()

	inbox, err := uc.SupplierRequests(ctx, entity.Session{Identity: supplierAddr})
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "MedWorks", inbox[0].ManufacturerName)

	approved, err := uc.ApprovedRequests(ctx, entity.Session{Identity: manufacturerAddr})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, int64(15), approved[0].Remaining())

	all, err := uc.Equipment(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	orderable, err := uc.OrderableEquipment(ctx)
	require.NoError(t, err)
	require.Len(t, orderable, 1)
	assert.Equal(t, "Stent", orderable[0].Name)

	orders, err := uc.Orders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}
