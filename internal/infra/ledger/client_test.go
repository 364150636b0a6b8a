package ledger

import (
	"context"
	"encoding/hex"
	"math/big"
	"sync"
	"testing"
	"time"

	"medchain/internal/domain/constants"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testContract = common.HexToAddress("0x00000000000000000000000000000000000c0de1")

// newTestClient binds a client to backend with one freshly generated account.
func newTestClient(t *testing.T, backend *fakeBackend, confirmTimeout time.Duration) (*Client, entity.Identity) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer, err := NewKeySigner(hex.EncodeToString(crypto.FromECDSA(key)))
	require.NoError(t, err)

	contractABI, err := LoadABI("")
	require.NoError(t, err)

	client, err := NewClient(context.Background(), backend, Options{
		Contract:       testContract,
		ABI:            contractABI,
		Signer:         signer,
		GasLimits:      constants.DefaultGasLimits,
		ConfirmTimeout: confirmTimeout,
		Logger:         discardLogger(),
	})
	require.NoError(t, err)

	return client, entity.IdentityFromAddress(crypto.PubkeyToAddress(key.PublicKey))
}

func TestClient_Invoke_Confirmed(t *testing.T) {
	backend := newFakeBackend()
	client, from := newTestClient(t, backend, time.Second)

	receipt, err := client.Invoke(context.Background(), entity.Invocation{
		Method: constants.MethodCreateRawMaterial,
		Args:   []any{"Steel", int64(100), int64(5), "Metal"},
		From:   from,
	})
	require.NoError(t, err)

	sent := backend.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, sent[0].Hash().Hex(), receipt.TxHash)
	assert.Equal(t, uint64(1), receipt.BlockNumber)
	assert.Equal(t, testContract, *sent[0].To())
	assert.Equal(t, constants.DefaultGasLimits[constants.MethodCreateRawMaterial], sent[0].Gas())
}

func TestClient_Invoke_RevertedTxIsRejected(t *testing.T) {
	backend := newFakeBackend()
	backend.mine = func(tx *types.Transaction, block *big.Int) *types.Receipt {
		return &types.Receipt{Status: types.ReceiptStatusFailed, TxHash: tx.Hash(), BlockNumber: block}
	}
	client, from := newTestClient(t, backend, time.Second)

	_, err := client.Invoke(context.Background(), entity.Invocation{
		Method: constants.MethodApproveRawMaterialRequest,
		Args:   []any{int64(9)},
		From:   from,
	})

	var rejected *domainerrors.LedgerRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, constants.MethodApproveRawMaterialRequest, rejected.Method)
	assert.Equal(t, backend.Sent()[0].Hash().Hex(), rejected.TxHash)
	assert.False(t, rejected.Unconfirmed)
	assert.Contains(t, err.Error(), "transaction reverted")
}

func TestClient_Invoke_DecodesRequestedEvent(t *testing.T) {
	backend := newFakeBackend()
	client, from := newTestClient(t, backend, time.Second)

	event := client.abi.Events[constants.EventRawMaterialRequested]
	data, err := event.Inputs.NonIndexed().Pack(from.Address(), big.NewInt(30))
	require.NoError(t, err)

	requested := &types.Log{
		Address: testContract,
		Topics:  []common.Hash{event.ID, common.BigToHash(big.NewInt(7)), common.BigToHash(big.NewInt(3))},
		Data:    data,
	}
	// Same event from another contract is not ours.
	foreign := &types.Log{
		Address: common.HexToAddress("0x00000000000000000000000000000000000f0e1"),
		Topics:  []common.Hash{event.ID, common.BigToHash(big.NewInt(99)), common.BigToHash(big.NewInt(3))},
		Data:    data,
	}
	backend.mine = func(tx *types.Transaction, block *big.Int) *types.Receipt {
		return &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			TxHash:      tx.Hash(),
			BlockNumber: block,
			Logs:        []*types.Log{requested, foreign},
		}
	}

	receipt, err := client.Invoke(context.Background(), entity.Invocation{
		Method: constants.MethodRequestRawMaterial,
		Args:   []any{int64(3), int64(30)},
		From:   from,
	})
	require.NoError(t, err)

	requestID, ok := receipt.EventInt(constants.EventRawMaterialRequested, constants.EventFieldRequestID)
	require.True(t, ok)
	assert.Equal(t, int64(7), requestID)

	rawID, ok := receipt.EventInt(constants.EventRawMaterialRequested, "rawMaterialId")
	require.True(t, ok)
	assert.Equal(t, int64(3), rawID)

	fields := receipt.Events[constants.EventRawMaterialRequested]
	assert.Equal(t, from.Address(), fields["manufacturer"])
}

func TestClient_Invoke_SenderNotHeldFailsBeforeNetwork(t *testing.T) {
	backend := newFakeBackend()
	client, _ := newTestClient(t, backend, time.Second)

	_, err := client.Invoke(context.Background(), entity.Invocation{
		Method: constants.MethodShipEquipment,
		Args:   []any{int64(1)},
		From:   entity.Identity("0x9000000000000000000000000000000000000009"),
	})

	var rejected *domainerrors.LedgerRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Empty(t, rejected.TxHash)
	assert.Contains(t, err.Error(), "not held by the wallet")
	assert.Zero(t, backend.NonceReads())
	assert.Empty(t, backend.Sent())

	_, err = client.Invoke(context.Background(), entity.Invocation{Method: constants.MethodShipEquipment, Args: []any{int64(1)}})
	require.ErrorAs(t, err, &rejected)
	assert.Zero(t, backend.NonceReads())
}

func TestClient_Invoke_CallerCancelDoesNotAbortConfirmation(t *testing.T) {
	backend := newFakeBackend()
	client, from := newTestClient(t, backend, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	backend.onSend = cancel

	receipt, err := client.Invoke(ctx, entity.Invocation{
		Method: constants.MethodVerifyEquipment,
		Args:   []any{int64(1), true},
		From:   from,
	})
	require.NoError(t, err)
	assert.Equal(t, backend.Sent()[0].Hash().Hex(), receipt.TxHash)
}

func TestClient_Invoke_UnconfirmedAfterTimeout(t *testing.T) {
	backend := newFakeBackend()
	backend.mine = func(*types.Transaction, *big.Int) *types.Receipt { return nil }
	client, from := newTestClient(t, backend, 50*time.Millisecond)

	_, err := client.Invoke(context.Background(), entity.Invocation{
		Method: constants.MethodOrderEquipment,
		Args:   []any{int64(1), int64(2)},
		From:   from,
	})

	var rejected *domainerrors.LedgerRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.True(t, rejected.Unconfirmed)
	assert.Equal(t, backend.Sent()[0].Hash().Hex(), rejected.TxHash)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Invoke_ConcurrentWritesGetDistinctNonces(t *testing.T) {
	backend := newFakeBackend()
	backend.sendDelay = 2 * time.Millisecond
	client, from := newTestClient(t, backend, time.Second)

	const writes = 8
	var wg sync.WaitGroup
	errs := make(chan error, writes)
	for i := range writes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Invoke(context.Background(), entity.Invocation{
				Method: constants.MethodShipEquipment,
				Args:   []any{int64(i + 1)},
				From:   from,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	nonces := make(map[uint64]bool)
	for _, tx := range backend.Sent() {
		nonces[tx.Nonce()] = true
	}
	assert.Len(t, nonces, writes)
	for n := range uint64(writes) {
		assert.True(t, nonces[n], "nonce %d missing", n)
	}
}
