package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var testChainID = big.NewInt(1337)

// fakeBackend mines every accepted tx through mine. A nil receipt means the
// tx stays pending.
type fakeBackend struct {
	mu       sync.Mutex
	nonces   map[common.Address]uint64
	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
	block    int64

	nonceReads int
	sendDelay  time.Duration
	onSend     func()
	mine       func(tx *types.Transaction, block *big.Int) *types.Receipt
}

var _ Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]*types.Receipt),
		mine: func(tx *types.Transaction, block *big.Int) *types.Receipt {
			return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash(), BlockNumber: block}
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (f *fakeBackend) Sent() []*types.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*types.Transaction(nil), f.sent...)
}

func (f *fakeBackend) NonceReads() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.nonceReads
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).Set(testChainID), nil
}

func (f *fakeBackend) PendingNonceAt(_ context.Context, account common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nonceReads++

	return f.nonces[account], nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	from, err := types.Sender(types.LatestSignerForChainID(testChainID), tx)
	if err != nil {
		return err
	}

	// Widens the window between nonce read and nonce bump.
	time.Sleep(f.sendDelay)

	f.mu.Lock()
	if tx.Nonce() != f.nonces[from] {
		f.mu.Unlock()

		return errors.New("nonce too low")
	}
	f.nonces[from]++
	f.sent = append(f.sent, tx)
	f.block++
	if receipt := f.mine(tx, big.NewInt(f.block)); receipt != nil {
		f.receipts[tx.Hash()] = receipt
	}
	onSend := f.onSend
	f.mu.Unlock()

	if onSend != nil {
		onSend()
	}

	return nil
}

func (f *fakeBackend) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	receipt, ok := f.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}

	return receipt, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}

func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 300_000, nil
}

func (f *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeBackend) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeBackend) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, errors.New("no view calls configured")
}

func (f *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return &types.Header{Number: big.NewInt(f.block), BaseFee: big.NewInt(1)}, nil
}

func (f *fakeBackend) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (f *fakeBackend) SubscribeFilterLogs(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("subscriptions not supported")
}
