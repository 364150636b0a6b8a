// Package ledger submits contract calls to an EVM node through go-ethereum.
package ledger

import (
	"context"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/errors"
	"medchain/internal/util"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Backend is the subset of ethclient.Client the ledger needs.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend

	ChainID(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

var _ Backend = (*ethclient.Client)(nil)

// Client is the contract binding of the wallet session.
type Client struct {
	backend        Backend
	contract       common.Address
	abi            abi.ABI
	signer         Signer
	chainID        *big.Int
	gasLimits      map[string]uint64
	confirmTimeout time.Duration
	logger         *slog.Logger

	// senders serializes nonce allocation per account up to broadcast.
	sendersMu sync.Mutex
	senders   map[common.Address]*sync.Mutex
}

// Options configures a Client.
type Options struct {
	Contract       common.Address
	ABI            abi.ABI
	Signer         Signer
	GasLimits      map[string]uint64
	ConfirmTimeout time.Duration
	Logger         *slog.Logger
}

// NewClient binds the contract on the backend and resolves the chain id.
func NewClient(ctx context.Context, backend Backend, opts Options) (*Client, error) {
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chain ID")
	}

	return &Client{
		backend:        backend,
		contract:       opts.Contract,
		abi:            opts.ABI,
		signer:         opts.Signer,
		chainID:        chainID,
		gasLimits:      opts.GasLimits,
		confirmTimeout: opts.ConfirmTimeout,
		logger:         opts.Logger,
		senders:        make(map[common.Address]*sync.Mutex),
	}, nil
}

// Invoke signs, sends and waits for one contract write.
func (c *Client) Invoke(ctx context.Context, inv entity.Invocation) (*entity.Receipt, error) {
	if inv.From.IsZero() || !c.signer.Holds(inv.From) {
		return nil, domainerrors.NewLedgerRejectedError(inv.Method, "", errors.Errorf("sender %s is not held by the wallet", inv.From))
	}

	data, err := c.pack(inv.Method, inv.Args)
	if err != nil {
		return nil, domainerrors.NewLedgerRejectedError(inv.Method, "", err)
	}

	from := inv.From.Address()

	txHash, err := c.send(ctx, inv, from, data)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Transaction submitted",
		slog.String("method", inv.Method),
		slog.String("tx_hash", txHash.Hex()),
		slog.String("from", inv.From.String()),
	)

	// The tx is broadcast, so the wait outlives the caller's cancellation.
	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.confirmTimeout)
	defer cancel()

	submitted := time.Now()

	receipt, err := bind.WaitMinedHash(waitCtx, c.backend, txHash)
	if err != nil {
		return nil, domainerrors.NewUnconfirmedTxError(inv.Method, txHash.Hex(), errors.Wrap(err, "failed to wait for tx"))
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, domainerrors.NewLedgerRejectedError(inv.Method, txHash.Hex(), errors.New("transaction reverted"))
	}

	var block uint64
	if receipt.BlockNumber != nil {
		block = receipt.BlockNumber.Uint64()
	}

	c.logger.Debug("Transaction confirmed",
		slog.String("method", inv.Method),
		slog.String("tx_hash", txHash.Hex()),
		slog.Uint64("block", block),
		slog.String("waited", util.FormatDuration(time.Since(submitted))),
	)

	return &entity.Receipt{
		TxHash:      txHash.Hex(),
		BlockNumber: block,
		Events:      decodeEvents(c.abi, c.contract, receipt.Logs),
	}, nil
}

// send allocates the nonce, signs and broadcasts. Two writes from one
// account never read the same pending nonce.
func (c *Client) send(ctx context.Context, inv entity.Invocation, from common.Address, data []byte) (common.Hash, error) {
	lock := c.senderLock(from)
	lock.Lock()
	defer lock.Unlock()

	nonce, err := c.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, domainerrors.NewLedgerRejectedError(inv.Method, "", errors.Wrap(err, "failed to get nonce"))
	}

	gasTipCap, err := c.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, domainerrors.NewLedgerRejectedError(inv.Method, "", errors.Wrap(err, "failed to suggest gas tip cap"))
	}

	gasFeeCap, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, domainerrors.NewLedgerRejectedError(inv.Method, "", errors.Wrap(err, "failed to suggest gas fee cap"))
	}
	if gasFeeCap.Cmp(gasTipCap) < 0 {
		gasFeeCap = new(big.Int).Set(gasTipCap)
	}

	gasLimit := c.gasLimit(inv)
	if gasLimit == 0 {
		gasLimit, err = c.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &c.contract, Data: data})
		if err != nil {
			return common.Hash{}, domainerrors.NewLedgerRejectedError(inv.Method, "", errors.Wrap(err, "failed to estimate gas"))
		}
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		Gas:       gasLimit,
		To:        &c.contract,
		Data:      data,
		GasTipCap: gasTipCap,
		GasFeeCap: gasFeeCap,
	})

	signedTx, err := c.signer.SignTx(from, tx, c.chainID)
	if err != nil {
		return common.Hash{}, domainerrors.NewLedgerRejectedError(inv.Method, "", err)
	}

	txHash := signedTx.Hash()
	if err := c.backend.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, domainerrors.NewLedgerRejectedError(inv.Method, "", errors.Wrap(err, "failed to send tx"))
	}

	return txHash, nil
}

func (c *Client) senderLock(from common.Address) *sync.Mutex {
	c.sendersMu.Lock()
	defer c.sendersMu.Unlock()

	lock, ok := c.senders[from]
	if !ok {
		lock = &sync.Mutex{}
		c.senders[from] = lock
	}

	return lock
}

// Call executes a view method against the latest block.
func (c *Client) Call(ctx context.Context, from entity.Identity, method string, args ...any) ([]any, error) {
	data, err := c.pack(method, args)
	if err != nil {
		return nil, err
	}

	msg := ethereum.CallMsg{To: &c.contract, Data: data}
	if !from.IsZero() {
		msg.From = from.Address()
	}

	out, err := c.backend.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "call %s", method)
	}

	values, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, errors.Wrapf(err, "unpack %s", method)
	}

	return values, nil
}

func (c *Client) pack(method string, args []any) ([]byte, error) {
	m, ok := c.abi.Methods[method]
	if !ok {
		return nil, errors.Errorf("contract has no method %s", method)
	}

	coerced, err := coerceArgs(m, args)
	if err != nil {
		return nil, err
	}

	data, err := c.abi.Pack(method, coerced...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}

	return data, nil
}

func (c *Client) gasLimit(inv entity.Invocation) uint64 {
	if inv.GasLimit != 0 {
		return inv.GasLimit
	}

	return c.gasLimits[inv.Method]
}
