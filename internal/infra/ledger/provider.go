package ledger

import (
	"context"
	"log/slog"
	"maps"

	"medchain/config"
	"medchain/internal/domain/constants"
	"medchain/internal/domain/service"
	"medchain/internal/errors"
	"medchain/internal/infra/ledger/memory"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/fx"
)

// Params holds dependencies for the ledger binding, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// Result exposes the contract binding and the wallet it signs with
type Result struct {
	fx.Out

	Ledger  service.Ledger
	KeyRing service.KeyRing
}

// New selects the ledger provider from configuration
func New(params Params) (Result, error) {
	cfg := params.Config.Ledger
	logger := params.Logger

	gasLimits := maps.Clone(constants.DefaultGasLimits)
	maps.Copy(gasLimits, cfg.GasLimits)

	switch cfg.Provider {
	case constants.LedgerProviderMemory:
		keys, err := memoryKeyRing(cfg)
		if err != nil {
			return Result{}, err
		}
		logger.Warn("Using in-memory ledger; contract state is lost on restart")

		return Result{Ledger: memory.New(keys), KeyRing: keys}, nil

	case constants.LedgerProviderEthereum:
		return newEthereum(params, gasLimits)

	default:
		return Result{}, errors.Errorf("unknown ledger provider: %s", cfg.Provider)
	}
}

func newEthereum(params Params, gasLimits map[string]uint64) (Result, error) {
	cfg := params.Config.Ledger
	logger := params.Logger

	if cfg.RPCURL == "" {
		return Result{}, errors.New("rpc url is required for ethereum provider")
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return Result{}, errors.Errorf("invalid contract address: %q", cfg.ContractAddress)
	}

	contractABI, err := LoadABI(cfg.ABIPath)
	if err != nil {
		return Result{}, err
	}

	signer, err := newSigner(cfg, logger)
	if err != nil {
		return Result{}, err
	}

	rpc, err := ethclient.DialContext(params.Ctx, cfg.RPCURL)
	if err != nil {
		signer.Close()

		return Result{}, errors.Wrap(err, "failed to connect to node")
	}

	client, err := NewClient(params.Ctx, rpc, Options{
		Contract:       common.HexToAddress(cfg.ContractAddress),
		ABI:            contractABI,
		Signer:         signer,
		GasLimits:      gasLimits,
		ConfirmTimeout: cfg.ConfirmTimeout,
		Logger:         logger,
	})
	if err != nil {
		rpc.Close()
		signer.Close()

		return Result{}, err
	}

	logger.Info("Connected to ledger",
		slog.String("rpc_url", cfg.RPCURL),
		slog.String("contract", cfg.ContractAddress),
		slog.String("chain_id", client.chainID.String()),
		slog.Int("accounts", len(signer.Accounts())),
	)

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing ledger connection")
			signer.Close()
			rpc.Close()

			return nil
		},
	})

	return Result{Ledger: client, KeyRing: signer}, nil
}

func newSigner(cfg *config.LedgerConfig, logger *slog.Logger) (Signer, error) {
	switch {
	case cfg.KeystoreDir != "":
		return NewKeystoreSigner(cfg.KeystoreDir, cfg.Passphrase, logger)
	case cfg.PrivateKey != "":
		return NewKeySigner(cfg.PrivateKey)
	default:
		return nil, errors.New("ledger wallet requires keystoreDir or privateKey")
	}
}

func memoryKeyRing(cfg *config.LedgerConfig) (*memory.KeyRing, error) {
	if cfg.PrivateKey == "" {
		return memory.NewKeyRing(), nil
	}

	signer, err := NewKeySigner(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	return memory.NewKeyRing(signer.Accounts()...), nil
}

// Module provides the ledger FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(New),
)
