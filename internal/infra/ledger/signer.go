package ledger

import (
	"crypto/ecdsa"
	"log/slog"
	"math/big"
	"slices"
	"strings"
	"sync"

	"medchain/internal/domain/entity"
	"medchain/internal/domain/service"
	"medchain/internal/errors"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
)

// Signer is a wallet able to sign transactions for the accounts it holds.
type Signer interface {
	service.KeyRing

	SignTx(from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
	Close()
}

// keySigner signs with raw private keys. Its account set never changes.
type keySigner struct {
	keys  map[common.Address]*ecdsa.PrivateKey
	order []entity.Identity
}

// NewKeySigner builds a signer from hex private keys, comma separated or not.
func NewKeySigner(hexKeys ...string) (Signer, error) {
	s := &keySigner{keys: make(map[common.Address]*ecdsa.PrivateKey)}

	for _, joined := range hexKeys {
		for _, raw := range strings.Split(joined, ",") {
			raw = strings.TrimPrefix(strings.TrimSpace(raw), "0x")
			if raw == "" {
				continue
			}

			key, err := crypto.HexToECDSA(raw)
			if err != nil {
				return nil, errors.Wrap(err, "parse private key")
			}

			addr := crypto.PubkeyToAddress(key.PublicKey)
			if _, dup := s.keys[addr]; dup {
				continue
			}
			s.keys[addr] = key
			s.order = append(s.order, entity.IdentityFromAddress(addr))
		}
	}

	if len(s.keys) == 0 {
		return nil, errors.New("no private key configured")
	}

	return s, nil
}

func (s *keySigner) Accounts() []entity.Identity {
	return append([]entity.Identity(nil), s.order...)
}

func (s *keySigner) Holds(id entity.Identity) bool {
	_, ok := s.keys[id.Address()]

	return ok
}

func (s *keySigner) OnAccountDropped(func(entity.Identity)) {}

func (s *keySigner) SignTx(from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	key, ok := s.keys[from]
	if !ok {
		return nil, errors.Errorf("no key for %s", from.Hex())
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return nil, errors.Wrap(err, "sign transaction")
	}

	return signed, nil
}

func (s *keySigner) Close() {}

// keystoreSigner signs with an encrypted keystore directory and follows
// accounts being added to or removed from it.
type keystoreSigner struct {
	ks         *keystore.KeyStore
	passphrase string
	sub        event.Subscription
	logger     *slog.Logger

	mu        sync.RWMutex
	listeners []func(entity.Identity)
}

// NewKeystoreSigner opens dir and unlocks every account with passphrase.
func NewKeystoreSigner(dir, passphrase string, logger *slog.Logger) (Signer, error) {
	ks := keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP)

	for _, acct := range ks.Accounts() {
		if err := ks.Unlock(acct, passphrase); err != nil {
			return nil, errors.Wrapf(err, "unlock %s", acct.Address.Hex())
		}
	}

	if len(ks.Accounts()) == 0 {
		return nil, errors.Errorf("keystore %s holds no accounts", dir)
	}

	walletEvents := make(chan accounts.WalletEvent, 16)
	s := &keystoreSigner{
		ks:         ks,
		passphrase: passphrase,
		logger:     logger,
	}
	s.sub = ks.Subscribe(walletEvents)

	go s.watch(walletEvents)

	return s, nil
}

func (s *keystoreSigner) watch(walletEvents <-chan accounts.WalletEvent) {
	for {
		select {
		case ev := <-walletEvents:
			for _, acct := range ev.Wallet.Accounts() {
				switch ev.Kind {
				case accounts.WalletArrived:
					if err := s.ks.Unlock(acct, s.passphrase); err != nil {
						s.logger.Warn("Keystore account arrived but could not be unlocked",
							slog.String("account", acct.Address.Hex()),
							slog.Any("error", err),
						)
					}
				case accounts.WalletDropped:
					s.notifyDropped(entity.IdentityFromAddress(acct.Address))
				}
			}
		case <-s.sub.Err():
			return
		}
	}
}

func (s *keystoreSigner) notifyDropped(id entity.Identity) {
	s.mu.RLock()
	listeners := slices.Clone(s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(id)
	}
}

func (s *keystoreSigner) Accounts() []entity.Identity {
	accts := s.ks.Accounts()
	out := make([]entity.Identity, 0, len(accts))
	for _, a := range accts {
		out = append(out, entity.IdentityFromAddress(a.Address))
	}

	return out
}

func (s *keystoreSigner) Holds(id entity.Identity) bool {
	return s.ks.HasAddress(id.Address())
}

func (s *keystoreSigner) OnAccountDropped(fn func(entity.Identity)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, fn)
}

func (s *keystoreSigner) SignTx(from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := s.ks.SignTx(accounts.Account{Address: from}, tx, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "keystore sign transaction")
	}

	return signed, nil
}

func (s *keystoreSigner) Close() {
	s.sub.Unsubscribe()
}
