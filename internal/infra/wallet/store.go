// Package wallet holds the process-wide wallet session.
package wallet

import (
	"context"
	"log/slog"
	"sync"

	"medchain/config"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/service"

	"go.uber.org/fx"
)

// Store caches the selected identity and its profile, and tells subscribers when
// the identity changes. A change never touches transactions already submitted.
type Store struct {
	keys   service.KeyRing
	ledger service.Ledger
	logger *slog.Logger

	mu       sync.RWMutex
	identity entity.Identity
	profile  *entity.UserProfile
	subs     map[uint64]func(service.IdentityChange)
	nextSub  uint64
}

var _ service.WalletSession = (*Store)(nil)

// NewStore creates a disconnected session over the wallet keys.
func NewStore(keys service.KeyRing, ledger service.Ledger, logger *slog.Logger) *Store {
	s := &Store{
		keys:   keys,
		ledger: ledger,
		logger: logger,
		subs:   make(map[uint64]func(service.IdentityChange)),
	}
	keys.OnAccountDropped(s.accountDropped)

	return s
}

// Params holds dependencies for the wallet session, injected by Fx
type Params struct {
	fx.In

	Ctx     context.Context
	Config  *config.Config
	KeyRing service.KeyRing
	Ledger  service.Ledger
	Logger  *slog.Logger
}

// New creates the session and connects the start-up account when there is one.
func New(params Params) service.WalletSession {
	s := NewStore(params.KeyRing, params.Ledger, params.Logger)

	if id, ok := defaultAccount(params.Config.Ledger, params.KeyRing); ok {
		if err := s.Switch(params.Ctx, id); err != nil {
			params.Logger.Warn("Could not connect default account", slog.Any("error", err))
		}
	} else {
		params.Logger.Info("No wallet account connected at start-up")
	}

	return s
}

func defaultAccount(cfg *config.LedgerConfig, keys service.KeyRing) (entity.Identity, bool) {
	if cfg != nil && cfg.DefaultAccount != "" {
		id, err := entity.ParseIdentity(cfg.DefaultAccount)
		if err != nil || !keys.Holds(id) {
			return "", false
		}

		return id, true
	}

	accounts := keys.Accounts()
	if len(accounts) == 0 {
		return "", false
	}

	return accounts[0], true
}

func (s *Store) CurrentIdentity() (entity.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.identity, !s.identity.IsZero()
}

func (s *Store) LedgerHandle() (service.Ledger, bool) {
	if _, ok := s.CurrentIdentity(); !ok || s.ledger == nil {
		return nil, false
	}

	return s.ledger, true
}

func (s *Store) Snapshot() entity.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session := entity.Session{Identity: s.identity}
	if s.profile != nil {
		profile := *s.profile
		session.Profile = &profile
	}

	return session
}

func (s *Store) Switch(_ context.Context, id entity.Identity) error {
	if id.IsZero() {
		return domainerrors.ErrWalletUnavailable
	}
	if !s.keys.Holds(id) {
		return domainerrors.ErrAccountNotHeld.WithDetails(id.String())
	}

	s.mu.Lock()
	previous := s.identity
	if previous == id {
		s.mu.Unlock()

		return nil
	}
	s.identity = id
	s.profile = nil
	s.mu.Unlock()

	s.logger.Info("Wallet account changed",
		slog.String("previous", previous.String()),
		slog.String("next", id.String()),
	)
	s.notify(service.IdentityChange{Previous: previous, Next: id})

	return nil
}

func (s *Store) Disconnect() {
	s.mu.Lock()
	previous := s.identity
	s.identity = ""
	s.profile = nil
	s.mu.Unlock()

	if previous.IsZero() {
		return
	}

	s.logger.Info("Wallet account disconnected", slog.String("previous", previous.String()))
	s.notify(service.IdentityChange{Previous: previous})
}

func (s *Store) SetProfile(profile *entity.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if profile == nil {
		s.profile = nil

		return
	}

	cp := *profile
	s.profile = &cp
}

// SetProfileFor caches profile only while id is still the selected account.
func (s *Store) SetProfileFor(id entity.Identity, profile *entity.UserProfile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id.IsZero() || s.identity != id {
		return false
	}
	if profile == nil {
		s.profile = nil

		return true
	}

	cp := *profile
	s.profile = &cp

	return true
}

func (s *Store) Subscribe(fn func(service.IdentityChange)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.subs, id)
	}
}

func (s *Store) notify(change service.IdentityChange) {
	s.mu.RLock()
	subs := make([]func(service.IdentityChange), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(change)
	}
}

func (s *Store) accountDropped(id entity.Identity) {
	if current, ok := s.CurrentIdentity(); ok && current == id {
		s.Disconnect()
	}
}
