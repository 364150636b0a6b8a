package memory

import (
	"slices"
	"sync"

	"medchain/internal/domain/entity"
)

// KeyRing is a simulated wallet. With no accounts configured it holds every address.
type KeyRing struct {
	mu        sync.RWMutex
	accounts  []entity.Identity
	open      bool
	dropped   map[entity.Identity]struct{}
	listeners []func(entity.Identity)
}

// NewKeyRing creates a wallet holding the given accounts.
func NewKeyRing(accounts ...entity.Identity) *KeyRing {
	return &KeyRing{
		accounts: append([]entity.Identity(nil), accounts...),
		open:     len(accounts) == 0,
		dropped:  make(map[entity.Identity]struct{}),
	}
}

func (k *KeyRing) Accounts() []entity.Identity {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return append([]entity.Identity(nil), k.accounts...)
}

func (k *KeyRing) Holds(id entity.Identity) bool {
	if id.IsZero() {
		return false
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	if _, gone := k.dropped[id]; gone {
		return false
	}
	if k.open {
		return true
	}
	for _, a := range k.accounts {
		if a == id {
			return true
		}
	}

	return false
}

func (k *KeyRing) OnAccountDropped(fn func(entity.Identity)) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.listeners = append(k.listeners, fn)
}

// Drop removes an account and notifies listeners, like a wallet extension revoking access.
func (k *KeyRing) Drop(id entity.Identity) {
	k.mu.Lock()
	kept := k.accounts[:0]
	for _, a := range k.accounts {
		if a != id {
			kept = append(kept, a)
		}
	}
	k.accounts = kept
	k.dropped[id] = struct{}{}
	listeners := slices.Clone(k.listeners)
	k.mu.Unlock()

	for _, fn := range listeners {
		fn(id)
	}
}
