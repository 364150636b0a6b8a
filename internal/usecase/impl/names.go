package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"medchain/internal/domain/service"

	"golang.org/x/sync/singleflight"
)

// nameResolver caches backend display names per wallet address.
// Concurrent lookups of the same address share one request.
type nameResolver struct {
	users  service.UserDirectory
	logger *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	names map[string]string
}

func newNameResolver(users service.UserDirectory, logger *slog.Logger) *nameResolver {
	return &nameResolver{
		users:  users,
		logger: logger,
		names:  make(map[string]string),
	}
}

// resolve returns the display name of wallet, or fallback when it cannot be read.
// Failed lookups are not cached.
func (r *nameResolver) resolve(ctx context.Context, wallet, fallback string) string {
	key := strings.ToLower(strings.TrimSpace(wallet))
	if key == "" {
		return fallback
	}

	r.mu.RLock()
	name, ok := r.names[key]
	r.mu.RUnlock()
	if ok {
		return name
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		profile, err := r.users.ByWallet(ctx, key)
		if err != nil {
			return "", err
		}

		return profile.Name, nil
	})
	if err != nil {
		r.logger.Debug("Display name lookup failed", slog.String("wallet", key), slog.Any("error", err))

		return fallback
	}

	name, _ = v.(string)
	if name == "" {
		return fallback
	}

	r.mu.Lock()
	r.names[key] = name
	r.mu.Unlock()

	return name
}
