package middleware

import (
	"slices"

	deliverycontext "medchain/internal/delivery/context"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// SessionMiddleware snapshots the wallet session once per request so a concurrent
// account switch cannot change who a running workflow acts as.
type SessionMiddleware struct {
	wallet service.WalletSession
}

// NewSessionMiddleware creates the session middleware
func NewSessionMiddleware(wallet service.WalletSession) *SessionMiddleware {
	return &SessionMiddleware{wallet: wallet}
}

// Attach stores the session snapshot on the request.
func (m *SessionMiddleware) Attach(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		deliverycontext.SetSession(c, m.wallet.Snapshot())

		return next(c)
	}
}

// RequireWallet rejects requests without a connected account.
func (m *SessionMiddleware) RequireWallet(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, ok := deliverycontext.GetSession(c)
		if !ok {
			session = m.wallet.Snapshot()
			deliverycontext.SetSession(c, session)
		}
		if !session.Connected() {
			return domainerrors.ErrWalletUnavailable
		}

		return next(c)
	}
}

// RequireRole rejects a logged-in profile of another role. Without a profile the
// request passes and the use case resolves the role from the contract.
// It must be used AFTER RequireWallet.
func (m *SessionMiddleware) RequireRole(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, _ := deliverycontext.GetSession(c)
			if session.Profile == nil || !session.Profile.Role.IsValid() {
				return next(c)
			}
			if !slices.Contains(roles, session.Profile.Role) {
				return domainerrors.ErrForbidden.WithDetails("requires role " + roleList(roles))
			}

			return next(c)
		}
	}
}

func roleList(roles []entity.Role) string {
	s := ""
	for i, r := range roles {
		if i > 0 {
			s += " or "
		}
		s += r.String()
	}

	return s
}
