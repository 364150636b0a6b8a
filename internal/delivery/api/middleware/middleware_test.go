package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"medchain/internal/delivery/api/response"
	deliverycontext "medchain/internal/delivery/context"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/infra/ledger/memory"
	"medchain/internal/infra/wallet"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hospital/orders", nil)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *response.ErrorInfo {
	t.Helper()

	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)

	return body.Error
}

func TestHandleHTTPError(t *testing.T) {
	m := NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name        string
		err         error
		status      int
		code        string
		details     any
		correlation *response.Correlation
	}{
		{
			name:    "validation keeps details",
			err:     domainerrors.Validation("quantity must be positive"),
			status:  http.StatusBadRequest,
			code:    "VALIDATION_FAILED",
			details: "quantity must be positive",
		},
		{
			name:   "forbidden hides details",
			err:    domainerrors.ErrForbidden.WithDetails("requires role hospital"),
			status: http.StatusForbidden,
			code:   "FORBIDDEN",
		},
		{
			name: "backend failure after ledger confirmation",
			err: domainerrors.NewBackendUnavailableError("/api/orders", http.StatusBadGateway, errors.New("down")).
				WithTxHash("0xabc").WithJournalID("j-1"),
			status:      http.StatusFailedDependency,
			code:        "BACKEND_UNAVAILABLE",
			correlation: &response.Correlation{TxHash: "0xabc", JournalID: "j-1"},
		},
		{
			name:   "echo error",
			err:    echo.NewHTTPError(http.StatusNotFound, "no route"),
			status: http.StatusNotFound,
			code:   "HTTP_ERROR",
		},
		{
			name:   "unknown error",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			code:   "INTERNAL_ERROR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext()
			m.HandleHTTPError(tt.err, c)

			assert.Equal(t, tt.status, rec.Code)
			info := decodeError(t, rec)
			assert.Equal(t, tt.code, info.Code)
			assert.Equal(t, tt.details, info.Details)
			assert.Equal(t, tt.correlation, info.Correlation)
		})
	}
}

func TestSessionMiddleware(t *testing.T) {
	const hospital = entity.Identity("0x4000000000000000000000000000000000000004")

	keys := memory.NewKeyRing(hospital)
	store := wallet.NewStore(keys, memory.New(keys), slog.New(slog.NewTextHandler(io.Discard, nil)))
	m := NewSessionMiddleware(store)

	reached := false
	next := func(echo.Context) error {
		reached = true

		return nil
	}
	guarded := m.Attach(m.RequireWallet(m.RequireRole(entity.RoleHospital)(next)))

	c, _ := newContext()
	require.ErrorIs(t, guarded(c), domainerrors.ErrWalletUnavailable)
	assert.False(t, reached)

	require.NoError(t, store.Switch(c.Request().Context(), hospital))

	// No profile yet: the role is resolved later from the contract.
	c, _ = newContext()
	require.NoError(t, guarded(c))
	assert.True(t, reached)
	session, ok := deliverycontext.GetSession(c)
	require.True(t, ok)
	assert.Equal(t, hospital, session.Identity)

	store.SetProfile(&entity.UserProfile{Role: entity.RoleTransporter})
	reached = false
	c, _ = newContext()
	require.ErrorIs(t, guarded(c), domainerrors.ErrForbidden)
	assert.False(t, reached)

	store.SetProfile(&entity.UserProfile{Role: entity.RoleHospital})
	c, _ = newContext()
	require.NoError(t, guarded(c))
	assert.True(t, reached)
}
