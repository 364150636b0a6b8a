package middleware

import (
	"log/slog"
	"net/http"

	"medchain/internal/delivery/api/response"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/errors"

	"github.com/labstack/echo/v4"
)

// ErrorMiddleware handles errors in the HTTP pipeline
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var backendErr *domainerrors.BackendUnavailableError
	if errors.As(err, &backendErr) {
		var correlation *response.Correlation
		if backendErr.TxHash != "" || backendErr.JournalID != "" {
			correlation = &response.Correlation{TxHash: backendErr.TxHash, JournalID: backendErr.JournalID}
			m.logger.Error("Ledger write confirmed without metadata",
				slog.String("tx_hash", backendErr.TxHash),
				slog.String("journal_id", backendErr.JournalID),
				slog.Any("error", err),
			)
		}
		_ = response.ErrorWithCorrelation(c, backendErr.HTTPCode(), backendErr.ErrorCode(), backendErr.Message(), nil, correlation)

		return
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		var details any
		if d := appErr.Details(); d != "" {
			details = d
		}
		_ = response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), details)

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}

		_ = response.Error(c, httpErr.Code, "HTTP_ERROR", message, nil)

		return
	}

	m.logger.Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	_ = response.InternalServerError(c, "INTERNAL_ERROR", "Internal server error, please try again later")
}
