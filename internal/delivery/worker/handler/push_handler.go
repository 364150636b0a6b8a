// Package handler contains the push handlers of the event worker.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"medchain/config"
	deliverycontext "medchain/internal/delivery/context"
	"medchain/internal/domain/constants"
	"medchain/internal/domain/entity"
	"medchain/internal/domain/repository"
	"medchain/internal/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// retryableError asks Pub/Sub to redeliver the message.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *retryableError) Unwrap() error {
	return e.err
}

func isRetryableError(err error) bool {
	var re *retryableError

	return errors.As(err, &re)
}

// PushHandler receives workflow events and flags failed workflows whose ledger
// transactions are still waiting in the reconciliation journal.
type PushHandler struct {
	verifyPushAuth bool
	logger         *slog.Logger
	orphans        repository.OrphanRepository
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config  *config.Config
	Logger  *slog.Logger
	Orphans repository.OrphanRepository
}

// NewPushHandler creates a new Pub/Sub push handler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	verifyPushAuth := params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == constants.PubSubProviderGoogle &&
		params.Config.Env.Env != constants.EnvDevelop

	return &PushHandler{
		verifyPushAuth: verifyPushAuth,
		logger:         params.Logger,
		orphans:        params.Orphans,
	}
}

// HandlePush handles incoming Pub/Sub push messages.
// 503 asks for redelivery; malformed messages are acknowledged so they are not retried forever.
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	var event entity.WorkflowEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("[Worker] Failed to parse workflow event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	requestID := extractRequestID(ctx, &pushMsg, &event)
	reqLogger := h.logger.With(
		slog.String("request_id", requestID),
		slog.String("workflow_id", event.WorkflowID),
		slog.String("action", event.Action.String()),
	)
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	if err := h.processEvent(ctx, &event); err != nil {
		reqLogger.Error("[Worker] Failed to process workflow event",
			slog.Any("error", err),
			slog.Bool("retryable", isRetryableError(err)),
		)
		if isRetryableError(err) {
			return c.NoContent(http.StatusServiceUnavailable)
		}
	}

	return c.NoContent(http.StatusOK)
}

func (h *PushHandler) processEvent(ctx context.Context, event *entity.WorkflowEvent) error {
	logger := deliverycontext.GetLoggerOrDefault(ctx, h.logger)

	if event.State != entity.StateFailed {
		logger.Info("[Worker] Workflow completed",
			slog.String("actor", event.Actor),
			slog.Any("tx_hashes", event.TxHashes),
		)

		return nil
	}
	if event.JournalID == "" {
		logger.Info("[Worker] Workflow failed without ledger effects", slog.String("error", event.Error))

		return nil
	}

	id, err := uuid.Parse(event.JournalID)
	if err != nil {
		return errors.Wrapf(err, "journal id %q", event.JournalID)
	}

	orphan, err := h.orphans.FindByID(ctx, id)
	if errors.Is(err, repository.ErrOrphanNotFound) {
		// The journal may live in another process's memory.
		logger.Warn("[Worker] Journal entry not visible to this worker", slog.String("journal_id", event.JournalID))

		return nil
	}
	if err != nil {
		return &retryableError{err: err}
	}

	if orphan.Status == entity.OrphanResolved {
		return nil
	}

	logger.Error("[Worker] Ledger transaction awaiting reconciliation",
		slog.String("journal_id", orphan.ID.String()),
		slog.String("kind", string(orphan.Kind)),
		slog.Bool("replayable", orphan.Replayable()),
		slog.Int("pending_writes", len(orphan.Writes)),
		slog.Any("tx_hashes", orphan.TxHashes),
	)

	return nil
}

// extractRequestID prefers message attributes, then the event, then the push request.
func extractRequestID(ctx context.Context, pushMsg *PubSubMessage, event *entity.WorkflowEvent) string {
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}
	if event.RequestID != "" {
		return event.RequestID
	}
	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

// verifyPubSubToken validates the OIDC token Google attaches to authenticated push requests.
func verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	scheme := "https"
	if req.TLS == nil {
		scheme = "http"
	}
	audience := fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)

	payload, err := idtoken.Validate(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}
	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}
	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
