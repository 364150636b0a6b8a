package handler

import (
	"net/http"

	"medchain/internal/delivery/api/response"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/repository"
	"medchain/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ReconcileHandler exposes the journal of unmirrored ledger transactions.
type ReconcileHandler struct {
	uc usecase.ReconcileUsecase
}

// NewReconcileHandler is the constructor for ReconcileHandler, injected by Fx.
func NewReconcileHandler(uc usecase.ReconcileUsecase) *ReconcileHandler {
	return &ReconcileHandler{uc: uc}
}

type orphanListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=open resolved"`
	Limit  int    `query:"limit" validate:"gte=0,lte=500"`
}

// List returns journal entries, newest first.
func (h *ReconcileHandler) List(c echo.Context) error {
	var q orphanListQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	orphans, err := h.uc.Orphans(c.Request().Context(), session(c), repository.OrphanFilter{
		Status: entity.OrphanStatus(q.Status),
		Limit:  q.Limit,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, orphans)
}

// Retry replays the pending metadata writes of an entry.
func (h *ReconcileHandler) Retry(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.Validation("invalid journal id %q", c.Param("id"))
	}

	orphan, err := h.uc.RetryMetadata(c.Request().Context(), session(c), id)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, orphan)
}
