package handler

import (
	"net/http"

	"medchain/internal/delivery/api/response"
	"medchain/internal/domain/entity"
	"medchain/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SessionHandler exposes the wallet account and the backend login.
type SessionHandler struct {
	uc usecase.SessionUsecase
}

// NewSessionHandler is the constructor for SessionHandler, injected by Fx.
func NewSessionHandler(uc usecase.SessionUsecase) *SessionHandler {
	return &SessionHandler{uc: uc}
}

type switchWalletRequest struct {
	Address string `json:"address" validate:"required,wallet"`
}

type registerRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Contact         string `json:"contact"`
	PhysicalAddress string `json:"userAddress"`
	Password        string `json:"password" validate:"required,min=6"`
	Role            string `json:"role" validate:"required,role"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Current returns the connected identity and profile.
func (h *SessionHandler) Current(c echo.Context) error {
	view, err := h.uc.Current(c.Request().Context())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, view)
}

// SwitchWallet selects another wallet account.
func (h *SessionHandler) SwitchWallet(c echo.Context) error {
	var req switchWalletRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.uc.SwitchAccount(c.Request().Context(), req.Address)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, view)
}

// Register creates a backend account for the connected wallet.
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Contact:         req.Contact,
		PhysicalAddress: req.PhysicalAddress,
		Password:        req.Password,
		Role:            entity.ParseRole(req.Role),
	}); err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, map[string]string{"message": "registered"})
}

// Login signs in to the backend.
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.uc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, view)
}

// Logout ends the backend session.
func (h *SessionHandler) Logout(c echo.Context) error {
	if err := h.uc.Logout(c.Request().Context()); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "logged out"})
}
