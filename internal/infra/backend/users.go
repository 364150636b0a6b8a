package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"medchain/internal/domain/constants"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/service"
	"medchain/internal/errors"
)

// profileDoc covers the field spellings the backend uses for accounts.
type profileDoc struct {
	ID            string `json:"_id"`
	Name          string `json:"name"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Contact       string `json:"contact"`
	UserAddress   string `json:"userAddress"`
	Role          string `json:"role"`
	WalletAddress string `json:"walletAddress"`
	Wallet        string `json:"wallet"`
}

func (d profileDoc) toEntity() *entity.UserProfile {
	name := d.Name
	if name == "" {
		name = d.Username
	}
	wallet := d.WalletAddress
	if wallet == "" {
		wallet = d.Wallet
	}

	return &entity.UserProfile{
		ID:              d.ID,
		Name:            name,
		Email:           d.Email,
		Contact:         d.Contact,
		PhysicalAddress: d.UserAddress,
		Role:            entity.ParseRole(d.Role),
		WalletAddress:   wallet,
	}
}

func (c *Client) Register(ctx context.Context, input service.RegisterInput) error {
	payload := map[string]any{
		"name":          input.Name,
		"email":         input.Email,
		"contact":       input.Contact,
		"userAddress":   input.PhysicalAddress,
		"password":      input.Password,
		"walletAddress": input.WalletAddress.String(),
	}
	if input.Role != "" {
		payload["role"] = input.Role.String()
	}

	_, err := c.sendJSON(ctx, http.MethodPost, constants.EndpointUserRegister, payload)

	return err
}

func (c *Client) Login(ctx context.Context, email, password string, wallet entity.Identity) (*entity.UserProfile, error) {
	body, err := c.sendJSON(ctx, http.MethodPost, constants.EndpointUserLogin, map[string]any{
		"email":         email,
		"password":      password,
		"walletAddress": wallet.String(),
	})
	if err != nil {
		return nil, err
	}

	return decodeProfile(body)
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.sendJSON(ctx, http.MethodPost, constants.EndpointUserLogout, map[string]any{})

	return err
}

func (c *Client) Me(ctx context.Context) (*entity.UserProfile, error) {
	status, body, err := c.do(ctx, http.MethodGet, constants.EndpointUserMe, nil, nil, "")
	if status == http.StatusUnauthorized {
		return nil, domainerrors.ErrNotLoggedIn
	}
	if err != nil {
		return nil, userError(constants.EndpointUserMe, status, err)
	}

	return decodeProfile(body)
}

func (c *Client) All(ctx context.Context) ([]entity.UserProfile, error) {
	records, err := c.Query(ctx, constants.EndpointUserAll, nil)
	if err != nil {
		return nil, err
	}

	profiles := make([]entity.UserProfile, 0, len(records))
	for _, r := range records {
		var doc profileDoc
		if err := r.Decode(&doc); err != nil {
			return nil, domainerrors.NewBackendUnavailableError(constants.EndpointUserAll, http.StatusOK, err)
		}
		profiles = append(profiles, *doc.toEntity())
	}

	return profiles, nil
}

func (c *Client) ByWallet(ctx context.Context, wallet string) (*entity.UserProfile, error) {
	endpoint := fmt.Sprintf(constants.EndpointUserByWallet, url.PathEscape(wallet))

	status, body, err := c.do(ctx, http.MethodGet, endpoint, nil, nil, "")
	if err != nil {
		return nil, userError(endpoint, status, err)
	}

	return decodeProfile(body)
}

func (c *Client) sendJSON(ctx context.Context, method, endpoint string, payload map[string]any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	status, body, err := c.do(ctx, method, endpoint, nil, bytes.NewReader(b), "application/json")
	if err != nil {
		return nil, userError(endpoint, status, err)
	}
	if err := refused(body); err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return body, nil
}

func decodeProfile(body []byte) (*entity.UserProfile, error) {
	record, err := unwrapRecord(body)
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	var doc profileDoc
	if err := record.Decode(&doc); err != nil {
		return nil, err
	}

	return doc.toEntity(), nil
}

// userError maps account endpoint statuses onto the session taxonomy.
func userError(endpoint string, status int, err error) error {
	switch status {
	case http.StatusUnauthorized:
		return domainerrors.ErrInvalidCredentials.WithDetails(err.Error())
	case http.StatusNotFound:
		return domainerrors.ErrNotFound.WithDetails(endpoint)
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	default:
		return domainerrors.NewBackendUnavailableError(endpoint, status, err)
	}
}
