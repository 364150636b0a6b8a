// Package prediction queries the demand inference service.
package prediction

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"medchain/config"
	"medchain/internal/domain/entity"
	"medchain/internal/domain/service"
	"medchain/internal/errors"

	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

// Client issues one GET per name and reads {"result": number}.
type Client struct {
	equipmentURL   string
	rawMaterialURL string
	httpClient     *http.Client
	limiter        *rate.Limiter
	logger         *slog.Logger
}

var _ service.PredictionClient = (*Client)(nil)

// NewClient creates a prediction client. rps <= 0 means unlimited.
func NewClient(equipmentURL, rawMaterialURL string, timeout time.Duration, rps float64, logger *slog.Logger) *Client {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}

	return &Client{
		equipmentURL:   equipmentURL,
		rawMaterialURL: rawMaterialURL,
		httpClient:     &http.Client{Timeout: timeout},
		limiter:        limiter,
		logger:         logger,
	}
}

// Params holds dependencies for the prediction client, injected by Fx
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// New creates the prediction client from configuration
func New(params Params) service.PredictionClient {
	cfg := params.Config.Prediction

	return NewClient(cfg.EquipmentURL, cfg.RawMaterialURL, cfg.Timeout, cfg.RequestsPerSecond, params.Logger)
}

func (c *Client) EquipmentDemand(ctx context.Context, hospitalEmail, equipmentName string, date entity.PredictionDate) (float64, error) {
	q := url.Values{}
	q.Set("email", hospitalEmail)
	q.Set("equipment_name", equipmentName)
	q.Set("Day", strconv.Itoa(date.Day))
	q.Set("Month", strconv.Itoa(date.Month))
	q.Set("Year", strconv.Itoa(date.Year))

	return c.predict(ctx, c.equipmentURL, q)
}

func (c *Client) RawMaterialDemand(
	ctx context.Context,
	supplierEmail, manufacturerEmail, materialName string,
	date entity.PredictionDate,
) (float64, error) {
	q := url.Values{}
	q.Set("supplier_email", supplierEmail)
	q.Set("manufacturer_email", manufacturerEmail)
	q.Set("raw_material_name", materialName)
	q.Set("day", strconv.Itoa(date.Day))
	q.Set("month", strconv.Itoa(date.Month))
	q.Set("year", strconv.Itoa(date.Year))

	return c.predict(ctx, c.rawMaterialURL, q)
}

func (c *Client) predict(ctx context.Context, endpoint string, q url.Values) (float64, error) {
	if endpoint == "" {
		return 0, errors.New("prediction endpoint not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, errors.WithStack(err)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return 0, errors.Wrapf(err, "parse prediction url %q", endpoint)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)

		return 0, errors.Errorf("prediction service returned %d", resp.StatusCode)
	}

	var out struct {
		Result *float64 `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, errors.Wrap(err, "decode prediction")
	}
	if out.Result == nil {
		return 0, errors.New("prediction response has no result")
	}

	return *out.Result, nil
}
