// Package backend talks to the REST metadata store.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"medchain/config"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/service"
	"medchain/internal/errors"

	"go.uber.org/fx"
)

const maxErrorBody = 4 << 10

// Client is the metadata recorder and account directory of the backend.
// It keeps the session cookie in its jar.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

var (
	_ service.MetadataRecorder = (*Client)(nil)
	_ service.UserDirectory    = (*Client)(nil)
)

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "parse backend url %q", baseURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("backend url %q must be absolute", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		logger: logger,
	}, nil
}

// Params holds dependencies for the backend client, injected by Fx
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// New creates the backend client from configuration
func New(params Params) (*Client, error) {
	return NewClient(params.Config.Backend.BaseURL, params.Config.Backend.Timeout, params.Logger)
}

// Record performs one write. Multipart when an image is attached, JSON otherwise.
func (c *Client) Record(ctx context.Context, write entity.MetadataWrite) (entity.StoredRecord, error) {
	method := write.Method
	if method == "" {
		method = http.MethodPost
	}

	var (
		body        io.Reader
		contentType string
	)
	if write.Multipart() {
		buf, ct, err := encodeMultipart(write.Payload, write.Image)
		if err != nil {
			return nil, domainerrors.NewBackendUnavailableError(write.Endpoint, 0, err).WithTxHash(write.TxHash)
		}
		body, contentType = buf, ct
	} else {
		b, err := json.Marshal(write.Payload)
		if err != nil {
			return nil, domainerrors.NewBackendUnavailableError(write.Endpoint, 0, errors.WithStack(err)).WithTxHash(write.TxHash)
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	status, respBody, err := c.do(ctx, method, write.Endpoint, nil, body, contentType)
	if err != nil {
		return nil, domainerrors.NewBackendUnavailableError(write.Endpoint, status, err).WithTxHash(write.TxHash)
	}

	record, err := unwrapRecord(respBody)
	if err != nil {
		return nil, domainerrors.NewBackendUnavailableError(write.Endpoint, status, err).WithTxHash(write.TxHash)
	}

	c.logger.Debug("Metadata recorded",
		slog.String("endpoint", write.Endpoint),
		slog.String("tx_hash", write.TxHash),
	)

	return record, nil
}

// Query lists the records at endpoint in backend order.
func (c *Client) Query(ctx context.Context, endpoint string, params url.Values) ([]entity.StoredRecord, error) {
	status, body, err := c.do(ctx, http.MethodGet, endpoint, params, nil, "")
	if err != nil {
		return nil, domainerrors.NewBackendUnavailableError(endpoint, status, err)
	}

	records, err := unwrapList(body)
	if err != nil {
		return nil, domainerrors.NewBackendUnavailableError(endpoint, status, err)
	}

	return records, nil
}

// do sends the request and returns the body of a 2xx response.
// Non-2xx responses come back as an error together with their status.
func (c *Client) do(
	ctx context.Context,
	method, endpoint string,
	params url.Values,
	body io.Reader,
	contentType string,
) (int, []byte, error) {
	target := c.baseURL.JoinPath(endpoint)
	if len(params) > 0 {
		target.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return 0, nil, errors.WithStack(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, errors.WithStack(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := respBody
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}

		return resp.StatusCode, respBody, errors.Errorf("%s %s: %s", method, endpoint, strings.TrimSpace(string(snippet)))
	}

	return resp.StatusCode, respBody, nil
}

func encodeMultipart(payload map[string]any, image *entity.UploadedImage) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		v, err := formValue(payload[k])
		if err != nil {
			return nil, "", errors.Wrapf(err, "form field %s", k)
		}
		if err := w.WriteField(k, v); err != nil {
			return nil, "", errors.WithStack(err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, image.Filename))
	ct := image.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	header.Set("Content-Type", ct)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", errors.WithStack(err)
	}
	if _, err := part.Write(image.Data); err != nil {
		return nil, "", errors.WithStack(err)
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.WithStack(err)
	}

	return buf, w.FormDataContentType(), nil
}

func formValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case entity.Int64:
		return strconv.FormatInt(val.Int64(), 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", errors.WithStack(err)
		}

		return string(b), nil
	}
}
