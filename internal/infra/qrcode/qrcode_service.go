package qrcode

import (
	"encoding/json"
	"strings"

	"medchain/config"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
	"go.uber.org/fx"
)

const (
	orderType   = "order"
	defaultSize = 256
)

type qrcodeService struct {
	size  int
	level qrcode.RecoveryLevel
}

// codeData is the JSON text encoded inside an order QR code
type codeData struct {
	Type string `json:"type"`
	service.OrderQRPayload
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	if size <= 0 {
		size = defaultSize
	}

	return &qrcodeService{
		size:  size,
		level: recoveryLevel(errorCorrectionLevel),
	}
}

func recoveryLevel(name string) qrcode.RecoveryLevel {
	switch strings.ToUpper(name) {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// GenerateOrderQR renders the order id and its ledger transactions as a PNG
func (s *qrcodeService) GenerateOrderQR(payload service.OrderQRPayload) ([]byte, error) {
	if payload.OrderID <= 0 {
		return nil, domainerrors.Validation("order id must be positive")
	}

	text, err := json.Marshal(codeData{Type: orderType, OrderQRPayload: payload})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal QR code data")
	}

	code, err := qrcode.New(string(text), s.level)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	png, err := code.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return png, nil
}

// ParseOrderQR decodes the text scanned from an order QR code
func (s *qrcodeService) ParseOrderQR(qrData string) (*service.OrderQRPayload, error) {
	var data codeData
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return nil, domainerrors.ErrInvalidQRCode.WithDetails("not JSON")
	}
	if data.Type != orderType {
		return nil, domainerrors.ErrInvalidQRCode.WithDetails("type " + data.Type)
	}
	if data.OrderID <= 0 {
		return nil, domainerrors.ErrInvalidQRCode.WithDetails("missing order id")
	}

	return &data.OrderQRPayload, nil
}

// Params holds dependencies for the QR code service, injected by Fx
type Params struct {
	fx.In

	Config *config.Config
}

// New builds the QR code service from configuration
func New(params Params) service.QRCodeService {
	cfg := params.Config.QRCode
	if cfg == nil {
		return NewQRCodeService(defaultSize, "M")
	}

	return NewQRCodeService(cfg.Size, cfg.ErrorCorrectionLevel)
}

// Module provides the QR code FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(New),
)
