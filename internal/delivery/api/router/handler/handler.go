// Package handler contains the HTTP handlers of the API.
package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"medchain/internal/delivery/api/response"
	deliverycontext "medchain/internal/delivery/context"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/errors"

	"github.com/labstack/echo/v4"
)

// maxImageBytes bounds a single uploaded image.
const maxImageBytes = 8 << 20

// HealthCheck reports liveness.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}

// session returns the snapshot taken by the session middleware.
func session(c echo.Context) entity.Session {
	s, _ := deliverycontext.GetSession(c)

	return s
}

// bindAndValidate binds the request into v and runs the struct validator.
func bindAndValidate(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("malformed request body")
	}

	return c.Validate(v)
}

// formImage reads an optional multipart image. A missing field yields nil.
func formImage(c echo.Context, field string) (*entity.UploadedImage, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, domainerrors.Validation("unreadable %s upload", field)
	}

	return readUpload(fh)
}

func readUpload(fh *multipart.FileHeader) (*entity.UploadedImage, error) {
	if fh.Size > maxImageBytes {
		return nil, domainerrors.Validation("image exceeds %d bytes", maxImageBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open upload")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "read upload")
	}

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &entity.UploadedImage{
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
