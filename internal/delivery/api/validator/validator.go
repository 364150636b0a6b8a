// Package validator adapts go-playground/validator to echo.
package validator

import (
	"net/http"
	"strings"

	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator implements echo.Validator.
type Validator struct {
	validate *validator.Validate
}

var _ echo.Validator = (*Validator)(nil)

// New creates a validator with the wallet and role tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("wallet", func(fl validator.FieldLevel) bool {
		_, err := entity.ParseIdentity(fl.Field().String())

		return err == nil
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return entity.ParseRole(fl.Field().String()).IsValid()
	})

	return &Validator{validate: v}
}

// Validate checks i and reports every failed field as one ValidationFailed error.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Field()+" failed "+fe.Tag())
	}

	return domainerrors.ErrValidationFailed.WithDetails(strings.Join(msgs, "; "))
}
