package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"

	customError "github.com/segyhp/loandesk/pkg/errors"
	"github.com/segyhp/loandesk/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// NewValidator returns a validator that understands decimal amounts. Decimals are
// validated through their string form with the decimal_gt and decimal_gte tags.
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("decimal_gt", decimalRule(func(d, limit decimal.Decimal) bool { return d.GreaterThan(limit) }))
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("decimal_gte", decimalRule(func(d, limit decimal.Decimal) bool { return d.GreaterThanOrEqual(limit) }))

	return v
}

func decimalRule(cmp func(d, limit decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		limit, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return cmp(d, limit)
	}
}

// decodeAndValidate reads a JSON body into dst and runs the struct validations.
// It answers the request itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}

	if err := v.Struct(dst); err != nil {
		response.BadRequest(w, "Validation failed", validationError(err))
		return false
	}
	return true
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Errorf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("%s failed %s", fe.Field(), fe.Tag())
}

// fail answers with the error's mapped status, logging server-side failures
func fail(w http.ResponseWriter, logger *zap.Logger, r *http.Request, err error) {
	if customError.HTTPStatus(err) >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	response.Fail(w, err)
}
