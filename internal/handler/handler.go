package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	customError "github.com/lumapay/paylink/pkg/errors"
	"github.com/lumapay/paylink/pkg/response"
)

// newValidator builds a validator that understands decimal.Decimal fields,
// so money DTOs can use the ordinary numeric comparison tags.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// decodeAndValidate parses the JSON body into dst and runs struct validation.
// A false return means the response has already been written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}
	if err := v.Struct(dst); err != nil {
		var messages []string
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				messages = append(messages, "Invalid value for field "+fe.Field())
			}
		} else {
			messages = append(messages, err.Error())
		}
		response.ValidationFailed(w, messages)
		return false
	}
	return true
}

// writeServiceError maps service-level failures onto HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	if ve, ok := customError.AsValidation(err); ok {
		response.ValidationFailed(w, ve.Messages)
		return
	}

	var be *customError.BusinessError
	if errors.As(err, &be) {
		switch be.Code {
		case customError.ErrCodeClientNotFound, customError.ErrCodeLinkNotFound, customError.ErrCodePlanNotFound:
			response.NotFound(w, be.Message)
		case customError.ErrCodeInvalidCredentials, customError.ErrCodeUnauthorized:
			response.Unauthorized(w, be.Message)
		case customError.ErrCodeClientBlocked, customError.ErrCodeClientNotApproved:
			response.Forbidden(w, be.Message)
		case customError.ErrCodeDuplicateRecord:
			response.Conflict(w, be.Message, be.Err)
		case customError.ErrCodeGatewayTimeout:
			response.GatewayTimeout(w, be.Message, be.Err)
		case customError.ErrCodeGatewayError, customError.ErrCodeGatewayDeclined:
			response.BadGateway(w, be.Message, be.Err)
		default:
			response.InternalServerError(w, be.Message, be.Err)
		}
		return
	}

	response.InternalServerError(w, "Unexpected error", err)
}
