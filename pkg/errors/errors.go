package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	ErrClientNotFound     = errors.New("client not found")
	ErrClientBlocked      = errors.New("client is blocked")
	ErrClientNotApproved  = errors.New("client is pending approval")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLinkNotFound       = errors.New("payment link not found")
	ErrPlanNotFound       = errors.New("no active installment plan for the requested count")
	ErrInvalidNetAmount   = errors.New("net amount must be greater than zero")
	ErrConfigMissing      = errors.New("fee configuration not found")
	ErrDeductionTooHigh   = errors.New("total deduction percent must stay below 100")
	ErrGatewayDeclined    = errors.New("gateway declined the order")
	ErrGatewayTimeout     = errors.New("gateway request timed out")
	ErrGatewayUnavailable = errors.New("gateway request failed")
	ErrDuplicateRecord    = errors.New("duplicate record")
	ErrSessionNotFound    = errors.New("session not found or expired")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError carries the user-facing messages collected while validating
// a request. It never accompanies a partial state change.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// NewValidationError creates a validation error from one or more messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// AsValidation extracts a ValidationError when err wraps one
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// Error codes
const (
	ErrCodeClientNotFound     = "CLIENT_NOT_FOUND"
	ErrCodeClientBlocked      = "CLIENT_BLOCKED"
	ErrCodeClientNotApproved  = "CLIENT_NOT_APPROVED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeLinkNotFound       = "LINK_NOT_FOUND"
	ErrCodePlanNotFound       = "PLAN_NOT_FOUND"
	ErrCodeInvalidNetAmount   = "INVALID_NET_AMOUNT"
	ErrCodeConfigInvalid      = "CONFIG_INVALID"
	ErrCodeGatewayDeclined    = "GATEWAY_DECLINED"
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"
	ErrCodeGatewayError       = "GATEWAY_ERROR"
	ErrCodeDuplicateRecord    = "DUPLICATE_RECORD"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeCacheError         = "CACHE_ERROR"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
)

// Wrap common errors with business context

func WrapClientNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeClientNotFound,
		fmt.Sprintf("Client %s not found", id),
		ErrClientNotFound,
	)
}

func WrapLinkNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeLinkNotFound,
		fmt.Sprintf("Payment link %s not found", id),
		ErrLinkNotFound,
	)
}

func WrapPlanNotFound(installments int) *BusinessError {
	return NewBusinessError(
		ErrCodePlanNotFound,
		fmt.Sprintf("No active installment plan for %d installments", installments),
		ErrPlanNotFound,
	)
}

func WrapConfigInvalid(detail string) *BusinessError {
	return NewBusinessError(
		ErrCodeConfigInvalid,
		detail,
		ErrDeductionTooHigh,
	)
}

func WrapGatewayDeclined(code, message string) *BusinessError {
	return NewBusinessError(
		ErrCodeGatewayDeclined,
		fmt.Sprintf("Gateway declined order: %s %s", code, message),
		ErrGatewayDeclined,
	)
}

func WrapGatewayTimeout(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeGatewayTimeout,
		"Gateway request timed out, the operation may be retried",
		errors.Join(ErrGatewayTimeout, err),
	)
}

func WrapGatewayError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeGatewayError,
		"Gateway request failed",
		errors.Join(ErrGatewayUnavailable, err),
	)
}

func WrapDuplicateRecord(detail string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateRecord,
		detail,
		ErrDuplicateRecord,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

func WrapUnauthorized() *BusinessError {
	return NewBusinessError(
		ErrCodeUnauthorized,
		"Authentication required",
		ErrSessionNotFound,
	)
}
