package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/invoicedesk/internal/auth/domain"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Success bool         `json:"success"`
	Error   errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if fields := validationFields(err); fields != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  fields,
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: unauthorizedMessage(err),
		}
	case errors.Is(err, authdomain.ErrAdminExists),
		errors.Is(err, authdomain.ErrUserExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, ErrNotFound),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "invoice not found",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many attempts, try again later",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// validationFields returns the per-field errors for anything the caller can fix, or nil.
func validationFields(err error) []ValidationError {
	var vErrs *ValidationErrors
	if errors.As(err, &vErrs) && vErrs != nil {
		return vErrs.Errors
	}

	var invErr *invoicedomain.ValidationError
	if errors.As(err, &invErr) && invErr != nil {
		out := make([]ValidationError, 0, len(invErr.Fields))
		for _, f := range invErr.Fields {
			out = append(out, ValidationError{Field: f.Field, Code: f.Code, Message: f.Message})
		}
		return out
	}

	switch {
	case errors.Is(err, ErrInvalidRequest):
		return []ValidationError{{Field: "request", Code: "invalid_request", Message: "invalid request"}}
	case errors.Is(err, invoicedomain.ErrInvalidStatus):
		return []ValidationError{{Field: "status", Code: "invalid_status", Message: "status must be one of draft, sent, paid, overdue"}}
	case errors.Is(err, invoicedomain.ErrInvalidOwner):
		return []ValidationError{{Field: "owner", Code: "invalid_owner", Message: "owner identity is required"}}
	case errors.Is(err, authdomain.ErrMissingCredentials):
		return []ValidationError{{Field: "credentials", Code: "required", Message: "please provide email and password"}}
	case errors.Is(err, authdomain.ErrInvalidEmail):
		return []ValidationError{{Field: "email", Code: "invalid_email", Message: "invalid email address"}}
	case errors.Is(err, authdomain.ErrWeakPassword):
		return []ValidationError{{Field: "password", Code: "too_short", Message: "password must be at least 8 characters"}}
	}
	return nil
}

func unauthorizedMessage(err error) string {
	if errors.Is(err, authdomain.ErrInvalidCredentials) {
		return "incorrect email or password"
	}
	return "unauthorized"
}

func classifyErrorForLog(err error) string {
	_, payload := mapError(err)
	return payload.Type
}
