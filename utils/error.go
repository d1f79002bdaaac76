package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error kinds. Each maps to one HTTP status.
const (
	KindValidation     = "validation"
	KindNotFound       = "not_found"
	KindConflict       = "conflict"
	KindForbidden      = "forbidden"
	KindPayment        = "payment"
	KindReconciliation = "reconciliation"
	KindInternal       = "internal"
)

var kindStatus = map[string]int{
	KindValidation:     http.StatusBadRequest,
	KindNotFound:       http.StatusNotFound,
	KindConflict:       http.StatusConflict,
	KindForbidden:      http.StatusForbidden,
	KindPayment:        http.StatusPaymentRequired,
	KindReconciliation: http.StatusInternalServerError,
	KindInternal:       http.StatusInternalServerError,
}

// AppError is a typed failure carrying a machine readable code.
type AppError struct {
	Kind    string
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Status returns the HTTP status for the error kind.
func (e *AppError) Status() int {
	if s, ok := kindStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Is matches another AppError by code so callers can use errors.Is with a template.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func NewError(kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *AppError { return NewError(KindValidation, code, message) }
func NotFound(code, message string) *AppError   { return NewError(KindNotFound, code, message) }
func Conflict(code, message string) *AppError   { return NewError(KindConflict, code, message) }
func Forbidden(code, message string) *AppError  { return NewError(KindForbidden, code, message) }
func Payment(code, message string) *AppError    { return NewError(KindPayment, code, message) }

// Internal wraps an unexpected failure.
func Internal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Code: "INTERNAL", Message: message, Err: err}
}

// Reconciliation flags money movement whose outcome could not be confirmed.
func Reconciliation(message string, err error) *AppError {
	return &AppError{Kind: KindReconciliation, Code: "RECONCILIATION_NEEDED", Message: message, Err: err}
}

// CodeOf returns the AppError code in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// RespondError writes err as JSON, using its AppError kind for the status.
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = Internal("unexpected error", err)
	}

	logger := GetLogger()
	if appErr.Status() >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("code", appErr.Code), zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.String("code", appErr.Code), zap.String("message", appErr.Message))
	}

	resp := ErrorResponse{Code: appErr.Code, Message: appErr.Message}
	if appErr.Kind == KindInternal {
		resp.Message = "Internal Server Error"
	}
	c.AbortWithStatusJSON(appErr.Status(), resp)
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err))

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	GetLogger().Warn(message, zap.String("details", details))
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message, Details: details})
}
