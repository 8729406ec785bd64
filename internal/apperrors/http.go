package apperrors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the standard response envelope for both services.
type APIResponse struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError is the error half of the envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeInsufficient = "INSUFFICIENT_BALANCE"
	CodeConflict     = "CONCURRENCY_CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// Success writes a 2xx response carrying data.
func Success(c *gin.Context, status int, data any) {
	c.JSON(status, APIResponse{Success: true, Data: data, RequestID: requestID(c)})
}

func respondError(c *gin.Context, status int, code, message, detail string) {
	c.JSON(status, APIResponse{
		Success:   false,
		Error:     &APIError{Code: code, Message: message, Detail: detail},
		RequestID: requestID(c),
	})
}

func requestID(c *gin.Context) string {
	if v, ok := c.Get("request_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// HandleDomainError maps the taxonomy in this package onto the HTTP
// status table the transport surface is required to honor. It is the
// single place that performs this translation — handlers never inspect
// error kinds themselves.
func HandleDomainError(c *gin.Context, err error) {
	switch {
	case IsValidationError(err):
		respondError(c, http.StatusUnprocessableEntity, CodeValidation, "request validation failed", err.Error())
	case IsWalletNotFound(err):
		respondError(c, http.StatusNotFound, CodeNotFound, "wallet not found", err.Error())
	case IsInsufficientBalance(err):
		respondError(c, http.StatusBadRequest, CodeInsufficient, "insufficient balance for transfer", err.Error())
	case IsOptimisticLock(err):
		respondError(c, http.StatusConflict, CodeConflict, "wallet was modified concurrently, please retry", err.Error())
	case IsIntegrity(err):
		// The wrapped storage error may carry constraint or column
		// names; the client only learns that the write was rejected.
		respondError(c, http.StatusInternalServerError, CodeInternal, "storage integrity violation", "")
	default:
		respondError(c, http.StatusInternalServerError, CodeInternal, "an unexpected error occurred", "")
	}
}
