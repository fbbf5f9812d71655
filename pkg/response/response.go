package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse[T any] struct {
	Code      int         `json:"code"`
	Status    bool        `json:"status"`
	Message   string      `json:"message"`
	Data      T           `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorBody is the error payload of a failed response.
type ErrorBody struct {
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// Success writes a successful envelope.
func Success[T any](ctx *gin.Context, status int, data T, message string) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, APIResponse[T]{
		Code:      status,
		Status:    true,
		Message:   message,
		Data:      data,
		RequestID: ctx.GetString("request_id"),
		Timestamp: time.Now().UTC(),
	})
}

// Error writes a failed envelope and aborts the chain.
func Error(ctx *gin.Context, status int, message string, err interface{}) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.AbortWithStatusJSON(status, APIResponse[any]{
		Code:      status,
		Status:    false,
		Message:   message,
		Error:     err,
		RequestID: ctx.GetString("request_id"),
		Timestamp: time.Now().UTC(),
	})
}
