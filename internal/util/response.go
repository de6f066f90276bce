package util

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// 通用返回结构里的 data 使用 map
type Response map[string]interface{}

// Business error codes, grouped by the HTTP status they ride on.
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeForbidden    = 40301
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeServerErr    = 50001
	CodeUnavailable  = 50301
)

// APIError is the single error currency of the domain layer. Handlers
// and services return it; WriteError is the only place that maps it
// onto the transport.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrValidation is a 400 with a field-specific message (safe to disclose).
func ErrValidation(msg string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: CodeInvalidParam, Message: msg}
}

// ErrAuth is the uniform 401. One message for every trigger (missing,
// expired or revoked token, inactive account) so callers cannot probe
// which condition fired.
func ErrAuth() *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: CodeAuth, Message: "unauthorized"}
}

// ErrAuthMsg is a 401 with an explicit message, for the external
// gateway's key failures.
func ErrAuthMsg(msg string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: CodeAuth, Message: msg}
}

// ErrForbidden is the generic 403.
func ErrForbidden() *APIError {
	return &APIError{Status: http.StatusForbidden, Code: CodeForbidden, Message: "forbidden"}
}

// ErrForbiddenMsg is a 403 with an explicit message.
func ErrForbiddenMsg(msg string) *APIError {
	return &APIError{Status: http.StatusForbidden, Code: CodeForbidden, Message: msg}
}

func ErrNotFound(msg string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

func ErrConflict(msg string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: CodeConflict, Message: msg}
}

// ErrUnavailable signals "temporarily not servable", distinct from a
// hard deny.
func ErrUnavailable(msg string) *APIError {
	return &APIError{Status: http.StatusServiceUnavailable, Code: CodeUnavailable, Message: msg}
}

// ErrInternal logs the full detail server-side and returns a generic
// 500; the cause never reaches the caller.
func ErrInternal(err error) *APIError {
	log.Printf("internal error: %v", err)
	return &APIError{Status: http.StatusInternalServerError, Code: CodeServerErr, Message: "internal server error"}
}

// Success 统一成功返回
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error 统一错误返回
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// WriteError maps an error onto the envelope. Unknown error types are
// treated as internal.
func WriteError(c *gin.Context, err error) {
	if apiErr, ok := err.(*APIError); ok {
		Error(c, apiErr.Status, apiErr.Code, apiErr.Message)
		return
	}
	apiErr := ErrInternal(err)
	Error(c, apiErr.Status, apiErr.Code, apiErr.Message)
}
