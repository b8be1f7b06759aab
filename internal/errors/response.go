package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"` // localized message shown to the user
	Code  string `json:"code"`  // stable code for client-side mapping
}

func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error: message,
		Code:  errorCode,
	})
}

// Respond writes err using its kind for the status. context names the failed
// operation and only matters for errors that are not AppErrors.
func Respond(c *gin.Context, err error, context string) {
	info := ParseError(err, context)
	RespondWithError(c, info.Kind.Status(), info.Code, info.Message)
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "يجب تسجيل الدخول أولاً"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "ليس لديك صلاحية للوصول"
	}
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func TooManyRequests(c *gin.Context) {
	RespondWithError(c, http.StatusTooManyRequests, RateLimitExceeded, "طلبات كثيرة جداً، يرجى الانتظار قليلاً")
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "حدث خطأ في الخادم، يرجى المحاولة لاحقاً"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// ValidationError carries per-field messages for rejected request bodies.
type ValidationError struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ValidationError{
		Error:  "البيانات المدخلة غير صالحة",
		Code:   ValidationInvalidInput,
		Fields: fields,
	})
}
