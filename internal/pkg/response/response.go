// Package response writes the {"success", "data"|"error"} JSON envelope
// shared by every endpoint.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeInvalidID       = "INVALID_ID"
	CodeValidation      = "VALIDATION_ERROR"
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeInvalidToken    = "INVALID_TOKEN"
	CodeNotFound        = "NOT_FOUND"
	CodeFetchFailed     = "FETCH_FAILED"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, errorBody(code, message, nil))
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, errorBody(code, message, details))
}

// Abort writes the error envelope and stops the handler chain.
func Abort(c *gin.Context, statusCode int, code string, message string) {
	c.AbortWithStatusJSON(statusCode, errorBody(code, message, nil))
}

// ValidationFailed reports per-field validation failures with 400.
func ValidationFailed(c *gin.Context, fields map[string]string) {
	ErrorWithDetails(c, http.StatusBadRequest, CodeValidation, "Invalid request", fields)
}

func errorBody(code, message string, details any) gin.H {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	return gin.H{
		"success": false,
		"error":   body,
	}
}
