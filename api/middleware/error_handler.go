// api/middleware/error_handler.go
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"querygate/internal/pagination"
	"querygate/internal/schema"
	"querygate/internal/storage"
)

// ErrorHandler creates a Gin middleware for centralized error handling.
// Handlers attach causes with c.Error; this maps the last one to a status
// code and a machine-readable error code. Raw causes are logged, never
// sent to the caller.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		customLog.Printf("[ErrorHandler] Detected error: %v | Type: %T", err, err)

		var statusCode int
		var errorCode, userMessage string

		switch {
		case errors.Is(err, pagination.ErrInvalidParameter),
			errors.Is(err, pagination.ErrInvalidToken):
			statusCode = http.StatusBadRequest
			errorCode = "InvalidRequest"
			userMessage = err.Error()
		case errors.Is(err, schema.ErrSchemaMismatch):
			statusCode = http.StatusInternalServerError
			errorCode = "Server.Error"
			userMessage = "Query results do not match the declared schema."
		case errors.Is(err, storage.ErrDataSource):
			statusCode = http.StatusInternalServerError
			errorCode = "Server.Error"
			userMessage = "An error occurred while executing the query."
		case errors.Is(err, context.Canceled):
			// Client closed request; nothing useful left to send.
			statusCode = 499
			errorCode = "Client.Cancelled"
			userMessage = "Request cancelled."
		default:
			if validationErrs, ok := err.(validator.ValidationErrors); ok {
				statusCode = http.StatusBadRequest
				errorCode = "InvalidRequest"
				userMessage = "Validation failed. Please check your input."
				for _, fe := range validationErrs {
					customLog.Printf("Validation Error: Field %s failed on %s", fe.Field(), fe.Tag())
				}
				break
			}
			statusCode = http.StatusInternalServerError
			errorCode = "Server.Error"
			userMessage = "An unexpected internal server error occurred."
			customLog.Printf("Unhandled error type: %T, Error: %v", err, err)
		}

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(statusCode, gin.H{"error": errorCode, "message": userMessage})
		} else {
			// Streaming already started; the partial body is the caller's
			// signal. Logged above, connection will be closed by the server.
			customLog.Printf("[ErrorHandler] Response already written before handling error.")
		}
	}
}
