package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
)

// BodyLimit caps the request body at maxBytes. Requests that declare a larger
// Content-Length are aborted with ErrReceiptTooLarge on the context for
// ErrorHandler to render; reads past the limit otherwise fail with
// *http.MaxBytesError, which handlers map to RECEIPT_TOO_LARGE.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			_ = c.Error(apperrors.ErrReceiptTooLarge)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
