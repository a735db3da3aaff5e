package salesrep

import (
	"bytes"
	"io"
	"net/http"

	"salesrep_sync/internal/signer"
	"salesrep_sync/platform/httpkit"
	"salesrep_sync/platform/logger"

	"github.com/gin-gonic/gin"
)

const maxNotificationBytes = 64 << 10

// SignatureAuthMiddleware verifies the HMAC header over the raw request body
// and restores the body for the handler.
func SignatureAuthMiddleware(sig *signer.Signer, header string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(header)
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing signature"})
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxNotificationBytes))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if err := sig.VerifyBody(c.Request.Context(), body, provided); err != nil {
			if log != nil {
				log.WithContext(c.Request.Context()).Warn("signature rejected", "path", c.Request.URL.Path, "error", err)
			}
			httpkit.HandleError(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}
