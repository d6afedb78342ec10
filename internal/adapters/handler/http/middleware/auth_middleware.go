package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/platform/logger"
)

// ContextClientKey holds the subject of the service token that admitted the
// request: a chat integration such as a Telegram bridge, never an end user.
const ContextClientKey = "clientID"

// TokenValidator resolves a bearer token to the client it was issued for.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// AuthMiddleware rejects any request without a valid "Bearer <token>"
// Authorization header.
func AuthMiddleware(tokens TokenValidator, log *zap.Logger) gin.HandlerFunc {
	log = logger.OrNop(log).Named("auth")

	reject := func(c *gin.Context, reason, msg string) {
		log.Debug("request rejected", zap.String("reason", reason), zap.String("client_ip", c.ClientIP()))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			reject(c, "missing_header", "authorization header required")
			return
		}

		scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" || strings.ContainsAny(token, " \t") {
			reject(c, "malformed_header", "invalid authorization header format")
			return
		}

		clientID, err := tokens.ValidateToken(token)
		if err != nil {
			reject(c, "invalid_token", "invalid or expired token")
			return
		}

		c.Set(ContextClientKey, clientID)
		c.Next()
	}
}

// GetClientID returns the authenticated client, if any.
func GetClientID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextClientKey)
	return id, id != ""
}
