package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/services"
)

type staticValidator map[string]string

func (v staticValidator) ValidateToken(token string) (string, error) {
	if client, ok := v[token]; ok {
		return client, nil
	}
	return "", errors.New("unknown token")
}

func protectedRouter(tokens TokenValidator, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(AuthMiddleware(tokens, log))
	router.GET("/protected", func(c *gin.Context) {
		clientID, ok := GetClientID(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no client")
			return
		}
		c.String(http.StatusOK, clientID)
	})
	return router
}

func call(router http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := protectedRouter(staticValidator{"good": "telegram-bridge"}, nil)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"Success: Bearer token", "Bearer good", http.StatusOK, "telegram-bridge"},
		{"Success: Scheme is case insensitive", "bearer good", http.StatusOK, "telegram-bridge"},
		{"Fail: Missing header", "", http.StatusUnauthorized, "authorization header required"},
		{"Fail: Scheme only", "Bearer", http.StatusUnauthorized, "invalid authorization header format"},
		{"Fail: Wrong scheme", "Token good", http.StatusUnauthorized, "invalid authorization header format"},
		{"Fail: No separator", "Bearergood", http.StatusUnauthorized, "invalid authorization header format"},
		{"Fail: Extra fields", "Bearer good extra", http.StatusUnauthorized, "invalid authorization header format"},
		{"Security: Unknown token", "Bearer forged", http.StatusUnauthorized, "invalid or expired token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := call(router, tc.header)
			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantBody)
		})
	}
}

func TestAuthMiddleware_TokenService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "middleware-secret-0123"

	t.Run("Success: Token issued for the bridge", func(t *testing.T) {
		tokens := services.NewTokenService(secret, "kanso", time.Hour)
		token, err := tokens.GenerateToken("discord-bridge")
		require.NoError(t, err)

		w := call(protectedRouter(tokens, nil), "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "discord-bridge", w.Body.String())
	})

	t.Run("Security: Token signed with another secret", func(t *testing.T) {
		forged, err := services.NewTokenService("attacker-secret-0123", "kanso", time.Hour).GenerateToken("discord-bridge")
		require.NoError(t, err)

		w := call(protectedRouter(services.NewTokenService(secret, "kanso", time.Hour), nil), "Bearer "+forged)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Fail: Expired token", func(t *testing.T) {
		tokens := services.NewTokenService(secret, "kanso", -time.Minute)
		token, err := tokens.GenerateToken("discord-bridge")
		require.NoError(t, err)

		w := call(protectedRouter(tokens, nil), "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Edge Case: Rejections are logged with a reason", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		router := protectedRouter(staticValidator{}, zap.New(core))

		call(router, "")
		call(router, "Bearer nope")

		entries := logs.FilterMessage("request rejected").All()
		require.Len(t, entries, 2)
		assert.Equal(t, "missing_header", entries[0].ContextMap()["reason"])
		assert.Equal(t, "invalid_token", entries[1].ContextMap()["reason"])
	})
}
