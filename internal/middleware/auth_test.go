package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studiofinder/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T, svc *jwt.Service, allowQuery bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/sessions/:id", SessionAuth(svc, allowQuery), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(SessionIDKey))
	})
	return router
}

func serve(router http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestSessionAuth_ValidToken(t *testing.T) {
	svc := jwt.New("test-secret-123", time.Hour)
	token, err := svc.GenerateToken("abc")
	require.NoError(t, err)

	w := serve(newAuthRouter(t, svc, false), "/sessions/abc", "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", w.Body.String())
}

func TestSessionAuth_TokenForAnotherSession(t *testing.T) {
	svc := jwt.New("secret", time.Hour)
	token, err := svc.GenerateToken("abc")
	require.NoError(t, err)

	w := serve(newAuthRouter(t, svc, false), "/sessions/xyz", "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestSessionAuth_InvalidToken(t *testing.T) {
	w := serve(newAuthRouter(t, jwt.New("secret", time.Hour), false), "/sessions/abc", "Bearer invalid-jwt-here")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestSessionAuth_HeaderProblems(t *testing.T) {
	router := newAuthRouter(t, jwt.New("secret", time.Hour), false)

	tests := map[string]string{
		"":               "Missing Authorization header",
		"Basic dGVzdA==": "Invalid Authorization header",
		"Bearer   ":      "Empty token",
	}
	for header, msg := range tests {
		w := serve(router, "/sessions/abc", header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Contains(t, w.Body.String(), msg, header)
	}
}

func TestSessionAuth_QueryToken(t *testing.T) {
	svc := jwt.New("secret", time.Hour)
	token, err := svc.GenerateToken("abc")
	require.NoError(t, err)

	w := serve(newAuthRouter(t, svc, true), "/sessions/abc?token="+token, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(newAuthRouter(t, svc, false), "/sessions/abc?token="+token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "query tokens only where allowed")
}
