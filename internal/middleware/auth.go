package middleware

import (
	"errors"
	"net/http"
	"strings"

	"studiofinder/internal/pkg/jwt"
	"studiofinder/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// SessionIDKey is the gin context key holding the authenticated session id.
const SessionIDKey = "session_id"

// SessionAuth requires a session token whose sid claim matches the :id path
// parameter. The token comes from the Authorization header, or from the
// token query parameter when allowQuery is set (browsers cannot put headers
// on a websocket handshake).
func SessionAuth(tokens *jwt.Service, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, code, msg := bearerToken(c, allowQuery)
		if tokenStr == "" {
			response.Abort(c, http.StatusUnauthorized, code, msg)
			return
		}

		claims, err := tokens.ValidateToken(tokenStr)
		if err != nil {
			if errors.Is(err, jwt.ErrInvalidToken) {
				response.Abort(c, http.StatusUnauthorized, response.CodeInvalidToken, "Invalid or expired token")
				return
			}
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized")
			return
		}

		if id := c.Param("id"); id != "" && id != claims.SessionID {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Token does not belong to this session")
			return
		}

		c.Set(SessionIDKey, claims.SessionID)
		c.Next()
	}
}

func bearerToken(c *gin.Context, allowQuery bool) (token, code, msg string) {
	h := c.GetHeader("Authorization")
	if h == "" {
		if allowQuery {
			if q := strings.TrimSpace(c.Query("token")); q != "" {
				return q, "", ""
			}
		}
		return "", response.CodeUnauthorized, "Missing Authorization header"
	}

	if !strings.HasPrefix(h, "Bearer ") {
		return "", response.CodeUnauthorized, "Invalid Authorization header"
	}

	token = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	if token == "" {
		return "", response.CodeUnauthorized, "Empty token"
	}
	return token, "", ""
}
