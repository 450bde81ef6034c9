package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/linkbio/pkg/helpers"
	"github.com/oksasatya/linkbio/pkg/response"
)

const CtxUserIDKey = "userID"

// TokenParser verifies a bearer token and returns its claims.
type TokenParser interface {
	ParseAccessToken(token string) (*helpers.Claims, error)
}

// SessionChecker reports whether a user still holds a live session.
type SessionChecker interface {
	Active(ctx context.Context, userID string) (bool, error)
}

// Auth validates the bearer token and, when sessions is non-nil, ensures an
// active session exists for its user. It sets userID in the Gin context on success.
func Auth(tokens TokenParser, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", err)
			return
		}

		if sessions != nil {
			ok, err := sessions.Active(c.Request.Context(), claims.UserID)
			if err != nil {
				response.Abort(c, http.StatusServiceUnavailable, "session lookup failed", err)
				return
			}
			if !ok {
				response.Abort(c, http.StatusUnauthorized, "session not found", nil)
				return
			}
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
