package middleware

import (
	"log"
	"net/http"
	"strings"

	"hrdesk/internal/domain"
	jwtsvc "hrdesk/internal/pkg/jwt"
	"hrdesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// JWTAuth resolves the bearer token into the current actor. The actor is stored
// both on the gin context (user_id, role) and on the request context, where the
// services read it.
func JWTAuth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, code, msg := bearerToken(c)
		if code != "" {
			logAuthFailure(c, code)
			response.Abort(c, http.StatusUnauthorized, code, msg)
			return
		}

		claims, err := jwt.ValidateToken(tokenStr)
		if err != nil {
			logAuthFailure(c, "INVALID_TOKEN")
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		actor := domain.Actor{ID: claims.UserID, Role: domain.Role(claims.Role)}
		c.Set("user_id", actor.ID)
		c.Set("role", string(actor.Role))
		c.Request = c.Request.WithContext(domain.ContextWithActor(c.Request.Context(), actor))

		c.Next()
	}
}

// bearerToken extracts the token from the Authorization header. Websocket
// handshakes cannot carry headers from browsers, so they may pass ?token= instead.
func bearerToken(c *gin.Context) (token, code, msg string) {
	h := c.GetHeader("Authorization")
	if h == "" {
		if isWebsocketUpgrade(c) {
			if q := strings.TrimSpace(c.Query("token")); q != "" {
				return q, "", ""
			}
		}
		return "", "AUTH_HEADER_MISSING", "Missing Authorization header"
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'"
	}

	token = strings.TrimSpace(parts[1])
	if token == "" {
		return "", "INVALID_AUTH_FORMAT", "Empty token"
	}
	return token, "", ""
}

func isWebsocketUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func logAuthFailure(c *gin.Context, reason string) {
	log.Printf("auth_failure method=%s path=%s client_ip=%s request_id=%s reason=%s",
		c.Request.Method, c.Request.URL.Path, c.ClientIP(), requestID(c), reason)
}
