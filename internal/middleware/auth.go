package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chasmapasal/chasmapasal-api/internal/auth"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

func AuthMiddleware(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "Not authorized, no token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "Not authorized, malformed header")
			c.Abort()
			return
		}

		id, err := tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			httperr.Unauthorized(c, "invalid_token", "Not authorized, token failed")
			c.Abort()
			return
		}

		c.Set(ContextUserID, id.UserID)
		c.Set(ContextUserRole, id.Role)

		c.Next()
	}
}

// RequireRole lets through callers holding one of roles. It must run after
// AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		httperr.Forbidden(c, "forbidden", "Access denied")
		c.Abort()
	}
}

// RequireSelfOrAdmin compares the path parameter param with the caller.
func RequireSelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := Identity(c)
		if id.IsAdmin() {
			c.Next()
			return
		}

		target, err := strconv.ParseUint(c.Param(param), 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_"+param, "Invalid "+param)
			c.Abort()
			return
		}
		if uint(target) != id.UserID {
			httperr.Forbidden(c, "forbidden", "Authenticated Access Denied")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Identity returns the caller set by AuthMiddleware; zero when absent.
func Identity(c *gin.Context) auth.Identity {
	uid, _ := c.Get(ContextUserID)
	id, _ := uid.(uint)
	return auth.Identity{UserID: id, Role: c.GetString(ContextUserRole)}
}
