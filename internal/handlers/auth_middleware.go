package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/CSD-2025/coursehub-service/internal/auth"
	"github.com/CSD-2025/coursehub-service/internal/models"
	"github.com/CSD-2025/coursehub-service/internal/services"
)

const contextActorKey = "actor"

// SessionAuthMiddleware authenticates requests against the service's own
// session credentials. Each credential carries the role set frozen at
// issuance plus the single active role that gates every action.
type SessionAuthMiddleware struct {
	authService services.AuthService
}

func NewSessionAuthMiddleware(authService services.AuthService) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{authService: authService}
}

func (m *SessionAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: "authorization header missing or malformed",
			})
			c.Abort()
			return
		}

		credential, err := m.authService.ParseCredential(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: "invalid or expired credential",
			})
			c.Abort()
			return
		}

		c.Set(contextActorKey, credential)
		c.Set("user_id", credential.UserID)
		c.Set("active_role", credential.ActiveRole)
		c.Next()
	}
}

// RequireActiveRole rejects requests whose credential is not currently
// acting as one of the given roles. Holding a role without having switched
// to it is not enough.
func (m *SessionAuthMiddleware) RequireActiveRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(contextActorKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: "user not authenticated",
			})
			c.Abort()
			return
		}
		credential := value.(*auth.Credential)
		for _, role := range roles {
			if credential.ActiveRole == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "active role not permitted for this endpoint",
		})
		c.Abort()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
