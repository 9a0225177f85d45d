package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CSD-2025/coursehub-service/internal/models"
	"github.com/CSD-2025/coursehub-service/internal/services"
	"github.com/CSD-2025/coursehub-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
	}
}

// Register creates a new user account
// @Summary Register user
// @Tags auth
// @Accept json
// @Produce json
// @Param user body services.RegisterRequest true "Registration data"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "User registered", "user_id", user.ID)
	c.JSON(http.StatusCreated, user)
}

// Login exchanges email and password for a session credential
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body services.LoginRequest true "Login credentials"
// @Success 200 {object} services.TokenResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SwitchRole re-issues the caller's credential with a different active role.
// The requested role must be among the roles frozen into the presented
// credential.
// @Summary Switch active role
// @Tags auth
// @Accept json
// @Produce json
// @Param role body models.SwitchRoleRequest true "Requested active role"
// @Success 200 {object} services.TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/switch-role [post]
func (h *AuthHandler) SwitchRole(c *gin.Context) {
	var req models.SwitchRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authorization header missing or malformed",
		})
		return
	}

	resp, err := h.authService.SwitchRole(c.Request.Context(), token, req.Role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Active role switched", "role", req.Role)
	c.JSON(http.StatusOK, resp)
}

// OAuthCallback completes the provider login flow
// @Summary OAuth callback
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "State"
// @Success 200 {object} services.TokenResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/oauth/callback [get]
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "missing authorization code",
		})
		return
	}

	resp, err := h.authService.LoginWithOAuth(c.Request.Context(), code, state)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the user behind the presented credential.
func (h *AuthHandler) Me(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":     actor.UserID,
		"roles":       actor.Roles,
		"active_role": actor.ActiveRole,
	})
}
