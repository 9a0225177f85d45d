package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CSD-2025/coursehub-service/internal/models"
	"github.com/CSD-2025/coursehub-service/internal/services"
	"github.com/CSD-2025/coursehub-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// ListUsers lists users with optional filtering
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Search query (name or email)"
// @Param role query string false "Filter by role"
// @Success 200 {object} services.UserListResponse
// @Failure 403 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	opts := listOptionsFromQuery(c)
	if raw := c.Query("role"); raw != "" {
		role := models.Role(raw)
		if !role.Valid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "bad_request",
				Message: "invalid role filter",
			})
			return
		}
		opts.Role = &role
	}

	resp, err := h.userService.List(c.Request.Context(), opts, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetUser retrieves a user by ID
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile updates a user's own profile fields
// @Summary Update profile
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param profile body services.ProfileUpdateRequest true "Profile updates"
// @Success 200 {object} models.User
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	var req services.ProfileUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

type updateRolesRequest struct {
	Roles []models.Role `json:"roles" binding:"required"`
}

// UpdateRoles replaces a user's stored role set. Super admin only; already
// issued credentials keep their frozen roles until they expire.
// @Summary Update user roles
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param roles body updateRolesRequest true "New role set"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /users/{id}/roles [put]
func (h *UserHandler) UpdateRoles(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	var req updateRolesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateRoles(c.Request.Context(), c.Param("id"), req.Roles, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "User roles updated", "user_id", user.ID, "roles", req.Roles)
	c.JSON(http.StatusOK, user)
}
