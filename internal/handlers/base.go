package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CSD-2025/coursehub-service/internal/auth"
	"github.com/CSD-2025/coursehub-service/internal/repositories"
	"github.com/CSD-2025/coursehub-service/internal/services"
	"github.com/CSD-2025/coursehub-service/internal/utils"
)

// ===== SHARED HANDLER PLUMBING =====

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the request-scoped logging helpers every handler embeds.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (b BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetContextLogger(c, b.logger).Info(msg, args...)
}

func (b BaseHandler) LogError(c *gin.Context, msg string, err error, args ...any) {
	utils.GetContextLogger(c, b.logger).Error(msg, append(args, "error", err)...)
}

// currentActor returns the credential the auth middleware stored on the
// context. Routes behind the middleware always have one.
func (b BaseHandler) currentActor(c *gin.Context) *auth.Credential {
	value, exists := c.Get(contextActorKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "user not authenticated",
		})
		c.Abort()
		return nil
	}
	actor, ok := value.(*auth.Credential)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "user not authenticated",
		})
		c.Abort()
		return nil
	}
	return actor
}

func (b BaseHandler) bindJSON(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

// handleServiceError maps service-layer errors to HTTP responses. Every
// handler funnels its service failures through here so the error taxonomy
// stays in one place.
func (b BaseHandler) handleServiceError(c *gin.Context, err error) {
	var permErr *services.PermissionError
	var validationErrs services.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "Request validation failed",
			Details: validationErrs.Error(),
		})
	case errors.As(err, &permErr):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: permErr.Error(),
		})
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidCredential):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "invalid credentials",
		})
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrCourseNotFound),
		errors.Is(err, services.ErrSheetNotFound),
		errors.Is(err, services.ErrRecheckNotFound),
		errors.Is(err, repositories.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrEmailExists),
		errors.Is(err, services.ErrCourseCodeExists),
		errors.Is(err, services.ErrRoleConflict),
		errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrRecheckAlreadyResolved):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrRoleNotHeld),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidExamType):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
	default:
		b.LogError(c, "internal error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error",
		})
	}
}
