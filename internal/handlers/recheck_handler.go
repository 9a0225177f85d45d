package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CSD-2025/coursehub-service/internal/models"
	"github.com/CSD-2025/coursehub-service/internal/services"
	"github.com/CSD-2025/coursehub-service/internal/utils"
)

type RecheckHandler struct {
	BaseHandler
	recheckService services.RecheckService
}

func NewRecheckHandler(recheckService services.RecheckService, logger utils.Logger) *RecheckHandler {
	return &RecheckHandler{
		BaseHandler:    NewBaseHandler(logger),
		recheckService: recheckService,
	}
}

// CreateRecheck opens a recheck request against the caller's own answer
// sheet
// @Summary Create recheck request
// @Tags rechecks
// @Accept json
// @Produce json
// @Param recheck body services.RecheckCreateRequest true "Recheck data"
// @Success 201 {object} models.RecheckRequest
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /rechecks [post]
func (h *RecheckHandler) CreateRecheck(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	var req services.RecheckCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	recheck, err := h.recheckService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Recheck created", "recheck_id", recheck.ID, "sheet_id", req.AnswerSheetID)
	c.JSON(http.StatusCreated, recheck)
}

// ResolveRecheck records the staff response on a recheck request
// @Summary Resolve recheck request
// @Tags rechecks
// @Accept json
// @Produce json
// @Param id path string true "Recheck ID"
// @Param resolution body services.RecheckResolveRequest true "Resolution"
// @Success 200 {object} models.RecheckRequest
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /rechecks/{id}/resolve [post]
func (h *RecheckHandler) ResolveRecheck(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	var req services.RecheckResolveRequest
	if !h.bindJSON(c, &req) {
		return
	}

	recheck, err := h.recheckService.Resolve(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Recheck resolved", "recheck_id", recheck.ID)
	c.JSON(http.StatusOK, recheck)
}

// ListCourseRechecks lists a course's recheck requests
// @Summary List course rechecks
// @Tags rechecks
// @Produce json
// @Param id path string true "Course ID"
// @Param status query string false "Status filter"
// @Success 200 {object} services.RecheckListResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses/{id}/rechecks [get]
func (h *RecheckHandler) ListCourseRechecks(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	var status *models.RecheckStatus
	if raw := c.Query("status"); raw != "" {
		s := models.RecheckStatus(raw)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "bad_request",
				Message: "invalid status",
			})
			return
		}
		status = &s
	}

	resp, err := h.recheckService.ListByCourse(c.Request.Context(), c.Param("id"), status, listOptionsFromQuery(c), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListMyRechecks lists the calling student's recheck requests
// @Summary List my rechecks
// @Tags rechecks
// @Produce json
// @Success 200 {object} services.RecheckListResponse
// @Router /rechecks/mine [get]
func (h *RecheckHandler) ListMyRechecks(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	resp, err := h.recheckService.ListMine(c.Request.Context(), listOptionsFromQuery(c), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
