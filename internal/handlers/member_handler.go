package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CSD-2025/coursehub-service/internal/models"
	"github.com/CSD-2025/coursehub-service/internal/services"
	"github.com/CSD-2025/coursehub-service/internal/utils"
)

// maxImportSize bounds uploaded rosters and archives (32 MiB).
const maxImportSize = 32 << 20

type MemberHandler struct {
	BaseHandler
	membershipService services.MembershipService
}

func NewMemberHandler(membershipService services.MembershipService, logger utils.Logger) *MemberHandler {
	return &MemberHandler{
		BaseHandler:       NewBaseHandler(logger),
		membershipService: membershipService,
	}
}

type addMemberRequest struct {
	UserID     string            `json:"user_id" binding:"required"`
	MemberType models.MemberType `json:"member_type" binding:"required"`
}

type reconcileBatchRequest struct {
	MemberType models.MemberType     `json:"member_type" binding:"required"`
	Records    []models.MemberRecord `json:"records" binding:"required"`
}

// AddMember adds an existing user to a course roster
// @Summary Add course member
// @Tags members
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param member body addMemberRequest true "Member to add"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /courses/{id}/members [post]
func (h *MemberHandler) AddMember(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	var req addMemberRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if !req.MemberType.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "member_type must be ta or student",
		})
		return
	}

	err := h.membershipService.AddMember(c.Request.Context(), c.Param("id"), req.MemberType, req.UserID, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Member added", "course_id", c.Param("id"), "user_id", req.UserID, "member_type", req.MemberType)
	c.JSON(http.StatusOK, SuccessResponse{Message: "member added"})
}

// RemoveMember removes a user from a course roster
// @Summary Remove course member
// @Tags members
// @Produce json
// @Param id path string true "Course ID"
// @Param user_id path string true "User ID"
// @Param member_type query string true "ta or student"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/members/{user_id} [delete]
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	memberType := models.MemberType(c.Query("member_type"))
	if !memberType.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "member_type must be ta or student",
		})
		return
	}

	err := h.membershipService.RemoveMember(c.Request.Context(), c.Param("id"), memberType, c.Param("user_id"), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "member removed"})
}

// ReconcileMembers processes a JSON batch of member records, best effort.
// The response is always 200 with the per-record tally; only authorization,
// malformed input, or storage failures produce an error status.
// @Summary Reconcile member batch
// @Tags members
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param batch body reconcileBatchRequest true "Member records"
// @Success 200 {object} models.ReconciliationResult
// @Failure 403 {object} ErrorResponse
// @Router /courses/{id}/members/reconcile [post]
func (h *MemberHandler) ReconcileMembers(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	var req reconcileBatchRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if !req.MemberType.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "member_type must be ta or student",
		})
		return
	}

	result, err := h.membershipService.ReconcileBatch(c.Request.Context(), c.Param("id"), req.MemberType, req.Records, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Member batch reconciled",
		"course_id", c.Param("id"),
		"member_type", req.MemberType,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	c.JSON(http.StatusOK, result)
}

// ImportMembers uploads an Excel roster and reconciles it against the
// course.
// @Summary Import member roster
// @Tags members
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Course ID"
// @Param member_type formData string true "ta or student"
// @Param file formData file true "Roster workbook (.xlsx)"
// @Success 200 {object} models.ReconciliationResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses/{id}/members/import [post]
func (h *MemberHandler) ImportMembers(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	memberType := models.MemberType(c.PostForm("member_type"))
	if !memberType.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "member_type must be ta or student",
		})
		return
	}

	data, ok := h.readUpload(c, "file")
	if !ok {
		return
	}

	result, err := h.membershipService.ReconcileWorkbook(c.Request.Context(), c.Param("id"), memberType, data, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Member roster imported",
		"course_id", c.Param("id"),
		"member_type", memberType,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	c.JSON(http.StatusOK, result)
}

// readUpload pulls one multipart file into memory, bounded by
// maxImportSize.
func (b BaseHandler) readUpload(c *gin.Context, field string) ([]byte, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "missing uploaded file",
			Details: err.Error(),
		})
		return nil, false
	}
	if fileHeader.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "uploaded file too large",
		})
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "could not open uploaded file",
			Details: err.Error(),
		})
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "could not read uploaded file",
			Details: err.Error(),
		})
		return nil, false
	}
	return data, true
}
