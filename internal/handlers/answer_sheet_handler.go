package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CSD-2025/coursehub-service/internal/ingest"
	"github.com/CSD-2025/coursehub-service/internal/models"
	"github.com/CSD-2025/coursehub-service/internal/services"
	"github.com/CSD-2025/coursehub-service/internal/utils"
)

type AnswerSheetHandler struct {
	BaseHandler
	sheetService      services.AnswerSheetService
	membershipService services.MembershipService
}

func NewAnswerSheetHandler(
	sheetService services.AnswerSheetService,
	membershipService services.MembershipService,
	logger utils.Logger,
) *AnswerSheetHandler {
	return &AnswerSheetHandler{
		BaseHandler:       NewBaseHandler(logger),
		sheetService:      sheetService,
		membershipService: membershipService,
	}
}

// UpsertSheet records a single answer sheet. A sheet already present for
// the same course, student and exam type is overwritten in place.
// @Summary Upsert answer sheet
// @Tags answer-sheets
// @Accept json
// @Produce json
// @Param sheet body services.AnswerSheetUploadRequest true "Sheet data"
// @Success 200 {object} models.AnswerSheetUpsertResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /answer-sheets [post]
func (h *AnswerSheetHandler) UpsertSheet(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	var req services.AnswerSheetUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.sheetService.Upsert(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Answer sheet upserted",
		"course_id", req.CourseID,
		"student_id", req.StudentID,
		"exam_type", req.ExamType,
		"status", resp.Status,
	)
	c.JSON(http.StatusOK, resp)
}

// GetSheet retrieves a single answer sheet
// @Summary Get answer sheet
// @Tags answer-sheets
// @Produce json
// @Param id path string true "Sheet ID"
// @Success 200 {object} models.AnswerSheet
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /answer-sheets/{id} [get]
func (h *AnswerSheetHandler) GetSheet(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	sheet, err := h.sheetService.GetByID(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sheet)
}

// ListCourseSheets lists a course's answer sheets, optionally filtered by
// exam type.
// @Summary List course answer sheets
// @Tags answer-sheets
// @Produce json
// @Param id path string true "Course ID"
// @Param exam_type query string false "Exam type filter"
// @Success 200 {object} services.AnswerSheetListResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses/{id}/answer-sheets [get]
func (h *AnswerSheetHandler) ListCourseSheets(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	var examType *models.ExamType
	if raw := c.Query("exam_type"); raw != "" {
		et := models.ExamType(raw)
		if !et.Valid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "bad_request",
				Message: "invalid exam_type",
			})
			return
		}
		examType = &et
	}

	resp, err := h.sheetService.ListByCourse(c.Request.Context(), c.Param("id"), examType, listOptionsFromQuery(c), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListMySheets lists the calling student's own answer sheets
// @Summary List my answer sheets
// @Tags answer-sheets
// @Produce json
// @Success 200 {object} services.AnswerSheetListResponse
// @Router /answer-sheets/mine [get]
func (h *AnswerSheetHandler) ListMySheets(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	resp, err := h.sheetService.ListMine(c.Request.Context(), listOptionsFromQuery(c), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ImportSheets uploads a zip of scanned sheets named by campus identifier
// and reconciles each entry, best effort. The response is always 200 with
// the per-file tally.
// @Summary Import answer sheet archive
// @Tags answer-sheets
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Course ID"
// @Param exam_type formData string true "Exam type"
// @Param file formData file true "Sheet archive (.zip)"
// @Success 200 {object} models.ReconciliationResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses/{id}/answer-sheets/import [post]
func (h *AnswerSheetHandler) ImportSheets(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	examType := models.ExamType(c.PostForm("exam_type"))

	data, ok := h.readUpload(c, "file")
	if !ok {
		return
	}

	entries, err := ingest.ParseSheetArchive(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "could not read sheet archive",
			Details: err.Error(),
		})
		return
	}

	result, err := h.membershipService.ReconcileAnswerSheetArchive(c.Request.Context(), c.Param("id"), examType, entries, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Answer sheet archive imported",
		"course_id", c.Param("id"),
		"exam_type", examType,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	c.JSON(http.StatusOK, result)
}
