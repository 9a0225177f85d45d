package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/CSD-2025/coursehub-service/internal/services"
	"github.com/CSD-2025/coursehub-service/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
	}
}

// CreateCourse creates a new course
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param course body services.CourseCreateRequest true "Course data"
// @Success 201 {object} models.Course
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	var req services.CourseCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Course created", "course_id", course.ID, "code", course.Code)
	c.JSON(http.StatusCreated, course)
}

// GetCourse retrieves a course by ID
// @Summary Get course
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} models.Course
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// UpdateCourse updates course metadata
// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param course body services.CourseUpdateRequest true "Course updates"
// @Success 200 {object} models.Course
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	var req services.CourseUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse removes a course
// @Summary Delete course
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Course deleted", "course_id", c.Param("id"))
	c.JSON(http.StatusOK, SuccessResponse{Message: "course deleted"})
}

// ListCourses lists all courses (admin view)
// @Summary List courses
// @Tags courses
// @Produce json
// @Success 200 {object} services.CourseListResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	resp, err := h.courseService.List(c.Request.Context(), listOptionsFromQuery(c), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListMyCourses lists the courses the caller belongs to under their active
// role.
// @Summary List my courses
// @Tags courses
// @Produce json
// @Success 200 {object} services.CourseListResponse
// @Router /courses/mine [get]
func (h *CourseHandler) ListMyCourses(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	resp, err := h.courseService.ListMine(c.Request.Context(), listOptionsFromQuery(c), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCourseMembers returns the resolved TA and student rosters
// @Summary Get course members
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} models.CourseMembersResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/members [get]
func (h *CourseHandler) GetCourseMembers(c *gin.Context) {
	actor := h.currentActor(c)
	if actor == nil {
		return
	}

	members, err := h.courseService.GetMembers(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

func listOptionsFromQuery(c *gin.Context) services.ListOptions {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	return services.ListOptions{
		Query:     c.Query("q"),
		Page:      page,
		Size:      size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
}
