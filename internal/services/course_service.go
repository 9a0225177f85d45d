package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CSD-2025/coursehub-service/internal/auth"
	"github.com/CSD-2025/coursehub-service/internal/models"
	"github.com/CSD-2025/coursehub-service/internal/repositories"
	"github.com/CSD-2025/coursehub-service/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCourseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) CourseService {
	return &courseService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *courseService) Create(ctx context.Context, req *CourseCreateRequest, actor *auth.Credential) (*models.Course, error) {
	s.logger.Info("Creating course", "actor_id", actor.UserID, "code", req.Code)

	if actor.ActiveRole != models.RoleSuperAdmin {
		return nil, NewPermissionError(actor.UserID, "", "course", "create", "requires active super_admin role")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	professor, err := s.repo.User().GetByID(ctx, nil, req.ProfessorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !professor.IsProfessor() {
		return nil, ErrInvalidRole
	}

	exists, err := s.repo.Course().ExistsByCode(ctx, nil, req.Code, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check course code: %w", err)
	}
	if exists {
		return nil, ErrCourseCodeExists
	}

	course := &models.Course{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Code:        req.Code,
		Description: req.Description,
		ProfessorID: req.ProfessorID,
	}

	if err := s.repo.Course().Create(ctx, nil, course); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrCourseCodeExists
		}
		return nil, err
	}

	s.logger.Info("Course created", "course_id", course.ID, "code", course.Code)
	return course, nil
}

func (s *courseService) GetByID(ctx context.Context, id string, actor *auth.Credential) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if !canViewCourse(course, actor) {
		return nil, NewPermissionError(actor.UserID, id, "course", "read", "not a member of this course")
	}

	return course, nil
}

func (s *courseService) Update(ctx context.Context, id string, req *CourseUpdateRequest, actor *auth.Credential) (*models.Course, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if !canManageCourse(course, actor) {
		return nil, NewPermissionError(actor.UserID, id, "course", "update", "not course professor or super admin")
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.ProfessorID != nil && *req.ProfessorID != course.ProfessorID {
		// Reassigning the professor is a super admin operation.
		if actor.ActiveRole != models.RoleSuperAdmin {
			return nil, NewPermissionError(actor.UserID, id, "course", "reassign_professor", "requires active super_admin role")
		}
		professor, err := s.repo.User().GetByID(ctx, nil, *req.ProfessorID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if !professor.IsProfessor() {
			return nil, ErrInvalidRole
		}
		course.ProfessorID = professor.ID
	}

	if err := s.repo.Course().Update(ctx, nil, course); err != nil {
		return nil, err
	}

	s.logger.Info("Course updated", "course_id", course.ID, "actor_id", actor.UserID)
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, id string, actor *auth.Credential) error {
	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return err
	}

	if actor.ActiveRole != models.RoleSuperAdmin {
		return NewPermissionError(actor.UserID, id, "course", "delete", "requires active super_admin role")
	}

	if err := s.repo.Course().Delete(ctx, nil, course.ID); err != nil {
		return err
	}

	s.logger.Info("Course deleted", "course_id", id, "actor_id", actor.UserID)
	return nil
}

// ===== QUERY OPERATIONS =====

func (s *courseService) List(ctx context.Context, opts ListOptions, actor *auth.Credential) (*CourseListResponse, error) {
	if actor.ActiveRole != models.RoleSuperAdmin {
		return nil, NewPermissionError(actor.UserID, "", "course", "list_all", "requires active super_admin role")
	}

	filters := courseFilters(opts)
	courses, total, err := s.repo.Course().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}

	return courseListResponse(courses, total, opts), nil
}

// ListMine resolves membership server-side from the actor's identity and
// active role.
func (s *courseService) ListMine(ctx context.Context, opts ListOptions, actor *auth.Credential) (*CourseListResponse, error) {
	filters := courseFilters(opts)

	var (
		courses []*models.Course
		total   int64
		err     error
	)
	switch actor.ActiveRole {
	case models.RoleSuperAdmin:
		courses, total, err = s.repo.Course().List(ctx, nil, filters)
	case models.RoleProfessor:
		courses, total, err = s.repo.Course().GetByProfessor(ctx, nil, actor.UserID, filters)
	default:
		courses, total, err = s.repo.Course().GetByMember(ctx, nil, actor.UserID, filters)
	}
	if err != nil {
		return nil, err
	}

	// TAs and students see only the lists they belong to under the active
	// role, not courses where they hold the other membership.
	if actor.ActiveRole == models.RoleTA || actor.ActiveRole == models.RoleStudent {
		filtered := courses[:0]
		for _, course := range courses {
			switch actor.ActiveRole {
			case models.RoleTA:
				if course.HasTA(actor.UserID) {
					filtered = append(filtered, course)
				}
			case models.RoleStudent:
				if course.HasStudent(actor.UserID) {
					filtered = append(filtered, course)
				}
			}
		}
		total -= int64(len(courses) - len(filtered))
		courses = filtered
	}

	return courseListResponse(courses, total, opts), nil
}

func (s *courseService) GetMembers(ctx context.Context, id string, actor *auth.Credential) (*models.CourseMembersResponse, error) {
	course, err := s.GetByID(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	tas, err := s.repo.User().GetByIDs(ctx, nil, course.TAIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve TAs: %w", err)
	}
	students, err := s.repo.User().GetByIDs(ctx, nil, course.StudentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve students: %w", err)
	}

	return &models.CourseMembersResponse{
		TAs:      tas,
		Students: students,
	}, nil
}

// ===== HELPERS =====

func courseFilters(opts ListOptions) repositories.CourseFilters {
	page, size := normalizePage(opts.Page, opts.Size)
	return repositories.CourseFilters{
		Query:     opts.Query,
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    opts.SortBy,
		SortOrder: opts.SortOrder,
	}
}

func courseListResponse(courses []*models.Course, total int64, opts ListOptions) *CourseListResponse {
	page, size := normalizePage(opts.Page, opts.Size)
	return &CourseListResponse{
		Courses: courses,
		Total:   total,
		Page:    page,
		Size:    size,
	}
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}
