package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CSD-2025/coursehub-service/internal/auth"
	"github.com/CSD-2025/coursehub-service/internal/events"
	"github.com/CSD-2025/coursehub-service/internal/models"
	"github.com/CSD-2025/coursehub-service/internal/repositories"
	"github.com/CSD-2025/coursehub-service/internal/validator"
)

type recheckService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewRecheckService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) RecheckService {
	return &recheckService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// Create opens a recheck for one of the acting student's own sheets.
func (s *recheckService) Create(ctx context.Context, req *RecheckCreateRequest, actor *auth.Credential) (*models.RecheckRequest, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if actor.ActiveRole != models.RoleStudent {
		return nil, NewPermissionError(actor.UserID, req.AnswerSheetID, "recheck", "create", "requires active student role")
	}

	sheet, err := s.repo.AnswerSheet().GetByID(ctx, nil, req.AnswerSheetID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSheetNotFound
		}
		return nil, err
	}
	if sheet.StudentID != actor.UserID || sheet.CourseID != req.CourseID {
		return nil, NewPermissionError(actor.UserID, req.AnswerSheetID, "recheck", "create", "not the sheet owner")
	}

	request := &models.RecheckRequest{
		ID:            uuid.NewString(),
		CourseID:      sheet.CourseID,
		AnswerSheetID: sheet.ID,
		StudentID:     actor.UserID,
		Message:       req.Message,
		Status:        models.RecheckPending,
	}

	if err := s.repo.Recheck().Create(ctx, nil, request); err != nil {
		return nil, err
	}

	s.logger.Info("Recheck created", "recheck_id", request.ID, "course_id", request.CourseID, "student_id", actor.UserID)
	return request, nil
}

// Resolve lets course staff answer the request and optionally close it.
func (s *recheckService) Resolve(ctx context.Context, id string, req *RecheckResolveRequest, actor *auth.Credential) (*models.RecheckRequest, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	request, err := s.repo.Recheck().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRecheckNotFound
		}
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, request.CourseID)
	if err != nil {
		return nil, err
	}
	if !canOperateCourse(course, actor) {
		return nil, NewPermissionError(actor.UserID, id, "recheck", "resolve", "not staff of this course")
	}

	if request.Status == models.RecheckResolved {
		return nil, ErrRecheckAlreadyResolved
	}

	if req.Response != nil {
		request.Response = req.Response
	}
	resolved := false
	if req.Status != nil && *req.Status == models.RecheckResolved {
		request.Status = models.RecheckResolved
		resolved = true
	}

	if err := s.repo.Recheck().Update(ctx, nil, request); err != nil {
		return nil, err
	}

	if resolved {
		s.publishRecheckResolved(ctx, request, actor.UserID)
	}
	s.logger.Info("Recheck updated", "recheck_id", id, "status", request.Status, "actor_id", actor.UserID)
	return request, nil
}

func (s *recheckService) ListByCourse(ctx context.Context, courseID string, status *models.RecheckStatus, opts ListOptions, actor *auth.Credential) (*RecheckListResponse, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !canOperateCourse(course, actor) {
		return nil, NewPermissionError(actor.UserID, courseID, "recheck", "list", "not staff of this course")
	}

	page, size := normalizePage(opts.Page, opts.Size)
	filters := repositories.RecheckFilters{
		Status: status,
		Limit:  size,
		Offset: (page - 1) * size,
	}
	requests, total, err := s.repo.Recheck().ListByCourse(ctx, nil, courseID, filters)
	if err != nil {
		return nil, err
	}

	return &RecheckListResponse{Requests: requests, Total: total, Page: page, Size: size}, nil
}

func (s *recheckService) ListMine(ctx context.Context, opts ListOptions, actor *auth.Credential) (*RecheckListResponse, error) {
	if actor.ActiveRole != models.RoleStudent {
		return nil, NewPermissionError(actor.UserID, "", "recheck", "list_mine", "requires active student role")
	}

	page, size := normalizePage(opts.Page, opts.Size)
	filters := repositories.RecheckFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}
	requests, total, err := s.repo.Recheck().ListByStudent(ctx, nil, actor.UserID, filters)
	if err != nil {
		return nil, err
	}

	return &RecheckListResponse{Requests: requests, Total: total, Page: page, Size: size}, nil
}

func (s *recheckService) publishRecheckResolved(ctx context.Context, request *models.RecheckRequest, resolvedBy string) {
	if s.publisher == nil {
		return
	}
	event := events.New(events.EventRecheckResolved, events.RecheckResolvedEvent{
		RecheckID:    request.ID,
		CourseID:     request.CourseID,
		StudentID:    request.StudentID,
		ResolvedByID: resolvedBy,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish recheck resolved event", "recheck_id", request.ID, "error", err)
	}
}
