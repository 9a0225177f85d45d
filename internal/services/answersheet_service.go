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

type answerSheetService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewAnswerSheetService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) AnswerSheetService {
	return &answerSheetService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// Upsert finds or creates the sheet row for (course, student, exam type).
// Repeating the same call is a no-op beyond refreshing FileRef and the
// uploader. The uploader must be operating the course under an eligible
// active role; the target must be an enrolled student.
func (s *answerSheetService) Upsert(ctx context.Context, req *AnswerSheetUploadRequest, actor *auth.Credential) (*models.AnswerSheetUpsertResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, req.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if !canOperateCourse(course, actor) {
		return nil, NewPermissionError(actor.UserID, req.CourseID, "answer_sheet", "upsert", "requires course professor, TA or super admin")
	}

	if !course.HasStudent(req.StudentID) {
		return nil, ErrUserNotFound
	}

	sheet := &models.AnswerSheet{
		ID:           uuid.NewString(),
		CourseID:     req.CourseID,
		StudentID:    req.StudentID,
		ExamType:     req.ExamType,
		FileRef:      req.FileRef,
		UploadedByID: actor.UserID,
	}

	stored, created, err := s.repo.AnswerSheet().Upsert(ctx, nil, sheet)
	if err != nil {
		return nil, err
	}

	status := models.UpsertUpdated
	if created {
		status = models.UpsertCreated
	}

	s.publishSheetUploaded(ctx, stored, status)
	s.logger.Info("Answer sheet upserted",
		"course_id", req.CourseID, "student_id", req.StudentID,
		"exam_type", req.ExamType, "status", status)

	return &models.AnswerSheetUpsertResponse{
		Status: status,
		Sheet:  stored,
	}, nil
}

func (s *answerSheetService) GetByID(ctx context.Context, id string, actor *auth.Credential) (*models.AnswerSheet, error) {
	sheet, err := s.repo.AnswerSheet().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSheetNotFound
		}
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, sheet.CourseID)
	if err != nil {
		return nil, err
	}

	// Students only see their own sheets.
	if actor.ActiveRole == models.RoleStudent {
		if sheet.StudentID != actor.UserID {
			return nil, NewPermissionError(actor.UserID, id, "answer_sheet", "read", "not the sheet owner")
		}
		return sheet, nil
	}

	if !canOperateCourse(course, actor) {
		return nil, NewPermissionError(actor.UserID, id, "answer_sheet", "read", "not staff of this course")
	}

	return sheet, nil
}

func (s *answerSheetService) ListByCourse(ctx context.Context, courseID string, examType *models.ExamType, opts ListOptions, actor *auth.Credential) (*AnswerSheetListResponse, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !canOperateCourse(course, actor) {
		return nil, NewPermissionError(actor.UserID, courseID, "answer_sheet", "list", "not staff of this course")
	}

	page, size := normalizePage(opts.Page, opts.Size)
	filters := repositories.AnswerSheetFilters{
		ExamType: examType,
		Limit:    size,
		Offset:   (page - 1) * size,
	}
	sheets, total, err := s.repo.AnswerSheet().ListByCourse(ctx, nil, courseID, filters)
	if err != nil {
		return nil, err
	}

	return &AnswerSheetListResponse{Sheets: sheets, Total: total, Page: page, Size: size}, nil
}

// ListMine lists the acting student's own sheets across courses.
func (s *answerSheetService) ListMine(ctx context.Context, opts ListOptions, actor *auth.Credential) (*AnswerSheetListResponse, error) {
	if actor.ActiveRole != models.RoleStudent {
		return nil, NewPermissionError(actor.UserID, "", "answer_sheet", "list_mine", "requires active student role")
	}

	page, size := normalizePage(opts.Page, opts.Size)
	filters := repositories.AnswerSheetFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}
	sheets, total, err := s.repo.AnswerSheet().ListByStudent(ctx, nil, actor.UserID, filters)
	if err != nil {
		return nil, err
	}

	return &AnswerSheetListResponse{Sheets: sheets, Total: total, Page: page, Size: size}, nil
}

func (s *answerSheetService) publishSheetUploaded(ctx context.Context, sheet *models.AnswerSheet, status models.UpsertStatus) {
	if s.publisher == nil {
		return
	}
	event := events.New(events.EventSheetUploaded, events.SheetUploadedEvent{
		CourseID:     sheet.CourseID,
		StudentID:    sheet.StudentID,
		ExamType:     sheet.ExamType,
		Status:       status,
		UploadedByID: sheet.UploadedByID,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish sheet uploaded event", "course_id", sheet.CourseID, "error", err)
	}
}
