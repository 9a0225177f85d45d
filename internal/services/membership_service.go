package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CSD-2025/coursehub-service/internal/auth"
	"github.com/CSD-2025/coursehub-service/internal/events"
	"github.com/CSD-2025/coursehub-service/internal/ingest"
	"github.com/CSD-2025/coursehub-service/internal/models"
	"github.com/CSD-2025/coursehub-service/internal/repositories"
	"github.com/CSD-2025/coursehub-service/internal/utils"
	"github.com/CSD-2025/coursehub-service/internal/validator"
)

type membershipService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	sheets    AnswerSheetService
	publisher events.EventPublisher
}

func NewMembershipService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, sheets AnswerSheetService, publisher events.EventPublisher) MembershipService {
	return &membershipService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		sheets:    sheets,
		publisher: publisher,
	}
}

// ===== DIRECT ADD / REMOVE =====

func (s *membershipService) AddMember(ctx context.Context, courseID string, memberType models.MemberType, userID string, actor *auth.Credential) error {
	course, err := s.loadCourseForManage(ctx, courseID, "add_member", actor)
	if err != nil {
		return err
	}
	if !memberType.Valid() {
		return ErrInvalidRole
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return err
	}

	switch membershipConflict(course, user, memberType) {
	case models.ReasonRoleConflict:
		return ErrRoleConflict
	case models.ReasonAlreadyMember:
		return ErrAlreadyMember
	}

	widened, ok := widenRoles(user, memberType)
	if !ok {
		return ErrInvalidRole
	}
	if len(widened) != len(user.Roles) {
		if err := s.repo.User().UpdateRoles(ctx, nil, user.ID, widened); err != nil {
			return err
		}
	}

	if err := s.repo.Course().AddMember(ctx, nil, courseID, user.ID, memberType); err != nil {
		if repositories.IsDuplicateError(err) {
			return ErrAlreadyMember
		}
		return err
	}

	s.publishMemberAdded(ctx, courseID, user.ID, memberType, actor.UserID)
	s.logger.Info("Member added", "course_id", courseID, "user_id", user.ID, "member_type", memberType)
	return nil
}

func (s *membershipService) RemoveMember(ctx context.Context, courseID string, memberType models.MemberType, userID string, actor *auth.Credential) error {
	course, err := s.loadCourseForManage(ctx, courseID, "remove_member", actor)
	if err != nil {
		return err
	}
	if !memberType.Valid() {
		return ErrInvalidRole
	}
	if course.MemberRole(userID) != memberType.Role() {
		return ErrUserNotFound
	}

	if err := s.repo.Course().RemoveMember(ctx, nil, courseID, userID, memberType); err != nil {
		return err
	}

	s.logger.Info("Member removed", "course_id", courseID, "user_id", userID, "member_type", memberType)
	return nil
}

// ===== BATCH RECONCILIATION =====

// ReconcileBatch processes records independently in input order. Domain
// failures mark the record and move on; only storage failures abort.
func (s *membershipService) ReconcileBatch(ctx context.Context, courseID string, memberType models.MemberType, records []models.MemberRecord, actor *auth.Credential) (*models.ReconciliationResult, error) {
	if _, err := s.loadCourseForManage(ctx, courseID, "reconcile_members", actor); err != nil {
		return nil, err
	}
	if !memberType.Valid() {
		return nil, ErrInvalidRole
	}

	result := &models.ReconciliationResult{Records: make([]models.RecordResult, 0, len(records))}
	for _, record := range records {
		res, err := s.reconcileRecord(ctx, courseID, memberType, record, actor)
		if err != nil {
			return nil, err
		}
		result.Append(res)
	}

	s.logger.Info("Member batch reconciled",
		"course_id", courseID, "member_type", memberType,
		"succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}

// reconcileRecord applies the per-record pipeline: field check, lookup or
// create, conflict guard, role widening, membership mutation. The course is
// re-read per record so earlier records in the batch are visible to later
// ones.
func (s *membershipService) reconcileRecord(ctx context.Context, courseID string, memberType models.MemberType, record models.MemberRecord, actor *auth.Credential) (models.RecordResult, error) {
	email := canonicalEmail(record.Email)
	ref := record.Email
	if ref == "" {
		ref = record.Name
	}
	res := models.RecordResult{RecordRef: ref, Outcome: models.OutcomeFailed}

	if email == "" {
		res.Reason = models.ReasonMissingField
		res.Detail = "email is required"
		return res, nil
	}
	res.RecordRef = email

	user, err := s.repo.User().GetByEmail(ctx, nil, email)
	switch {
	case err == nil:
		// existing user, guards below
	case repositories.IsNotFoundError(err):
		if strings.TrimSpace(record.Name) == "" {
			res.Reason = models.ReasonMissingField
			res.Detail = "name is required for new users"
			return res, nil
		}
		user, err = s.createMemberUser(ctx, record.Name, email, memberType)
		if err != nil {
			return res, err
		}
	default:
		return res, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		return res, err
	}

	conflict := membershipConflict(course, user, memberType)
	if conflict == models.ReasonRoleConflict {
		res.Reason = models.ReasonRoleConflict
		res.Detail = fmt.Sprintf("user holds the opposite membership in course %s", course.Code)
		res.UserID = user.ID
		return res, nil
	}

	widened, ok := widenRoles(user, memberType)
	if !ok {
		res.Reason = models.ReasonInvalidRole
		res.Detail = fmt.Sprintf("role set %v cannot gain %s", user.Roles, memberType.Role())
		res.UserID = user.ID
		return res, nil
	}

	if conflict == models.ReasonAlreadyMember {
		res.Reason = models.ReasonAlreadyMember
		res.UserID = user.ID
		return res, nil
	}

	if len(widened) != len(user.Roles) {
		if err := s.repo.User().UpdateRoles(ctx, nil, user.ID, widened); err != nil {
			return res, err
		}
	}

	if err := s.repo.Course().AddMember(ctx, nil, courseID, user.ID, memberType); err != nil {
		if repositories.IsDuplicateError(err) {
			res.Reason = models.ReasonAlreadyMember
			res.UserID = user.ID
			return res, nil
		}
		return res, err
	}

	s.publishMemberAdded(ctx, courseID, user.ID, memberType, actor.UserID)

	res.Outcome = models.OutcomeSuccess
	res.UserID = user.ID
	return res, nil
}

// createMemberUser provisions an account for a spreadsheet row that matched
// no existing user. The generated credential is random and never leaves the
// server; the owner signs in via OAuth or a password reset.
func (s *membershipService) createMemberUser(ctx context.Context, name, email string, memberType models.MemberType) (*models.User, error) {
	user := &models.User{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(name),
		Email: email,
		Roles: []models.Role{memberType.Role()},
	}
	if err := user.SetCredential(uuid.NewString()); err != nil {
		return nil, fmt.Errorf("failed to set generated credential: %w", err)
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to create user for %s: %w", email, err)
	}
	return user, nil
}

func (s *membershipService) ReconcileWorkbook(ctx context.Context, courseID string, memberType models.MemberType, workbook []byte, actor *auth.Credential) (*models.ReconciliationResult, error) {
	records, err := ingest.ParseMemberWorkbook(workbook)
	if err != nil {
		return nil, err
	}
	return s.ReconcileBatch(ctx, courseID, memberType, records, actor)
}

// ===== ANSWER SHEET ARCHIVE =====

// ReconcileAnswerSheetArchive maps archive entries to enrolled students via
// the institutional identifier convention and hands matches to the sheet
// upsert path.
func (s *membershipService) ReconcileAnswerSheetArchive(ctx context.Context, courseID string, examType models.ExamType, entries []models.ArchiveEntry, actor *auth.Credential) (*models.ReconciliationResult, error) {
	if !examType.Valid() {
		return nil, ErrInvalidExamType
	}
	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !canOperateCourse(course, actor) {
		return nil, NewPermissionError(actor.UserID, courseID, "course", "reconcile_sheets", "not course staff or super admin")
	}

	result := &models.ReconciliationResult{Records: make([]models.RecordResult, 0, len(entries))}
	for _, entry := range entries {
		res, err := s.reconcileSheetEntry(ctx, courseID, examType, entry, actor)
		if err != nil {
			return nil, err
		}
		result.Append(res)
	}

	s.logger.Info("Sheet archive reconciled",
		"course_id", courseID, "exam_type", examType,
		"succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}

func (s *membershipService) reconcileSheetEntry(ctx context.Context, courseID string, examType models.ExamType, entry models.ArchiveEntry, actor *auth.Credential) (models.RecordResult, error) {
	res := models.RecordResult{RecordRef: entry.IdentifierToken, Outcome: models.OutcomeFailed}

	studentID := utils.ExtractStudentID(entry.IdentifierToken)
	if studentID == "" {
		res.Reason = models.ReasonUnrecognizedIdentifier
		return res, nil
	}

	email, err := utils.EmailFromStudentID(studentID)
	if err != nil {
		res.Reason = models.ReasonUnrecognizedIdentifier
		res.Detail = err.Error()
		return res, nil
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			res.Reason = models.ReasonUserNotFound
			res.Detail = fmt.Sprintf("no account for %s", email)
			return res, nil
		}
		return res, err
	}

	upserted, err := s.sheets.Upsert(ctx, &AnswerSheetUploadRequest{
		CourseID:  courseID,
		StudentID: user.ID,
		ExamType:  examType,
		FileRef:   entry.ArtifactRef,
	}, actor)
	if err != nil {
		// An account that exists but is not enrolled in this course is a
		// per-entry failure, not a batch abort.
		if errors.Is(err, ErrUserNotFound) {
			res.Reason = models.ReasonUserNotFound
			res.Detail = fmt.Sprintf("%s is not enrolled in this course", email)
			return res, nil
		}
		return res, err
	}

	res.Outcome = models.OutcomeSuccess
	res.Status = upserted.Status
	res.UserID = user.ID
	return res, nil
}

// ===== HELPERS =====

func (s *membershipService) loadCourseForManage(ctx context.Context, courseID, action string, actor *auth.Credential) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !canManageCourse(course, actor) {
		return nil, NewPermissionError(actor.UserID, courseID, "course", action, "not course professor or super admin")
	}
	return course, nil
}

func (s *membershipService) publishMemberAdded(ctx context.Context, courseID, userID string, memberType models.MemberType, addedBy string) {
	if s.publisher == nil {
		return
	}
	event := events.New(events.EventMemberAdded, events.MemberAddedEvent{
		CourseID:   courseID,
		UserID:     userID,
		MemberType: memberType,
		AddedByID:  addedBy,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish member added event", "course_id", courseID, "error", err)
	}
}
