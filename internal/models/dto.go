package models

import (
	"time"
)

// ===== AUTH REQUESTS =====

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Roles    []Role `json:"roles" validate:"required,min=1,dive,oneof=super_admin professor ta student"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SwitchRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=super_admin professor ta student"`
}

type TokenResponse struct {
	Token      string    `json:"token"`
	ActiveRole Role      `json:"active_role"`
	Roles      []Role    `json:"roles"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ===== COURSE REQUESTS =====

type CourseCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Code        string  `json:"code" validate:"required,min=1,max=50"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	ProfessorID string  `json:"professor_id" validate:"required"`
}

type CourseUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	ProfessorID *string `json:"professor_id"`
}

// CourseMembersResponse is the server-side resolved member listing; callers
// never intersect full user lists themselves.
type CourseMembersResponse struct {
	TAs      []*User `json:"tas"`
	Students []*User `json:"students"`
}

// ===== MEMBERSHIP RECONCILIATION =====

// MemberType selects which member list a reconciliation batch targets.
type MemberType string

const (
	MemberTA      MemberType = "ta"
	MemberStudent MemberType = "student"
)

func (m MemberType) Valid() bool {
	return m == MemberTA || m == MemberStudent
}

// Role returns the user role implied by the member type.
func (m MemberType) Role() Role {
	if m == MemberTA {
		return RoleTA
	}
	return RoleStudent
}

// MemberRecord is one row of externally supplied membership data. Parsing
// spreadsheets into these rows happens outside the core.
type MemberRecord struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ArchiveEntry is one member of an uploaded answer-sheet archive, reduced to
// the identifier token derived from its file name plus an opaque artifact
// reference.
type ArchiveEntry struct {
	IdentifierToken string `json:"identifier_token"`
	ArtifactRef     string `json:"artifact_ref"`
}

type RecordOutcome string

const (
	OutcomeSuccess RecordOutcome = "success"
	OutcomeFailed  RecordOutcome = "failed"
)

// FailureReason enumerates the per-record domain failures. Storage failures
// are never reported through these; they abort the whole batch.
type FailureReason string

const (
	ReasonMissingField           FailureReason = "missing_field"
	ReasonRoleConflict           FailureReason = "role_conflict"
	ReasonInvalidRole            FailureReason = "invalid_role"
	ReasonAlreadyMember          FailureReason = "already_member"
	ReasonUnrecognizedIdentifier FailureReason = "unrecognized_identifier"
	ReasonUserNotFound           FailureReason = "user_not_found"
)

// UpsertStatus tags a successful answer-sheet reconciliation with whether the
// sheet row was created or overwritten.
type UpsertStatus string

const (
	UpsertCreated UpsertStatus = "created"
	UpsertUpdated UpsertStatus = "updated"
)

// RecordResult is the outcome for a single batch record, in input order.
type RecordResult struct {
	RecordRef string        `json:"record_ref"`
	Outcome   RecordOutcome `json:"outcome"`
	Reason    FailureReason `json:"reason,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	Status    UpsertStatus  `json:"status,omitempty"`
	UserID    string        `json:"user_id,omitempty"`
}

// ReconciliationResult aggregates per-record outcomes of one best-effort
// batch. Records is ordered exactly as the input sequence.
type ReconciliationResult struct {
	Records   []RecordResult `json:"records"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
}

func (r *ReconciliationResult) Append(res RecordResult) {
	r.Records = append(r.Records, res)
	if res.Outcome == OutcomeSuccess {
		r.Succeeded++
	} else {
		r.Failed++
	}
}

// ===== ANSWER SHEETS =====

type AnswerSheetUploadRequest struct {
	CourseID  string   `json:"course_id" validate:"required"`
	StudentID string   `json:"student_id" validate:"required"`
	ExamType  ExamType `json:"exam_type" validate:"required,oneof=quiz assignment exam midterm final"`
	FileRef   string   `json:"file_ref" validate:"required,max=500"`
}

type AnswerSheetUpsertResponse struct {
	Status UpsertStatus `json:"status"`
	Sheet  *AnswerSheet `json:"sheet"`
}

// ===== RECHECKS =====

type RecheckCreateRequest struct {
	CourseID      string `json:"course_id" validate:"required"`
	AnswerSheetID string `json:"answer_sheet_id" validate:"required"`
	Message       string `json:"message" validate:"required,min=1,max=2000"`
}

type RecheckResolveRequest struct {
	Response *string        `json:"response" validate:"omitempty,max=2000"`
	Status   *RecheckStatus `json:"status" validate:"omitempty,oneof=pending resolved"`
}

// ===== USERS =====

type ProfileUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
}
