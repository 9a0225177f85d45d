package services

import (
	"context"

	"github.com/CSD-2025/coursehub-service/internal/auth"
	"github.com/CSD-2025/coursehub-service/internal/models"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use shared model DTOs
type RegisterRequest = models.RegisterRequest
type LoginRequest = models.LoginRequest
type TokenResponse = models.TokenResponse
type CourseCreateRequest = models.CourseCreateRequest
type CourseUpdateRequest = models.CourseUpdateRequest
type ProfileUpdateRequest = models.ProfileUpdateRequest
type RecheckCreateRequest = models.RecheckCreateRequest
type RecheckResolveRequest = models.RecheckResolveRequest
type AnswerSheetUploadRequest = models.AnswerSheetUploadRequest

type CourseListResponse struct {
	Courses []*models.Course `json:"courses"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
}

type AnswerSheetListResponse struct {
	Sheets []*models.AnswerSheet `json:"sheets"`
	Total  int64                 `json:"total"`
	Page   int                   `json:"page"`
	Size   int                   `json:"size"`
}

type RecheckListResponse struct {
	Requests []*models.RecheckRequest `json:"requests"`
	Total    int64                    `json:"total"`
	Page     int                      `json:"page"`
	Size     int                      `json:"size"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

type ListOptions struct {
	Query     string
	Role      *models.Role
	Page      int
	Size      int
	SortBy    string
	SortOrder string
}

// ===== SERVICE INTERFACES =====

// AuthService issues and refreshes session credentials. Every credential
// carries the full role set plus exactly one active role.
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error)
	SwitchRole(ctx context.Context, token string, requested models.Role) (*TokenResponse, error)
	// LoginWithOAuth exchanges a provider code for a session, creating the
	// user on first login with the default student role set.
	LoginWithOAuth(ctx context.Context, code, state string) (*TokenResponse, error)
	ParseCredential(token string) (*auth.Credential, error)
}

type UserService interface {
	GetByID(ctx context.Context, id string, actor *auth.Credential) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, req *ProfileUpdateRequest, actor *auth.Credential) (*models.User, error)
	UpdateRoles(ctx context.Context, id string, roles []models.Role, actor *auth.Credential) (*models.User, error)
	List(ctx context.Context, opts ListOptions, actor *auth.Credential) (*UserListResponse, error)
}

type CourseService interface {
	Create(ctx context.Context, req *CourseCreateRequest, actor *auth.Credential) (*models.Course, error)
	GetByID(ctx context.Context, id string, actor *auth.Credential) (*models.Course, error)
	Update(ctx context.Context, id string, req *CourseUpdateRequest, actor *auth.Credential) (*models.Course, error)
	Delete(ctx context.Context, id string, actor *auth.Credential) error
	List(ctx context.Context, opts ListOptions, actor *auth.Credential) (*CourseListResponse, error)
	ListMine(ctx context.Context, opts ListOptions, actor *auth.Credential) (*CourseListResponse, error)
	GetMembers(ctx context.Context, id string, actor *auth.Credential) (*models.CourseMembersResponse, error)
}

// MembershipService reconciles externally supplied member data against a
// course, one record at a time, best effort. Storage failures abort the
// whole batch; domain failures mark the single record and continue.
type MembershipService interface {
	// AddMember is the direct, id-based add with the same conflict guards
	// the batch paths use.
	AddMember(ctx context.Context, courseID string, memberType models.MemberType, userID string, actor *auth.Credential) error
	RemoveMember(ctx context.Context, courseID string, memberType models.MemberType, userID string, actor *auth.Credential) error

	ReconcileBatch(ctx context.Context, courseID string, memberType models.MemberType, records []models.MemberRecord, actor *auth.Credential) (*models.ReconciliationResult, error)
	ReconcileWorkbook(ctx context.Context, courseID string, memberType models.MemberType, workbook []byte, actor *auth.Credential) (*models.ReconciliationResult, error)
	ReconcileAnswerSheetArchive(ctx context.Context, courseID string, examType models.ExamType, entries []models.ArchiveEntry, actor *auth.Credential) (*models.ReconciliationResult, error)
}

type AnswerSheetService interface {
	Upsert(ctx context.Context, req *AnswerSheetUploadRequest, actor *auth.Credential) (*models.AnswerSheetUpsertResponse, error)
	GetByID(ctx context.Context, id string, actor *auth.Credential) (*models.AnswerSheet, error)
	ListByCourse(ctx context.Context, courseID string, examType *models.ExamType, opts ListOptions, actor *auth.Credential) (*AnswerSheetListResponse, error)
	ListMine(ctx context.Context, opts ListOptions, actor *auth.Credential) (*AnswerSheetListResponse, error)
}

type RecheckService interface {
	Create(ctx context.Context, req *RecheckCreateRequest, actor *auth.Credential) (*models.RecheckRequest, error)
	Resolve(ctx context.Context, id string, req *RecheckResolveRequest, actor *auth.Credential) (*models.RecheckRequest, error)
	ListByCourse(ctx context.Context, courseID string, status *models.RecheckStatus, opts ListOptions, actor *auth.Credential) (*RecheckListResponse, error)
	ListMine(ctx context.Context, opts ListOptions, actor *auth.Credential) (*RecheckListResponse, error)
}

// ServiceManager wires all services together and manages their lifecycle
type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Course() CourseService
	Membership() MembershipService
	AnswerSheet() AnswerSheetService
	Recheck() RecheckService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}
