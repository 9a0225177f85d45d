package services

import (
	"errors"
	"fmt"

	"github.com/CSD-2025/coursehub-service/internal/validator"
)

// Sentinel errors returned by the service layer. Handlers map these onto
// HTTP status codes; nothing below the handler layer knows about HTTP.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrSheetNotFound   = errors.New("answer sheet not found")
	ErrRecheckNotFound = errors.New("recheck request not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrCourseCodeExists   = errors.New("course code already in use")

	ErrRoleNotHeld     = errors.New("role not held by user")
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidExamType = errors.New("invalid exam type")
	ErrRoleConflict    = errors.New("conflicting role in course")
	ErrAlreadyMember   = errors.New("already a member of course")

	ErrRecheckAlreadyResolved = errors.New("recheck request already resolved")
)

// Use business validator types
type ValidationError = validator.ValidationError
type ValidationErrors = validator.ValidationErrors

// PermissionError carries who tried what on which resource. It satisfies
// error and handlers translate it to 403.
type PermissionError struct {
	UserID     string
	ResourceID string
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is a PermissionError.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidationError reports whether err carries field validation failures.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}
