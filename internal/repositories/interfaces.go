package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/CSD-2025/coursehub-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Query  string       // Search query for name or email
	Role   *models.Role // Only users holding this role
	Limit  int          // Page size
	Offset int          // Offset for pagination
}

type CourseFilters struct {
	ProfessorID *string
	Query       string // Search query for title or code
	Limit       int
	Offset      int
	SortBy      string // "created_at", "title", "code"
	SortOrder   string // "asc", "desc"
}

type AnswerSheetFilters struct {
	ExamType  *models.ExamType
	StudentID *string
	Limit     int
	Offset    int
}

type RecheckFilters struct {
	Status *models.RecheckStatus
	Limit  int
	Offset int
}

// ===== ERROR HELPERS =====

var ErrNotFound = errors.New("record not found")

// IsNotFoundError reports whether err is a missing-record error from either
// the repository layer or gorm itself.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique-constraint violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
