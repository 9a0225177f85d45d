package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/CSD-2025/coursehub-service/internal/models"
)

// CourseRepository interface for course-specific operations
type CourseRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, int64, error)
	GetByProfessor(ctx context.Context, tx *gorm.DB, professorID string, filters CourseFilters) ([]*models.Course, int64, error)
	GetByMember(ctx context.Context, tx *gorm.DB, userID string, filters CourseFilters) ([]*models.Course, int64, error)

	// Membership operations
	AddMember(ctx context.Context, tx *gorm.DB, courseID string, userID string, memberType models.MemberType) error
	RemoveMember(ctx context.Context, tx *gorm.DB, courseID string, userID string, memberType models.MemberType) error

	// Validation and checks
	ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error)
	ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *string) (bool, error)
}
