package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/CSD-2025/coursehub-service/internal/models"
)

// RecheckRepository interface for recheck request operations
type RecheckRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, request *models.RecheckRequest) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.RecheckRequest, error)
	Update(ctx context.Context, tx *gorm.DB, request *models.RecheckRequest) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	// Query operations
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID string, filters RecheckFilters) ([]*models.RecheckRequest, int64, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters RecheckFilters) ([]*models.RecheckRequest, int64, error)
	GetPendingBySheet(ctx context.Context, tx *gorm.DB, sheetID string) ([]*models.RecheckRequest, error)
}
