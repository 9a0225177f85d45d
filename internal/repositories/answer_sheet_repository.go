package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/CSD-2025/coursehub-service/internal/models"
)

// AnswerSheetRepository interface for answer sheet operations
type AnswerSheetRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, sheet *models.AnswerSheet) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.AnswerSheet, error)
	Update(ctx context.Context, tx *gorm.DB, sheet *models.AnswerSheet) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	// Upsert keyed on (course, student, exam type). Returns the stored row
	// and whether it was newly created.
	Upsert(ctx context.Context, tx *gorm.DB, sheet *models.AnswerSheet) (*models.AnswerSheet, bool, error)

	// Query operations
	GetByTuple(ctx context.Context, tx *gorm.DB, courseID, studentID string, examType models.ExamType) (*models.AnswerSheet, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID string, filters AnswerSheetFilters) ([]*models.AnswerSheet, int64, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters AnswerSheetFilters) ([]*models.AnswerSheet, int64, error)

	// Validation and checks
	ExistsByTuple(ctx context.Context, tx *gorm.DB, courseID, studentID string, examType models.ExamType) (bool, error)
}
