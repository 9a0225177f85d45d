package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/CSD-2025/coursehub-service/internal/cache"
	"github.com/CSD-2025/coursehub-service/internal/models"
	"github.com/CSD-2025/coursehub-service/internal/repositories"
)

type AnswerSheetPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewAnswerSheetPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AnswerSheetRepository {
	return &AnswerSheetPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (a *AnswerSheetPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// ===== BASIC CRUD OPERATIONS =====

func (a *AnswerSheetPostgreSQL) Create(ctx context.Context, tx *gorm.DB, sheet *models.AnswerSheet) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Create(sheet).Error; err != nil {
		return fmt.Errorf("failed to create answer sheet: %w", err)
	}

	a.cacheManager.InvalidateSheet(ctx, sheet.CourseID, sheet.StudentID, string(sheet.ExamType))
	return nil
}

func (a *AnswerSheetPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.AnswerSheet, error) {
	db := a.getDB(tx)
	var sheet models.AnswerSheet
	if err := db.WithContext(ctx).First(&sheet, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get answer sheet: %w", err)
	}
	return &sheet, nil
}

func (a *AnswerSheetPostgreSQL) Update(ctx context.Context, tx *gorm.DB, sheet *models.AnswerSheet) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Save(sheet).Error; err != nil {
		return fmt.Errorf("failed to update answer sheet: %w", err)
	}

	a.cacheManager.InvalidateSheet(ctx, sheet.CourseID, sheet.StudentID, string(sheet.ExamType))
	return nil
}

func (a *AnswerSheetPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := a.getDB(tx)

	sheet, err := a.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := db.WithContext(ctx).Delete(&models.AnswerSheet{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete answer sheet: %w", err)
	}

	a.cacheManager.InvalidateSheet(ctx, sheet.CourseID, sheet.StudentID, string(sheet.ExamType))
	return nil
}

// ===== UPSERT =====

// Upsert stores the sheet keyed on (course, student, exam type). An existing
// row keeps its ID and UploadedAt; FileRef and UploadedByID take the new
// values. The bool result is true when a new row was created.
func (a *AnswerSheetPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, sheet *models.AnswerSheet) (*models.AnswerSheet, bool, error) {
	db := a.getDB(tx)

	var existing models.AnswerSheet
	err := db.WithContext(ctx).
		First(&existing, "course_id = ? AND student_id = ? AND exam_type = ?",
			sheet.CourseID, sheet.StudentID, sheet.ExamType).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("failed to look up answer sheet: %w", err)
		}

		sheet.UploadedAt = time.Now()
		if err := db.WithContext(ctx).Create(sheet).Error; err != nil {
			return nil, false, fmt.Errorf("failed to create answer sheet: %w", err)
		}
		a.cacheManager.InvalidateSheet(ctx, sheet.CourseID, sheet.StudentID, string(sheet.ExamType))
		return sheet, true, nil
	}

	existing.FileRef = sheet.FileRef
	existing.UploadedByID = sheet.UploadedByID
	if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, false, fmt.Errorf("failed to update answer sheet: %w", err)
	}

	a.cacheManager.InvalidateSheet(ctx, existing.CourseID, existing.StudentID, string(existing.ExamType))
	return &existing, false, nil
}

// ===== QUERY OPERATIONS =====

func (a *AnswerSheetPostgreSQL) GetByTuple(ctx context.Context, tx *gorm.DB, courseID, studentID string, examType models.ExamType) (*models.AnswerSheet, error) {
	db := a.getDB(tx)
	cacheKey := fmt.Sprintf("tuple:%s:%s:%s", courseID, studentID, examType)
	var sheet models.AnswerSheet

	err := a.cacheManager.Sheet.CacheOrExecute(ctx, cacheKey, &sheet, cache.SheetCacheConfig.TTL, func() (interface{}, error) {
		var dbSheet models.AnswerSheet
		err := db.WithContext(ctx).
			First(&dbSheet, "course_id = ? AND student_id = ? AND exam_type = ?", courseID, studentID, examType).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.ErrNotFound
			}
			return nil, fmt.Errorf("failed to get answer sheet: %w", err)
		}
		return &dbSheet, nil
	})
	if err != nil {
		return nil, err
	}

	return &sheet, nil
}

func (a *AnswerSheetPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID string, filters repositories.AnswerSheetFilters) ([]*models.AnswerSheet, int64, error) {
	db := a.getDB(tx)

	query := db.WithContext(ctx).Model(&models.AnswerSheet{}).Where("course_id = ?", courseID)
	query = a.helpers.ApplySheetFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count answer sheets: %w", err)
	}

	var sheets []*models.AnswerSheet
	query = a.helpers.ApplyPaginationAndSort(query, "updated_at", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&sheets).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list answer sheets: %w", err)
	}

	return sheets, total, nil
}

func (a *AnswerSheetPostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.AnswerSheetFilters) ([]*models.AnswerSheet, int64, error) {
	db := a.getDB(tx)

	query := db.WithContext(ctx).Model(&models.AnswerSheet{}).Where("student_id = ?", studentID)
	if filters.ExamType != nil {
		query = query.Where("exam_type = ?", *filters.ExamType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count answer sheets: %w", err)
	}

	var sheets []*models.AnswerSheet
	query = a.helpers.ApplyPaginationAndSort(query, "updated_at", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&sheets).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list answer sheets: %w", err)
	}

	return sheets, total, nil
}

// ===== VALIDATION AND CHECKS =====

func (a *AnswerSheetPostgreSQL) ExistsByTuple(ctx context.Context, tx *gorm.DB, courseID, studentID string, examType models.ExamType) (bool, error) {
	db := a.getDB(tx)
	var count int64
	err := db.WithContext(ctx).Model(&models.AnswerSheet{}).
		Where("course_id = ? AND student_id = ? AND exam_type = ?", courseID, studentID, examType).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check answer sheet existence: %w", err)
	}
	return count > 0, nil
}
