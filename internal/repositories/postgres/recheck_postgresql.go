package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/CSD-2025/coursehub-service/internal/cache"
	"github.com/CSD-2025/coursehub-service/internal/models"
	"github.com/CSD-2025/coursehub-service/internal/repositories"
)

type RecheckPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewRecheckPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.RecheckRepository {
	return &RecheckPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *RecheckPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *RecheckPostgreSQL) Create(ctx context.Context, tx *gorm.DB, request *models.RecheckRequest) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(request).Error; err != nil {
		return fmt.Errorf("failed to create recheck request: %w", err)
	}
	return nil
}

func (r *RecheckPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.RecheckRequest, error) {
	db := r.getDB(tx)
	var request models.RecheckRequest
	if err := db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recheck request: %w", err)
	}
	return &request, nil
}

func (r *RecheckPostgreSQL) Update(ctx context.Context, tx *gorm.DB, request *models.RecheckRequest) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(request).Error; err != nil {
		return fmt.Errorf("failed to update recheck request: %w", err)
	}
	return nil
}

func (r *RecheckPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.RecheckRequest{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete recheck request: %w", err)
	}
	return nil
}

func (r *RecheckPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID string, filters repositories.RecheckFilters) ([]*models.RecheckRequest, int64, error) {
	db := r.getDB(tx)

	query := db.WithContext(ctx).Model(&models.RecheckRequest{}).Where("course_id = ?", courseID)
	query = r.helpers.ApplyRecheckFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recheck requests: %w", err)
	}

	var requests []*models.RecheckRequest
	query = r.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list recheck requests: %w", err)
	}

	return requests, total, nil
}

func (r *RecheckPostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.RecheckFilters) ([]*models.RecheckRequest, int64, error) {
	db := r.getDB(tx)

	query := db.WithContext(ctx).Model(&models.RecheckRequest{}).Where("student_id = ?", studentID)
	query = r.helpers.ApplyRecheckFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recheck requests: %w", err)
	}

	var requests []*models.RecheckRequest
	query = r.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list recheck requests: %w", err)
	}

	return requests, total, nil
}

func (r *RecheckPostgreSQL) GetPendingBySheet(ctx context.Context, tx *gorm.DB, sheetID string) ([]*models.RecheckRequest, error) {
	db := r.getDB(tx)
	var requests []*models.RecheckRequest
	err := db.WithContext(ctx).
		Where("answer_sheet_id = ? AND status = ?", sheetID, models.RecheckPending).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get pending recheck requests: %w", err)
	}
	return requests, nil
}
