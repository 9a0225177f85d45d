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

type CoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

// ===== BASIC CRUD OPERATIONS =====

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, c.cacheManager.Course, "list:*")
	return nil
}

// GetByID retrieves a course by ID with caching
func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	db := c.getDB(tx)
	cacheKey := fmt.Sprintf("id:%s", id)
	var course models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		if err := db.WithContext(ctx).First(&dbCourse, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.ErrNotFound
			}
			return nil, fmt.Errorf("failed to get course: %w", err)
		}
		return &dbCourse, nil
	})
	if err != nil {
		return nil, err
	}

	return &course, nil
}

func (c *CoursePostgreSQL) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Course, error) {
	db := c.getDB(tx)
	var course models.Course
	if err := db.WithContext(ctx).First(&course, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get course by code: %w", err)
	}
	return &course, nil
}

func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Save(course).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, course.ID)
	return nil
}

func (c *CoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Course{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, id)
	return nil
}

// ===== QUERY OPERATIONS =====

func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	db := c.getDB(tx)

	query := db.WithContext(ctx).Model(&models.Course{})
	query = c.helpers.ApplyCourseFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	var courses []*models.Course
	query = c.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}

	return courses, total, nil
}

func (c *CoursePostgreSQL) GetByProfessor(ctx context.Context, tx *gorm.DB, professorID string, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	filters.ProfessorID = &professorID
	return c.List(ctx, tx, filters)
}

// GetByMember lists courses where userID appears as professor, TA or student.
func (c *CoursePostgreSQL) GetByMember(ctx context.Context, tx *gorm.DB, userID string, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	db := c.getDB(tx)

	member := fmt.Sprintf(`["%s"]`, userID)
	query := db.WithContext(ctx).Model(&models.Course{}).
		Where("professor_id = ? OR ta_ids::jsonb @> ? OR student_ids::jsonb @> ?", userID, member, member)
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("title ILIKE ? OR code ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count member courses: %w", err)
	}

	var courses []*models.Course
	query = c.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list member courses: %w", err)
	}

	return courses, total, nil
}

// ===== MEMBERSHIP OPERATIONS =====

// AddMember appends userID to the course's TA or student list. The caller
// holds the conflict guards; this only refuses a plain duplicate.
func (c *CoursePostgreSQL) AddMember(ctx context.Context, tx *gorm.DB, courseID string, userID string, memberType models.MemberType) error {
	db := c.getDB(tx)

	var course models.Course
	if err := db.WithContext(ctx).First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to get course for member add: %w", err)
	}

	switch memberType {
	case models.MemberTA:
		if course.HasTA(userID) {
			return gorm.ErrDuplicatedKey
		}
		course.TAIDs = append(course.TAIDs, userID)
	case models.MemberStudent:
		if course.HasStudent(userID) {
			return gorm.ErrDuplicatedKey
		}
		course.StudentIDs = append(course.StudentIDs, userID)
	default:
		return fmt.Errorf("unknown member type %q", memberType)
	}

	if err := db.WithContext(ctx).Save(&course).Error; err != nil {
		return fmt.Errorf("failed to add course member: %w", err)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, courseID)
	return nil
}

func (c *CoursePostgreSQL) RemoveMember(ctx context.Context, tx *gorm.DB, courseID string, userID string, memberType models.MemberType) error {
	db := c.getDB(tx)

	var course models.Course
	if err := db.WithContext(ctx).First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to get course for member remove: %w", err)
	}

	switch memberType {
	case models.MemberTA:
		course.TAIDs = removeID(course.TAIDs, userID)
	case models.MemberStudent:
		course.StudentIDs = removeID(course.StudentIDs, userID)
	default:
		return fmt.Errorf("unknown member type %q", memberType)
	}

	if err := db.WithContext(ctx).Save(&course).Error; err != nil {
		return fmt.Errorf("failed to remove course member: %w", err)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, courseID)
	return nil
}

func removeID(ids []string, userID string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}

// ===== VALIDATION AND CHECKS =====

func (c *CoursePostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	db := c.getDB(tx)
	var count int64
	err := db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check course existence: %w", err)
	}
	return count > 0, nil
}

func (c *CoursePostgreSQL) ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *string) (bool, error) {
	db := c.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Course{}).Where("code = ?", code)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check course code existence: %w", err)
	}
	return count > 0, nil
}
