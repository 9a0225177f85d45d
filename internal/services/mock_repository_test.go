package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/CSD-2025/coursehub-service/internal/models"
	"github.com/CSD-2025/coursehub-service/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests.
type mockRepository struct {
	users    *mockUserRepo
	courses  *mockCourseRepo
	sheets   *mockSheetRepo
	rechecks *mockRecheckRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:    &mockUserRepo{users: map[string]*models.User{}},
		courses:  &mockCourseRepo{courses: map[string]*models.Course{}},
		sheets:   &mockSheetRepo{sheets: map[string]*models.AnswerSheet{}},
		rechecks: &mockRecheckRepo{requests: map[string]*models.RecheckRequest{}},
	}
}

func (m *mockRepository) User() repositories.UserRepository               { return m.users }
func (m *mockRepository) Course() repositories.CourseRepository           { return m.courses }
func (m *mockRepository) AnswerSheet() repositories.AnswerSheetRepository { return m.sheets }
func (m *mockRepository) Recheck() repositories.RecheckRepository         { return m.rechecks }
func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== USERS =====

type mockUserRepo struct {
	users map[string]*models.User
}

func (m *mockUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error) {
	out := []*models.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) GetByOAuthSubject(ctx context.Context, tx *gorm.DB, subject string) (*models.User, error) {
	for _, u := range m.users {
		if u.OAuthSubject != nil && *u.OAuthSubject == subject {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) UpdateRoles(ctx context.Context, tx *gorm.DB, id string, roles []models.Role) error {
	u, ok := m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Roles = roles
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	out := []*models.User{}
	for _, u := range m.users {
		if filters.Role != nil && !u.HasRole(*filters.Role) {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*models.User, error) {
	out := []*models.User{}
	for _, email := range emails {
		if u, err := m.GetByEmail(ctx, tx, email); err == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	_, ok := m.users[id]
	return ok, nil
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, tx, email)
	return err == nil, nil
}

func (m *mockUserRepo) HasRole(ctx context.Context, tx *gorm.DB, id string, role models.Role) (bool, error) {
	u, ok := m.users[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	return u.HasRole(role), nil
}

// ===== COURSES =====

type mockCourseRepo struct {
	courses map[string]*models.Course
}

func (m *mockCourseRepo) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	for _, c := range m.courses {
		if c.Code == course.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return c, nil
}

func (m *mockCourseRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Course, error) {
	for _, c := range m.courses {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockCourseRepo) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if _, ok := m.courses[course.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	delete(m.courses, id)
	return nil
}

func (m *mockCourseRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	out := []*models.Course{}
	for _, c := range m.courses {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (m *mockCourseRepo) GetByProfessor(ctx context.Context, tx *gorm.DB, professorID string, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	out := []*models.Course{}
	for _, c := range m.courses {
		if c.ProfessorID == professorID {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockCourseRepo) GetByMember(ctx context.Context, tx *gorm.DB, userID string, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	out := []*models.Course{}
	for _, c := range m.courses {
		if c.ProfessorID == userID || c.HasTA(userID) || c.HasStudent(userID) {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockCourseRepo) AddMember(ctx context.Context, tx *gorm.DB, courseID string, userID string, memberType models.MemberType) error {
	c, ok := m.courses[courseID]
	if !ok {
		return repositories.ErrNotFound
	}
	switch memberType {
	case models.MemberTA:
		if c.HasTA(userID) {
			return gorm.ErrDuplicatedKey
		}
		c.TAIDs = append(c.TAIDs, userID)
	case models.MemberStudent:
		if c.HasStudent(userID) {
			return gorm.ErrDuplicatedKey
		}
		c.StudentIDs = append(c.StudentIDs, userID)
	}
	return nil
}

func (m *mockCourseRepo) RemoveMember(ctx context.Context, tx *gorm.DB, courseID string, userID string, memberType models.MemberType) error {
	c, ok := m.courses[courseID]
	if !ok {
		return repositories.ErrNotFound
	}
	filter := func(ids []string) []string {
		out := []string{}
		for _, id := range ids {
			if id != userID {
				out = append(out, id)
			}
		}
		return out
	}
	switch memberType {
	case models.MemberTA:
		c.TAIDs = filter(c.TAIDs)
	case models.MemberStudent:
		c.StudentIDs = filter(c.StudentIDs)
	}
	return nil
}

func (m *mockCourseRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	_, ok := m.courses[id]
	return ok, nil
}

func (m *mockCourseRepo) ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *string) (bool, error) {
	for _, c := range m.courses {
		if c.Code == code && (excludeID == nil || c.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

// ===== ANSWER SHEETS =====

type mockSheetRepo struct {
	sheets map[string]*models.AnswerSheet
}

func (m *mockSheetRepo) key(courseID, studentID string, examType models.ExamType) string {
	return courseID + "/" + studentID + "/" + string(examType)
}

func (m *mockSheetRepo) Create(ctx context.Context, tx *gorm.DB, sheet *models.AnswerSheet) error {
	k := m.key(sheet.CourseID, sheet.StudentID, sheet.ExamType)
	if _, ok := m.sheets[k]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.sheets[k] = sheet
	return nil
}

func (m *mockSheetRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.AnswerSheet, error) {
	for _, s := range m.sheets {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockSheetRepo) Update(ctx context.Context, tx *gorm.DB, sheet *models.AnswerSheet) error {
	m.sheets[m.key(sheet.CourseID, sheet.StudentID, sheet.ExamType)] = sheet
	return nil
}

func (m *mockSheetRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	for k, s := range m.sheets {
		if s.ID == id {
			delete(m.sheets, k)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (m *mockSheetRepo) Upsert(ctx context.Context, tx *gorm.DB, sheet *models.AnswerSheet) (*models.AnswerSheet, bool, error) {
	k := m.key(sheet.CourseID, sheet.StudentID, sheet.ExamType)
	if existing, ok := m.sheets[k]; ok {
		existing.FileRef = sheet.FileRef
		existing.UploadedByID = sheet.UploadedByID
		return existing, false, nil
	}
	m.sheets[k] = sheet
	return sheet, true, nil
}

func (m *mockSheetRepo) GetByTuple(ctx context.Context, tx *gorm.DB, courseID, studentID string, examType models.ExamType) (*models.AnswerSheet, error) {
	s, ok := m.sheets[m.key(courseID, studentID, examType)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return s, nil
}

func (m *mockSheetRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID string, filters repositories.AnswerSheetFilters) ([]*models.AnswerSheet, int64, error) {
	out := []*models.AnswerSheet{}
	for _, s := range m.sheets {
		if s.CourseID != courseID {
			continue
		}
		if filters.ExamType != nil && s.ExamType != *filters.ExamType {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (m *mockSheetRepo) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.AnswerSheetFilters) ([]*models.AnswerSheet, int64, error) {
	out := []*models.AnswerSheet{}
	for _, s := range m.sheets {
		if s.StudentID == studentID {
			out = append(out, s)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockSheetRepo) ExistsByTuple(ctx context.Context, tx *gorm.DB, courseID, studentID string, examType models.ExamType) (bool, error) {
	_, ok := m.sheets[m.key(courseID, studentID, examType)]
	return ok, nil
}

// ===== RECHECKS =====

type mockRecheckRepo struct {
	requests map[string]*models.RecheckRequest
}

func (m *mockRecheckRepo) Create(ctx context.Context, tx *gorm.DB, request *models.RecheckRequest) error {
	m.requests[request.ID] = request
	return nil
}

func (m *mockRecheckRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.RecheckRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r, nil
}

func (m *mockRecheckRepo) Update(ctx context.Context, tx *gorm.DB, request *models.RecheckRequest) error {
	m.requests[request.ID] = request
	return nil
}

func (m *mockRecheckRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	delete(m.requests, id)
	return nil
}

func (m *mockRecheckRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID string, filters repositories.RecheckFilters) ([]*models.RecheckRequest, int64, error) {
	out := []*models.RecheckRequest{}
	for _, r := range m.requests {
		if r.CourseID != courseID {
			continue
		}
		if filters.Status != nil && r.Status != *filters.Status {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (m *mockRecheckRepo) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.RecheckFilters) ([]*models.RecheckRequest, int64, error) {
	out := []*models.RecheckRequest{}
	for _, r := range m.requests {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockRecheckRepo) GetPendingBySheet(ctx context.Context, tx *gorm.DB, sheetID string) ([]*models.RecheckRequest, error) {
	out := []*models.RecheckRequest{}
	for _, r := range m.requests {
		if r.AnswerSheetID == sheetID && r.Status == models.RecheckPending {
			out = append(out, r)
		}
	}
	return out, nil
}
