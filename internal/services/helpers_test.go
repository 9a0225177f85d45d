package services

import (
	"io"
	"log/slog"
	"testing"

	"github.com/CSD-2025/coursehub-service/internal/auth"
	"github.com/CSD-2025/coursehub-service/internal/events"
	"github.com/CSD-2025/coursehub-service/internal/models"
	"github.com/CSD-2025/coursehub-service/internal/validator"
)

type testEnv struct {
	repo      *mockRepository
	publisher *events.MockEventPublisher

	auth       AuthService
	users      UserService
	courses    CourseService
	membership MembershipService
	sheets     AnswerSheetService
	rechecks   RecheckService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	v := validator.New()
	issuer := auth.NewIssuer([]byte("test-secret"), 0, "coursehub-test")

	sheets := NewAnswerSheetService(repo, nil, logger, v, publisher)
	return &testEnv{
		repo:       repo,
		publisher:  publisher,
		auth:       NewAuthService(repo, nil, logger, v, issuer, nil),
		users:      NewUserService(repo, nil, logger, v),
		courses:    NewCourseService(repo, nil, logger, v),
		membership: NewMembershipService(repo, nil, logger, v, sheets, publisher),
		sheets:     sheets,
		rechecks:   NewRecheckService(repo, nil, logger, v, publisher),
	}
}

func (e *testEnv) addUser(t *testing.T, id, email string, roles ...models.Role) *models.User {
	t.Helper()
	user := &models.User{
		ID:    id,
		Name:  "User " + id,
		Email: email,
		Roles: roles,
	}
	e.repo.users.users[id] = user
	return user
}

func (e *testEnv) addCourse(t *testing.T, id, code, professorID string) *models.Course {
	t.Helper()
	course := &models.Course{
		ID:          id,
		Title:       "Course " + code,
		Code:        code,
		ProfessorID: professorID,
	}
	e.repo.courses.courses[id] = course
	return course
}

func credential(userID string, activeRole models.Role, roles ...models.Role) *auth.Credential {
	if len(roles) == 0 {
		roles = []models.Role{activeRole}
	}
	return &auth.Credential{
		UserID:     userID,
		Roles:      roles,
		ActiveRole: activeRole,
	}
}
