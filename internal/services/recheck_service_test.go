package services

import (
	"context"
	"errors"
	"testing"

	"github.com/CSD-2025/coursehub-service/internal/events"
	"github.com/CSD-2025/coursehub-service/internal/models"
)

func setupRecheckFixture(t *testing.T, env *testEnv) (sheetID string) {
	t.Helper()
	ctx := context.Background()

	env.addUser(t, "prof-1", "prof@x.com", models.RoleProfessor)
	env.addUser(t, "stud-1", "s1@x.com", models.RoleStudent)
	course := env.addCourse(t, "course-1", "CS101", "prof-1")
	course.StudentIDs = append(course.StudentIDs, "stud-1")

	resp, err := env.sheets.Upsert(ctx, &AnswerSheetUploadRequest{
		CourseID:  "course-1",
		StudentID: "stud-1",
		ExamType:  models.ExamMidterm,
		FileRef:   "ref1",
	}, credential("prof-1", models.RoleProfessor))
	if err != nil {
		t.Fatalf("fixture upsert failed: %v", err)
	}
	env.publisher.ClearEvents()
	return resp.Sheet.ID
}

func TestRecheckLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sheetID := setupRecheckFixture(t, env)

	req := &RecheckCreateRequest{
		CourseID:      "course-1",
		AnswerSheetID: sheetID,
		Message:       "please re-add question 3",
	}

	// Only the owning student, acting as student, may open a recheck.
	if _, err := env.rechecks.Create(ctx, req, credential("prof-1", models.RoleProfessor)); !IsPermissionError(err) {
		t.Fatalf("expected permission error, got %v", err)
	}
	request, err := env.rechecks.Create(ctx, req, credential("stud-1", models.RoleStudent))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if request.Status != models.RecheckPending {
		t.Errorf("expected pending status, got %s", request.Status)
	}

	// Resolution by the course professor publishes an event.
	response := "regraded, +2 marks"
	resolved := models.RecheckResolved
	updated, err := env.rechecks.Resolve(ctx, request.ID, &RecheckResolveRequest{
		Response: &response,
		Status:   &resolved,
	}, credential("prof-1", models.RoleProfessor))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if updated.Status != models.RecheckResolved || updated.Response == nil {
		t.Errorf("unexpected resolved state: %+v", updated)
	}

	published := env.publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.EventRecheckResolved {
		t.Errorf("expected one %s event, got %+v", events.EventRecheckResolved, published)
	}

	// A second resolution is refused.
	if _, err := env.rechecks.Resolve(ctx, request.ID, &RecheckResolveRequest{Status: &resolved},
		credential("prof-1", models.RoleProfessor)); !errors.Is(err, ErrRecheckAlreadyResolved) {
		t.Errorf("expected ErrRecheckAlreadyResolved, got %v", err)
	}
}

func TestRecheckResolve_RequiresCourseStaff(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sheetID := setupRecheckFixture(t, env)

	request, err := env.rechecks.Create(ctx, &RecheckCreateRequest{
		CourseID:      "course-1",
		AnswerSheetID: sheetID,
		Message:       "check totals",
	}, credential("stud-1", models.RoleStudent))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	resolved := models.RecheckResolved
	if _, err := env.rechecks.Resolve(ctx, request.ID, &RecheckResolveRequest{Status: &resolved},
		credential("stud-1", models.RoleStudent)); !IsPermissionError(err) {
		t.Errorf("expected permission error, got %v", err)
	}
}
