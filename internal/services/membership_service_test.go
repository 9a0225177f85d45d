package services

import (
	"context"
	"errors"
	"testing"

	"github.com/CSD-2025/coursehub-service/internal/events"
	"github.com/CSD-2025/coursehub-service/internal/models"
)

func TestReconcileBatch_PerRecordOutcomes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addUser(t, "prof-1", "prof@x.com", models.RoleProfessor)
	env.addUser(t, "user-c", "c@x.com", models.RoleTA)
	course := env.addCourse(t, "course-1", "CS101", "prof-1")
	course.TAIDs = append(course.TAIDs, "user-c")

	actor := credential("prof-1", models.RoleProfessor)
	records := []models.MemberRecord{
		{Name: "A", Email: "a@x.com"},
		{Name: "B", Email: ""},
		{Name: "C", Email: "c@x.com"},
	}

	result, err := env.membership.ReconcileBatch(ctx, "course-1", models.MemberStudent, records, actor)
	if err != nil {
		t.Fatalf("ReconcileBatch failed: %v", err)
	}

	if len(result.Records) != 3 {
		t.Fatalf("expected 3 record results, got %d", len(result.Records))
	}
	if result.Succeeded != 1 || result.Failed != 2 {
		t.Errorf("expected 1 success / 2 failures, got %d / %d", result.Succeeded, result.Failed)
	}

	if result.Records[0].Outcome != models.OutcomeSuccess {
		t.Errorf("record 0: expected success, got %s (%s)", result.Records[0].Outcome, result.Records[0].Reason)
	}
	if result.Records[1].Reason != models.ReasonMissingField {
		t.Errorf("record 1: expected missing_field, got %s", result.Records[1].Reason)
	}
	if result.Records[2].Reason != models.ReasonRoleConflict {
		t.Errorf("record 2: expected role_conflict, got %s", result.Records[2].Reason)
	}

	// Exactly one new student: A.
	if len(course.StudentIDs) != 1 {
		t.Fatalf("expected 1 student in course, got %d", len(course.StudentIDs))
	}
	added, err := env.repo.users.GetByEmail(ctx, nil, "a@x.com")
	if err != nil {
		t.Fatalf("user a@x.com was not created: %v", err)
	}
	if course.StudentIDs[0] != added.ID {
		t.Errorf("expected student id %s, got %s", added.ID, course.StudentIDs[0])
	}
}

func TestReconcileBatch_CreatesUserWithGeneratedCredential(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addUser(t, "prof-1", "prof@x.com", models.RoleProfessor)
	env.addCourse(t, "course-1", "CS101", "prof-1")
	actor := credential("prof-1", models.RoleProfessor)

	result, err := env.membership.ReconcileBatch(ctx, "course-1", models.MemberStudent,
		[]models.MemberRecord{{Name: "New Person", Email: "New@X.com"}}, actor)
	if err != nil {
		t.Fatalf("ReconcileBatch failed: %v", err)
	}
	if result.Succeeded != 1 {
		t.Fatalf("expected success, got %+v", result.Records[0])
	}

	// Email is canonicalized and the account carries a hashed credential.
	user, err := env.repo.users.GetByEmail(ctx, nil, "new@x.com")
	if err != nil {
		t.Fatalf("user not created under canonical email: %v", err)
	}
	if user.Email != "new@x.com" {
		t.Errorf("expected lower-cased email, got %q", user.Email)
	}
	if len(user.CredentialHash) == 0 {
		t.Error("expected a generated credential hash")
	}
	if len(user.Roles) != 1 || user.Roles[0] != models.RoleStudent {
		t.Errorf("expected roles [student], got %v", user.Roles)
	}
}

func TestReconcileBatch_MissingNameForNewUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addUser(t, "prof-1", "prof@x.com", models.RoleProfessor)
	env.addCourse(t, "course-1", "CS101", "prof-1")
	actor := credential("prof-1", models.RoleProfessor)

	result, err := env.membership.ReconcileBatch(ctx, "course-1", models.MemberStudent,
		[]models.MemberRecord{{Name: "  ", Email: "ghost@x.com"}}, actor)
	if err != nil {
		t.Fatalf("ReconcileBatch failed: %v", err)
	}
	if result.Records[0].Reason != models.ReasonMissingField {
		t.Errorf("expected missing_field for unnamed new user, got %s", result.Records[0].Reason)
	}
	if exists, _ := env.repo.users.ExistsByEmail(ctx, nil, "ghost@x.com"); exists {
		t.Error("no user should be created for a failed record")
	}
}

func TestReconcileBatch_WidensStudentToTA(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addUser(t, "prof-1", "prof@x.com", models.RoleProfessor)
	student := env.addUser(t, "stud-1", "s1@x.com", models.RoleStudent)
	env.addCourse(t, "course-1", "CS101", "prof-1")
	actor := credential("prof-1", models.RoleProfessor)

	result, err := env.membership.ReconcileBatch(ctx, "course-1", models.MemberTA,
		[]models.MemberRecord{{Name: "S1", Email: "s1@x.com"}}, actor)
	if err != nil {
		t.Fatalf("ReconcileBatch failed: %v", err)
	}
	if result.Succeeded != 1 {
		t.Fatalf("expected success, got %+v", result.Records[0])
	}
	if !student.HasRole(models.RoleTA) || !student.HasRole(models.RoleStudent) {
		t.Errorf("expected widened role set {student, ta}, got %v", student.Roles)
	}
}

func TestReconcileBatch_ProfessorCannotBecomeTA(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addUser(t, "prof-1", "prof@x.com", models.RoleProfessor)
	env.addUser(t, "prof-2", "p2@x.com", models.RoleProfessor)
	env.addCourse(t, "course-1", "CS101", "prof-1")
	actor := credential("prof-1", models.RoleProfessor)

	result, err := env.membership.ReconcileBatch(ctx, "course-1", models.MemberTA,
		[]models.MemberRecord{{Name: "P2", Email: "p2@x.com"}}, actor)
	if err != nil {
		t.Fatalf("ReconcileBatch failed: %v", err)
	}
	if result.Records[0].Reason != models.ReasonInvalidRole {
		t.Errorf("expected invalid_role, got %+v", result.Records[0])
	}
}

func TestReconcileBatch_DisjointAcrossOrderings(t *testing.T) {
	// The same user offered as TA and student in either order must end up
	// in exactly one member list.
	orderings := [][]models.MemberType{
		{models.MemberTA, models.MemberStudent},
		{models.MemberStudent, models.MemberTA},
	}

	for _, order := range orderings {
		env := newTestEnv(t)
		ctx := context.Background()

		env.addUser(t, "prof-1", "prof@x.com", models.RoleProfessor)
		env.addUser(t, "dual", "dual@x.com", models.RoleStudent)
		course := env.addCourse(t, "course-1", "CS101", "prof-1")
		actor := credential("prof-1", models.RoleProfessor)

		for _, mt := range order {
			if _, err := env.membership.ReconcileBatch(ctx, "course-1", mt,
				[]models.MemberRecord{{Name: "Dual", Email: "dual@x.com"}}, actor); err != nil {
				t.Fatalf("ReconcileBatch(%v) failed: %v", mt, err)
			}
		}

		inTA := course.HasTA("dual")
		inStudent := course.HasStudent("dual")
		if inTA && inStudent {
			t.Errorf("ordering %v: user is in both member lists", order)
		}
		if !inTA && !inStudent {
			t.Errorf("ordering %v: user is in neither member list", order)
		}
	}
}

func TestReconcileBatch_AlreadyMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addUser(t, "prof-1", "prof@x.com", models.RoleProfessor)
	env.addUser(t, "stud-1", "s1@x.com", models.RoleStudent)
	course := env.addCourse(t, "course-1", "CS101", "prof-1")
	course.StudentIDs = append(course.StudentIDs, "stud-1")
	actor := credential("prof-1", models.RoleProfessor)

	result, err := env.membership.ReconcileBatch(ctx, "course-1", models.MemberStudent,
		[]models.MemberRecord{{Name: "S1", Email: "s1@x.com"}}, actor)
	if err != nil {
		t.Fatalf("ReconcileBatch failed: %v", err)
	}
	if result.Records[0].Reason != models.ReasonAlreadyMember {
		t.Errorf("expected already_member, got %+v", result.Records[0])
	}
	if len(course.StudentIDs) != 1 {
		t.Errorf("member list must be unchanged, got %v", course.StudentIDs)
	}
}

func TestReconcileBatch_RequiresManageStanding(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addUser(t, "prof-1", "prof@x.com", models.RoleProfessor)
	env.addUser(t, "ta-1", "ta1@x.com", models.RoleTA)
	course := env.addCourse(t, "course-1", "CS101", "prof-1")
	course.TAIDs = append(course.TAIDs, "ta-1")

	// A TA of the course may operate it but not change membership.
	ta := credential("ta-1", models.RoleTA, models.RoleTA, models.RoleStudent)
	_, err := env.membership.ReconcileBatch(ctx, "course-1", models.MemberStudent,
		[]models.MemberRecord{{Name: "A", Email: "a@x.com"}}, ta)
	if !IsPermissionError(err) {
		t.Fatalf("expected permission error, got %v", err)
	}
}

func TestAddMember_Direct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addUser(t, "prof-1", "prof@x.com", models.RoleProfessor)
	env.addUser(t, "stud-1", "s1@x.com", models.RoleStudent)
	course := env.addCourse(t, "course-1", "CS101", "prof-1")
	actor := credential("prof-1", models.RoleProfessor)

	if err := env.membership.AddMember(ctx, "course-1", models.MemberStudent, "stud-1", actor); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if !course.HasStudent("stud-1") {
		t.Fatal("student not added")
	}

	if err := env.membership.AddMember(ctx, "course-1", models.MemberStudent, "stud-1", actor); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("expected ErrAlreadyMember, got %v", err)
	}
	if err := env.membership.AddMember(ctx, "course-1", models.MemberTA, "stud-1", actor); !errors.Is(err, ErrRoleConflict) {
		t.Errorf("expected ErrRoleConflict, got %v", err)
	}
}

func TestAddMember_PublishesEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addUser(t, "prof-1", "prof@x.com", models.RoleProfessor)
	env.addUser(t, "stud-1", "s1@x.com", models.RoleStudent)
	env.addCourse(t, "course-1", "CS101", "prof-1")
	actor := credential("prof-1", models.RoleProfessor)

	if err := env.membership.AddMember(ctx, "course-1", models.MemberStudent, "stud-1", actor); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	published := env.publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(published))
	}
	if published[0].Type != events.EventMemberAdded {
		t.Errorf("expected %s, got %s", events.EventMemberAdded, published[0].Type)
	}
}

func TestReconcileAnswerSheetArchive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addUser(t, "prof-1", "prof@x.com", models.RoleProfessor)
	student := env.addUser(t, "stud-1", "f20220333@goa.bits-pilani.ac.in", models.RoleStudent)
	course := env.addCourse(t, "course-1", "CS101", "prof-1")
	course.StudentIDs = append(course.StudentIDs, student.ID)
	actor := credential("prof-1", models.RoleProfessor)

	entries := []models.ArchiveEntry{
		{IdentifierToken: "2022A8B10333G.pdf", ArtifactRef: "sheets/2022A8B10333G.pdf"},
		{IdentifierToken: "notes.txt", ArtifactRef: "sheets/notes.txt"},
		{IdentifierToken: "2021A3PS0442G.pdf", ArtifactRef: "sheets/2021A3PS0442G.pdf"},
	}

	result, err := env.membership.ReconcileAnswerSheetArchive(ctx, "course-1", models.ExamQuiz, entries, actor)
	if err != nil {
		t.Fatalf("ReconcileAnswerSheetArchive failed: %v", err)
	}

	if result.Records[0].Outcome != models.OutcomeSuccess {
		t.Errorf("record 0: expected success, got %+v", result.Records[0])
	}
	if result.Records[0].Status != models.UpsertCreated {
		t.Errorf("record 0: expected created status, got %s", result.Records[0].Status)
	}
	if result.Records[1].Reason != models.ReasonUnrecognizedIdentifier {
		t.Errorf("record 1: expected unrecognized_identifier, got %+v", result.Records[1])
	}
	if result.Records[2].Reason != models.ReasonUserNotFound {
		t.Errorf("record 2: expected user_not_found, got %+v", result.Records[2])
	}

	sheet, err := env.repo.sheets.GetByTuple(ctx, nil, "course-1", student.ID, models.ExamQuiz)
	if err != nil {
		t.Fatalf("sheet not stored: %v", err)
	}
	if sheet.FileRef != "sheets/2022A8B10333G.pdf" {
		t.Errorf("unexpected file ref %q", sheet.FileRef)
	}

	// Re-running the same archive updates instead of duplicating.
	result, err = env.membership.ReconcileAnswerSheetArchive(ctx, "course-1", models.ExamQuiz, entries[:1], actor)
	if err != nil {
		t.Fatalf("second reconcile failed: %v", err)
	}
	if result.Records[0].Status != models.UpsertUpdated {
		t.Errorf("expected updated status on re-run, got %s", result.Records[0].Status)
	}
}

func TestReconcileAnswerSheetArchive_UnenrolledAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addUser(t, "prof-1", "prof@x.com", models.RoleProfessor)
	// Account exists but the student is not enrolled in this course.
	env.addUser(t, "stud-2", "f20230555@goa.bits-pilani.ac.in", models.RoleStudent)
	env.addCourse(t, "course-1", "CS101", "prof-1")
	actor := credential("prof-1", models.RoleProfessor)

	result, err := env.membership.ReconcileAnswerSheetArchive(ctx, "course-1", models.ExamQuiz, []models.ArchiveEntry{
		{IdentifierToken: "2023A7PS0555G.pdf", ArtifactRef: "sheets/2023A7PS0555G.pdf"},
	}, actor)
	if err != nil {
		t.Fatalf("ReconcileAnswerSheetArchive failed: %v", err)
	}
	if result.Failed != 1 || result.Records[0].Reason != models.ReasonUserNotFound {
		t.Errorf("expected per-entry user_not_found, got %+v", result.Records[0])
	}
}

func TestReconcileAnswerSheetArchive_RequiresCourseStaff(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addUser(t, "prof-1", "prof@x.com", models.RoleProfessor)
	env.addUser(t, "stud-1", "stud@x.com", models.RoleStudent)
	env.addCourse(t, "course-1", "CS101", "prof-1")

	_, err := env.membership.ReconcileAnswerSheetArchive(ctx, "course-1", models.ExamQuiz, nil,
		credential("stud-1", models.RoleStudent))
	if !IsPermissionError(err) {
		t.Errorf("expected permission error, got %v", err)
	}
}
