package services

import (
	"testing"

	"github.com/CSD-2025/coursehub-service/internal/models"
)

func TestCoursePolicy(t *testing.T) {
	course := &models.Course{
		ID:          "course-1",
		ProfessorID: "prof-1",
		TAIDs:       []string{"ta-1"},
		StudentIDs:  []string{"stud-1"},
	}

	tests := []struct {
		name    string
		actor   string
		active  models.Role
		roles   []models.Role
		manage  bool
		operate bool
		view    bool
	}{
		{"super admin", "root", models.RoleSuperAdmin, nil, true, true, true},
		{"own professor", "prof-1", models.RoleProfessor, nil, true, true, true},
		{"other professor", "prof-2", models.RoleProfessor, nil, false, false, false},
		{"course ta", "ta-1", models.RoleTA, nil, false, true, true},
		{"ta of another course", "ta-2", models.RoleTA, nil, false, false, false},
		{"enrolled student", "stud-1", models.RoleStudent, nil, false, false, true},
		{"outside student", "stud-2", models.RoleStudent, nil, false, false, false},
		// Role possession without activation grants nothing.
		{"inactive ta role", "ta-1", models.RoleStudent, []models.Role{models.RoleStudent, models.RoleTA}, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := credential(tt.actor, tt.active, tt.roles...)
			if got := canManageCourse(course, actor); got != tt.manage {
				t.Errorf("canManageCourse = %v, want %v", got, tt.manage)
			}
			if got := canOperateCourse(course, actor); got != tt.operate {
				t.Errorf("canOperateCourse = %v, want %v", got, tt.operate)
			}
			if got := canViewCourse(course, actor); got != tt.view {
				t.Errorf("canViewCourse = %v, want %v", got, tt.view)
			}
		})
	}
}

func TestWidenRoles(t *testing.T) {
	tests := []struct {
		name       string
		roles      []models.Role
		memberType models.MemberType
		want       []models.Role
		ok         bool
	}{
		{"student gains ta", []models.Role{models.RoleStudent}, models.MemberTA, []models.Role{models.RoleStudent, models.RoleTA}, true},
		{"ta gains student", []models.Role{models.RoleTA}, models.MemberStudent, []models.Role{models.RoleTA, models.RoleStudent}, true},
		{"already held", []models.Role{models.RoleStudent, models.RoleTA}, models.MemberTA, []models.Role{models.RoleStudent, models.RoleTA}, true},
		{"professor cannot gain ta", []models.Role{models.RoleProfessor}, models.MemberTA, nil, false},
		{"super admin cannot gain student", []models.Role{models.RoleSuperAdmin}, models.MemberStudent, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &models.User{ID: "u", Roles: tt.roles}
			got, ok := widenRoles(user, tt.memberType)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("roles = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("roles = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestMembershipConflict(t *testing.T) {
	course := &models.Course{
		ID:          "course-1",
		ProfessorID: "prof-1",
		TAIDs:       []string{"ta-1"},
		StudentIDs:  []string{"stud-1"},
	}

	tests := []struct {
		name       string
		userID     string
		memberType models.MemberType
		want       models.FailureReason
	}{
		{"clean ta add", "new-1", models.MemberTA, ""},
		{"clean student add", "new-1", models.MemberStudent, ""},
		{"student offered as ta", "stud-1", models.MemberTA, models.ReasonRoleConflict},
		{"ta offered as student", "ta-1", models.MemberStudent, models.ReasonRoleConflict},
		{"ta offered as ta again", "ta-1", models.MemberTA, models.ReasonAlreadyMember},
		{"student offered as student again", "stud-1", models.MemberStudent, models.ReasonAlreadyMember},
		{"professor offered as ta", "prof-1", models.MemberTA, models.ReasonRoleConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &models.User{ID: tt.userID}
			if got := membershipConflict(course, user, tt.memberType); got != tt.want {
				t.Errorf("membershipConflict = %q, want %q", got, tt.want)
			}
		})
	}
}
