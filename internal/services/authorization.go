package services

import (
	"github.com/CSD-2025/coursehub-service/internal/auth"
	"github.com/CSD-2025/coursehub-service/internal/models"
)

// Authorization decisions are made on the credential's active role only.
// Holding a role without having switched to it grants nothing.

// canManageCourse allows structural changes: update, delete, membership.
func canManageCourse(course *models.Course, actor *auth.Credential) bool {
	switch actor.ActiveRole {
	case models.RoleSuperAdmin:
		return true
	case models.RoleProfessor:
		return course.ProfessorID == actor.UserID
	}
	return false
}

// canOperateCourse allows day-to-day course work: uploading answer sheets,
// resolving rechecks. TAs of the course qualify alongside managers.
func canOperateCourse(course *models.Course, actor *auth.Credential) bool {
	if canManageCourse(course, actor) {
		return true
	}
	return actor.ActiveRole == models.RoleTA && course.HasTA(actor.UserID)
}

// canViewCourse allows read access. Enrolled students qualify alongside
// operators.
func canViewCourse(course *models.Course, actor *auth.Credential) bool {
	if canOperateCourse(course, actor) {
		return true
	}
	return actor.ActiveRole == models.RoleStudent && course.HasStudent(actor.UserID)
}

// membershipConflict reports the failure reason that adding user to the
// course under memberType would violate, or "" when the add is clean.
// A user is never both TA and student of the same course, and the course
// professor is never listed as either.
func membershipConflict(course *models.Course, user *models.User, memberType models.MemberType) models.FailureReason {
	if course.ProfessorID == user.ID {
		return models.ReasonRoleConflict
	}

	switch memberType {
	case models.MemberTA:
		if course.HasStudent(user.ID) {
			return models.ReasonRoleConflict
		}
		if course.HasTA(user.ID) {
			return models.ReasonAlreadyMember
		}
	case models.MemberStudent:
		if course.HasTA(user.ID) {
			return models.ReasonRoleConflict
		}
		if course.HasStudent(user.ID) {
			return models.ReasonAlreadyMember
		}
	default:
		return models.ReasonInvalidRole
	}

	return ""
}

// widenRoles returns the role set user needs to act as memberType, widening
// {student}⇄{student, ta} when allowed. The bool is false when the user's
// role set cannot legally carry the implied role.
func widenRoles(user *models.User, memberType models.MemberType) ([]models.Role, bool) {
	implied := memberType.Role()
	if user.HasRole(implied) {
		return user.Roles, true
	}

	widened := append(append([]models.Role{}, user.Roles...), implied)
	if !models.ValidRoleSet(widened) {
		return nil, false
	}
	return widened, true
}
