package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleProfessor  Role = "professor"
	RoleTA         Role = "ta"
	RoleStudent    Role = "student"
)

// AllRoles lists every role a user record may carry.
var AllRoles = []Role{RoleSuperAdmin, RoleProfessor, RoleTA, RoleStudent}

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleProfessor, RoleTA, RoleStudent:
		return true
	}
	return false
}

// User is the identity record. Roles is a non-empty set: super_admin and
// professor are always singleton sets; otherwise the set is a subset of
// {student, ta}. CredentialHash is nil for OAuth-only accounts.
type User struct {
	ID             string                    `json:"id" gorm:"primaryKey;size:255"`
	Name           string                    `json:"name" gorm:"not null;size:100"`
	Email          string                    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Roles          datatypes.JSONSlice[Role] `json:"roles" gorm:"not null"`
	CredentialHash []byte                    `json:"-" gorm:"column:credential_hash"`
	OAuthSubject   *string                   `json:"-" gorm:"column:oauth_subject;size:255;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) IsSuperAdmin() bool { return u.HasRole(RoleSuperAdmin) }
func (u *User) IsProfessor() bool  { return u.HasRole(RoleProfessor) }
func (u *User) IsTA() bool         { return u.HasRole(RoleTA) }
func (u *User) IsStudent() bool    { return u.HasRole(RoleStudent) }

// SetCredential hashes and stores the given secret.
func (u *User) SetCredential(secret string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.CredentialHash = hash
	return nil
}

// CheckCredential compares the given secret against the stored hash.
// Fails for OAuth-only accounts, which carry no hash.
func (u *User) CheckCredential(secret string) error {
	return bcrypt.CompareHashAndPassword(u.CredentialHash, []byte(secret))
}

// ValidRoleSet reports whether roles is a non-empty set satisfying the user
// invariant: super_admin and professor are singletons, anything else is a
// subset of {student, ta} with no duplicates.
func ValidRoleSet(roles []Role) bool {
	if len(roles) == 0 {
		return false
	}
	seen := make(map[Role]bool, len(roles))
	for _, r := range roles {
		if !r.Valid() || seen[r] {
			return false
		}
		seen[r] = true
	}
	if seen[RoleSuperAdmin] || seen[RoleProfessor] {
		return len(roles) == 1
	}
	return true
}
