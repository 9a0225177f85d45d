package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course aggregates the per-course membership lists. Invariant: TAIDs and
// StudentIDs are disjoint at all times; membership is only mutated through
// the membership service, never by raw list append.
type Course struct {
	ID          string                      `json:"id" gorm:"primaryKey;size:255"`
	Title       string                      `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Code        string                      `json:"code" gorm:"uniqueIndex;not null;size:50" validate:"required,min=1,max=50"`
	Description *string                     `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	ProfessorID string                      `json:"professor_id" gorm:"not null;index;size:255"`
	TAIDs       datatypes.JSONSlice[string] `json:"ta_ids"`
	StudentIDs  datatypes.JSONSlice[string] `json:"student_ids"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Professor User `json:"professor" gorm:"foreignKey:ProfessorID"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) HasTA(userID string) bool {
	return containsID(c.TAIDs, userID)
}

func (c *Course) HasStudent(userID string) bool {
	return containsID(c.StudentIDs, userID)
}

// MemberRole returns the role userID holds in this course, or "" for none.
// The professor is not a member in this sense; check ProfessorID directly.
func (c *Course) MemberRole(userID string) Role {
	switch {
	case c.HasTA(userID):
		return RoleTA
	case c.HasStudent(userID):
		return RoleStudent
	}
	return ""
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
