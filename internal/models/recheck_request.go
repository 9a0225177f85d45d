package models

import (
	"time"

	"gorm.io/gorm"
)

type RecheckStatus string

const (
	RecheckPending  RecheckStatus = "pending"
	RecheckResolved RecheckStatus = "resolved"
)

func (s RecheckStatus) Valid() bool {
	return s == RecheckPending || s == RecheckResolved
}

// RecheckRequest is a student's request to have one of their answer sheets
// re-evaluated. Created by the student owning the sheet; resolved by the
// course professor or a TA of that course.
type RecheckRequest struct {
	ID            string        `json:"id" gorm:"primaryKey;size:255"`
	CourseID      string        `json:"course_id" gorm:"not null;size:255;index"`
	AnswerSheetID string        `json:"answer_sheet_id" gorm:"not null;size:255;index"`
	StudentID     string        `json:"student_id" gorm:"not null;size:255;index"`
	Message       string        `json:"message" gorm:"not null;type:text" validate:"required,min=1,max=2000"`
	Response      *string       `json:"response" gorm:"type:text" validate:"omitempty,max=2000"`
	Status        RecheckStatus `json:"status" gorm:"not null;size:20;default:pending"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Course      Course      `json:"course" gorm:"foreignKey:CourseID"`
	AnswerSheet AnswerSheet `json:"answer_sheet" gorm:"foreignKey:AnswerSheetID"`
	Student     User        `json:"student" gorm:"foreignKey:StudentID"`
}

func (RecheckRequest) TableName() string {
	return "recheck_requests"
}
