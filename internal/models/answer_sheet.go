package models

import (
	"time"

	"gorm.io/gorm"
)

type ExamType string

const (
	ExamQuiz       ExamType = "quiz"
	ExamAssignment ExamType = "assignment"
	ExamExam       ExamType = "exam"
	ExamMidterm    ExamType = "midterm"
	ExamFinal      ExamType = "final"
)

func (e ExamType) Valid() bool {
	switch e {
	case ExamQuiz, ExamAssignment, ExamExam, ExamMidterm, ExamFinal:
		return true
	}
	return false
}

// AnswerSheet holds one uploaded sheet per (course, student, exam type).
// A second upload for the same tuple overwrites FileRef and UploadedByID
// instead of creating a duplicate row.
type AnswerSheet struct {
	ID           string   `json:"id" gorm:"primaryKey;size:255"`
	CourseID     string   `json:"course_id" gorm:"not null;size:255;index;uniqueIndex:idx_sheet_tuple"`
	StudentID    string   `json:"student_id" gorm:"not null;size:255;index;uniqueIndex:idx_sheet_tuple"`
	ExamType     ExamType `json:"exam_type" gorm:"not null;size:20;uniqueIndex:idx_sheet_tuple" validate:"required,oneof=quiz assignment exam midterm final"`
	FileRef      string   `json:"file_ref" gorm:"not null;size:500"`
	UploadedByID string   `json:"uploaded_by_id" gorm:"not null;size:255"`

	UploadedAt time.Time      `json:"uploaded_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Course     Course `json:"course" gorm:"foreignKey:CourseID"`
	Student    User   `json:"student" gorm:"foreignKey:StudentID"`
	UploadedBy User   `json:"uploaded_by" gorm:"foreignKey:UploadedByID"`
}

func (AnswerSheet) TableName() string {
	return "answer_sheets"
}
