package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/CSD-2025/coursehub-service/internal/models"
)

// Event types published by the service.
const (
	EventMemberAdded     = "course.member_added"
	EventSheetUploaded   = "answersheet.uploaded"
	EventRecheckResolved = "recheck.resolved"
)

// Event is the envelope placed on the bus. Data holds one of the payload
// structs below.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// New wraps a payload in an envelope with a fresh id and timestamp.
func New(eventType string, data interface{}) *Event {
	return &Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now(),
		Data:       data,
	}
}

// EventPublisher publishes domain events. Publishing is best-effort from the
// caller's point of view: services log failures and do not fail the request.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

type MemberAddedEvent struct {
	CourseID   string            `json:"course_id"`
	UserID     string            `json:"user_id"`
	MemberType models.MemberType `json:"member_type"`
	AddedByID  string            `json:"added_by_id"`
}

type SheetUploadedEvent struct {
	CourseID     string              `json:"course_id"`
	StudentID    string              `json:"student_id"`
	ExamType     models.ExamType     `json:"exam_type"`
	Status       models.UpsertStatus `json:"status"`
	UploadedByID string              `json:"uploaded_by_id"`
}

type RecheckResolvedEvent struct {
	RecheckID    string `json:"recheck_id"`
	CourseID     string `json:"course_id"`
	StudentID    string `json:"student_id"`
	ResolvedByID string `json:"resolved_by_id"`
}
