package lectures

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LectureStatusScheduled = "scheduled"
	LectureStatusCompleted = "completed"
	LectureStatusCancelled = "cancelled"
)

type Lecture struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TeacherID     uuid.UUID  `gorm:"type:uuid;column:teacher_id;not null;index" json:"teacher_id"`
	ClassID       *uuid.UUID `gorm:"type:uuid;column:class_id;index" json:"class_id,omitempty"`
	ScheduledDate time.Time  `gorm:"column:scheduled_date;type:date;not null;index" json:"scheduled_date"`
	TimeSlot      string     `gorm:"column:time_slot" json:"time_slot,omitempty"`
	LectureNumber *int       `gorm:"column:lecture_number" json:"lecture_number,omitempty"`
	Subject       string     `gorm:"column:subject" json:"subject,omitempty"`
	Grade         string     `gorm:"column:grade" json:"grade,omitempty"`
	Section       string     `gorm:"column:section" json:"section,omitempty"`
	Status        string     `gorm:"column:status;not null;default:'scheduled';index" json:"status"`

	// Paths are relative to the uploads root.
	VideoPath string `gorm:"column:video_path" json:"video_path,omitempty"`
	// AuxFiles maps upload field name (cobParams, readingMaterial, lessonPlan) to stored path.
	AuxFiles datatypes.JSON `gorm:"column:aux_files;type:jsonb" json:"aux_files,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Lecture) TableName() string { return "lecture" }

func ValidLectureStatus(s string) bool {
	switch s {
	case LectureStatusScheduled, LectureStatusCompleted, LectureStatusCancelled:
		return true
	default:
		return false
	}
}
