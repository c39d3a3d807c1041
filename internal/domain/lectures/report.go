package lectures

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Report holds the analysis output for exactly one lecture.
type Report struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LectureID uuid.UUID `gorm:"type:uuid;column:lecture_id;not null;uniqueIndex" json:"lecture_id"`

	AnalysisData  datatypes.JSON `gorm:"column:analysis_data;type:jsonb;not null" json:"analysis_data"`
	RubricScores  datatypes.JSON `gorm:"column:rubric_scores;type:jsonb" json:"rubric_scores,omitempty"`
	GeneratedByAI bool           `gorm:"column:generated_by_ai;not null" json:"generated_by_ai"`
	Model         string         `gorm:"column:model" json:"model,omitempty"`

	// Relative to the uploads root; empty until rendered.
	PDFPath string `gorm:"column:pdf_path" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Report) TableName() string { return "report" }
