package lectures

import (
	"time"

	"github.com/google/uuid"
)

// Rubric rows are hard-deleted so the grade slot frees up.
type Rubric struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Grade    string    `gorm:"column:grade;not null;uniqueIndex" json:"grade"`
	FilePath string    `gorm:"column:file_path;not null" json:"file_path"`
	FileType string    `gorm:"column:file_type;not null" json:"file_type"`
	Content  string    `gorm:"column:content;type:text" json:"content"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Rubric) TableName() string { return "rubric" }
