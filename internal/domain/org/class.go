package org

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Class struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SchoolID  *uuid.UUID `gorm:"type:uuid;column:school_id;index" json:"school_id,omitempty"`
	TeacherID *uuid.UUID `gorm:"type:uuid;column:teacher_id;index" json:"teacher_id,omitempty"`
	Grade     string     `gorm:"column:grade;not null;index" json:"grade"`
	Section   string     `gorm:"column:section;not null" json:"section"`
	Subject   string     `gorm:"column:subject" json:"subject,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Class) TableName() string { return "class" }
