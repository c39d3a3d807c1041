package org

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Teacher struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SchoolID *uuid.UUID `gorm:"type:uuid;column:school_id;index" json:"school_id,omitempty"`
	UserID   *uuid.UUID `gorm:"type:uuid;column:user_id;index" json:"user_id,omitempty"`
	Name     string     `gorm:"column:name;not null" json:"name"`
	Email    string     `gorm:"column:email;index" json:"email,omitempty"`
	Phone    string     `gorm:"column:phone" json:"phone,omitempty"`
	Subject  string     `gorm:"column:subject" json:"subject,omitempty"`

	// Relative to the uploads root.
	AvatarPath string `gorm:"column:avatar_path" json:"-"`
	AvatarHex  string `gorm:"column:avatar_hex" json:"avatar_color,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Teacher) TableName() string { return "teacher" }

// Initials returns up to two upper-case initials of the teacher's name.
func (t Teacher) Initials() string {
	fields := strings.Fields(t.Name)
	out := ""
	for _, f := range fields {
		r := []rune(f)
		if len(r) == 0 {
			continue
		}
		out += strings.ToUpper(string(r[0]))
		if len([]rune(out)) == 2 {
			break
		}
	}
	if out == "" {
		return "?"
	}
	return out
}
