package org

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type School struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name    string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Code    string    `gorm:"column:code;index" json:"code,omitempty"`
	Address string    `gorm:"column:address" json:"address,omitempty"`
	City    string    `gorm:"column:city" json:"city,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (School) TableName() string { return "school" }
