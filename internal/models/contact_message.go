package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactMessage is an accepted contact form submission. Rows are append-only.
type ContactMessage struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:320;not null" json:"email"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
	IP        string    `gorm:"column:ip;size:64" json:"ip"`
	UserAgent string    `gorm:"size:512" json:"user_agent"`
}

// TableName keeps the historical table name.
func (ContactMessage) TableName() string {
	return "contact_messages"
}

// BeforeCreate assigns a UUID identifier when none is set.
func (m *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
