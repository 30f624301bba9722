// Package store holds the persistent models and their GORM repositories.
package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Media processing states.
const (
	MediaStatusPending    = "pending"
	MediaStatusProcessing = "processing"
	MediaStatusCompleted  = "completed"
	MediaStatusFailed     = "failed"
)

// Account is a registered user. The password hash never leaves the store
// boundary: it is excluded from JSON and only the auth service reads it.
type Account struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BeforeCreate assigns an id when none was set.
func (a *Account) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Media is an uploaded audio/video file owned by an account.
type Media struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	AccountID   string    `gorm:"index;size:36;not null" json:"accountId"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	StoragePath string    `gorm:"size:512;not null" json:"-"`
	Size        int64     `json:"size"`
	ContentType string    `gorm:"size:128" json:"contentType"`
	Status      string    `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeCreate assigns an id when none was set.
func (m *Media) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Transcript is the stored result of a transcription run, one per media.
type Transcript struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	MediaID         string    `gorm:"uniqueIndex;size:36;not null" json:"mediaId"`
	Text            string    `gorm:"type:text" json:"text"`
	Language        string    `gorm:"size:16" json:"language,omitempty"`
	DurationSeconds float64   `json:"durationSeconds,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// BeforeCreate assigns an id when none was set.
func (t *Transcript) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Models returns every model for auto-migration.
func Models() []interface{} {
	return []interface{}{&Account{}, &Media{}, &Transcript{}}
}
