package models

import (
	"time"

	"gorm.io/datatypes"
)

type PublicationStatus string

const (
	PublicationStatusPlanned    PublicationStatus = "planned"
	PublicationStatusInProgress PublicationStatus = "in-progress"
	PublicationStatusPublished  PublicationStatus = "published"
	PublicationStatusCancelled  PublicationStatus = "cancelled"
)

// Valid reports whether s is a known publication status.
func (s PublicationStatus) Valid() bool {
	switch s {
	case PublicationStatusPlanned, PublicationStatusInProgress, PublicationStatusPublished, PublicationStatusCancelled:
		return true
	}
	return false
}

type Publication struct {
	ID          string                      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Title       string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Date        Date                        `gorm:"type:varchar(10)" json:"date"`
	Time        string                      `gorm:"type:varchar(5)" json:"time"`
	Phase       Phase                       `gorm:"type:varchar(20)" json:"phase"`
	Platform    string                      `gorm:"type:varchar(100)" json:"platform"`
	ContentType string                      `gorm:"type:varchar(100)" json:"content_type"`
	Responsible datatypes.JSONSlice[string] `json:"responsible"`
	Status      PublicationStatus           `gorm:"type:varchar(20);not null" json:"status"`
	LaunchID    string                      `gorm:"type:varchar(64)" json:"launch_id,omitempty"`
	Objectives  string                      `gorm:"type:text" json:"objectives"`
	Audience    string                      `gorm:"type:text" json:"audience"`
	Hashtags    datatypes.JSONSlice[string] `json:"hashtags"`
	Notes       string                      `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (p Publication) GetID() string { return p.ID }

func (Publication) TableName() string { return "publications" }
