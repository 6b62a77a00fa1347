package models

import (
	"time"

	"gorm.io/datatypes"
)

// Evaluation holds the four rated criteria of an idea, each in [1,10].
type Evaluation struct {
	Impact      int `json:"impact"`
	Feasibility int `json:"feasibility"`
	Alignment   int `json:"alignment"`
	Urgency     int `json:"urgency"`
}

// Attachment references a file or link on an idea. Inline attachments carry
// their content as a data: URL.
type Attachment struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
	Inline      bool   `json:"inline,omitempty"`
}

type Idea struct {
	ID          string                          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Title       string                          `gorm:"type:varchar(255);not null" json:"title"`
	Category    string                          `gorm:"type:varchar(100);not null" json:"category"`
	Description string                          `gorm:"type:text" json:"description"`
	Proposer    string                          `gorm:"type:varchar(255)" json:"proposer"`
	Attachments datatypes.JSONSlice[Attachment] `json:"attachments"`
	Evaluation  *Evaluation                     `gorm:"serializer:json" json:"evaluation,omitempty"`
	Score       float64                         `json:"score"`
	Tier        string                          `gorm:"type:varchar(20)" json:"tier,omitempty"`
	CreatedAt   time.Time                       `json:"created_at"`
	UpdatedAt   time.Time                       `json:"updated_at"`
}

func (i Idea) GetID() string { return i.ID }

func (Idea) TableName() string { return "ideas" }
