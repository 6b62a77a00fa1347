package models

import "time"

// DefaultPerspectives are always offered, even when no custom perspective is stored.
var DefaultPerspectives = []string{
	"Financial",
	"Customer",
	"Internal Processes",
	"Learning & Growth",
}

// Perspective is a user-defined category. Deleting one does not touch the
// tasks or KPIs that reference it by name.
type Perspective struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (p Perspective) GetID() string { return p.ID }

func (Perspective) TableName() string { return "perspectives" }
