package models

import "time"

type KPI struct {
	ID            string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Perspective   string    `gorm:"type:varchar(255)" json:"perspective"`
	Objective     string    `gorm:"type:text" json:"objective"`
	Indicator     string    `gorm:"type:varchar(255);not null" json:"indicator"`
	CurrentValue  float64   `json:"current_value"`
	TargetValue   float64   `json:"target_value"`
	Unit          string    `gorm:"type:varchar(50)" json:"unit"`
	AutoCalculate bool      `json:"auto_calculate"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (k KPI) GetID() string { return k.ID }

func (KPI) TableName() string { return "kpis" }
