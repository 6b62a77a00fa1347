package models

import (
	"time"

	"gorm.io/datatypes"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID              string                       `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Perspective     string                       `gorm:"type:varchar(255)" json:"perspective"`
	Activity        string                       `gorm:"type:varchar(255);not null" json:"activity"`
	Description     string                       `gorm:"type:text" json:"description"`
	Owner           string                       `gorm:"type:varchar(64)" json:"owner"`
	Participants    datatypes.JSONSlice[string]  `json:"participants"`
	StartDate       Date                         `gorm:"type:varchar(10)" json:"start_date"`
	EndDate         Date                         `gorm:"type:varchar(10)" json:"end_date"`
	Status          TaskStatus                   `gorm:"type:varchar(20);not null" json:"status"`
	Priority        Priority                     `gorm:"type:varchar(20)" json:"priority"`
	Subtasks        datatypes.JSONSlice[Subtask] `json:"subtasks"`
	CalendarEventID string                       `gorm:"type:varchar(255)" json:"calendar_event_id,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
	UpdatedAt       time.Time                    `json:"updated_at"`
}

func (t Task) GetID() string { return t.ID }

func (Task) TableName() string { return "tasks" }
