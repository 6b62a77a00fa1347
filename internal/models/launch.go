package models

import (
	"time"

	"gorm.io/datatypes"
)

// Phase is a stage in the release lifecycle.
type Phase string

const (
	PhasePreProduction Phase = "pre-production"
	PhaseProduction    Phase = "production"
	PhasePreRelease    Phase = "pre-release"
	PhaseRelease       Phase = "release"
	PhasePostRelease   Phase = "post-release"
)

// Phases lists every phase in lifecycle order.
var Phases = []Phase{
	PhasePreProduction,
	PhaseProduction,
	PhasePreRelease,
	PhaseRelease,
	PhasePostRelease,
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	for _, known := range Phases {
		if p == known {
			return true
		}
	}
	return false
}

type ActionStatus string

const (
	ActionStatusPending    ActionStatus = "pending"
	ActionStatusInProgress ActionStatus = "in-progress"
	ActionStatusCompleted  ActionStatus = "completed"
	ActionStatusDelayed    ActionStatus = "delayed"
)

// Valid reports whether s is a known action status.
func (s ActionStatus) Valid() bool {
	switch s {
	case ActionStatusPending, ActionStatusInProgress, ActionStatusCompleted, ActionStatusDelayed:
		return true
	}
	return false
}

// Action is one step of a launch timeline. Actions are stored inline on the launch.
type Action struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Phase        Phase        `json:"phase"`
	Owner        string       `json:"owner"`
	Participants []string     `json:"participants"`
	StartDate    Date         `json:"start_date"`
	EndDate      Date         `json:"end_date"`
	Status       ActionStatus `json:"status"`
	Priority     Priority     `json:"priority"`
	Subtasks     []Subtask    `json:"subtasks"`
}

type Launch struct {
	ID           string                      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	SongName     string                      `gorm:"type:varchar(255);not null" json:"song_name"`
	Artist       string                      `gorm:"type:varchar(255)" json:"artist"`
	LaunchDate   Date                        `gorm:"type:varchar(10)" json:"launch_date"`
	Description  string                      `gorm:"type:text" json:"description"`
	Participants datatypes.JSONSlice[string] `json:"participants"`
	Actions      datatypes.JSONSlice[Action] `json:"actions"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

func (l Launch) GetID() string { return l.ID }

// FindAction returns the index of the action with the given id, or -1.
func (l *Launch) FindAction(actionID string) int {
	for i, a := range l.Actions {
		if a.ID == actionID {
			return i
		}
	}
	return -1
}

func (Launch) TableName() string { return "launches" }
