package models

import "time"

// Entity is implemented by every record mirrored to the remote store.
type Entity interface {
	GetID() string
}

// DateLayout is the wire format of all calendar dates.
const DateLayout = "2006-01-02"

// Date is an ISO calendar date (YYYY-MM-DD). The empty Date means "unset".
type Date string

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Time parses the date at midnight UTC.
func (d Date) Time() (time.Time, bool) {
	if d == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Valid reports whether d is empty or a well-formed date.
func (d Date) Valid() bool {
	if d == "" {
		return true
	}
	_, ok := d.Time()
	return ok
}

// AddDays shifts the date by n days. Invalid dates are returned unchanged.
func (d Date) AddDays(n int) Date {
	t, ok := d.Time()
	if !ok {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other.
// ISO dates compare lexicographically.
func (d Date) Before(other Date) bool {
	return d < other
}

// Priority is shared by tasks and launch actions.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Subtask is a checklist item on a task or a launch action.
type Subtask struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// CompletedCount returns how many subtasks are done.
func CompletedCount(subtasks []Subtask) int {
	n := 0
	for _, st := range subtasks {
		if st.Completed {
			n++
		}
	}
	return n
}
