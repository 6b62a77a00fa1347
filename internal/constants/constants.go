package constants

// Session / context keys
const (
	ContextKeyAccountID = "account_id"
	SessionName         = "release_session"
)

// Auth
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Assistant
const (
	MaxAIGeneratedDrafts = 10
)

// Scheduling
const (
	// ScheduledActionDays is the fixed duration given to auto-scheduled actions.
	ScheduledActionDays = 3
)
