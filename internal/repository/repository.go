package repository

import (
	"context"

	"github.com/yukikurage/release-planner/internal/models"
)

// Remote table names.
const (
	TableTasks        = "tasks"
	TableKPIs         = "kpis"
	TableLaunches     = "launches"
	TablePublications = "publications"
	TableIdeas        = "ideas"
	TableParticipants = "participants"
	TablePerspectives = "perspectives"
)

// EntityRepository is the remote store for one entity table: whole-table
// reads, row upserts and row deletes. Every successful write is announced
// on the change feed.
type EntityRepository[T models.Entity] interface {
	// Table returns the remote table name
	Table() string

	// List returns the whole table ordered by its natural key, then id
	List(ctx context.Context) ([]T, error)

	// Upsert inserts or replaces the row with the item's id
	Upsert(ctx context.Context, item *T) error

	// Delete removes the row with the given id
	Delete(ctx context.Context, id string) error
}

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// Create creates a new account
	Create(account *models.Account) error

	// FindByID finds an account by ID
	FindByID(id uint64) (*models.Account, error)

	// FindByUsername finds an account by username
	FindByUsername(username string) (*models.Account, error)
}
