package repository

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/release-planner/internal/metrics"
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/realtime"
)

var _ EntityRepository[models.Task] = (*GormEntityRepository[models.Task])(nil)

// GormEntityRepository is a GORM implementation of EntityRepository
type GormEntityRepository[T models.Entity] struct {
	db     *gorm.DB
	feed   realtime.Feed
	logger *slog.Logger
	table  string
	order  []string
	now    func() time.Time
}

// NewEntityRepository creates a repository for table, ordered by the given
// natural-key columns. feed may be nil when no one listens for changes.
func NewEntityRepository[T models.Entity](db *gorm.DB, feed realtime.Feed, logger *slog.Logger, table string, order ...string) *GormEntityRepository[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &GormEntityRepository[T]{
		db:     db,
		feed:   feed,
		logger: logger,
		table:  table,
		order:  order,
		now:    time.Now,
	}
}

// NewTaskRepository orders tasks by start date
func NewTaskRepository(db *gorm.DB, feed realtime.Feed, logger *slog.Logger) *GormEntityRepository[models.Task] {
	return NewEntityRepository[models.Task](db, feed, logger, TableTasks, "start_date", "activity")
}

// NewKPIRepository orders KPIs by perspective and indicator
func NewKPIRepository(db *gorm.DB, feed realtime.Feed, logger *slog.Logger) *GormEntityRepository[models.KPI] {
	return NewEntityRepository[models.KPI](db, feed, logger, TableKPIs, "perspective", "indicator")
}

// NewLaunchRepository orders launches by launch date
func NewLaunchRepository(db *gorm.DB, feed realtime.Feed, logger *slog.Logger) *GormEntityRepository[models.Launch] {
	return NewEntityRepository[models.Launch](db, feed, logger, TableLaunches, "launch_date")
}

// NewPublicationRepository orders publications chronologically
func NewPublicationRepository(db *gorm.DB, feed realtime.Feed, logger *slog.Logger) *GormEntityRepository[models.Publication] {
	return NewEntityRepository[models.Publication](db, feed, logger, TablePublications, "date", "time")
}

// NewIdeaRepository orders ideas by creation time
func NewIdeaRepository(db *gorm.DB, feed realtime.Feed, logger *slog.Logger) *GormEntityRepository[models.Idea] {
	return NewEntityRepository[models.Idea](db, feed, logger, TableIdeas, "created_at")
}

// NewParticipantRepository orders participants by name
func NewParticipantRepository(db *gorm.DB, feed realtime.Feed, logger *slog.Logger) *GormEntityRepository[models.Participant] {
	return NewEntityRepository[models.Participant](db, feed, logger, TableParticipants, "name")
}

// NewPerspectiveRepository orders perspectives by name
func NewPerspectiveRepository(db *gorm.DB, feed realtime.Feed, logger *slog.Logger) *GormEntityRepository[models.Perspective] {
	return NewEntityRepository[models.Perspective](db, feed, logger, TablePerspectives, "name")
}

// Table returns the remote table name
func (r *GormEntityRepository[T]) Table() string {
	return r.table
}

// List returns every row ordered by the natural key, with id as tie-breaker
func (r *GormEntityRepository[T]) List(ctx context.Context) ([]T, error) {
	items := []T{}
	query := r.db.WithContext(ctx).Table(r.table)
	for _, col := range r.order {
		query = query.Order(col)
	}
	if err := query.Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert inserts the row or replaces every column of the existing row.
// Concurrent upserts of the same id are last-write-wins.
func (r *GormEntityRepository[T]) Upsert(ctx context.Context, item *T) error {
	err := r.db.WithContext(ctx).
		Table(r.table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(item).Error
	if err != nil {
		metrics.RemoteWrites.WithLabelValues(r.table, string(realtime.OpUpsert), metrics.ResultError).Inc()
		return err
	}
	metrics.RemoteWrites.WithLabelValues(r.table, string(realtime.OpUpsert), metrics.ResultOK).Inc()
	r.announce(ctx, realtime.OpUpsert, (*item).GetID())
	return nil
}

// Delete removes the row; deleting a missing row is not an error
func (r *GormEntityRepository[T]) Delete(ctx context.Context, id string) error {
	var model T
	res := r.db.WithContext(ctx).Table(r.table).Where("id = ?", id).Delete(&model)
	if res.Error != nil {
		metrics.RemoteWrites.WithLabelValues(r.table, string(realtime.OpDelete), metrics.ResultError).Inc()
		return res.Error
	}
	metrics.RemoteWrites.WithLabelValues(r.table, string(realtime.OpDelete), metrics.ResultOK).Inc()
	if res.RowsAffected > 0 {
		r.announce(ctx, realtime.OpDelete, id)
	}
	return nil
}

// announce publishes the change. The write already happened, so a publish
// failure is only logged.
func (r *GormEntityRepository[T]) announce(ctx context.Context, op realtime.Op, id string) {
	if r.feed == nil {
		return
	}
	change := realtime.Change{Table: r.table, Op: op, ID: id, At: r.now().UTC()}
	if err := r.feed.Publish(ctx, change); err != nil {
		r.logger.Warn("failed to publish change", "table", r.table, "op", op, "id", id, "error", err)
	}
}
