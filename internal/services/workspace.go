package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/yukikurage/release-planner/internal/cache"
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/realtime"
	"github.com/yukikurage/release-planner/internal/repository"
	"github.com/yukikurage/release-planner/internal/store"
	"github.com/yukikurage/release-planner/internal/syncer"
)

// entity pairs an in-memory collection with the adapter that feeds it.
type entity[T models.Entity] struct {
	coll    *store.Collection[T]
	adapter *syncer.Adapter[T]
	logger  *slog.Logger
}

func newEntity[T models.Entity](name string, remote syncer.Remote[T], feed realtime.Feed, snaps syncer.Snapshots, hub *store.Hub, logger *slog.Logger) entity[T] {
	return entity[T]{
		coll:    store.NewCollection[T](name, hub),
		adapter: syncer.New[T](name, remote, feed, snaps, logger),
		logger:  logger,
	}
}

func (e entity[T]) start(ctx context.Context) error {
	return e.adapter.Start(ctx, e.coll.Replace)
}

// save applies item optimistically, then writes it upstream. A remote
// failure is logged and reported, but the in-memory change is kept until
// the next reload.
func (e entity[T]) save(ctx context.Context, item T) error {
	e.coll.Put(item)
	if err := e.adapter.Save(ctx, item); err != nil {
		e.logger.Error("remote save failed", "collection", e.coll.Name(), "id", item.GetID(), "error", err)
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return nil
}

func (e entity[T]) remove(ctx context.Context, id string) error {
	e.coll.Remove(id)
	if err := e.adapter.Delete(ctx, id); err != nil {
		e.logger.Error("remote delete failed", "collection", e.coll.Name(), "id", id, "error", err)
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return nil
}

// WorkspaceConfig selects the stores behind a Workspace. A nil DB runs
// every collection in local-only mode on top of Cache.
type WorkspaceConfig struct {
	DB     *gorm.DB
	Feed   realtime.Feed
	Cache  *cache.Store
	Logger *slog.Logger
}

// Workspace holds every entity collection of the project.
type Workspace struct {
	Hub *store.Hub

	tasks        entity[models.Task]
	kpis         entity[models.KPI]
	launches     entity[models.Launch]
	publications entity[models.Publication]
	ideas        entity[models.Idea]
	participants entity[models.Participant]
	perspectives entity[models.Perspective]

	logger *slog.Logger
}

func NewWorkspace(cfg WorkspaceConfig) *Workspace {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var snaps syncer.Snapshots
	if cfg.Cache != nil {
		snaps = cfg.Cache
	}
	hub := store.NewHub()
	w := &Workspace{Hub: hub, logger: logger}

	if cfg.DB == nil {
		w.tasks = newEntity[models.Task](repository.TableTasks, nil, nil, snaps, hub, logger)
		w.tasks.adapter.OrderBy(models.TaskLess)
		w.kpis = newEntity[models.KPI](repository.TableKPIs, nil, nil, snaps, hub, logger)
		w.kpis.adapter.OrderBy(models.KPILess)
		w.launches = newEntity[models.Launch](repository.TableLaunches, nil, nil, snaps, hub, logger)
		w.launches.adapter.OrderBy(models.LaunchLess)
		w.publications = newEntity[models.Publication](repository.TablePublications, nil, nil, snaps, hub, logger)
		w.publications.adapter.OrderBy(models.PublicationLess)
		w.ideas = newEntity[models.Idea](repository.TableIdeas, nil, nil, snaps, hub, logger)
		w.ideas.adapter.OrderBy(models.IdeaLess)
		w.participants = newEntity[models.Participant](repository.TableParticipants, nil, nil, snaps, hub, logger)
		w.participants.adapter.OrderBy(models.ParticipantLess)
		w.perspectives = newEntity[models.Perspective](repository.TablePerspectives, nil, nil, snaps, hub, logger)
		w.perspectives.adapter.OrderBy(models.PerspectiveLess)
		return w
	}

	db, feed := cfg.DB, cfg.Feed
	w.tasks = newEntity[models.Task](repository.TableTasks, repository.NewTaskRepository(db, feed, logger), feed, snaps, hub, logger)
	w.kpis = newEntity[models.KPI](repository.TableKPIs, repository.NewKPIRepository(db, feed, logger), feed, snaps, hub, logger)
	w.launches = newEntity[models.Launch](repository.TableLaunches, repository.NewLaunchRepository(db, feed, logger), feed, snaps, hub, logger)
	w.publications = newEntity[models.Publication](repository.TablePublications, repository.NewPublicationRepository(db, feed, logger), feed, snaps, hub, logger)
	w.ideas = newEntity[models.Idea](repository.TableIdeas, repository.NewIdeaRepository(db, feed, logger), feed, snaps, hub, logger)
	w.participants = newEntity[models.Participant](repository.TableParticipants, repository.NewParticipantRepository(db, feed, logger), feed, snaps, hub, logger)
	w.perspectives = newEntity[models.Perspective](repository.TablePerspectives, repository.NewPerspectiveRepository(db, feed, logger), feed, snaps, hub, logger)
	return w
}

// Start loads every collection and subscribes to remote changes.
func (w *Workspace) Start(ctx context.Context) error {
	return errors.Join(
		w.tasks.start(ctx),
		w.kpis.start(ctx),
		w.launches.start(ctx),
		w.publications.start(ctx),
		w.ideas.start(ctx),
		w.participants.start(ctx),
		w.perspectives.start(ctx),
	)
}

// MigrateLocalCache uploads collections cached before a remote store was
// configured and returns the uploaded count per collection.
func (w *Workspace) MigrateLocalCache(ctx context.Context) (map[string]int, error) {
	type migrator interface {
		Name() string
		MigrateFromLocalCache(ctx context.Context) (int, error)
	}
	out := map[string]int{}
	var errs []error
	for _, m := range []migrator{
		w.tasks.adapter, w.kpis.adapter, w.launches.adapter, w.publications.adapter,
		w.ideas.adapter, w.participants.adapter, w.perspectives.adapter,
	} {
		n, err := m.MigrateFromLocalCache(ctx)
		out[m.Name()] = n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return out, errors.Join(errs...)
}

func (w *Workspace) Stop() {
	w.tasks.adapter.Stop()
	w.kpis.adapter.Stop()
	w.launches.adapter.Stop()
	w.publications.adapter.Stop()
	w.ideas.adapter.Stop()
	w.participants.adapter.Stop()
	w.perspectives.adapter.Stop()
}

func (w *Workspace) Tasks() []models.Task               { return w.tasks.coll.All() }
func (w *Workspace) KPIs() []models.KPI                 { return w.kpis.coll.All() }
func (w *Workspace) Launches() []models.Launch          { return w.launches.coll.All() }
func (w *Workspace) Publications() []models.Publication { return w.publications.coll.All() }
func (w *Workspace) Ideas() []models.Idea               { return w.ideas.coll.All() }

// Participants indexes participants by id.
func (w *Workspace) Participants() map[string]models.Participant {
	all := w.participants.coll.All()
	out := make(map[string]models.Participant, len(all))
	for _, p := range all {
		out[p.ID] = p
	}
	return out
}

func (w *Workspace) ParticipantList() []models.Participant {
	return w.participants.coll.All()
}
