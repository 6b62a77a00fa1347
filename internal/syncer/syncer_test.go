package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/release-planner/internal/cache"
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/realtime"
	"github.com/yukikurage/release-planner/internal/repository"
)

// recorder collects every onChange call.
type recorder struct {
	mu    sync.Mutex
	calls [][]models.Participant
}

func (r *recorder) onChange(items []models.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, items)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) last() []models.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

type AdapterTestSuite struct {
	suite.Suite
	ctx   context.Context
	db    *gorm.DB
	bus   *realtime.Bus
	cache *cache.Store
	repo  *repository.GormEntityRepository[models.Participant]
}

func (s *AdapterTestSuite) SetupTest() {
	s.ctx = context.Background()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(db.AutoMigrate(&models.Participant{}))
	s.db = db

	s.bus = realtime.NewBus()
	s.repo = repository.NewParticipantRepository(db, s.bus, nil)

	s.cache, err = cache.Open(":memory:")
	s.Require().NoError(err)
}

func (s *AdapterTestSuite) TearDownTest() {
	s.bus.Close()
}

func (s *AdapterTestSuite) TestStartLoadsAndReloadsOnChange() {
	s.Require().NoError(s.db.Create(&models.Participant{ID: "p1", Name: "Ana"}).Error)

	rec := &recorder{}
	adapter := New[models.Participant]("", s.repo, s.bus, s.cache, nil)
	s.Require().NoError(adapter.Start(s.ctx, rec.onChange))
	defer adapter.Stop()

	s.Equal(1, rec.count())
	s.Len(rec.last(), 1)

	// Save does not report directly; the change event triggers a reload.
	s.Require().NoError(adapter.Save(s.ctx, models.Participant{ID: "p2", Name: "Bruno"}))
	s.Eventually(func() bool { return len(rec.last()) == 2 }, time.Second, 10*time.Millisecond)

	s.Require().NoError(adapter.Delete(s.ctx, "p1"))
	s.Eventually(func() bool {
		items := rec.last()
		return len(items) == 1 && items[0].ID == "p2"
	}, time.Second, 10*time.Millisecond)
}

func (s *AdapterTestSuite) TestIdleReloadsAreIdentical() {
	s.Require().NoError(s.db.Create(&models.Participant{ID: "p1", Name: "Ana", Email: "ana@example.com"}).Error)
	s.Require().NoError(s.db.Create(&models.Participant{ID: "p2", Name: "Bruno"}).Error)

	adapter := New[models.Participant]("", s.repo, nil, nil, nil)
	first, err := adapter.Reload(s.ctx)
	s.Require().NoError(err)
	second, err := adapter.Reload(s.ctx)
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *AdapterTestSuite) TestSuccessfulReloadRefreshesCache() {
	s.Require().NoError(s.db.Create(&models.Participant{ID: "p1", Name: "Ana"}).Error)

	adapter := New[models.Participant]("", s.repo, nil, s.cache, nil)
	_, err := adapter.Reload(s.ctx)
	s.Require().NoError(err)

	var cached []models.Participant
	found, err := s.cache.Load(s.ctx, repository.TableParticipants, &cached)
	s.Require().NoError(err)
	s.True(found)
	s.Len(cached, 1)
}

func (s *AdapterTestSuite) TestInitialLoadFailureFallsBackToCache() {
	remote, mock := s.failingRepo()
	mock.ExpectQuery(".*").WillReturnError(errors.New("connection refused"))

	s.Require().NoError(s.cache.Save(s.ctx, repository.TableParticipants, []models.Participant{{ID: "p9", Name: "Cached"}}))

	rec := &recorder{}
	adapter := New[models.Participant]("", remote, nil, s.cache, nil)
	s.Require().NoError(adapter.Start(s.ctx, rec.onChange))

	s.Equal(1, rec.count())
	s.Equal("p9", rec.last()[0].ID)
	s.NoError(mock.ExpectationsWereMet())
}

func (s *AdapterTestSuite) TestInitialLoadFailureWithoutCacheIsEmpty() {
	remote, mock := s.failingRepo()
	mock.ExpectQuery(".*").WillReturnError(errors.New("connection refused"))

	rec := &recorder{}
	adapter := New[models.Participant]("", remote, nil, nil, nil)
	s.Require().NoError(adapter.Start(s.ctx, rec.onChange))

	s.Equal(1, rec.count())
	s.NotNil(rec.last())
	s.Empty(rec.last())
}

func (s *AdapterTestSuite) TestFailedReloadKeepsPreviousState() {
	remote, mock := s.failingRepo()
	mock.ExpectQuery(".*").WillReturnError(errors.New("timeout"))

	rec := &recorder{}
	adapter := New[models.Participant]("", remote, nil, nil, nil)
	_, err := adapter.Reload(s.ctx)
	s.Error(err)
	s.Equal(0, rec.count())
}

func (s *AdapterTestSuite) TestLocalOnlyMode() {
	rec := &recorder{}
	adapter := New[models.Participant]("participants", nil, nil, s.cache, nil)
	s.Require().NoError(adapter.Start(s.ctx, rec.onChange))
	s.Empty(rec.last())

	s.Require().NoError(adapter.Save(s.ctx, models.Participant{ID: "p1", Name: "Ana"}))
	s.Require().NoError(adapter.Save(s.ctx, models.Participant{ID: "p1", Name: "Ana María"}))
	s.Len(rec.last(), 1)
	s.Equal("Ana María", rec.last()[0].Name)

	// A fresh adapter sees the persisted collection.
	again := &recorder{}
	reopened := New[models.Participant]("participants", nil, nil, s.cache, nil)
	s.Require().NoError(reopened.Start(s.ctx, again.onChange))
	s.Len(again.last(), 1)

	s.Require().NoError(reopened.Delete(s.ctx, "p1"))
	s.Empty(again.last())
}

func (s *AdapterTestSuite) TestMigrateFromLocalCacheRunsOnce() {
	legacy := []models.Participant{{ID: "p1", Name: "Ana"}, {ID: "p2", Name: "Bruno"}}
	s.Require().NoError(s.cache.SaveLegacy(s.ctx, repository.TableParticipants, legacy))

	adapter := New[models.Participant]("", s.repo, nil, s.cache, nil)
	uploaded, err := adapter.MigrateFromLocalCache(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, uploaded)

	rows, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Len(rows, 2)

	uploaded, err = adapter.MigrateFromLocalCache(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, uploaded)
}

func (s *AdapterTestSuite) TestStartThenMigrateKeepsLegacyItems() {
	s.Require().NoError(s.db.Create(&models.Participant{ID: "r1", Name: "Remote"}).Error)
	legacy := []models.Participant{{ID: "p1", Name: "Ana"}, {ID: "p2", Name: "Bruno"}}
	s.Require().NoError(s.cache.SaveLegacy(s.ctx, repository.TableParticipants, legacy))

	rec := &recorder{}
	adapter := New[models.Participant]("", s.repo, nil, s.cache, nil)
	s.Require().NoError(adapter.Start(s.ctx, rec.onChange))
	defer adapter.Stop()

	// The initial reload must not replace the snapshot awaiting upload.
	var pending []models.Participant
	found, err := s.cache.Pending(s.ctx, repository.TableParticipants, &pending)
	s.Require().NoError(err)
	s.True(found)
	s.Require().Len(pending, 2)
	s.Equal("p1", pending[0].ID)

	uploaded, err := adapter.MigrateFromLocalCache(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, uploaded)

	rows, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Len(rows, 3)
	s.Len(rec.last(), 3)

	var cached []models.Participant
	_, err = s.cache.Load(s.ctx, repository.TableParticipants, &cached)
	s.Require().NoError(err)
	s.Len(cached, 3)
	found, err = s.cache.Pending(s.ctx, repository.TableParticipants, &pending)
	s.Require().NoError(err)
	s.False(found)
}

func (s *AdapterTestSuite) TestLocalOnlyWorkIsMigratedToRemote() {
	local := New[models.Participant](repository.TableParticipants, nil, nil, s.cache, nil)
	s.Require().NoError(local.Start(s.ctx, nil))
	s.Require().NoError(local.Save(s.ctx, models.Participant{ID: "p1", Name: "Ana"}))
	s.Require().NoError(local.Save(s.ctx, models.Participant{ID: "p2", Name: "Bruno"}))
	s.Require().NoError(local.Delete(s.ctx, "p2"))
	local.Stop()

	s.Require().NoError(s.db.Create(&models.Participant{ID: "r1", Name: "Remote"}).Error)

	rec := &recorder{}
	remote := New[models.Participant]("", s.repo, s.bus, s.cache, nil)
	s.Require().NoError(remote.Start(s.ctx, rec.onChange))
	defer remote.Stop()

	uploaded, err := remote.MigrateFromLocalCache(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, uploaded)

	rows, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("p1", rows[0].ID)
	s.Equal("r1", rows[1].ID)
	s.Eventually(func() bool { return len(rec.last()) == 2 }, time.Second, 10*time.Millisecond)
}

func (s *AdapterTestSuite) TestLocalOnlyKeepsNaturalOrder() {
	rec := &recorder{}
	adapter := New[models.Participant]("participants", nil, nil, s.cache, nil).OrderBy(models.ParticipantLess)
	s.Require().NoError(adapter.Start(s.ctx, rec.onChange))

	s.Require().NoError(adapter.Save(s.ctx, models.Participant{ID: "p1", Name: "Zoe"}))
	s.Require().NoError(adapter.Save(s.ctx, models.Participant{ID: "p2", Name: "Ana"}))
	s.Require().NoError(adapter.Save(s.ctx, models.Participant{ID: "p0", Name: "Ana"}))

	got := rec.last()
	s.Require().Len(got, 3)
	s.Equal([]string{"p0", "p2", "p1"}, []string{got[0].ID, got[1].ID, got[2].ID})

	// A cached collection written unordered is sorted on start.
	s.Require().NoError(s.cache.SaveLegacy(s.ctx, "participants", []models.Participant{{ID: "b", Name: "Bo"}, {ID: "a", Name: "Al"}}))
	again := &recorder{}
	reopened := New[models.Participant]("participants", nil, nil, s.cache, nil).OrderBy(models.ParticipantLess)
	s.Require().NoError(reopened.Start(s.ctx, again.onChange))
	s.Equal("a", again.last()[0].ID)
}

func (s *AdapterTestSuite) failingRepo() (*repository.GormEntityRepository[models.Participant], sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.T().Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	return repository.NewParticipantRepository(db, nil, nil), mock
}

func TestAdapterTestSuite(t *testing.T) {
	suite.Run(t, new(AdapterTestSuite))
}
