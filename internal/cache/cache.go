// Package cache keeps the last known copy of every collection in a local
// sqlite file so the service can start while the remote store is down.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Snapshot is one cached collection.
type Snapshot struct {
	Collection string         `gorm:"primaryKey;type:varchar(64)"`
	Payload    datatypes.JSON `gorm:"not null"`
	SavedAt    time.Time
	// Pending marks data written before a remote store was configured.
	// It is uploaded once by the sync adapter and then cleared.
	Pending bool
}

func (Snapshot) TableName() string { return "snapshots" }

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Open opens (or creates) the cache file at path. Use ":memory:" in tests.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local cache: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return New(db)
}

// New uses an existing gorm handle.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Snapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local cache: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Load decodes the cached collection into dst. found is false when nothing
// was ever cached under that name.
func (s *Store) Load(ctx context.Context, collection string, dst any) (bool, error) {
	snap, err := get(s.db.WithContext(ctx), collection)
	if err != nil || snap == nil {
		return false, err
	}
	if err := json.Unmarshal(snap.Payload, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", collection, err)
	}
	return true, nil
}

// Save refreshes the cached copy of a collection loaded from the remote
// store. A snapshot still awaiting upload is left untouched, so remote
// reloads never replace data that has not been migrated yet.
func (s *Store) Save(ctx context.Context, collection string, items any) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snap, err := get(tx, collection)
		if err != nil || (snap != nil && snap.Pending) {
			return err
		}
		return s.put(tx, collection, items, false)
	})
}

// SaveLegacy stores a collection that has never been uploaded: imported
// legacy data and everything written in local-only mode.
func (s *Store) SaveLegacy(ctx context.Context, collection string, items any) error {
	return s.put(s.db.WithContext(ctx), collection, items, true)
}

// Pending decodes the collection into dst only if it still awaits upload.
func (s *Store) Pending(ctx context.Context, collection string, dst any) (bool, error) {
	snap, err := get(s.db.WithContext(ctx), collection)
	if err != nil || snap == nil || !snap.Pending {
		return false, err
	}
	if err := json.Unmarshal(snap.Payload, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", collection, err)
	}
	return true, nil
}

// MarkMigrated clears the pending flag.
func (s *Store) MarkMigrated(ctx context.Context, collection string) error {
	return s.db.WithContext(ctx).
		Model(&Snapshot{}).
		Where("collection = ?", collection).
		Update("pending", false).Error
}

// Collections lists the cached collection names.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&Snapshot{}).Order("collection").Pluck("collection", &names).Error
	return names, err
}

func get(db *gorm.DB, collection string) (*Snapshot, error) {
	var snap Snapshot
	err := db.Where("collection = ?", collection).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached %s: %w", collection, err)
	}
	return &snap, nil
}

func (s *Store) put(db *gorm.DB, collection string, items any, pending bool) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", collection, err)
	}

	snap := Snapshot{
		Collection: collection,
		Payload:    payload,
		SavedAt:    s.now().UTC(),
		Pending:    pending,
	}
	update := []string{"payload", "saved_at"}
	if pending {
		update = append(update, "pending")
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}},
		DoUpdates: clause.AssignmentColumns(update),
	}).Create(&snap).Error
	if err != nil {
		return fmt.Errorf("failed to cache %s: %w", collection, err)
	}
	return nil
}

// DB exposes the cache database for tables that are never mirrored, such
// as API accounts in local-only mode.
func (s *Store) DB() *gorm.DB {
	return s.db
}
