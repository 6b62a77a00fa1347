package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/release-planner/internal/models"
)

// AddIndexes adds the natural-key indexes each table is listed by
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   interface{}
		name    string
		columns []string
	}{
		{&models.Task{}, "idx_tasks_start_date", []string{"start_date"}},
		{&models.Task{}, "idx_tasks_perspective", []string{"perspective"}},
		{&models.KPI{}, "idx_kpis_perspective_indicator", []string{"perspective", "indicator"}},
		{&models.Launch{}, "idx_launches_launch_date", []string{"launch_date"}},
		{&models.Publication{}, "idx_publications_date_time", []string{"date", "time"}},
		{&models.Publication{}, "idx_publications_launch_id", []string{"launch_id"}},
		{&models.Idea{}, "idx_ideas_created_at", []string{"created_at"}},
		{&models.Participant{}, "idx_participants_name", []string{"name"}},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}

		table := idx.model.(interface{ TableName() string }).TableName()

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, table, strings.Join(idx.columns, ", "))
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s", idx.name, table)
	}

	return nil
}
