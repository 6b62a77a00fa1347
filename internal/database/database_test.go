package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/release-planner/internal/config"
	"github.com/yukikurage/release-planner/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestMigrateCreatesTablesAndIndexes(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"tasks", "kpis", "launches", "publications", "ideas", "participants", "perspectives", "accounts"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.KPI{}, "idx_kpis_perspective_indicator"))

	// Running again is a no-op.
	require.NoError(t, Migrate(db))
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBDriver: "mysql", DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "3306", DBName: "n"}
	assert.Equal(t, "u:p@tcp(h:3306)/n?charset=utf8mb4&parseTime=True&loc=Local", DSN(cfg))

	cfg.DBDSN = "explicit"
	assert.Equal(t, "explicit", DSN(cfg))

	_, err := Dialector("oracle", "x")
	assert.Error(t, err)
}
