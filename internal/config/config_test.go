package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CHANGE_FEED", "")
	t.Setenv("NOTIFY_QUEUE_SIZE", "")

	cfg := Load()
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "memory", cfg.ChangeFeed)
	assert.Equal(t, 256, cfg.NotifyQueueSize)
	assert.Equal(t, int64(512*1024), cfg.InlineAttachmentBytes)
	assert.False(t, cfg.CalendarConfigured())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("NOTIFY_QUEUE_SIZE", "8")
	t.Setenv("INLINE_ATTACHMENT_MAX_BYTES", "not-a-number")
	t.Setenv("CALENDAR_CLIENT_ID", "id")
	t.Setenv("CALENDAR_CLIENT_SECRET", "secret")
	t.Setenv("CALENDAR_REFRESH_TOKEN", "token")

	cfg := Load()
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 8, cfg.NotifyQueueSize)
	assert.Equal(t, int64(512*1024), cfg.InlineAttachmentBytes)
	assert.True(t, cfg.CalendarConfigured())
}

func TestLocalOnly(t *testing.T) {
	t.Setenv("DB_DRIVER", "none")
	assert.True(t, Load().LocalOnly())

	t.Setenv("DB_DRIVER", "mysql")
	assert.False(t, Load().LocalOnly())
}
