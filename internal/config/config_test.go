package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "helpdesk-sla-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())

	assert.Equal(t, 60, cfg.Scan.LookaheadMinutes)
	assert.Equal(t, time.Hour, cfg.Scan.Lookahead())
	assert.Equal(t, 10*time.Minute, cfg.Scan.Interval())
	assert.Equal(t, 4, cfg.Scan.Concurrency)
	assert.False(t, cfg.Scan.NotifyOncePerTransition)
	assert.False(t, cfg.Scan.NotifyResponseBreach)
	assert.False(t, cfg.Scan.RunWorker)
	assert.Empty(t, cfg.Scan.TriggerToken)
	assert.Equal(t, 24*time.Hour, cfg.Scan.StateTTL())

	assert.False(t, cfg.Notification.EmailEnabled)
}

func TestLoadScanOverrides(t *testing.T) {
	t.Setenv("SCAN_LOOKAHEAD_MINUTES", "30")
	t.Setenv("SCAN_INTERVAL_MINUTES", "5")
	t.Setenv("SCAN_CONCURRENCY", "8")
	t.Setenv("SCAN_NOTIFY_ONCE_PER_TRANSITION", "true")
	t.Setenv("SCAN_NOTIFY_RESPONSE", "true")
	t.Setenv("SCAN_TRIGGER_TOKEN", "sekrit")
	t.Setenv("SCAN_RUN_WORKER", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Scan.Lookahead())
	assert.Equal(t, 5*time.Minute, cfg.Scan.Interval())
	assert.Equal(t, 8, cfg.Scan.Concurrency)
	assert.True(t, cfg.Scan.NotifyOncePerTransition)
	assert.True(t, cfg.Scan.NotifyResponseBreach)
	assert.Equal(t, "sekrit", cfg.Scan.TriggerToken)
	assert.True(t, cfg.Scan.RunWorker)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("SCAN_LOOKAHEAD_MINUTES", "soon")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "-")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Scan.LookaheadMinutes)
	assert.Equal(t, 30, cfg.App.RequestTimeoutSeconds)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
