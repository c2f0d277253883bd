package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDevelopmentConfig(t *testing.T) {
	t.Setenv("APP_CONFIG_PATH", "")
	var cfg ConfessionConfig
	require.NoError(t, core.LoadConfig("config.development.yaml", &cfg))

	assert.Equal(t, "8086", cfg.ServerConfig.Port)
	assert.Equal(t, 10*time.Second, cfg.ServerConfig.RequestTimeout)
	assert.Equal(t, "debug", cfg.ZapConfig.Level)
	assert.False(t, cfg.TracerConfig.Enabled)
	assert.True(t, cfg.GormLogConfig.IgnoreRecordNotFoundError)
	assert.Equal(t, DriverSQLite, cfg.DatabaseConfig.Driver)
	assert.Equal(t, 500, cfg.ModerationConfig.CustomReasonMaxLength)
	assert.Equal(t, "0 0 * * 1", cfg.TaskConfig.WeeklyResetSchedule)
	assert.Equal(t, "confession.approved", cfg.KafkaConfig.Topics.ConfessionApproved)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("APP_CONFIG_PATH", "")
	t.Setenv("SERVERCONFIG_PORT", "9999")
	var cfg ConfessionConfig
	require.NoError(t, core.LoadConfig("config.development.yaml", &cfg))
	assert.Equal(t, "9999", cfg.ServerConfig.Port)
}

func TestLoadConfigMalformedFile(t *testing.T) {
	t.Setenv("APP_CONFIG_PATH", "")
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serverConfig: [port: \n"), 0o600))
	var cfg ConfessionConfig
	assert.Error(t, core.LoadConfig(path, &cfg))
}

func TestTelegramIsAdmin(t *testing.T) {
	cfg := TelegramConfig{AdminIDs: []int64{7, 9}}
	assert.True(t, cfg.IsAdmin(9))
	assert.False(t, cfg.IsAdmin(8))
}
