package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestInitDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Init()
	require.NoError(t, err)

	assert.Equal(t, []string{"all_cards_result.txt"}, cfg.DumpFiles)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "Asia/Seoul", cfg.DB.TimeZone)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingDBConfig)
}

func TestInitFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
DB_HOST: localhost
DB_USER: root
DB_NAME: saranghaein
dump_files:
  - shinhan.txt
  - kb.txt
log:
  level: debug
  format: console
api:
  port: 9090
  timeout: 2s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Init()
	require.NoError(t, err)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"shinhan.txt", "kb.txt"}, cfg.DumpFiles)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.Equal(t,
		"host=localhost user=root password= dbname=saranghaein port=5432 sslmode=disable TimeZone=Asia/Seoul",
		cfg.DSN())
}

func TestInitEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("DB_HOST: filehost\n"), 0o644))
	t.Setenv("APP_DB_HOST", "envhost")
	t.Setenv("APP_DB_PASSWORD", "secret")

	cfg, err := Init()
	require.NoError(t, err)
	assert.Equal(t, "envhost", cfg.DB.Host)
	assert.Equal(t, "secret", cfg.DB.Password)
}

func TestInitInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unterminated"), 0o644))

	_, err := Init()
	require.Error(t, err)
}

func TestWatchWithoutFileIsNoop(t *testing.T) {
	chdirTemp(t)
	cfg, err := Init()
	require.NoError(t, err)

	called := false
	cfg.Watch(func(LogConfig) { called = true })
	assert.False(t, called)
}

func TestInitLogger(t *testing.T) {
	level, err := InitLogger(LogConfig{Level: "warn", Format: "console"})
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level.Level())

	level.SetLevel(zapcore.DebugLevel)
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	_, err = InitLogger(LogConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}
