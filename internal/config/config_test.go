package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "x86_64-glibc-tox-stage2", cfg.DefaultProfile)
	require.Equal(t, 16, cfg.Download.Workers)
	require.Equal(t, 32*time.Second, cfg.Download.ConnectTimeout)
	require.Equal(t, 16, cfg.Download.RedirectLimit)
	require.True(t, cfg.Strip)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
jobs: 8
default_profile: aarch64-musl-stage1
log_level: info
log_max_size: 20MB
strip: false
download:
  workers: 4
  connect_timeout: 10s
  redirect_limit: 5
`), 0o644)
	require.NoError(t, err)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Jobs)
	require.Equal(t, "aarch64-musl-stage1", cfg.DefaultProfile)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, int64(20*1024*1024), cfg.LogMaxSize)
	require.False(t, cfg.Strip)
	require.Equal(t, 4, cfg.Download.Workers)
	require.Equal(t, 10*time.Second, cfg.Download.ConnectTimeout)
	require.Equal(t, 5, cfg.Download.RedirectLimit)
}

func TestLoadFromFilePartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte("jobs: 2\n"), 0o644)
	require.NoError(t, err)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Jobs)

	// Unset fields keep their defaults.
	def := Default()
	require.Equal(t, def.DefaultProfile, cfg.DefaultProfile)
	require.Equal(t, def.Download.Workers, cfg.Download.Workers)
	require.Equal(t, def.Strip, cfg.Strip)
}

func TestLoadFromFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_max_size: [nope]\n"), 0o644))
	_, err := LoadFromFile(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("log_max_size: banana\n"), 0o644))
	_, err = LoadFromFile(path)
	require.Error(t, err)
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LFSTAGE_JOBS", "3")
	t.Setenv("LFSTAGE_DEFAULT_PROFILE", "riscv64-stage1")
	t.Setenv("LFSTAGE_LOG_MAX_SIZE", "5MB")
	t.Setenv("LFSTAGE_STRIP", "false")
	t.Setenv("LFSTAGE_DOWNLOAD_WORKERS", "7")
	t.Setenv("LFSTAGE_CONNECT_TIMEOUT", "5s")

	cfg := Default()
	require.NoError(t, cfg.LoadFromEnv())
	require.Equal(t, 3, cfg.Jobs)
	require.Equal(t, "riscv64-stage1", cfg.DefaultProfile)
	require.Equal(t, int64(5*1024*1024), cfg.LogMaxSize)
	require.False(t, cfg.Strip)
	require.Equal(t, 7, cfg.Download.Workers)
	require.Equal(t, 5*time.Second, cfg.Download.ConnectTimeout)
}

func TestLoadFromEnvInvalid(t *testing.T) {
	t.Setenv("LFSTAGE_JOBS", "many")
	cfg := Default()
	require.Error(t, cfg.LoadFromEnv())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Jobs = 0
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.DefaultProfile = ""
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Download.Workers = -1
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Download.RedirectLimit = -1
	require.Error(t, cfg.Validate())
}
