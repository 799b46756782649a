package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rwsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
step: 20ms
time_scale: 2
grpc:
  address: "127.0.0.1:6000"
log:
  level: debug
start:
  hour: 22
  weather: foggy
  vehicles:
    - model: speeder
      position: [1, 2, 0]
      heading: 1.5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Millisecond, cfg.Step)
	assert.Equal(t, 2.0, cfg.TimeScale)
	assert.Equal(t, "127.0.0.1:6000", cfg.GRPC.Address)
	assert.True(t, cfg.GRPC.Reflection, "untouched fields keep their defaults")
	assert.Equal(t, 22, cfg.Start.Hour)
	assert.Equal(t, "foggy", cfg.Start.Weather)
	require.Len(t, cfg.Start.Vehicles, 1)
	assert.Equal(t, "speeder", cfg.Start.Vehicles[0].Model)
	assert.Equal(t, [3]float32{1, 2, 0}, cfg.Start.Vehicles[0].Position)
	assert.Equal(t, 5*time.Minute, cfg.Storage.Autosave)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative step", "step: -1s"},
		{"zero scale", "time_scale: -3"},
		{"bad hour", "start:\n  hour: 25"},
		{"bad level", "log:\n  level: loud"},
		{"not yaml", "step: [1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Development = true
	logger, err := cfg.Logger(filepath.Join(t.TempDir(), "out.log"))
	require.NoError(t, err)
	logger.Sugar().Infow("hello", "k", 1)
	_ = logger.Sync()
}
