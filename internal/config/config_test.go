package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"superstore/internal/engine"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "train.csv", cfg.DataPath)
	assert.Equal(t, 10, cfg.TopN)
	assert.Equal(t, 8050, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, engine.DefaultDateLayouts, cfg.DateLayouts)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestDefaultDateLayoutsAreACopy(t *testing.T) {
	cfg := Default()
	cfg.DateLayouts[0] = "2006/01/02"
	assert.Equal(t, "02/01/2006", engine.DefaultDateLayouts[0])
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "superstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_path: /data/superstore.xlsx
sheet: Orders
top_n: 25
server:
  port: 9000
  shutdown_timeout: 3s
logging:
  level: debug
  format: text
`), 0o644))

	t.Setenv("SUPERSTORE_SERVER_PORT", "9100")
	t.Setenv("SUPERSTORE_TOP_N", "5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/superstore.xlsx", cfg.DataPath)
	assert.Equal(t, "Orders", cfg.Sheet)
	assert.Equal(t, 5, cfg.TopN, "env wins over file")
	assert.Equal(t, 9100, cfg.Server.Port, "env wins over file")
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins, "defaults survive a partial file")
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port out of range", map[string]string{"SUPERSTORE_SERVER_PORT": "70000"}},
		{"zero top n", map[string]string{"SUPERSTORE_TOP_N": "0"}},
		{"unknown log format", map[string]string{"SUPERSTORE_LOGGING_FORMAT": "xml"}},
		{"empty data path", map[string]string{"SUPERSTORE_DATA_PATH": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadBadEnvValue(t *testing.T) {
	t.Setenv("SUPERSTORE_SERVER_SHUTDOWN_TIMEOUT", "soon")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config from env")
}
