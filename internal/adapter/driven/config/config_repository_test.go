package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigFileYAML(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", `
api_key: test-key
start_month: "2024-01"
end_month: "2024-03"
report_type:
  - csv
  - pdf
sl_private: true
`)

	repo := NewConfigRepository()
	cfg, err := repo.LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "2024-01", cfg.StartMonth)
	assert.Equal(t, "2024-03", cfg.EndMonth)
	assert.Equal(t, []string{"csv", "pdf"}, cfg.ReportType)
	assert.True(t, cfg.SLPrivate)
}

func TestLoadConfigFileTOML(t *testing.T) {
	path := writeTempConfig(t, "config.toml", `
api_key = "test-key"
months = 6
report_name = "invoices"
`)

	repo := NewConfigRepository()
	cfg, err := repo.LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, 6, cfg.Months)
	assert.Equal(t, "invoices", cfg.ReportName)
}

func TestLoadConfigFileJSON(t *testing.T) {
	path := writeTempConfig(t, "config.json", `{"api_key": "test-key", "usage_month": true}`)

	repo := NewConfigRepository()
	cfg, err := repo.LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.APIKey)
	assert.True(t, cfg.UsageMonth)
}

func TestLoadConfigFileExpandsEnvSecrets(t *testing.T) {
	t.Setenv("TEST_IC_API_KEY", "secret-from-env")
	path := writeTempConfig(t, "config.yaml", `api_key: ${TEST_IC_API_KEY}`)

	repo := NewConfigRepository()
	cfg, err := repo.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-from-env", cfg.APIKey)
}

func TestLoadConfigFileErrors(t *testing.T) {
	repo := NewConfigRepository()

	_, err := repo.LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = repo.LoadConfigFile(t.TempDir())
	assert.Error(t, err)

	path := writeTempConfig(t, "config.ini", "api_key=nope")
	_, err = repo.LoadConfigFile(path)
	assert.ErrorContains(t, err, "unsupported config file format")
}
