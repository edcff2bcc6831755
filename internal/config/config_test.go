package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 3, cfg.Analysis.MinVendors)
	assert.Equal(t, "keep_last", cfg.Analysis.DuplicatePolicy)
	assert.Equal(t, 5, cfg.Analysis.SampleRows)
	assert.InDelta(t, 0.5, cfg.Analysis.NumericRatio, 0.001)
	assert.Equal(t, 10, cfg.Analysis.VendorScanRows)
	assert.Equal(t, "auto", cfg.CSV.Encoding)
	assert.Equal(t, ",", cfg.CSV.Delimiter)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 16, cfg.Server.MaxUploadMB)
	assert.Equal(t, []string{"xlsx", "xls", "csv"}, cfg.Server.AllowedExtensions)
	assert.Equal(t, 60, cfg.Server.SessionTTLMinutes)
	assert.Equal(t, "price_comparison_{timestamp}.xlsx", cfg.Report.FileNameFormat)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
analysis:
  min_vendors: 2
  duplicate_policy: keep_last
  extra_synonyms:
    item: ["规格型号"]
csv:
  encoding: gbk
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Analysis.MinVendors)
	assert.Equal(t, "keep_first", cfg.Analysis.DuplicatePolicy)
	assert.Equal(t, []string{"规格型号"}, cfg.Analysis.ExtraSynonyms["item"])
	assert.Equal(t, "gbk", cfg.CSV.Encoding)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 5, cfg.Analysis.SampleRows)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_dir: /tmp/reports\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/reports", cfg.OutputDir)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("analysis:\n  min_vendors: 5\n"), 0644))

	t.Setenv("PRICECMP_ANALYSIS_MIN_VENDORS", "4")
	t.Setenv("PRICECMP_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Analysis.MinVendors)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	chdirTemp(t)

	t.Setenv("PRICECMP_ANALYSIS_DUPLICATE_POLICY", "merge")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Analysis: AnalysisConfig{MinVendors: 3, DuplicatePolicy: "keep_last", SampleRows: 5, NumericRatio: 0.5},
			Server:   ServerConfig{MaxUploadMB: 16},
		}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Analysis.MinVendors = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Analysis.NumericRatio = 1.5
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Analysis.SampleRows = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Server.MaxUploadMB = 0
	assert.Error(t, cfg.Validate())
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
