// =============================================================================
// Vendor Price Comparison - Configuration Module
// =============================================================================
//
// This module loads the application configuration and installs the global
// logger.
//
// CONFIGURATION SOURCES (later wins):
//   1. Defaults set in Load
//   2. config.yaml in the working directory, or the file given with --config
//   3. Environment variables prefixed with PRICECMP_, with "." replaced by
//      "_" (PRICECMP_ANALYSIS_MIN_VENDORS=4)
//
// =============================================================================

package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PRICECMP"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for quotation files when analyze gets no file
	// arguments. Default: "./input"
	InputDir string `yaml:"input_dir" mapstructure:"input_dir"`

	// OutputDir receives reports and warning logs. Default: "./output"
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`

	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	CSV      CSVSettings    `yaml:"csv" mapstructure:"csv"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Report   ReportConfig   `yaml:"report" mapstructure:"report"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error". Default: "info"
	Level string `yaml:"level" mapstructure:"level"`

	// Format is "json" or "console". Default: "console"
	Format string `yaml:"format" mapstructure:"format"`
}

// AnalysisConfig tunes the comparison itself.
type AnalysisConfig struct {
	// MinVendors is the number of usable quotations a run needs. Default: 3
	MinVendors int `yaml:"min_vendors" mapstructure:"min_vendors"`

	// DuplicatePolicy is "keep_first" or "keep_last". Default: "keep_first"
	DuplicatePolicy string `yaml:"duplicate_policy" mapstructure:"duplicate_policy"`

	// SampleRows is how many data rows the numeric column test inspects.
	// Default: 5
	SampleRows int `yaml:"sample_rows" mapstructure:"sample_rows"`

	// NumericRatio is the share of sampled cells that must be numbers.
	// Default: 0.5
	NumericRatio float64 `yaml:"numeric_ratio" mapstructure:"numeric_ratio"`

	// VendorScanRows is how many leading rows are searched for a vendor name.
	// Default: 10
	VendorScanRows int `yaml:"vendor_scan_rows" mapstructure:"vendor_scan_rows"`

	// ExtraSynonyms adds header labels per role:
	//
	//   extra_synonyms:
	//     item: ["规格型号"]
	//     price: ["含税单价"]
	ExtraSynonyms map[string][]string `yaml:"extra_synonyms" mapstructure:"extra_synonyms"`
}

// CSVSettings controls CSV decoding.
type CSVSettings struct {
	// Encoding is a WHATWG encoding name ("gbk", "gb18030", "utf-8") or
	// "auto". Default: "auto"
	Encoding string `yaml:"encoding" mapstructure:"encoding"`

	// Delimiter is a single character or one of "tab", "pipe", "semicolon".
	// Default: ","
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`

	// MaxUploadMB caps the size of each uploaded file. Default: 16
	MaxUploadMB int `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`

	AllowedExtensions []string `yaml:"allowed_extensions" mapstructure:"allowed_extensions"`
	AllowedOrigins    []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`

	// RateLimitRPS and RateLimitBurst throttle analysis uploads.
	RateLimitRPS   float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`

	// SessionTTLMinutes is how long an analysis stays available for export.
	SessionTTLMinutes int `yaml:"session_ttl_minutes" mapstructure:"session_ttl_minutes"`
}

// ReportConfig configures report file names.
type ReportConfig struct {
	// FileNameFormat supports {uuid}, {timestamp} and {id}.
	// Default: "price_comparison_{timestamp}.xlsx"
	FileNameFormat string `yaml:"file_name_format" mapstructure:"file_name_format"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration.
//
// PARAMETERS:
//   - configPath: An explicit config file. When empty, config.yaml is looked
//     up in the working directory and is optional.
//
// RETURNS:
//   - The validated configuration.
//   - An error if the file cannot be parsed or a value is invalid.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key, which also makes each key reachable via
// the environment.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input_dir", "./input")
	v.SetDefault("output_dir", "./output")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("analysis.min_vendors", 3)
	v.SetDefault("analysis.duplicate_policy", "keep_first")
	v.SetDefault("analysis.sample_rows", 5)
	v.SetDefault("analysis.numeric_ratio", 0.5)
	v.SetDefault("analysis.vendor_scan_rows", 10)
	v.SetDefault("analysis.extra_synonyms", map[string][]string{})
	v.SetDefault("csv.encoding", "auto")
	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 16)
	v.SetDefault("server.allowed_extensions", []string{"xlsx", "xls", "csv"})
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 2.0)
	v.SetDefault("server.rate_limit_burst", 5)
	v.SetDefault("server.session_ttl_minutes", 60)
	v.SetDefault("report.file_name_format", "price_comparison_{timestamp}.xlsx")
}

// Validate checks values that would make a run meaningless.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Analysis.DuplicatePolicy) {
	case "keep_first", "keep_last":
	default:
		return eris.Errorf("config: analysis.duplicate_policy must be keep_first or keep_last, got %q", c.Analysis.DuplicatePolicy)
	}
	if c.Analysis.MinVendors < 1 {
		return eris.Errorf("config: analysis.min_vendors must be at least 1, got %d", c.Analysis.MinVendors)
	}
	if c.Analysis.NumericRatio <= 0 || c.Analysis.NumericRatio > 1 {
		return eris.Errorf("config: analysis.numeric_ratio must be in (0, 1], got %g", c.Analysis.NumericRatio)
	}
	if c.Analysis.SampleRows < 1 {
		return eris.Errorf("config: analysis.sample_rows must be at least 1, got %d", c.Analysis.SampleRows)
	}
	if c.Server.MaxUploadMB < 1 {
		return eris.Errorf("config: server.max_upload_mb must be at least 1, got %d", c.Server.MaxUploadMB)
	}
	return nil
}

// =============================================================================
// LOGGING
// =============================================================================

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
