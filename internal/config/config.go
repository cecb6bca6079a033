package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment variable, e.g. DROPWATCH_SCAN_WORKERS
const EnvPrefix = "DROPWATCH"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Scan      ScanConfig      `yaml:"scan" envconfig:"SCAN"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Publish   PublishConfig   `yaml:"publish" envconfig:"PUBLISH"`
}

// LoggingConfig contains logging configuration.
// An empty FilePath means one file per run under the logs directory.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"omitempty,oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"omitempty,oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	MaxSizeMB   int    `yaml:"max_size_mb" envconfig:"MAX_SIZE_MB" validate:"min=0"`
	MaxBackups  int    `yaml:"max_backups" envconfig:"MAX_BACKUPS" validate:"min=0"`
	MaxAgeDays  int    `yaml:"max_age_days" envconfig:"MAX_AGE_DAYS" validate:"min=0"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system locations. Relative directories are
// resolved against BaseDir, which defaults to the executable's directory.
type PathsConfig struct {
	BaseDir         string `yaml:"base_dir" envconfig:"BASE_DIR"`
	ResultDir       string `yaml:"result_dir" envconfig:"RESULT_DIR"`
	ErrorsDir       string `yaml:"errors_dir" envconfig:"ERRORS_DIR"`
	LogsDir         string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
}

// ScanConfig controls connection behaviour
type ScanConfig struct {
	Workers        int           `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" envconfig:"CONNECT_TIMEOUT" validate:"gt=0"`
	ReadTimeout    time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	DialRate       float64       `yaml:"dial_rate" envconfig:"DIAL_RATE" validate:"min=0"`
	DialBurst      int           `yaml:"dial_burst" envconfig:"DIAL_BURST" validate:"min=1"`
	KnownHostsFile string        `yaml:"known_hosts_file" envconfig:"KNOWN_HOSTS_FILE"`
	Mode           string        `yaml:"mode" envconfig:"MODE" validate:"omitempty,oneof=latest on-date before-date today-only previous-day"`
	Fallback       bool          `yaml:"fallback" envconfig:"FALLBACK"`
}

// ReportConfig controls the written reports
type ReportConfig struct {
	Format     string `yaml:"format" envconfig:"FORMAT" validate:"oneof=xlsx csv"`
	SheetName  string `yaml:"sheet_name" envconfig:"SHEET_NAME" validate:"required,max=31"`
	DateLayout string `yaml:"date_layout" envconfig:"DATE_LAYOUT" validate:"required"`
}

// TelemetryConfig controls tracing and metrics output
type TelemetryConfig struct {
	Tracing         bool   `yaml:"tracing" envconfig:"TRACING"`
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// PublishConfig configures optional upload of reports to S3-compatible storage
type PublishConfig struct {
	Enabled   bool   `yaml:"enabled" envconfig:"ENABLED"`
	Endpoint  string `yaml:"endpoint" envconfig:"ENDPOINT" validate:"required_if=Enabled true"`
	Bucket    string `yaml:"bucket" envconfig:"BUCKET" validate:"required_if=Enabled true"`
	Prefix    string `yaml:"prefix" envconfig:"PREFIX"`
	Region    string `yaml:"region" envconfig:"REGION"`
	AccessKey string `yaml:"access_key" envconfig:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" envconfig:"SECRET_KEY"`
	UseSSL    bool   `yaml:"use_ssl" envconfig:"USE_SSL"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Output:     "both",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Paths: PathsConfig{
			ResultDir: "result",
			ErrorsDir: "errors",
			LogsDir:   "logs",
		},
		Scan: ScanConfig{
			Workers:        4,
			ConnectTimeout: 30 * time.Second,
			ReadTimeout:    60 * time.Second,
			DialBurst:      1,
			Mode:           "today-only",
			Fallback:       true,
		},
		Report: ReportConfig{
			Format:     "xlsx",
			SheetName:  "Results",
			DateLayout: "01/02/2006 15:04:05",
		},
		Publish: PublishConfig{
			Prefix: "dropwatch",
			UseSSL: true,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file if one is
// found, then environment variables. configFile may be empty.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile decodes a YAML file over cfg, leaving absent keys untouched
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", filePath, err)
	}
	return nil
}

// findConfigFile returns the first config file found, or ""
func findConfigFile() string {
	if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
		return env
	}

	var locations []string
	if exeDir, err := ExecutableDir(); err == nil {
		locations = append(locations,
			filepath.Join(exeDir, "dropwatch.yaml"),
			filepath.Join(exeDir, "configs", "dropwatch.yaml"),
		)
	}
	locations = append(locations, "dropwatch.yaml", filepath.Join("configs", "dropwatch.yaml"))

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// validate checks struct constraints and normalises case-insensitive values
func (c *Config) validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	c.Report.Format = strings.ToLower(c.Report.Format)
	c.Scan.Mode = strings.ToLower(c.Scan.Mode)

	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}
