package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/rjournal/risk"
)

// EnvPrefix is prepended to environment overrides, e.g. RJOURNAL_JOURNAL_DB_PATH.
const EnvPrefix = "RJOURNAL"

// Config is the complete rjournal configuration.
type Config struct {
	Account AccountConfig `yaml:"account" mapstructure:"account"`
	Journal JournalConfig `yaml:"journal" mapstructure:"journal"`
	Report  ReportConfig  `yaml:"report" mapstructure:"report"`
	Archive ArchiveConfig `yaml:"archive" mapstructure:"archive"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// AccountConfig holds defaults for newly created sessions.
type AccountConfig struct {
	Balance     float64 `yaml:"balance" mapstructure:"balance"`
	RiskPercent float64 `yaml:"risk_percent" mapstructure:"risk_percent"` // 1 means 1%
}

type JournalConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
}

// ReportConfig controls where analyze writes Org reports and charts.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
	Charts    bool   `yaml:"charts" mapstructure:"charts"`
}

// ArchiveConfig selects where exports are copied. An empty Type disables archiving.
type ArchiveConfig struct {
	Type string   `yaml:"type" mapstructure:"type"` // "localfs" or "s3"
	Path string   `yaml:"path,omitempty" mapstructure:"path"`
	S3   S3Config `yaml:"s3,omitempty" mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	Endpoint  string `yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	Region    string `yaml:"region" mapstructure:"region"`
	AccessKey string `yaml:"access_key,omitempty" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key,omitempty" mapstructure:"secret_key"`
	Prefix    string `yaml:"prefix,omitempty" mapstructure:"prefix"`
}

type LogConfig struct {
	Development bool `yaml:"development" mapstructure:"development"`
}

// Risk converts the account defaults into an analysis risk config.
func (c *Config) Risk() risk.Config {
	return risk.FromPercent(c.Account.Balance, c.Account.RiskPercent)
}

// Load reads path when it is not empty, applies RJOURNAL_* environment
// overrides on top of Default and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Load(path)
}

// setDefaults registers every key so AutomaticEnv can override keys the
// file does not mention.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("account.balance", d.Account.Balance)
	v.SetDefault("account.risk_percent", d.Account.RiskPercent)
	v.SetDefault("journal.db_path", d.Journal.DBPath)
	v.SetDefault("report.output_dir", d.Report.OutputDir)
	v.SetDefault("report.charts", d.Report.Charts)
	v.SetDefault("archive.type", d.Archive.Type)
	v.SetDefault("archive.path", d.Archive.Path)
	v.SetDefault("archive.s3.bucket", d.Archive.S3.Bucket)
	v.SetDefault("archive.s3.endpoint", d.Archive.S3.Endpoint)
	v.SetDefault("archive.s3.region", d.Archive.S3.Region)
	v.SetDefault("archive.s3.access_key", d.Archive.S3.AccessKey)
	v.SetDefault("archive.s3.secret_key", d.Archive.S3.SecretKey)
	v.SetDefault("archive.s3.prefix", d.Archive.S3.Prefix)
	v.SetDefault("log.development", d.Log.Development)
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Account.RiskPercent <= 0 || c.Account.RiskPercent > 100 {
		return fmt.Errorf("account.risk_percent must be between 0 and 100")
	}
	if c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path is required")
	}
	if c.Report.OutputDir == "" {
		return fmt.Errorf("report.output_dir is required")
	}
	switch c.Archive.Type {
	case "":
	case "localfs":
		if c.Archive.Path == "" {
			return fmt.Errorf("archive.path required for localfs archive")
		}
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return fmt.Errorf("archive.s3.bucket required for s3 archive")
		}
		if c.Archive.S3.Region == "" {
			return fmt.Errorf("archive.s3.region required for s3 archive")
		}
	default:
		return fmt.Errorf("archive.type must be 'localfs' or 's3'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Balance:     25000,
			RiskPercent: 1,
		},
		Journal: JournalConfig{
			DBPath: "./trading_journal.db",
		},
		Report: ReportConfig{
			OutputDir: "./reports",
			Charts:    true,
		},
		Archive: ArchiveConfig{
			S3: S3Config{Region: "us-east-1"},
		},
	}
}
