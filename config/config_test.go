package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, 25000.0, cfg.Account.Balance)
	assert.Equal(t, 1.0, cfg.Account.RiskPercent)
	assert.Equal(t, "./trading_journal.db", cfg.Journal.DBPath)
	assert.NoError(t, cfg.Validate())
}

func TestRisk(t *testing.T) {
	cfg := Default()
	rc := cfg.Risk()
	assert.InDelta(t, 25000.0, rc.InitialBalance, 1e-9)
	assert.InDelta(t, 250.0, rc.RiskAmount, 1e-9)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "negative balance",
			mutate:  func(c *Config) { c.Account.Balance = -1000 },
			wantErr: true,
			errMsg:  "account.balance must be positive",
		},
		{
			name:    "risk percent too large",
			mutate:  func(c *Config) { c.Account.RiskPercent = 150 },
			wantErr: true,
			errMsg:  "account.risk_percent must be between 0 and 100",
		},
		{
			name:    "missing db path",
			mutate:  func(c *Config) { c.Journal.DBPath = "" },
			wantErr: true,
			errMsg:  "journal.db_path is required",
		},
		{
			name:    "missing report dir",
			mutate:  func(c *Config) { c.Report.OutputDir = "" },
			wantErr: true,
			errMsg:  "report.output_dir is required",
		},
		{
			name:    "unknown archive type",
			mutate:  func(c *Config) { c.Archive.Type = "ftp" },
			wantErr: true,
			errMsg:  "archive.type must be 'localfs' or 's3'",
		},
		{
			name:    "localfs without path",
			mutate:  func(c *Config) { c.Archive.Type = "localfs" },
			wantErr: true,
			errMsg:  "archive.path required",
		},
		{
			name: "localfs with path",
			mutate: func(c *Config) {
				c.Archive.Type = "localfs"
				c.Archive.Path = "/tmp/archive"
			},
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.Archive.Type = "s3" },
			wantErr: true,
			errMsg:  "archive.s3.bucket required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	cfg := Default()
	cfg.Account.Balance = 50000
	cfg.Archive.Type = "localfs"
	cfg.Archive.Path = "/var/backups/rjournal"
	cfg.Log.Development = true

	path := filepath.Join(t.TempDir(), "rjournal.yaml")

	// Save
	require.NoError(t, cfg.SaveToFile(path))

	// Verify file exists
	_, err := os.Stat(path)
	require.NoError(t, err)

	// Load
	loaded, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Account, loaded.Account)
	assert.Equal(t, cfg.Journal, loaded.Journal)
	assert.Equal(t, cfg.Archive.Type, loaded.Archive.Type)
	assert.Equal(t, cfg.Archive.Path, loaded.Archive.Path)
	assert.True(t, loaded.Log.Development)
}

func TestLoadPartialFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rjournal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  balance: 10000\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 10000.0, cfg.Account.Balance)
	assert.Equal(t, 1.0, cfg.Account.RiskPercent)
	assert.Equal(t, "./reports", cfg.Report.OutputDir)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RJOURNAL_JOURNAL_DB_PATH", "/data/journal.db")
	t.Setenv("RJOURNAL_ACCOUNT_RISK_PERCENT", "0.5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/data/journal.db", cfg.Journal.DBPath)
	assert.Equal(t, 0.5, cfg.Account.RiskPercent)
}

func TestLoadInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rjournal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  balance: -5\n"), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)
}
