package config

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	GitHub     GitHubConfig     `mapstructure:"github"`
	Domo       DomoConfig       `mapstructure:"domo"`
	Sync       SyncConfig       `mapstructure:"sync"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// GitHubConfig contains GitHub API client settings
type GitHubConfig struct {
	BaseURL string `mapstructure:"base_url" default:"https://api.github.com"`
	// Enterprise or organization slug the Copilot endpoints are scoped to.
	Enterprise string        `mapstructure:"enterprise" validate:"required"`
	Token      string        `mapstructure:"token" validate:"required"`
	APIVersion string        `mapstructure:"api_version" default:"2022-11-28"`
	PageSize   int           `mapstructure:"page_size" default:"100" validate:"min=1,max=100"`
	Timeout    time.Duration `mapstructure:"timeout" default:"30s"`
}

// DomoConfig contains Domo API client settings
type DomoConfig struct {
	BaseURL          string        `mapstructure:"base_url" default:"https://api.domo.com"`
	ClientID         string        `mapstructure:"client_id"`
	ClientSecret     string        `mapstructure:"client_secret"`
	MetricsDatasetID string        `mapstructure:"metrics_dataset_id"`
	UsersDatasetID   string        `mapstructure:"users_dataset_id"`
	Timeout          time.Duration `mapstructure:"timeout" default:"60s"`
}

// SyncConfig contains synchronization run settings
type SyncConfig struct {
	// CheckpointFile holds the last successfully synchronized date.
	CheckpointFile string `mapstructure:"checkpoint_file" default:"output/last_copilot_run.txt"`
	OutputDir      string `mapstructure:"output_dir" default:"output"`
	// LookbackDays bounds the first-run fetch window when no checkpoint exists.
	LookbackDays int `mapstructure:"lookback_days" default:"27" validate:"min=1"`
	// EarliestDate floors the first-run window.
	EarliestDate string `mapstructure:"earliest_date" default:"2023-01-01" validate:"datetime=2006-01-02"`
	// AdvanceCheckpointOnDryRun makes no-upload runs commit the checkpoint anyway.
	AdvanceCheckpointOnDryRun bool `mapstructure:"advance_checkpoint_on_dry_run"`
}

// MonitoringConfig contains metrics delivery settings
type MonitoringConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	JobName        string `mapstructure:"job_name" default:"copilot_sync"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level" default:"info"`
	Format     string `mapstructure:"format" default:"json"`
	OutputPath string `mapstructure:"output_path" default:"stdout"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("COPILOT_SYNC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := defaults.Set(config); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func validate(config *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(config); err != nil {
		return err
	}
	// Domo credentials are optional (no-upload runs), but must come in pairs.
	if (config.Domo.ClientID == "") != (config.Domo.ClientSecret == "") {
		return fmt.Errorf("domo.client_id and domo.client_secret must both be set or both be empty")
	}
	return nil
}
