package config

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/prospect-cli/internal/monitoring"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/hook"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig            `yaml:"store" mapstructure:"store"`
	Provider ProviderConfig         `yaml:"provider" mapstructure:"provider"`
	Hooks    hook.Config            `yaml:"hooks" mapstructure:"hooks"`
	Alerts   monitoring.AlertConfig `yaml:"alerts" mapstructure:"alerts"`
	Defaults DefaultsConfig         `yaml:"defaults" mapstructure:"defaults"`
	Server   ServerConfig           `yaml:"server" mapstructure:"server"`
	Log      LogConfig              `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	Path        string           `yaml:"path" mapstructure:"path"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// ProviderConfig holds the people-data provider credentials.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// RatePerSec caps outbound provider requests.
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// DefaultsConfig holds dashboard defaults used when a command omits a flag.
type DefaultsConfig struct {
	OwnerID  string `yaml:"owner_id" mapstructure:"owner_id"`
	ListID   string `yaml:"list_id" mapstructure:"list_id"`
	Template string `yaml:"template" mapstructure:"template"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROSPECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "prospect.db")
	v.SetDefault("store.pool.max_conns", 10)
	v.SetDefault("store.pool.min_conns", 2)
	v.SetDefault("provider.base_url", "https://api.peopledatahub.io")
	v.SetDefault("provider.rate_per_sec", 1)
	v.SetDefault("defaults.owner_id", "default")
	v.SetDefault("alerts.check_interval_secs", 300)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)

	// Keys with no default still need an empty one or AutomaticEnv will not
	// surface them to Unmarshal.
	for _, key := range []string{
		"store.database_url",
		"provider.api_key",
		"hooks.enrich_url",
		"hooks.content_audit_url",
		"hooks.facebook_ads_url",
		"hooks.similar_companies_url",
		"hooks.crm_export_url",
		"hooks.email_url",
		"alerts.webhook_url",
		"defaults.list_id",
		"defaults.template",
	} {
		v.SetDefault(key, "")
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Resolve overlays the settings table on top of the file and environment
// configuration. It runs once at startup; values stored through the dashboard
// win over the config file so operators can rotate keys without a deploy.
func (c *Config) Resolve(ctx context.Context, st store.Store) (int, error) {
	settings, err := st.GetSettings(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "config: load settings")
	}

	overrides := map[string]*string{
		"provider.api_key":            &c.Provider.APIKey,
		"provider.base_url":           &c.Provider.BaseURL,
		"hooks.enrich_url":            &c.Hooks.EnrichURL,
		"hooks.content_audit_url":     &c.Hooks.ContentAuditURL,
		"hooks.facebook_ads_url":      &c.Hooks.FacebookAdsURL,
		"hooks.similar_companies_url": &c.Hooks.SimilarCompaniesURL,
		"hooks.crm_export_url":        &c.Hooks.CRMExportURL,
		"hooks.email_url":             &c.Hooks.EmailURL,
		"alerts.webhook_url":          &c.Alerts.WebhookURL,
		"defaults.owner_id":           &c.Defaults.OwnerID,
		"defaults.list_id":            &c.Defaults.ListID,
		"defaults.template":           &c.Defaults.Template,
	}

	applied := 0
	for key, dst := range overrides {
		if val, ok := settings[key]; ok && val != "" {
			*dst = val
			applied++
		}
	}
	return applied, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
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
