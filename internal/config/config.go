// Package config loads xd settings from ~/.config/xd/config.toml and XD_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/exchange-dash/internal/domain"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "XD"
	configName = "config"
	configType = "toml"
	configDir  = "xd"
)

const (
	KeyBaseURL         = "api.base_url"
	KeyTimeout         = "api.timeout"
	KeyToken           = "api.token"
	KeyFixture         = "backend.fixture"
	KeyRole            = "dashboard.role"
	KeyUserID          = "dashboard.user_id"
	KeyAutoRefresh     = "dashboard.auto_refresh"
	KeyRefreshInterval = "dashboard.refresh_interval"
	KeyCacheTTL        = "cache.ttl"
	KeyElevatedRoles   = "visibility.elevated_roles"
	KeyExchangeRule    = "visibility.exchange"
	KeyTaskRule        = "visibility.task"
	KeyCredentialKey   = "credentials.key"
	KeyPassPrefix      = "credentials.pass_prefix"
	KeyCredentialDir   = "credentials.dir"
	KeyLogLevel        = "log.level"
)

type Config struct {
	API         API
	Fixture     string
	Dashboard   Dashboard
	CacheTTL    time.Duration
	Visibility  Visibility
	Credentials Credentials
	LogLevel    slog.Level
	// File is the config file that was read, empty when none was found.
	File string
}

type API struct {
	BaseURL string
	Timeout time.Duration
	Token   string
}

type Dashboard struct {
	Role            domain.Role
	UserID          string
	AutoRefresh     bool
	RefreshInterval time.Duration
}

type Visibility struct {
	ElevatedRoles []string
	ExchangeRule  string
	TaskRule      string
}

type Credentials struct {
	Key        string
	PassPrefix string
	Dir        string
}

// Load reads configuration into v. An explicit file must exist; the default
// location is optional.
func Load(v *viper.Viper, file string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	configRoot, err := os.UserConfigDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve config directory: %w", err)
	}
	setDefaults(v, filepath.Join(configRoot, configDir))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(filepath.Join(configRoot, configDir))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		API: API{
			BaseURL: strings.TrimSpace(v.GetString(KeyBaseURL)),
			Timeout: v.GetDuration(KeyTimeout),
			Token:   strings.TrimSpace(v.GetString(KeyToken)),
		},
		Fixture: strings.TrimSpace(v.GetString(KeyFixture)),
		Dashboard: Dashboard{
			Role:            domain.Role(v.GetString(KeyRole)).Normalize(),
			UserID:          strings.TrimSpace(v.GetString(KeyUserID)),
			AutoRefresh:     v.GetBool(KeyAutoRefresh),
			RefreshInterval: v.GetDuration(KeyRefreshInterval),
		},
		CacheTTL: v.GetDuration(KeyCacheTTL),
		Visibility: Visibility{
			ElevatedRoles: v.GetStringSlice(KeyElevatedRoles),
			ExchangeRule:  v.GetString(KeyExchangeRule),
			TaskRule:      v.GetString(KeyTaskRule),
		},
		Credentials: Credentials{
			Key:        v.GetString(KeyCredentialKey),
			PassPrefix: v.GetString(KeyPassPrefix),
			Dir:        v.GetString(KeyCredentialDir),
		},
		File: v.ConfigFileUsed(),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	if cfg.Fixture != "" && cfg.File != "" && !filepath.IsAbs(cfg.Fixture) {
		cfg.Fixture = filepath.Join(filepath.Dir(cfg.File), cfg.Fixture)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault(KeyBaseURL, "http://localhost:5001/api/v1")
	v.SetDefault(KeyTimeout, 15*time.Second)
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyFixture, "")
	v.SetDefault(KeyRole, "")
	v.SetDefault(KeyUserID, "")
	v.SetDefault(KeyAutoRefresh, false)
	v.SetDefault(KeyRefreshInterval, 5*time.Minute)
	v.SetDefault(KeyCacheTTL, 5*time.Minute)
	v.SetDefault(KeyElevatedRoles, []string{string(domain.RoleAdmin)})
	v.SetDefault(KeyExchangeRule, "")
	v.SetDefault(KeyTaskRule, "")
	v.SetDefault(KeyCredentialKey, "api/token")
	v.SetDefault(KeyPassPrefix, "xd")
	v.SetDefault(KeyCredentialDir, filepath.Join(dir, "credentials"))
	v.SetDefault(KeyLogLevel, "info")
}

// Validate checks the settings every command needs. The dashboard role is
// checked separately by Scope since token commands do not need one.
func (c Config) Validate() error {
	var errs []error
	if c.Fixture == "" && c.API.BaseURL == "" {
		errs = append(errs, fmt.Errorf("%s is required unless %s is set", KeyBaseURL, KeyFixture))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeyTimeout, c.API.Timeout))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeyCacheTTL, c.CacheTTL))
	}
	if c.Dashboard.AutoRefresh && c.Dashboard.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive when auto refresh is on", KeyRefreshInterval))
	}
	return errors.Join(errs...)
}

// Scope builds the dashboard scope for the configured viewer.
func (c Config) Scope() (domain.Scope, error) {
	scope := domain.Scope{
		Viewer:          domain.Viewer{Role: c.Dashboard.Role, UserID: c.Dashboard.UserID},
		AutoRefresh:     c.Dashboard.AutoRefresh,
		RefreshInterval: c.Dashboard.RefreshInterval,
	}
	if err := scope.Validate(); err != nil {
		return domain.Scope{}, fmt.Errorf("%w (set %s or XD_DASHBOARD_ROLE)", err, KeyRole)
	}
	return scope, nil
}
