package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

//go:embed default.yaml
var defaultYAML []byte

// EnvPrefix prefixes every environment override, e.g. EPINIO_E2E_BROWSER_DRIVER.
const EnvPrefix = "EPINIO_E2E"

// Config is the run configuration of the suite.
type Config struct {
	BaseURL           string         `mapstructure:"base_url" validate:"required,url"`
	BaseURLAutodetect bool           `mapstructure:"base_url_autodetect"`
	UI                string         `mapstructure:"ui" validate:"omitempty,oneof=rancher"`
	Cluster           string         `mapstructure:"cluster"`
	SystemDomain      string         `mapstructure:"system_domain" validate:"omitempty,fqdn|ip"`
	Username          string         `mapstructure:"username" validate:"required"`
	Password          string         `mapstructure:"password" validate:"required"`
	FixturesDir       string         `mapstructure:"fixtures_dir" validate:"required"`
	Browser           BrowserConfig  `mapstructure:"browser"`
	Log               LogConfig      `mapstructure:"log"`
	Metrics           MetricsConfig  `mapstructure:"metrics"`
	Kube              KubeConfig     `mapstructure:"kube"`
	Schedule          ScheduleConfig `mapstructure:"schedule"`
}

type BrowserConfig struct {
	Driver       string        `mapstructure:"driver" validate:"oneof=playwright chromedp"`
	Headless     bool          `mapstructure:"headless"`
	SlowMo       time.Duration `mapstructure:"slow_mo" validate:"min=0"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"min=1s"`
	Screenshots  bool          `mapstructure:"screenshots"`
	Videos       bool          `mapstructure:"videos"`
	RemoteURL    string        `mapstructure:"remote_url" validate:"omitempty,url"`
	ArtifactsDir string        `mapstructure:"artifacts_dir" validate:"required"`
	DownloadsDir string        `mapstructure:"downloads_dir" validate:"required"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

type KubeConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Kubeconfig string `mapstructure:"kubeconfig"`
}

type ScheduleConfig struct {
	Cron    string        `mapstructure:"cron"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`
	Suites  []string      `mapstructure:"suites" validate:"dive,required"`
}

// legacyEnv maps keys to the unprefixed variable names older pipelines set.
var legacyEnv = map[string]string{
	"base_url":            "BASE_URL",
	"base_url_autodetect": "E2E_BASEURL_AUTODETECT",
	"ui":                  "UI",
	"cluster":             "CLUSTER",
	"system_domain":       "SYSTEM_DOMAIN",
	"browser.headless":    "HEADLESS",
	"browser.screenshots": "SCREENSHOTS",
	"browser.videos":      "VIDEOS",
	"browser.slow_mo":     "SLOW_MO",
}

// Load reads the embedded defaults, merges e2e.yaml from configDir when
// present, loads configDir/.env without overriding the environment and
// applies environment overrides. The result is validated and becomes the
// one returned by Get.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = "."
	}
	if err := gotenv.Load(filepath.Join(configDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultYAML)); err != nil {
		return nil, fmt.Errorf("failed to read default config: %w", err)
	}

	v.SetConfigName("e2e")
	v.AddConfigPath(configDir)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to merge config: %w", err)
		}
	}

	return finish(v)
}

// LoadFromFile reads one YAML file over the defaults, without .env or
// e2e.yaml lookup (useful for testing).
func LoadFromFile(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultYAML)); err != nil {
		return nil, fmt.Errorf("failed to read default config: %w", err)
	}
	v.SetConfigFile(configFile)
	if err := v.MergeInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", legacy, err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) IsRancher() bool { return c.UI == "rancher" }
