package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"folio/pkg/models"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// App holds the process configuration. Values come from defaults, an optional
// config file, FOLIO_* environment variables (a .env file is honoured) and flags.
type App struct {
	SiteConfig       string        `mapstructure:"site"`
	DataDir          string        `mapstructure:"data"`
	OutputDir        string        `mapstructure:"out"`
	BaseURL          string        `mapstructure:"base_url"`
	Addr             string        `mapstructure:"addr"`
	SessionSecret    string        `mapstructure:"session_secret"`
	CacheContent     bool          `mapstructure:"cache_content"`
	BuildConcurrency int           `mapstructure:"build_concurrency"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
	Env              string        `mapstructure:"env"`
	Verbose          bool          `mapstructure:"verbose"`
	Watch            bool          `mapstructure:"watch"`
}

func (a App) Development() bool {
	return a.Env == "development"
}

const EnvPrefix = "FOLIO"

func setDefaults(v *viper.Viper) {
	v.SetDefault("site", "site.yaml")
	v.SetDefault("data", ".")
	v.SetDefault("out", "public")
	v.SetDefault("base_url", "")
	v.SetDefault("addr", ":8080")
	v.SetDefault("session_secret", "folio-dev-secret")
	v.SetDefault("cache_content", true)
	v.SetDefault("build_concurrency", 8)
	v.SetDefault("fetch_timeout", 15*time.Second)
	v.SetDefault("env", "production")
	v.SetDefault("verbose", false)
	v.SetDefault("watch", false)
}

// Load builds the App configuration. cfgFile may be empty; flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (App, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return App{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return App{}, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return App{}, err
		}
	}

	var app App
	if err := v.Unmarshal(&app); err != nil {
		return App{}, fmt.Errorf("decode config: %w", err)
	}
	if app.BuildConcurrency < 1 {
		app.BuildConcurrency = 1
	}
	return app, nil
}

// bindFlags binds flags by name, mapping dashes to the underscore keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Name == "config" {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		err = v.BindPFlag(key, f)
	})
	return err
}

// LoadSite reads the site configuration. JSON documents are accepted as YAML.
func LoadSite(path string) (*models.SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site config: %w", err)
	}
	return ParseSite(data)
}

func ParseSite(data []byte) (*models.SiteConfig, error) {
	var site models.SiteConfig
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("parse site config: %w", err)
	}
	if err := validateSite(&site); err != nil {
		return nil, err
	}
	return &site, nil
}

func validateSite(site *models.SiteConfig) error {
	seen := make(map[string]bool, len(site.Sections))
	for _, s := range site.Sections {
		if s.ID == "" {
			return errors.New("site config: top-level section without id")
		}
		if seen[s.ID] {
			return fmt.Errorf("site config: duplicate section id %q", s.ID)
		}
		seen[s.ID] = true
		if s.ContentType != "" {
			ct, ok := site.ContentTypes[s.ContentType]
			if !ok {
				return fmt.Errorf("site config: section %q uses unknown content type %q", s.ID, s.ContentType)
			}
			// items of a bound content type live under the section route
			if ct.Path == "" && s.Path != "" {
				ct.Path = s.Path
				site.ContentTypes[s.ContentType] = ct
			}
		}
	}
	for name, ct := range site.ContentTypes {
		if ct.DataSource == "" {
			return fmt.Errorf("site config: content type %q has no dataSource", name)
		}
	}
	return nil
}
