// Package config loads aviso configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/northcross/aviso/internal/model"
	"github.com/northcross/aviso/internal/source"
)

// Unavailable-dataset policies applied at the HTTP boundary.
const (
	PolicyReject   = "reject"   // answer 503 when the jurisdiction's table is empty
	PolicyFallback = "fallback" // answer from the chapter rules alone
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Reference ReferenceConfig `yaml:"reference" mapstructure:"reference"`
	Industry  IndustryConfig  `yaml:"industry" mapstructure:"industry"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP lookup server.
type ServerConfig struct {
	Port             int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins   []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	DefaultOrigin    string   `yaml:"default_origin" mapstructure:"default_origin"`
	RateLimit        float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst        int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	ReadTimeoutSecs  int      `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	WriteTimeoutSecs int      `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
}

// ReferenceConfig locates the override tables.
type ReferenceConfig struct {
	MX                source.Spec `yaml:"mx" mapstructure:"mx"`
	US                source.Spec `yaml:"us" mapstructure:"us"`
	UnavailablePolicy string      `yaml:"unavailable_policy" mapstructure:"unavailable_policy"`
	FetchTimeoutSecs  int         `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	FetchRetries      int         `yaml:"fetch_retries" mapstructure:"fetch_retries"`
}

// IndustryConfig configures the industry canonicalizer.
type IndustryConfig struct {
	AliasesFile string `yaml:"aliases_file" mapstructure:"aliases_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Specs returns the reference sources keyed by jurisdiction.
func (r ReferenceConfig) Specs() map[model.Origin]source.Spec {
	return map[model.Origin]source.Spec{
		model.OriginMX: r.MX,
		model.OriginUS: r.US,
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("AVISO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{
		"https://www.northcrossconsulting.com",
		"https://northcrossconsulting-site.github.io",
	})
	v.SetDefault("server.default_origin", "mx")
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.read_timeout_secs", 10)
	v.SetDefault("server.write_timeout_secs", 10)
	v.SetDefault("reference.mx.path", "data/tigie_master.csv")
	v.SetDefault("reference.mx.table", "tigie_overrides")
	v.SetDefault("reference.mx.format", "")
	v.SetDefault("reference.mx.encoding", "")
	v.SetDefault("reference.mx.delimiter", "")
	v.SetDefault("reference.mx.sheet", "")
	v.SetDefault("reference.us.path", "data/hts_master.csv")
	v.SetDefault("reference.us.table", "hts_overrides")
	v.SetDefault("reference.us.format", "")
	v.SetDefault("reference.us.encoding", "")
	v.SetDefault("reference.us.delimiter", "")
	v.SetDefault("reference.us.sheet", "")
	v.SetDefault("reference.unavailable_policy", PolicyReject)
	v.SetDefault("reference.fetch_timeout_secs", 30)
	v.SetDefault("reference.fetch_retries", 3)
	v.SetDefault("industry.aliases_file", "")

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

// Validate checks the configuration. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must be >= 0"))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, errors.New("server.rate_burst must be >= 1 when rate limiting is enabled"))
	}
	if c.Server.DefaultOrigin != "" {
		if _, err := model.ParseOrigin(c.Server.DefaultOrigin); err != nil {
			errs = append(errs, fmt.Errorf("server.default_origin %q must be mx or us", c.Server.DefaultOrigin))
		}
	}

	switch c.Reference.UnavailablePolicy {
	case PolicyReject, PolicyFallback:
	default:
		errs = append(errs, fmt.Errorf("reference.unavailable_policy must be %q or %q, got %q",
			PolicyReject, PolicyFallback, c.Reference.UnavailablePolicy))
	}
	for _, o := range model.Origins {
		spec := c.Reference.Specs()[o]
		if spec.Path == "" {
			continue
		}
		if _, err := source.DetectFormat(spec); err != nil {
			errs = append(errs, fmt.Errorf("reference.%s: %w", o, err))
		}
	}

	if len(errs) > 0 {
		return eris.Wrap(errors.Join(errs...), "config: invalid")
	}
	return nil
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
