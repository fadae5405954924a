package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultContentType is sent with POST and PUT bodies unless a caller header overrides it.
const DefaultContentType = "application/json"

const (
	TransportResty = "resty"
	TransportFiber = "fiber"
)

var ErrUnknownTransport = errors.New("unknown transport")

// EnvPrefix scopes every environment variable read by Load.
const EnvPrefix = "WEBCLIENT"

type Config struct {
	BaseURL               string        `mapstructure:"base_url"`
	Size                  int           `mapstructure:"size"`
	RequestTimeout        time.Duration `mapstructure:"request_timeout"`
	DialTimeout           time.Duration `mapstructure:"dial_timeout"`
	TlsTimeout            time.Duration `mapstructure:"tls_timeout"`
	IdleConnTimeout       time.Duration `mapstructure:"idle_conn_timeout"`
	MaxConnsPerHost       int           `mapstructure:"max_conns_per_host"`
	InsecureSkipVerify    bool          `mapstructure:"insecure_skip_verify"`
	ResponseHeaderTimeout time.Duration `mapstructure:"response_header_timeout"`

	ContentType      string `mapstructure:"content_type"`
	Transport        string `mapstructure:"transport"`
	UniformResponses bool   `mapstructure:"uniform_responses"`
	LogLevel         string `mapstructure:"log_level"`
	SampleURL        string `mapstructure:"sample_url"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:               "",
		Size:                  8,
		RequestTimeout:        10 * time.Second,
		DialTimeout:           5 * time.Second,
		TlsTimeout:            2 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxConnsPerHost:       1,
		InsecureSkipVerify:    false,
		ResponseHeaderTimeout: 0,
		ContentType:           DefaultContentType,
		Transport:             TransportResty,
		UniformResponses:      false,
		LogLevel:              "info",
		SampleURL:             "https://official-joke-api.appspot.com/random_joke",
	}
}

// Load reads configuration from an optional .env file, an optional config file named by
// WEBCLIENT_CONFIG_FILE and WEBCLIENT_* environment variables, in increasing precedence.
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("config_file", "")
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("size", d.Size)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("dial_timeout", d.DialTimeout)
	v.SetDefault("tls_timeout", d.TlsTimeout)
	v.SetDefault("idle_conn_timeout", d.IdleConnTimeout)
	v.SetDefault("max_conns_per_host", d.MaxConnsPerHost)
	v.SetDefault("insecure_skip_verify", d.InsecureSkipVerify)
	v.SetDefault("response_header_timeout", d.ResponseHeaderTimeout)
	v.SetDefault("content_type", d.ContentType)
	v.SetDefault("transport", d.Transport)
	v.SetDefault("uniform_responses", d.UniformResponses)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("sample_url", d.SampleURL)
}

// Validate reports the first setting that cannot produce a working client.
// A zero Size is allowed and replaced by the default pool size.
func (c Config) Validate() error {
	if c.Size < 0 {
		return fmt.Errorf("invalid size %d (must not be negative)", c.Size)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("invalid request_timeout (must be positive)")
	}
	if c.DialTimeout <= 0 {
		return errors.New("invalid dial_timeout (must be positive)")
	}
	if c.ResponseHeaderTimeout < 0 {
		return errors.New("invalid response_header_timeout (must not be negative)")
	}
	if c.MaxConnsPerHost < 0 {
		return fmt.Errorf("invalid max_conns_per_host %d", c.MaxConnsPerHost)
	}
	switch strings.ToLower(c.Transport) {
	case TransportResty, TransportFiber:
	default:
		return fmt.Errorf("%w %q", ErrUnknownTransport, c.Transport)
	}
	return nil
}
