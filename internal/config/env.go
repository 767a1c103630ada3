package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// ServerEnv is the langserve configuration. It is read once at startup and
// not modified afterwards.
type ServerEnv struct {
	Port      int    `env:"PORT" env-required:"true" env-description:"TCP port to listen on"`
	BaseURL   string `env:"BASE_URL" env-required:"true" env-description:"path prefix for the entry file and assets"`
	Host      string `env:"HOST" env-default:"127.0.0.1"`
	Root      string `env:"SERVE_ROOT" env-default:"."`
	EntryFile string `env:"ENTRY_FILE" env-default:"index.html"`
	LogLevel  string `env:"LOG_LEVEL" env-default:"warn"`
}

// LoadServerEnv reads ServerEnv from the process environment. When envFile
// is set (it must carry the .env extension), its variables are loaded into
// the environment first.
func LoadServerEnv(envFile string) (*ServerEnv, error) {
	cfg := &ServerEnv{}

	var err error
	if envFile != "" {
		err = cleanenv.ReadConfig(envFile, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("read server env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c *ServerEnv) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerEnv) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Port)
	}
	if err := ValidateBaseURL(c.BaseURL); err != nil {
		return fmt.Errorf("BASE_URL: %w", err)
	}
	return nil
}

// ValidateBaseURL checks that base is an absolute path usable as a literal
// route. ':' and '*' would turn it into a route parameter.
func ValidateBaseURL(base string) error {
	if !strings.HasPrefix(base, "/") {
		return fmt.Errorf("%q must start with /", base)
	}
	if i := strings.IndexAny(base, ":*?#"); i >= 0 {
		return fmt.Errorf("%q must not contain %q", base, base[i])
	}
	return nil
}

// ServerEnvUsage describes the variables ServerEnv reads, for --help output.
func ServerEnvUsage() string {
	desc, err := cleanenv.GetDescription(&ServerEnv{}, nil)
	if err != nil {
		return ""
	}
	return desc
}
