package config

import (
	"bufio"
	"fmt"
	"net"
	neturl "net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config centralises runtime configuration.
type Config struct {
	HTTPPort       string        `koanf:"http_port"`
	AllowedOrigins []string      `koanf:"cors_allowed_origins"`
	ReadTimeout    time.Duration `koanf:"http_read_timeout"`
	WriteTimeout   time.Duration `koanf:"http_write_timeout"`
	IdleTimeout    time.Duration `koanf:"http_idle_timeout"`

	DatabaseURL      string   `koanf:"database_url"`
	DSN              string   `koanf:"pg_dsn"`
	Postgres         Postgres `koanf:",squash"`
	DBConnectRetries uint64   `koanf:"db_connect_retries"`

	TokenTTL   time.Duration `koanf:"token_ttl"`
	BcryptCost int           `koanf:"bcrypt_cost"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

// Postgres holds the discrete connection settings used when no DSN is given.
type Postgres struct {
	User     string `koanf:"pg_user"`
	Password string `koanf:"pg_password"`
	Host     string `koanf:"pg_host"`
	Port     string `koanf:"pg_port"`
	DB       string `koanf:"pg_db"`
	SSLMode  string `koanf:"pg_sslmode"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		HTTPPort:       "8080",
		AllowedOrigins: []string{"*"},
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		Postgres: Postgres{
			User:     "app",
			Password: "1234",
			Host:     "127.0.0.1",
			Port:     "5431",
			DB:       "app",
			SSLMode:  "disable",
		},
		DBConnectRetries: 5,
		TokenTTL:         86400 * time.Second,
		BcryptCost:       12,
		LogLevel:         "info",
		LogFormat:        "console",
	}
}

// Load builds the configuration from, in increasing precedence: defaults,
// the YAML file at path (skipped when empty), environment variables and
// flags explicitly set on fs. A .env file in the working directory is
// exported to the environment first.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(key), value
		},
	}), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	if fs != nil {
		if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(fs, f)
		}), nil); err != nil {
			return Config{}, fmt.Errorf("loading flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				secondsToDurationHook(),
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	cfg.AllowedOrigins = normaliseOrigins(cfg.AllowedOrigins)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = resolveDatabaseURL(cfg)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	if strings.Contains(c.HTTPPort, ":") {
		return c.HTTPPort
	}
	return ":" + c.HTTPPort
}

func (c Config) validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("http_port is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive, got %s", c.TokenTTL)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database configuration missing: provide DATABASE_URL, PG_DSN or PG_* env vars")
	}
	return nil
}

// secondsToDurationHook lets durations be given as bare integers of seconds.
func secondsToDurationHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return data, nil
			}
			return time.Duration(n) * time.Second, nil
		case int:
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		case float64:
			return time.Duration(v * float64(time.Second)), nil
		}
		return data, nil
	}
}

func normaliseOrigins(values []string) []string {
	parts := []string{}
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
	}
	if len(parts) == 0 {
		return []string{"*"}
	}
	return parts
}

func resolveDatabaseURL(cfg Config) string {
	if dsn := coerceDatabaseURL(cfg.DSN); dsn != "" {
		return dsn
	}

	pg := cfg.Postgres
	if pg.Host == "" || pg.User == "" {
		return ""
	}
	database := pg.DB
	if database == "" {
		database = pg.User
	}
	port := pg.Port
	if port == "" {
		port = "5432"
	}

	dsn := &neturl.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(pg.Host, port),
		Path:   "/" + database,
		User:   neturl.User(pg.User),
	}
	if pg.Password != "" {
		dsn.User = neturl.UserPassword(pg.User, pg.Password)
	}
	if pg.SSLMode != "" {
		query := dsn.Query()
		query.Set("sslmode", pg.SSLMode)
		dsn.RawQuery = query.Encode()
	}
	return dsn.String()
}

func coerceDatabaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "postgres://"):
		return raw
	case strings.HasPrefix(raw, "postgresql://"):
		return "postgres://" + strings.TrimPrefix(raw, "postgresql://")
	}
	return ""
}

func loadDotEnv(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf(".env line %d: missing '='", lineNum)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			return fmt.Errorf(".env line %d: empty key", lineNum)
		}
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') || (value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		// Real environment wins over .env.
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf(".env line %d: %w", lineNum, err)
		}
	}
	return scanner.Err()
}
