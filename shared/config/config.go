package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	DriverPostgres = "postgres"
	DriverPebble   = "pebble"
	DriverSqlite   = "sqlite"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	HttpPort        int           `yaml:"http_port" validate:"required,min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"required"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"required"`

	StorageDriver  string `yaml:"storage_driver" validate:"required,oneof=postgres pebble sqlite"`
	RecentThreads  int    `yaml:"recent_threads" validate:"required,min=1"`  // threads returned by board listing
	PreviewReplies int    `yaml:"preview_replies" validate:"required,min=1"` // last replies shown per thread in board listing

	AllowedOrigins []string `yaml:"allowed_origins"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
	// DSN takes precedence over the discrete fields when set
	DSN string `yaml:"dsn"`
}

type Private struct {
	Pg         Pg     `yaml:"pg"`
	PebblePath string `yaml:"pebble_path"`
	SqlitePath string `yaml:"sqlite_path"`
}

// ConnString builds a lib/pq connection string.
func (p *Pg) ConnString() string {
	if p.DSN != "" {
		return p.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Dbname)
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Public.HttpPort)
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err = yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder, applies
// environment overrides (a .env file in the working directory is honored)
// and validates the result. Any problem is fatal.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{Public: public, Private: private}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		panic("can't load .env file: " + err.Error())
	}
	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}

// ApplyEnv overrides file values with PORT, DB, STORAGE_DRIVER, PEBBLE_PATH,
// SQLITE_PATH and LOG_LEVEL.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("PORT"); ok && v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Public.HttpPort = port
		}
	}
	if v, ok := lookup("DB"); ok && v != "" {
		c.Private.Pg.DSN = v
	}
	if v, ok := lookup("STORAGE_DRIVER"); ok && v != "" {
		c.Public.StorageDriver = v
	}
	if v, ok := lookup("PEBBLE_PATH"); ok && v != "" {
		c.Private.PebblePath = v
	}
	if v, ok := lookup("SQLITE_PATH"); ok && v != "" {
		c.Private.SqlitePath = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Public.LogLevel = v
	}
}

func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c.Public); err != nil {
		return fmt.Errorf("invalid public config: %w", err)
	}
	switch c.Public.StorageDriver {
	case DriverPostgres:
		if c.Private.Pg.DSN == "" && (c.Private.Pg.Host == "" || c.Private.Pg.Dbname == "") {
			return fmt.Errorf("invalid private config: pg dsn or host/dbname required")
		}
	case DriverSqlite:
		if c.Private.SqlitePath == "" {
			return fmt.Errorf("invalid private config: sqlite_path required")
		}
	}
	return nil
}
