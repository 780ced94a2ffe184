package container

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yusufsyaifudin/cyberhook/pkg/validator"
	"gopkg.in/yaml.v3"
)

const (
	EnvHTTPPort        = "CYBERHOOK_HTTP_PORT"
	EnvSessionStore    = "CYBERHOOK_SESSION_STORE"
	EnvWebhookBackend  = "CYBERHOOK_WEBHOOK_BACKEND"
	EnvWebhookTimeout  = "CYBERHOOK_WEBHOOK_TIMEOUT"
	EnvTracingEndpoint = "CYBERHOOK_TRACING_ENDPOINT"
)

// Store drivers
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSqlite3  = "sqlite3"
)

// ConfigHTTPServer struct for HTTP ConfigTransport configuration
type ConfigHTTPServer struct {
	Port int `yaml:"port" validate:"required,min=1,max=65535"`
}

// ConfigTransport is a configuration for ConfigTransport: HTTP, gRPC or anything
type ConfigTransport struct {
	HTTP ConfigHTTPServer `yaml:"http"`
}

type ConfigTracing struct {
	Disable        bool   `yaml:"disable"`
	JaegerEndpoint string `yaml:"jaegerEndpoint" validate:"required_if=Disable false"`
}

type ConfigFileStore struct {
	Path string `yaml:"path"`
}

type ConfigRedis struct {
	Mode       string   `yaml:"mode"` // single, sentinel or cluster
	Address    []string `yaml:"address"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	DB         int      `yaml:"db"`
	MasterName string   `yaml:"masterName"`
}

type ConfigGoSqlDb struct {
	Debug bool   `yaml:"debug"`
	DSN   string `yaml:"dsn"` // Data Source Name
}

type ConfigStoreResource struct {
	Disable bool   `yaml:"disable"`
	Driver  string `yaml:"driver" validate:"required,oneof=file memory redis postgres sqlite3"`

	// per driver configuration
	File  ConfigFileStore `yaml:"file"`
	Redis ConfigRedis     `yaml:"redis"`
	SQL   ConfigGoSqlDb   `yaml:"sql"`
}

// ConfigStoreResources is keyed by label, label must be lower case alphanumeric.
type ConfigStoreResources map[string]ConfigStoreResource

type ConfigSession struct {
	StoreLabel string `yaml:"storeLabel" validate:"required"`
	StorageKey string `yaml:"storageKey" validate:"required"`
}

type ConfigWebhook struct {
	Backend string        `yaml:"backend" validate:"required"`
	Timeout time.Duration `yaml:"timeout" validate:"min=0"`
}

// Config contains application config
type Config struct {
	Transport      ConfigTransport      `yaml:"transport"`
	Tracing        ConfigTracing        `yaml:"tracing"`
	StoreResources ConfigStoreResources `yaml:"storeResources" validate:"required,dive"`
	Session        ConfigSession        `yaml:"session"`
	Webhook        ConfigWebhook        `yaml:"webhook"`
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".cyberhook"
	}

	return filepath.Join(dir, "cyberhook")
}

// DefaultConfig keeps the session as a JSON file under the user config dir and sends to Discord.
func DefaultConfig() Config {
	return Config{
		Transport: ConfigTransport{
			HTTP: ConfigHTTPServer{Port: 3939},
		},
		Tracing: ConfigTracing{
			Disable:        true,
			JaegerEndpoint: "http://localhost:14268/api/traces",
		},
		StoreResources: ConfigStoreResources{
			"local": {
				Driver: DriverFile,
				File:   ConfigFileStore{Path: defaultDataDir()},
			},
		},
		Session: ConfigSession{
			StoreLabel: "local",
			StorageKey: "cyberhook_data",
		},
		Webhook: ConfigWebhook{
			Backend: "discord",
		},
	}
}

// LoadConfig reads the YAML file on top of DefaultConfig. Missing file is not an error.
// envFile (.env) is loaded first when exists, so environment overrides can come from it.
func LoadConfig(configFile, envFile string) (cfg Config, err error) {
	cfg = DefaultConfig()

	if envFile != "" {
		err = godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("error load env file %s: %w", envFile, err)
			return
		}

		err = nil
	}

	if configFile != "" {
		var fileContent []byte
		fileContent, err = os.ReadFile(configFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			err = nil

		case err != nil:
			err = fmt.Errorf("error read file config %s: %w", configFile, err)
			return

		case len(bytes.TrimSpace(fileContent)) > 0:
			dec := yaml.NewDecoder(bytes.NewReader(fileContent))
			dec.KnownFields(false)
			err = dec.Decode(&cfg)
			if err != nil {
				err = fmt.Errorf("error parse file config %s: %w", configFile, err)
				return
			}
		}
	}

	err = applyEnv(&cfg)
	if err != nil {
		return
	}

	err = cfg.Validate()
	return
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvHTTPPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHTTPPort, err)
		}

		cfg.Transport.HTTP.Port = port
	}

	if v := strings.TrimSpace(os.Getenv(EnvSessionStore)); v != "" {
		cfg.Session.StoreLabel = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvWebhookBackend)); v != "" {
		cfg.Webhook.Backend = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvWebhookTimeout)); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvWebhookTimeout, err)
		}

		cfg.Webhook.Timeout = timeout
	}

	if v := strings.TrimSpace(os.Getenv(EnvTracingEndpoint)); v != "" {
		cfg.Tracing.JaegerEndpoint = v
		cfg.Tracing.Disable = false
	}

	return nil
}

func (c Config) Validate() error {
	err := validator.Validate(c)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	for label := range c.StoreResources {
		if err = validator.Var(label, "required,alphanum,lowercase"); err != nil {
			return fmt.Errorf("invalid store label '%s': %w", label, err)
		}
	}

	if _, ok := c.StoreResources[c.Session.StoreLabel]; !ok {
		return fmt.Errorf("session store label '%s' is not defined in storeResources", c.Session.StoreLabel)
	}

	return nil
}
