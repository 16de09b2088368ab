package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	HTTPAddr    string   `yaml:"http_addr"`
	CORSOrigins []string `yaml:"cors_origins"`
	JWTSecret   string   `yaml:"jwt_secret"`
	LogLevel    string   `yaml:"log_level"`

	DBDriver   string `yaml:"db_driver"`
	DBHost     string `yaml:"db_host"`
	DBPort     int    `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBPath     string `yaml:"db_path"`

	OpenAIKey         string        `yaml:"openai_api_key"`
	OpenAIModel       string        `yaml:"openai_model"`
	OpenAIBaseURL     string        `yaml:"openai_base_url"`
	OpenAITemperature float64       `yaml:"openai_temperature"`
	OpenAIMaxTokens   int           `yaml:"openai_max_tokens"`
	OpenAITimeout     time.Duration `yaml:"openai_timeout"`

	OTel OTelConfig `yaml:"otel"`
}

type OTelConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Exporter    string `yaml:"exporter"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

func defaults() *Config {
	return &Config{
		HTTPAddr:    ":8080",
		CORSOrigins: []string{"*"},
		JWTSecret:   "SUPER_SECRET_KEY_CHANGE_ME",
		LogLevel:    "info",

		DBDriver: DriverPostgres,
		DBPort:   5432,
		DBPath:   "taskapp.db",

		OpenAIModel:       "gpt-3.5-turbo",
		OpenAIBaseURL:     "https://api.openai.com/v1",
		OpenAITemperature: 0.7,
		OpenAIMaxTokens:   200,
		OpenAITimeout:     30 * time.Second,

		OTel: OTelConfig{
			Exporter:    "none",
			ServiceName: "taskapp",
		},
	}
}

// Load builds the config from defaults, an optional YAML file (CONFIG_FILE)
// and environment variables, in that order of precedence.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.LogLevel, "LOG_LEVEL")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	setString(&c.DBDriver, "DB_DRIVER")
	setString(&c.DBHost, "DB_HOST")
	setInt(&c.DBPort, "DB_PORT")
	setString(&c.DBUser, "DB_USER")
	setString(&c.DBPassword, "DB_PASSWORD")
	setString(&c.DBName, "DB_NAME")
	setString(&c.DBPath, "DB_PATH")

	setString(&c.OpenAIKey, "OPENAI_API_KEY")
	setString(&c.OpenAIModel, "OPENAI_MODEL")
	setString(&c.OpenAIBaseURL, "OPENAI_BASE_URL")
	setInt(&c.OpenAIMaxTokens, "OPENAI_MAX_TOKENS")
	if v := os.Getenv("OPENAI_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.OpenAITemperature = f
		}
	}
	if v := os.Getenv("OPENAI_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.OpenAITimeout = d
		}
	}

	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		c.OTel.Enabled, _ = strconv.ParseBool(v)
	}
	setString(&c.OTel.Exporter, "OTEL_EXPORTER")
	setString(&c.OTel.Endpoint, "OTEL_ENDPOINT")
	setString(&c.OTel.ServiceName, "OTEL_SERVICE_NAME")
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return c.DBPath
	}
	return c.ConnString()
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return // keep previous value
	}
	*dst = n
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
