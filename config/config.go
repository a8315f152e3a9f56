package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "dev"
	EnvProduction  = "production"
)

type Config struct {
	Env            string
	ServerPort     int
	LogLevel       string
	AllowedOrigins []string
	BcryptCost     int
	ReportTimezone string
	AutoMigrate    bool
	Database       DatabaseConfig
	Session        SessionConfig
	Redis          RedisConfig
	MQ             MQConfig
}

type DatabaseConfig struct {
	// URL overrides the individual postgres fields when set. Its scheme
	// selects the backend: postgres:// or mongodb://.
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

type RedisConfig struct {
	URL string
}

type MQConfig struct {
	Backend  string
	Channel  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL          string
	QueueDurable bool
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

// IsProduction reports whether cookies must be issued with Secure and SameSite=None.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// Defaults returns the configuration used when neither a file nor the
// environment provides a value.
func Defaults() Config {
	return Config{
		Env:            EnvDevelopment,
		ServerPort:     8080,
		LogLevel:       "info",
		AllowedOrigins: []string{"http://localhost:3000"},
		BcryptCost:     10,
		ReportTimezone: "UTC",
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "pomotrack",
			Password: "password",
			DBName:   "pomotrack",
		},
		Session: SessionConfig{
			TTL: 24 * time.Hour,
		},
		MQ: MQConfig{
			Channel: "pomodoro.completed",
		},
	}
}

// fileConfig mirrors the YAML schema of an optional config file.
type fileConfig struct {
	Env            string   `yaml:"env"`
	ServerPort     int      `yaml:"server_port"`
	LogLevel       string   `yaml:"log_level"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	BcryptCost     int      `yaml:"bcrypt_cost"`
	ReportTimezone string   `yaml:"report_timezone"`
	AutoMigrate    *bool    `yaml:"auto_migrate"`
	Database       struct {
		URL      string `yaml:"url"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		UseSSL   *bool  `yaml:"use_ssl"`
	} `yaml:"database"`
	Session struct {
		Secret string `yaml:"secret"`
		TTL    string `yaml:"ttl"`
	} `yaml:"session"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	MQ struct {
		Backend  string `yaml:"backend"`
		Channel  string `yaml:"channel"`
		RabbitMQ struct {
			URL          string `yaml:"url"`
			QueueDurable *bool  `yaml:"queue_durable"`
		} `yaml:"rabbitmq"`
		PubSub struct {
			ProjectID       string `yaml:"project_id"`
			CredentialsFile string `yaml:"credentials_file"`
		} `yaml:"pubsub"`
	} `yaml:"mq"`
}

// LoadConfig resolves configuration in priority order: defaults, then the
// YAML file at path (if non-empty), then environment variables.
func LoadConfig(path string) (Config, error) {
	if getEnv("ENV", EnvDevelopment) == EnvDevelopment {
		_ = godotenv.Load()
	}

	cfg := Defaults()
	if strings.TrimSpace(path) != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&cfg.Env, fc.Env)
	setInt(&cfg.ServerPort, fc.ServerPort)
	setString(&cfg.LogLevel, fc.LogLevel)
	if len(fc.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = fc.AllowedOrigins
	}
	setInt(&cfg.BcryptCost, fc.BcryptCost)
	setString(&cfg.ReportTimezone, fc.ReportTimezone)
	setBool(&cfg.AutoMigrate, fc.AutoMigrate)

	setString(&cfg.Database.URL, fc.Database.URL)
	setString(&cfg.Database.Host, fc.Database.Host)
	setInt(&cfg.Database.Port, fc.Database.Port)
	setString(&cfg.Database.User, fc.Database.User)
	setString(&cfg.Database.Password, fc.Database.Password)
	setString(&cfg.Database.DBName, fc.Database.Name)
	setBool(&cfg.Database.UseSSL, fc.Database.UseSSL)

	setString(&cfg.Session.Secret, fc.Session.Secret)
	if fc.Session.TTL != "" {
		ttl, err := time.ParseDuration(fc.Session.TTL)
		if err != nil {
			return fmt.Errorf("invalid session ttl %q: %w", fc.Session.TTL, err)
		}
		cfg.Session.TTL = ttl
	}

	setString(&cfg.Redis.URL, fc.Redis.URL)

	setString(&cfg.MQ.Backend, fc.MQ.Backend)
	setString(&cfg.MQ.Channel, fc.MQ.Channel)
	setString(&cfg.MQ.RabbitMQ.URL, fc.MQ.RabbitMQ.URL)
	setBool(&cfg.MQ.RabbitMQ.QueueDurable, fc.MQ.RabbitMQ.QueueDurable)
	setString(&cfg.MQ.PubSub.ProjectID, fc.MQ.PubSub.ProjectID)
	setString(&cfg.MQ.PubSub.CredentialsFile, fc.MQ.PubSub.CredentialsFile)
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.ServerPort = getEnvInt("PORT", cfg.ServerPort)
	cfg.ServerPort = getEnvInt("SERVER_PORT", cfg.ServerPort)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	if raw, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		cfg.AllowedOrigins = splitList(raw)
	}
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", cfg.BcryptCost)
	cfg.ReportTimezone = getEnv("REPORT_TIMEZONE", cfg.ReportTimezone)
	cfg.AutoMigrate = getEnvBool("AUTO_MIGRATE", cfg.AutoMigrate)

	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = getEnv("DB_NAME", cfg.Database.DBName)
	cfg.Database.UseSSL = getEnvBool("DB_USE_SSL", cfg.Database.UseSSL)

	cfg.Session.Secret = getEnv("SESSION_SECRET", cfg.Session.Secret)
	if raw, ok := os.LookupEnv("SESSION_TTL"); ok {
		ttl, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid SESSION_TTL %q: %w", raw, err)
		}
		cfg.Session.TTL = ttl
	}

	cfg.Redis.URL = getEnv("REDIS_URL", cfg.Redis.URL)

	cfg.MQ.Backend = getEnv("MQ_BACKEND", cfg.MQ.Backend)
	cfg.MQ.Channel = getEnv("MQ_CHANNEL", cfg.MQ.Channel)
	cfg.MQ.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.MQ.RabbitMQ.URL)
	cfg.MQ.RabbitMQ.QueueDurable = getEnvBool("RABBITMQ_QUEUE_DURABLE", cfg.MQ.RabbitMQ.QueueDurable)
	cfg.MQ.PubSub.ProjectID = getEnv("PUBSUB_PROJECT_ID", cfg.MQ.PubSub.ProjectID)
	cfg.MQ.PubSub.CredentialsFile = getEnv("PUBSUB_CREDENTIALS_FILE", cfg.MQ.PubSub.CredentialsFile)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.Atoi(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
