package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yigit/gradebook/internal/app/grading"
)

// Storage drivers
const (
	StorageCSV      = "csv"
	StoragePostgres = "postgres"
)

// Config structure represents the application configuration
type Config struct {
	Storage struct {
		Driver  string `yaml:"driver" env:"STORAGE_DRIVER"`
		CSVPath string `yaml:"csv_path" env:"TRANSCRIPT_CSV"`
	} `yaml:"storage"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	Grading struct {
		UnmappedGradePolicy string `yaml:"unmapped_grade_policy" env:"GRADING_UNMAPPED_POLICY"`
	} `yaml:"grading"`

	Server struct {
		Port             string `yaml:"port" env:"SERVER_PORT"`
		Mode             string `yaml:"mode" env:"SERVER_MODE"`
		AutosaveSchedule string `yaml:"autosave_schedule" env:"SERVER_AUTOSAVE_SCHEDULE"`
	} `yaml:"server"`

	Auth struct {
		Secret          string `yaml:"secret" env:"AUTH_SECRET"`
		TokenExpiration string `yaml:"token_expiration" env:"AUTH_TOKEN_EXPIRATION"`
		Issuer          string `yaml:"issuer" env:"AUTH_ISSUER"`
	} `yaml:"auth"`

	Cache struct {
		ReportTTL string `yaml:"report_ttl" env:"CACHE_REPORT_TTL"`
	} `yaml:"cache"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file, a .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			file, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}

			if err := yaml.Unmarshal(file, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	// A missing .env is normal outside development
	_ = godotenv.Load()

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	normalize(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Storage.Driver = StorageCSV
	config.Storage.CSVPath = "transcript.csv"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "gradebook"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 1
	config.Database.MaxOpenConns = 4
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.Grading.UnmappedGradePolicy = string(grading.DefaultPolicy)

	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.AutosaveSchedule = "@every 5m"

	config.Auth.TokenExpiration = "720h"
	config.Auth.Issuer = "gradebook"

	config.Cache.ReportTTL = "10m"

	config.Logging.Level = "info"
	config.Logging.Format = "text"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

func normalize(config *Config) {
	config.Storage.Driver = strings.ToLower(strings.TrimSpace(config.Storage.Driver))
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Storage.Driver {
	case StorageCSV:
		if config.Storage.CSVPath == "" {
			return fmt.Errorf("csv storage requires a transcript path")
		}
	case StoragePostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid connection max lifetime: %w", err)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", config.Storage.Driver)
	}

	policy, err := grading.ParsePolicy(config.Grading.UnmappedGradePolicy)
	if err != nil {
		return err
	}
	config.Grading.UnmappedGradePolicy = string(policy)

	if _, err := time.ParseDuration(config.Auth.TokenExpiration); err != nil {
		return fmt.Errorf("invalid token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Cache.ReportTTL); err != nil {
		return fmt.Errorf("invalid report cache ttl: %w", err)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
