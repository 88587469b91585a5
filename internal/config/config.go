package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	NATS      NATSConfig      `yaml:"nats"`
	MinIO     MinIOConfig     `yaml:"minio"`
	FaceID    FaceIDConfig    `yaml:"faceid"`
	Alerting  AlertingConfig  `yaml:"alerting"`
	Narrative NarrativeConfig `yaml:"narrative"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type FaceIDConfig struct {
	ModelsDir     string  `yaml:"models_dir"`
	MatchDistance float64 `yaml:"match_distance"`
}

// LocationPolicy is one row of the static capacity/access table:
// maximum occupancy, the roles allowed inside (empty means unrestricted),
// and whether the after-hours rule applies to the location.
type LocationPolicy struct {
	MaxCapacity  int      `yaml:"max_capacity"`
	AllowedRoles []string `yaml:"allowed_roles"`
	AfterHours   bool     `yaml:"after_hours"`
	// AfterHoursRoles narrows the after-hours rule to specific roles.
	// Empty means every role outside AllowedRoles is watched.
	AfterHoursRoles []string `yaml:"after_hours_roles"`
}

type AlertingConfig struct {
	GapThresholdHours      float64       `yaml:"gap_threshold_hours"`
	SleepGapThresholdHours float64       `yaml:"sleep_gap_threshold_hours"`
	MaxPerCategory         int           `yaml:"max_per_category"`
	MaxTotal               int           `yaml:"max_total"`
	SweepInterval          time.Duration `yaml:"sweep_interval"`
	// Locations maps a location label to its capacity and access policy.
	// Locations absent from the map have no capacity limit and no
	// access restrictions.
	Locations map[string]LocationPolicy `yaml:"locations"`
}

type NarrativeConfig struct {
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.FaceID.MatchDistance == 0 {
		cfg.FaceID.MatchDistance = 0.4
	}
	if cfg.Alerting.GapThresholdHours == 0 {
		cfg.Alerting.GapThresholdHours = 12
	}
	if cfg.Alerting.SleepGapThresholdHours == 0 {
		cfg.Alerting.SleepGapThresholdHours = 10
	}
	if cfg.Alerting.MaxPerCategory == 0 {
		cfg.Alerting.MaxPerCategory = 25
	}
	if cfg.Alerting.MaxTotal == 0 {
		cfg.Alerting.MaxTotal = 100
	}
	if cfg.Alerting.SweepInterval == 0 {
		cfg.Alerting.SweepInterval = 15 * time.Minute
	}
	if cfg.Narrative.Model == "" {
		cfg.Narrative.Model = "gemini-2.5-flash"
	}
	if cfg.Narrative.Timeout == 0 {
		cfg.Narrative.Timeout = 20 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SENTINEL_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SENTINEL_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("SENTINEL_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("SENTINEL_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("SENTINEL_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("SENTINEL_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("SENTINEL_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("SENTINEL_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("SENTINEL_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("SENTINEL_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("SENTINEL_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("SENTINEL_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("SENTINEL_MODELS_DIR"); v != "" {
		cfg.FaceID.ModelsDir = v
	}
	if v := os.Getenv("SENTINEL_NARRATIVE_BASE_URL"); v != "" {
		cfg.Narrative.BaseURL = v
	}
	if v := os.Getenv("SENTINEL_NARRATIVE_API_KEY"); v != "" {
		cfg.Narrative.APIKey = v
	}
}
