package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Storage    StorageConfig
	Redis      RedisConfig
	Tracing    TracingConfig    `mapstructure:"tracing"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Proctoring ProctoringConfig `mapstructure:"proctoring"`
	Plagiarism PlagiarismConfig `mapstructure:"plagiarism"`
	Analytics  AnalyticsConfig  `mapstructure:"analytics"`

	// Runtime flags, set from the command line rather than the config file.
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ProctoringConfig struct {
	SnapshotMaxWidth       int `mapstructure:"snapshot_max_width"`
	SnapshotMaxHeight      int `mapstructure:"snapshot_max_height"`
	SnapshotJPEGQuality    int `mapstructure:"snapshot_jpeg_quality"`
	ViolationThreshold     int `mapstructure:"violation_threshold"`
	ViolationWindowMinutes int `mapstructure:"violation_window_minutes"`
}

type PlagiarismConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	ScanIntervalMinutes int     `mapstructure:"scan_interval_minutes"`
}

type AnalyticsConfig struct {
	MinPercentileSample  int     `mapstructure:"min_percentile_sample"`
	SkillGapThreshold    float64 `mapstructure:"skill_gap_threshold"`
	HardestQuestionLimit int     `mapstructure:"hardest_question_limit"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("MRI_SCREEN")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	applyDefaults(&cfg)

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Proctoring.SnapshotMaxWidth == 0 {
		cfg.Proctoring.SnapshotMaxWidth = 640
	}
	if cfg.Proctoring.SnapshotMaxHeight == 0 {
		cfg.Proctoring.SnapshotMaxHeight = 480
	}
	if cfg.Proctoring.SnapshotJPEGQuality == 0 {
		cfg.Proctoring.SnapshotJPEGQuality = 70
	}
	if cfg.Proctoring.ViolationThreshold == 0 {
		cfg.Proctoring.ViolationThreshold = 5
	}
	if cfg.Proctoring.ViolationWindowMinutes == 0 {
		cfg.Proctoring.ViolationWindowMinutes = 10
	}
	if cfg.Plagiarism.SimilarityThreshold == 0 {
		cfg.Plagiarism.SimilarityThreshold = 70.0
	}
	if cfg.Plagiarism.ScanIntervalMinutes == 0 {
		cfg.Plagiarism.ScanIntervalMinutes = 60
	}
	if cfg.Analytics.MinPercentileSample == 0 {
		cfg.Analytics.MinPercentileSample = 5
	}
	if cfg.Analytics.SkillGapThreshold == 0 {
		cfg.Analytics.SkillGapThreshold = 60.0
	}
	if cfg.Analytics.HardestQuestionLimit == 0 {
		cfg.Analytics.HardestQuestionLimit = 20
	}
}
