package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Record sources supported by the records layer.
const (
	DataSourceUpstream = "upstream"
	DataSourcePostgres = "postgres"
)

type Config struct {
	Env        string
	Port       int
	APIPrefix  string
	DataSource string

	Upstream  UpstreamConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Records   RecordsConfig
	Dashboard DashboardConfig
	Chat      ChatConfig
	Uploads   UploadsConfig
}

// UpstreamConfig points at the course backend that owns the raw records.
type UpstreamConfig struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RecordsConfig governs raw record caching and dataset vintage.
type RecordsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
	WeekOrigin   int
}

// DashboardConfig tunes dashboard views.
type DashboardConfig struct {
	MentorWeekWindow   int
	EnrollmentPageSize int
}

// ChatConfig governs chat history retention.
type ChatConfig struct {
	HistoryTTL time.Duration
}

// UploadsConfig bounds CSV uploads.
type UploadsConfig struct {
	MaxFileSizeBytes int64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.DataSource = strings.ToLower(v.GetString("DATA_SOURCE"))
	if cfg.DataSource != DataSourcePostgres {
		cfg.DataSource = DataSourceUpstream
	}

	cfg.Upstream = UpstreamConfig{
		BaseURL:  strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
		APIToken: v.GetString("UPSTREAM_API_TOKEN"),
		Timeout:  parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 10*time.Second),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	origin := v.GetInt("ASSIGNMENT_WEEK_ORIGIN")
	if origin != 1 {
		origin = 0
	}
	cfg.Records = RecordsConfig{
		CacheEnabled: v.GetBool("ENABLE_RECORDS_CACHE"),
		CacheTTL:     parseDuration(v.GetString("RECORDS_CACHE_TTL"), 2*time.Minute),
		WeekOrigin:   origin,
	}

	cfg.Dashboard = DashboardConfig{
		MentorWeekWindow:   positiveOr(v.GetInt("MENTOR_WEEK_WINDOW"), 12),
		EnrollmentPageSize: positiveOr(v.GetInt("ENROLLMENT_PAGE_SIZE"), 5),
	}

	cfg.Chat = ChatConfig{
		HistoryTTL: parseDuration(v.GetString("CHAT_HISTORY_TTL"), 7*24*time.Hour),
	}

	maxUpload := v.GetInt64("UPLOAD_MAX_BYTES")
	if maxUpload <= 0 {
		maxUpload = 5 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{MaxFileSizeBytes: maxUpload}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("DATA_SOURCE", DataSourceUpstream)

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:3001/api")
	v.SetDefault("UPSTREAM_API_TOKEN", "")
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "course_progress")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "course-progress-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_RECORDS_CACHE", false)
	v.SetDefault("RECORDS_CACHE_TTL", "2m")
	v.SetDefault("ASSIGNMENT_WEEK_ORIGIN", 0)

	v.SetDefault("MENTOR_WEEK_WINDOW", 12)
	v.SetDefault("ENROLLMENT_PAGE_SIZE", 5)
	v.SetDefault("CHAT_HISTORY_TTL", "168h")
	v.SetDefault("UPLOAD_MAX_BYTES", 5*1024*1024)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
