package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Tracker   TrackerConfig   `json:"tracker"`
	AI        AIConfig        `json:"ai"`
	Auth      AuthConfig      `json:"auth"`
	Dashboard DashboardConfig `json:"dashboard"`
	Logging   LoggingConfig   `json:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	Host         string        `json:"host"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Environment  string        `json:"environment"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"dbname"`
	SSLMode        string        `json:"sslmode"`
	MaxConnections int           `json:"max_connections"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
}

// RedisConfig represents Redis configuration
type RedisConfig struct {
	Host     string        `json:"host"`
	Port     int           `json:"port"`
	Password string        `json:"password"`
	DB       int           `json:"db"`
	Timeout  time.Duration `json:"timeout"`
}

// TrackerConfig represents issue tracker client configuration
type TrackerConfig struct {
	BaseURL        string        `json:"base_url"`
	UserEmail      string        `json:"user_email"`
	APIToken       string        `json:"-"`
	RequestTimeout time.Duration `json:"request_timeout"`
	PageSize       int           `json:"page_size"`
}

// AIConfig represents AI provider configuration
type AIConfig struct {
	OpenAIKey          string        `json:"-"`
	OpenAIModel        string        `json:"openai_model"`
	StackSpotClientID  string        `json:"stackspot_client_id"`
	StackSpotClientKey string        `json:"-"`
	StackSpotRealm     string        `json:"stackspot_realm"`
	StackSpotAgentID   string        `json:"stackspot_agent_id"`
	Timeout            time.Duration `json:"timeout"`
	MockMode           bool          `json:"mock_mode"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	JWTSecret         string        `json:"-"`
	AccessTokenTTL    time.Duration `json:"access_token_ttl"`
	PasswordMinLength int           `json:"password_min_length"`
	LoginMaxAttempts  int           `json:"login_max_attempts"`
	LoginWindow       time.Duration `json:"login_window"`
	RateLimitEnabled  bool          `json:"rate_limit_enabled"`
}

// DashboardConfig represents the QA dashboard classification rules.
// Status and type names mirror the tracker workflow; they are configuration
// rather than constants so a renamed workflow does not require a rebuild.
type DashboardConfig struct {
	Timezone            string   `json:"timezone"`
	BugType             string   `json:"bug_type"`
	SubBugType          string   `json:"sub_bug_type"`
	CanceledStatus      string   `json:"canceled_status"`
	ClosedStatuses      []string `json:"closed_statuses"`
	TargetStatuses      []string `json:"target_statuses"`
	ExcludedIssueTypes  []string `json:"excluded_issue_types"`
	ExcludedStatuses    []string `json:"excluded_statuses"`
	BoardMarker         string   `json:"board_marker"`
	StatusTimeMaxIssues int      `json:"status_time_max_issues"`
	CustomRangeMonths   int      `json:"custom_range_months"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Load loads configuration from environment variables with sensible defaults.
// A local .env file is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			Environment:  getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", ""),
			DBName:         getEnv("DB_NAME", "qaforge"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConnections: getEnvInt("DB_MAX_CONNECTIONS", 20),
			ConnectTimeout: getEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Timeout:  getEnvDuration("REDIS_TIMEOUT", 5*time.Second),
		},
		Tracker: TrackerConfig{
			BaseURL:        getEnv("TRACKER_BASE_URL", ""),
			UserEmail:      getEnv("TRACKER_USER_EMAIL", ""),
			APIToken:       getEnv("TRACKER_API_TOKEN", ""),
			RequestTimeout: getEnvDuration("TRACKER_REQUEST_TIMEOUT", 30*time.Second),
			PageSize:       getEnvInt("TRACKER_PAGE_SIZE", 100),
		},
		AI: AIConfig{
			OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			StackSpotClientID:  getEnv("STACKSPOT_CLIENT_ID", ""),
			StackSpotClientKey: getEnv("STACKSPOT_CLIENT_KEY", ""),
			StackSpotRealm:     getEnv("STACKSPOT_REALM", ""),
			StackSpotAgentID:   getEnv("STACKSPOT_AGENT_ID", ""),
			Timeout:            getEnvDuration("AI_TIMEOUT", 60*time.Second),
			MockMode:           getEnvBool("AI_MOCK_MODE", false),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", "change-me-in-production"),
			AccessTokenTTL:    getEnvDuration("ACCESS_TOKEN_TTL", 30*time.Minute),
			PasswordMinLength: getEnvInt("PASSWORD_MIN_LENGTH", 8),
			LoginMaxAttempts:  getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
			LoginWindow:       getEnvDuration("LOGIN_WINDOW", 15*time.Minute),
			RateLimitEnabled:  getEnvBool("RATE_LIMIT_ENABLED", false),
		},
		Dashboard: DashboardConfig{
			Timezone:       getEnv("DASHBOARD_TIMEZONE", "America/Sao_Paulo"),
			BugType:        getEnv("DASHBOARD_BUG_TYPE", "Bug"),
			SubBugType:     getEnv("DASHBOARD_SUB_BUG_TYPE", "Sub-Bug"),
			CanceledStatus: getEnv("DASHBOARD_CANCELED_STATUS", "Cancelado"),
			ClosedStatuses: getEnvSlice("DASHBOARD_CLOSED_STATUSES", []string{
				"Applied in production",
				"Concluído",
				"Done",
				"Resolved",
				"Closed",
			}),
			TargetStatuses: getEnvSlice("DASHBOARD_TARGET_STATUSES", []string{
				"Ready to test",
				"In Test",
			}),
			ExcludedIssueTypes: getEnvSlice("DASHBOARD_EXCLUDED_ISSUE_TYPES", []string{
				"Sub-task",
				"Spike",
				"Epic",
				"Operational",
				"Sub-Bug",
			}),
			ExcludedStatuses: getEnvSlice("DASHBOARD_EXCLUDED_STATUSES", []string{
				"Tarefas pendentes",
				"Code review",
				"In Product Discovery",
				"Tech refinement",
				"Ready to Dev",
				"In Development",
				"Product Backlog",
				"Business refinement",
				"Backlog",
				"PRIORITIZED",
			}),
			BoardMarker:         getEnv("DASHBOARD_BOARD_MARKER", "Scrum"),
			StatusTimeMaxIssues: getEnvInt("DASHBOARD_STATUS_TIME_MAX_ISSUES", 100),
			CustomRangeMonths:   getEnvInt("DASHBOARD_CUSTOM_RANGE_MONTHS", 3),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Tracker.PageSize <= 0 {
		return fmt.Errorf("tracker page size must be positive")
	}

	if len(c.Dashboard.TargetStatuses) != 2 {
		return fmt.Errorf("dashboard requires exactly two target statuses, got %d", len(c.Dashboard.TargetStatuses))
	}

	if c.Dashboard.CustomRangeMonths <= 0 {
		return fmt.Errorf("dashboard custom range limit must be positive")
	}

	if c.IsProduction() && (c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "change-me-in-production") {
		return fmt.Errorf("JWT secret must be set in production")
	}

	return nil
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseURL returns the database connection string
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
		int(c.Database.ConnectTimeout.Seconds()),
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
