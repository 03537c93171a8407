package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the service reads from the environment.
type Config struct {
	Env      string
	Port     string
	BaseURL  string
	LogLevel string

	DB DBConfig

	JWTSecret string
	JWTTTL    time.Duration

	OpenAI  OpenAIConfig
	Summary SummaryConfig

	SchedulerEnabled bool
	WeeklySchedule   string
	TriggerToken     string

	SubscriptionAccessCode  string
	VerificationMaxAttempts int

	RabbitMQURL string
	Mail        MailConfig
}

type DBConfig struct {
	Driver   string
	DSN      string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type SummaryConfig struct {
	MaxRetries      int
	RetryBaseDelay  time.Duration
	BreakerFailures int
	BreakerCooldown time.Duration
	Concurrency     int
	JobTimeout      time.Duration
}

type MailConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	AdminEmail string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_BASE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_NAME", "thoughtforest")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "240h")

	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com")
	v.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	v.SetDefault("OPENAI_TIMEOUT", "60s")

	v.SetDefault("SUMMARY_MAX_RETRIES", 3)
	v.SetDefault("SUMMARY_RETRY_BASE_DELAY", "1s")
	v.SetDefault("SUMMARY_BREAKER_FAILURES", 5)
	v.SetDefault("SUMMARY_BREAKER_COOLDOWN", "30s")
	v.SetDefault("SUMMARY_CONCURRENCY", 4)
	v.SetDefault("SUMMARY_JOB_TIMEOUT", "3m")

	v.SetDefault("SCHEDULER_ENABLED", false)
	v.SetDefault("WEEKLY_SCHEDULE", "0 6 * * *")
	v.SetDefault("TRIGGER_TOKEN", "")

	v.SetDefault("SUBSCRIPTION_ACCESS_CODE", "AUGUST")
	v.SetDefault("VERIFICATION_MAX_ATTEMPTS", 3)

	v.SetDefault("RABBITMQ_URL", "")

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("EMAIL_HOST_USER", "")
	v.SetDefault("EMAIL_HOST_PASSWORD", "")
	v.SetDefault("MAIL_FROM", "")
	v.SetDefault("ADMIN_EMAIL", "")
}

// Load reads an optional dotenv file and then the process environment.
// A missing dotenv file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:      v.GetString("APP_ENV"),
		Port:     v.GetString("APP_PORT"),
		BaseURL:  v.GetString("APP_BASE_URL"),
		LogLevel: v.GetString("LOG_LEVEL"),
		DB: DBConfig{
			Driver:   v.GetString("DB_DRIVER"),
			DSN:      v.GetString("DB_DSN"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),
		OpenAI: OpenAIConfig{
			APIKey:  v.GetString("OPENAI_API_KEY"),
			BaseURL: v.GetString("OPENAI_BASE_URL"),
			Model:   v.GetString("OPENAI_MODEL"),
			Timeout: v.GetDuration("OPENAI_TIMEOUT"),
		},
		Summary: SummaryConfig{
			MaxRetries:      v.GetInt("SUMMARY_MAX_RETRIES"),
			RetryBaseDelay:  v.GetDuration("SUMMARY_RETRY_BASE_DELAY"),
			BreakerFailures: v.GetInt("SUMMARY_BREAKER_FAILURES"),
			BreakerCooldown: v.GetDuration("SUMMARY_BREAKER_COOLDOWN"),
			Concurrency:     v.GetInt("SUMMARY_CONCURRENCY"),
			JobTimeout:      v.GetDuration("SUMMARY_JOB_TIMEOUT"),
		},
		SchedulerEnabled:        v.GetBool("SCHEDULER_ENABLED"),
		WeeklySchedule:          v.GetString("WEEKLY_SCHEDULE"),
		TriggerToken:            v.GetString("TRIGGER_TOKEN"),
		SubscriptionAccessCode:  v.GetString("SUBSCRIPTION_ACCESS_CODE"),
		VerificationMaxAttempts: v.GetInt("VERIFICATION_MAX_ATTEMPTS"),
		RabbitMQURL:             v.GetString("RABBITMQ_URL"),
		Mail: MailConfig{
			Host:       v.GetString("SMTP_HOST"),
			Port:       v.GetInt("SMTP_PORT"),
			Username:   v.GetString("EMAIL_HOST_USER"),
			Password:   v.GetString("EMAIL_HOST_PASSWORD"),
			From:       v.GetString("MAIL_FROM"),
			AdminEmail: v.GetString("ADMIN_EMAIL"),
		},
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.Username
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings every entry point depends on.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.Summary.Concurrency < 1 {
		c.Summary.Concurrency = 1
	}
	if c.Summary.MaxRetries < 0 {
		c.Summary.MaxRetries = 0
	}
	if c.VerificationMaxAttempts < 1 {
		c.VerificationMaxAttempts = 1
	}
	return nil
}

// PostgresDSN returns DB_DSN when set, otherwise a DSN assembled from the
// individual DB_* settings.
func (d DBConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

// IsDev reports whether the service runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development"
}
