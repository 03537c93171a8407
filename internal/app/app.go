package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"thoughtforest/internal/config"
	"thoughtforest/internal/database"
	"thoughtforest/internal/llm"
	"thoughtforest/internal/mail"
	"thoughtforest/internal/metrics"
	"thoughtforest/internal/repositories"
	"thoughtforest/internal/scheduler"
	"thoughtforest/internal/services"
	"thoughtforest/internal/summary"
	"thoughtforest/pkg/rabbitmq"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const mailTimeout = 30 * time.Second

// Options overrides parts of the default wiring.
type Options struct {
	// Gateway replaces the OpenAI client. It is still wrapped with retries
	// and the circuit breaker.
	Gateway llm.Gateway
	// Transport replaces the SMTP or log mailer.
	Transport mail.Mailer
	// Broker moves summary jobs and outgoing mail onto queues.
	Broker *rabbitmq.Client
}

// Container holds every wired component of the service.
type Container struct {
	Config  *config.Config
	DB      *gorm.DB
	Metrics *metrics.Metrics
	Broker  *rabbitmq.Client

	Users          repositories.UserRepository
	Transcriptions repositories.TranscriptionRepository
	Summaries      repositories.SummaryRepository

	// Transport delivers mail directly; Mailer is what request paths use.
	Transport mail.Mailer
	Mailer    *mail.Async

	Auth                 *services.AuthService
	Profiles             *services.UserService
	TranscriptionService *services.TranscriptionService
	SummaryService       *services.SummaryService

	Gateway    *llm.Resilient
	Aggregator *summary.Aggregator
	Weekly     *summary.Service
	Trigger    *scheduler.Trigger
}

// New wires the service around an open database.
func New(cfg *config.Config, db *gorm.DB, opts Options) *Container {
	c := &Container{
		Config:         cfg,
		DB:             db,
		Metrics:        metrics.New(),
		Broker:         opts.Broker,
		Users:          repositories.NewGORMUserRepository(db),
		Transcriptions: repositories.NewGORMTranscriptionRepository(db),
		Summaries:      repositories.NewGORMSummaryRepository(db),
	}

	c.Transport = opts.Transport
	if c.Transport == nil {
		if cfg.Mail.Host != "" {
			c.Transport = mail.NewSMTPMailer(cfg.Mail)
		} else {
			c.Transport = mail.NewLogMailer()
		}
	}
	var outbound mail.Mailer = c.Transport
	if c.Broker != nil {
		outbound = mail.NewQueueMailer(c.Broker)
	}
	c.Mailer = mail.NewAsync(outbound, mailTimeout).WithObserver(c.Metrics)

	c.Auth = services.NewAuthService(c.Users, c.Mailer, cfg)
	c.Profiles = services.NewUserService(c.Users, c.Transcriptions, c.Summaries, c.Mailer)
	c.TranscriptionService = services.NewTranscriptionService(c.Transcriptions)
	c.SummaryService = services.NewSummaryService(c.Summaries)

	gateway := opts.Gateway
	if gateway == nil {
		if cfg.OpenAI.APIKey == "" {
			log.Warn().Msg("OPENAI_API_KEY is not set, summarization calls will fail")
		}
		gateway = llm.NewOpenAI(cfg.OpenAI)
	}
	c.Gateway = llm.NewResilient(gateway, cfg.Summary).WithObserver(c.Metrics)
	c.Aggregator = summary.NewAggregator(c.Transcriptions, c.Summaries, c.Gateway, cfg.Summary.JobTimeout).
		WithRecorder(c.Metrics)

	var dispatcher summary.Dispatcher = summary.NewInlineDispatcher(c.Aggregator, cfg.Summary.Concurrency)
	if c.Broker != nil {
		dispatcher = summary.NewQueueDispatcher(c.Broker)
	}
	c.Weekly = summary.NewService(c.Aggregator, dispatcher)
	c.Trigger = scheduler.NewTrigger(c.Weekly)

	return c
}

// Open connects to the database and, when configured, the broker, then wires
// the service.
func Open(cfg *config.Config) (*Container, error) {
	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, err
	}

	opts := Options{}
	if cfg.RabbitMQURL != "" {
		broker, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Queues:   []string{summary.JobQueue, mail.Queue},
			Prefetch: cfg.Summary.Concurrency + 1,
		})
		if err != nil {
			closeDB(db)
			return nil, err
		}
		opts.Broker = broker
	}

	return New(cfg, db, opts), nil
}

// Ping checks the database connection.
func (c *Container) Ping(ctx context.Context) error {
	return database.Ping(ctx, c.DB)
}

// Close waits for pending mail and releases connections.
func (c *Container) Close() error {
	c.Mailer.Wait()

	var errs []error
	if c.Broker != nil {
		if err := c.Broker.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := closeDB(c.DB); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
