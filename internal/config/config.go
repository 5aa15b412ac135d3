package config

import (
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config aggregates every env-driven knob of the service, composed the way
// the teacher's config.Config composes its sub-configs.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Scheduler SchedulerConfig
	Extract   ExtractionConfig
	Logger    LoggerConfig
}

type AppConfig struct {
	APIHost string `env:"API_HOST" envDefault:"0.0.0.0"`
	APIPort string `env:"API_PORT" envDefault:"8080"`
}

type DatabaseConfig struct {
	Host            string `env:"DATABASE_HOST" envDefault:"localhost"`
	Port            string `env:"DATABASE_PORT" envDefault:"5432"`
	User            string `env:"DATABASE_USER" envDefault:"postgres"`
	Password        string `env:"DATABASE_PASSWORD"`
	DBName          string `env:"DATABASE_NAME" envDefault:"mailserver"`
	SSLMode         string `env:"DATABASE_SSL_MODE" envDefault:"disable"`
	MaxConn         int    `env:"DATABASE_MAX_CONN" envDefault:"5"`
	MaxIdleConn     int    `env:"DATABASE_MAX_IDLE_CONN" envDefault:"10"`
	ConnMaxLifetime int    `env:"DATABASE_CONN_MAX_LIFETIME_HOURS" envDefault:"1"`
	LogLevel        string `env:"DATABASE_LOG_LEVEL" envDefault:"WARN"`
}

// SchedulerConfig drives the Account Scheduler's cycle timing (§4.1).
type SchedulerConfig struct {
	PollIntervalSeconds   int `env:"EMAIL_CHECK_INTERVAL" envDefault:"30"`
	ErrorBackoffSeconds   int `env:"EMAIL_CHECK_ERROR_BACKOFF" envDefault:"60"`
	MaxEmailsPerBatch     int `env:"MAX_EMAILS_PER_BATCH" envDefault:"50"`
}

// ExtractionConfig carries the global policy defaults merged with each
// Account's overrides by the Policy Resolver (§4.2).
type ExtractionConfig struct {
	StoreTextOnly        bool  `env:"STORE_TEXT_ONLY" envDefault:"false"`
	MaxAttachmentSize     int64 `env:"MAX_ATTACHMENT_SIZE" envDefault:"10485760"`
	MaxAttachmentSizeText int64 `env:"MAX_ATTACHMENT_SIZE_TEXT" envDefault:"2097152"`
	ExtractPDF       bool `env:"EXTRACT_PDF" envDefault:"true"`
	ExtractDocument  bool `env:"EXTRACT_DOCUMENT" envDefault:"true"`
	ExtractImageOCR  bool `env:"EXTRACT_IMAGE_OCR" envDefault:"false"`
	ExtractTextual   bool `env:"EXTRACT_TEXTUAL" envDefault:"true"`
}

type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"INFO"`
	File  string `env:"LOG_FILE"`
}

// Load reads a .env file if present (ignored if absent) then parses the
// environment into Config, prefixing every variable with EMAILSERVER_ per
// the external interface contract.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	opts := env.Options{Prefix: "EMAILSERVER_"}

	if err := env.Parse(&cfg.App, opts); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg.Database, opts); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg.Scheduler, opts); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg.Extract, opts); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg.Logger, opts); err != nil {
		return nil, err
	}

	return cfg, nil
}
