package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env              string                  `env:"ENV,default=local"`
	Logger           LoggerConfig            `env:",prefix=LOGGER_"`
	Observability    ObservabilityHTTPConfig `env:",prefix=OBSERVABILITY_"`
	ShutdownDuration time.Duration           `env:"SHUTDOWN_DURATION,default=30s"`
	DB               SQLiteConfig            `env:",prefix=DB_"`
	Telegram         TelegramConfig          `env:",prefix=TELEGRAM_"`
	Marzban          MarzbanConfig           `env:",prefix=MARZBAN_"`
	Worker           WorkerConfig            `env:",prefix=WORKER_"`
}

type LoggerConfig struct {
	Level string `env:"LEVEL,default=debug"`
}

type ObservabilityHTTPConfig struct {
	Host         string        `env:"HOST,default=127.0.0.1"`
	Port         uint16        `env:"PORT,default=8383"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (a ObservabilityHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

type SQLiteConfig struct {
	Path         string        `env:"PATH,default=./data/digiseller.db"`
	MaxOpenConns int           `env:"MAX_OPEN_CONNS,default=1"`
	MaxIdleConns int           `env:"MAX_IDLE_CONNS,default=1"`
	MaxLifetime  time.Duration `env:"MAX_LIFETIME,default=5m"`
}

type TelegramConfig struct {
	BotToken string        `env:"BOT_TOKEN,required"`
	BotName  string        `env:"BOT_NAME"`
	Timeout  time.Duration `env:"TIMEOUT,default=30s"`

	// WebhookURL switches the bot from long polling to webhook delivery.
	WebhookURL  string        `env:"WEBHOOK_URL"`
	WebhookHost string        `env:"WEBHOOK_HOST,default=127.0.0.1"`
	WebhookPort uint16        `env:"WEBHOOK_PORT,default=8080"`
	ReadTimeout time.Duration `env:"READ_TIMEOUT,default=30s"`
}

func (c TelegramConfig) WebhookADDR() string {
	return fmt.Sprintf("%s:%d", c.WebhookHost, c.WebhookPort)
}

type MarzbanConfig struct {
	BaseURL  string        `env:"BASE_URL,required"`
	Username string        `env:"USERNAME,required"`
	Password string        `env:"PASSWORD,required"`
	Timeout  time.Duration `env:"TIMEOUT,default=30s"`
}

type WorkerConfig struct {
	// Cron specs use the standard five-field format.
	NegativeSweepSpec string `env:"NEGATIVE_SWEEP_SPEC,default=0 * * * *"`
	OutboxSpec        string `env:"OUTBOX_SPEC,default=* * * * *"`

	OutboxBatch int `env:"OUTBOX_BATCH,default=50"`

	// DisableGrace is how long an over-ceiling agent has to settle before
	// its users are shut down.
	DisableGrace time.Duration `env:"DISABLE_GRACE,default=24h"`
}
