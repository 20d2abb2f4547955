package environment

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"digiseller/internal/config"
	"digiseller/internal/infra/sqlite3"
	"digiseller/internal/infra/telegram"
	"digiseller/internal/marzban"
)

type Clients struct {
	DB          *sqlx.DB
	TelegramBot *telegram.Client
	Marzban     *marzban.Client
}

func newClients(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Clients, error) {
	db, err := sqlite3.New(ctx,
		sqlite3.WithDSN(cfg.DB.Path),
		sqlite3.WithMaxOpenConns(cfg.DB.MaxOpenConns),
		sqlite3.WithMaxIdleConns(cfg.DB.MaxIdleConns),
		sqlite3.WithConnMaxLifetime(cfg.DB.MaxLifetime),
	)
	if err != nil {
		return nil, err
	}

	bot, err := telegram.NewClient(cfg.Telegram.BotToken, logger)
	if err != nil {
		return nil, err
	}

	marzbanClient := marzban.NewClient(
		cfg.Marzban.BaseURL,
		cfg.Marzban.Username,
		cfg.Marzban.Password,
		cfg.Marzban.Timeout,
	)

	return &Clients{
		DB:          db,
		TelegramBot: bot,
		Marzban:     marzbanClient,
	}, nil
}
