package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	environment "digiseller/internal/env"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env, err := environment.Setup(ctx)
	if err != nil {
		log.Fatalf("Failed to setup environment: %v", err)
	}

	logger := env.Logger
	logger.Info("starting digiseller bot")

	go func() {
		logger.Info("starting observability server",
			slog.String("addr", env.Servers.HTTP.Observability.Addr))
		if err := env.Servers.HTTP.Observability.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("observability server error", slog.Any("error", err))
		}
	}()

	if err := startTelegram(ctx, env); err != nil {
		logger.Error("failed to start telegram delivery", slog.Any("error", err))
		return
	}

	if err := env.Services.WorkerService.Start(); err != nil {
		logger.Error("failed to start worker service", slog.Any("error", err))
		return
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("bot started")
	<-quit

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), env.Config.ShutdownDuration)
	defer shutdownCancel()

	env.Services.WorkerService.Stop()
	env.Clients.TelegramBot.Stop()

	if err := env.Servers.HTTP.Observability.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		logger.Error("observability server shutdown error", slog.Any("error", err))
	}
	if env.Servers.HTTP.Webhook != nil {
		if err := env.Servers.HTTP.Webhook.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logger.Error("webhook server shutdown error", slog.Any("error", err))
		}
	}

	for _, closer := range env.Closers {
		closer()
	}

	logger.Info("stopped")
}

// startTelegram picks the update delivery mode from config: a registered
// webhook behind the webhook server, or long polling. Either way updates
// land on the client's channel and are dispatched through the router.
func startTelegram(ctx context.Context, env *environment.Env) error {
	logger := env.Logger
	bot := env.Clients.TelegramBot

	if env.Servers.HTTP.Webhook != nil {
		// The webhook server routes on the bot name, so the registered public
		// URL has to carry the same path segment.
		botName := env.Config.Telegram.BotName
		if botName == "" {
			botName = bot.BotName()
		}
		url := strings.TrimRight(env.Config.Telegram.WebhookURL, "/") + "/" + botName
		if err := bot.RegisterWebhook(url); err != nil {
			return err
		}
		go func() {
			logger.Info("starting webhook server",
				slog.String("addr", env.Servers.HTTP.Webhook.Addr))
			if err := env.Servers.HTTP.Webhook.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("webhook server error", slog.Any("error", err))
			}
		}()
	} else {
		bot.StartPolling(ctx)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update := <-bot.Updates():
				if err := env.Services.TelegramRouter.Route(ctx, &update); err != nil {
					logger.Error("update handling failed", slog.Any("error", err))
				}
			}
		}
	}()

	return nil
}
