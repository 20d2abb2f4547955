package environment

import (
	"net/http"

	"digiseller/internal/config"
)

type Servers struct {
	HTTP struct {
		Observability *http.Server
		Webhook       *http.Server
	}
}

func newServers(cfg config.Config, clients *Clients) *Servers {
	var servers Servers
	servers.HTTP.Observability = initObservability(cfg, clients)

	// The webhook server only exists when webhook delivery is configured;
	// otherwise the bot long-polls. The route is the bot's own name, so a
	// scanner probing random paths gets a 404 instead of a decode attempt.
	if cfg.Telegram.WebhookURL != "" {
		botName := cfg.Telegram.BotName
		if botName == "" {
			botName = clients.TelegramBot.BotName()
		}

		mux := http.NewServeMux()
		mux.HandleFunc("POST /"+botName, clients.TelegramBot.WebhookHandler())

		servers.HTTP.Webhook = &http.Server{
			Handler:           mux,
			Addr:              cfg.Telegram.WebhookADDR(),
			ReadTimeout:       cfg.Telegram.ReadTimeout,
			ReadHeaderTimeout: cfg.Telegram.ReadTimeout,
		}
	}

	return &servers
}
