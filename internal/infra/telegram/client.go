package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Client wraps the bot API with a shared rate limiter so broadcast jobs and
// interactive handlers cannot trip the API flood control together.
type Client struct {
	api     *tgbotapi.BotAPI
	logger  *slog.Logger
	limiter *rate.Limiter
	updates chan tgbotapi.Update
	cancel  context.CancelFunc
}

func NewClient(token string, logger *slog.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Client{
		api:     bot,
		logger:  logger,
		limiter: rate.NewLimiter(30, 1),
		updates: make(chan tgbotapi.Update, 100),
	}, nil
}

// StartPolling pumps long-polling updates into the shared channel.
func (c *Client) StartPolling(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updateChan := c.api.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updateChan:
				if !ok {
					return
				}
				c.updates <- update
			}
		}
	}()

	c.logger.Info("telegram polling started", slog.String("bot", c.api.Self.UserName))
}

// RegisterWebhook switches delivery to webhook mode on the given public URL.
func (c *Client) RegisterWebhook(webhookURL string) error {
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := c.api.Request(wh); err != nil {
		return fmt.Errorf("register webhook: %w", err)
	}

	c.logger.Info("telegram webhook registered", slog.String("url", webhookURL))
	return nil
}

// WebhookHandler decodes incoming updates and feeds the shared channel.
// It always answers 200: Telegram retries non-2xx responses and a retried
// update would run the handler twice.
func (c *Client) WebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer w.WriteHeader(http.StatusOK)

		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			c.logger.Warn("malformed webhook update", slog.String("error", err.Error()))
			return
		}

		select {
		case c.updates <- update:
		default:
			c.logger.Error("update channel full, dropping update", slog.Int("update_id", update.UpdateID))
		}
	}
}

func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.api.StopReceivingUpdates()
	c.logger.Info("telegram client stopped")
}

// Updates returns the merged stream of polling and webhook updates.
func (c *Client) Updates() <-chan tgbotapi.Update {
	return c.updates
}

func (c *Client) BotName() string {
	return c.api.Self.UserName
}

// Send delivers any chattable with rate limiting.
func (c *Client) Send(chattable tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := c.limiter.Wait(context.Background()); err != nil {
		return tgbotapi.Message{}, fmt.Errorf("rate limiting: %w", err)
	}

	message, err := c.api.Send(chattable)
	if err != nil {
		c.logger.Error("send failed", slog.Any("error", err))
		return tgbotapi.Message{}, fmt.Errorf("send: %w", err)
	}

	return message, nil
}

// Request performs an API call with rate limiting.
func (c *Client) Request(chattable tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if err := c.limiter.Wait(context.Background()); err != nil {
		return nil, fmt.Errorf("rate limiting: %w", err)
	}

	resp, err := c.api.Request(chattable)
	if err != nil {
		c.logger.Error("api request failed", slog.Any("error", err))
		return nil, fmt.Errorf("api request: %w", err)
	}

	return resp, nil
}

// SendMessage sends a plain text message.
func (c *Client) SendMessage(chatID int64, text string) error {
	_, err := c.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// SendKeyboard sends a message with an inline keyboard.
func (c *Client) SendKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := c.Send(msg)
	return err
}

// SendPhoto sends a stored photo by its telegram file id.
func (c *Client) SendPhoto(chatID int64, fileID, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	photo.Caption = caption
	_, err := c.Send(photo)
	return err
}
