package telegram_bot

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"relay-panel/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config configures the Bot API client behind the resolver.
type Config struct {
	Token             string
	APIEndpoint       string // tgbotapi.APIEndpoint when empty
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// ChatResolver looks chats up through the Telegram Bot API. The bot must be
// a member of a channel to see it.
type ChatResolver struct {
	api     *tgbotapi.BotAPI
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewChatResolver returns nil when no token is configured.
func NewChatResolver(cfg Config, logger *zap.Logger) (*ChatResolver, error) {
	if cfg.Token == "" {
		logger.Info("Chat resolver is disabled (telegram.bot_token is empty)")
		return nil, nil
	}

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}
	logger.Info("Chat resolver authorized", zap.String("username", api.Self.UserName))

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &ChatResolver{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}, nil
}

// Resolve fetches the title and username of a chat.
func (r *ChatResolver) Resolve(ctx context.Context, chatID models.ChatID) (*models.ChatInfo, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("chat lookup for %s not started: %w", chatID, err)
	}

	chat, err := r.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: int64(chatID)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get chat %s: %w", chatID, err)
	}

	title := chat.Title
	if title == "" {
		// private chats have no title
		title = strings.TrimSpace(chat.FirstName + " " + chat.LastName)
	}
	r.logger.Debug("Resolved chat", zap.String("chat_id", chatID.String()), zap.String("title", title))
	return &models.ChatInfo{Title: title, Username: chat.UserName}, nil
}
