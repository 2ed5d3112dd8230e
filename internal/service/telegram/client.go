// Package telegram resolves Telegram channel metadata and discovers channels
// for a keyword.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"trendlens/internal/domain/channel"
)

// ClientConfig configures the Bot API client
type ClientConfig struct {
	BaseURL    string
	BotToken   string
	HTTPClient *http.Client
}

// Client performs channel detail lookups through the Telegram Bot API
// (getChat + getChatMembersCount). It implements channel.Resolver.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewClient creates a Bot API client
func NewClient(config ClientConfig) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + "/bot%s/%s",
		token:      config.BotToken,
		httpClient: httpClient,
	}
}

// contextClient binds the bot library's requests to the caller's context
type contextClient struct {
	ctx    context.Context
	client *http.Client
}

func (c contextClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req.WithContext(c.ctx))
}

// bot builds a BotAPI for one lookup. NewBotAPIWithClient would call getMe on
// every construction, so the struct is assembled directly.
func (c *Client) bot(ctx context.Context) *tgbotapi.BotAPI {
	bot := &tgbotapi.BotAPI{
		Token:  c.token,
		Buffer: 100,
		Client: contextClient{ctx: ctx, client: c.httpClient},
	}
	bot.SetAPIEndpoint(c.endpoint)
	return bot
}

// ResolveChannel looks up a public channel by username
func (c *Client) ResolveChannel(ctx context.Context, identifier string) (*channel.Record, error) {
	if c.token == "" {
		return nil, channel.ErrCredentialsMissing
	}

	username, err := channel.ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	chatID := tgbotapi.ChatConfig{SuperGroupUsername: "@" + username}
	bot := c.bot(ctx)

	info, err := bot.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: chatID})
	if err != nil {
		return nil, fmt.Errorf("getChat %s: %w", chatID.SuperGroupUsername, classify(err))
	}

	switch info.Type {
	case "channel", "supergroup":
	default:
		return nil, fmt.Errorf("%s is a %s, not a channel: %w", chatID.SuperGroupUsername, info.Type, channel.ErrNotFound)
	}
	if info.UserName == "" {
		return nil, fmt.Errorf("%s has no public username: %w", chatID.SuperGroupUsername, channel.ErrPrivateChannel)
	}

	members, err := bot.GetChatMembersCount(tgbotapi.ChatMemberCountConfig{ChatConfig: chatID})
	if err != nil {
		return nil, fmt.Errorf("getChatMembersCount %s: %w", chatID.SuperGroupUsername, classify(err))
	}

	return &channel.Record{
		Identifier:      info.UserName,
		DisplayName:     info.Title,
		SubscriberCount: int64(members),
		Description:     info.Description,
	}, nil
}

// classify maps a Bot API failure to a lookup error kind
func classify(err error) error {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		// Transport errors carry the request URL, and with it the token.
		return fmt.Errorf("%w: request failed", channel.ErrTransport)
	}

	desc := strings.ToLower(apiErr.Message)

	switch {
	case apiErr.Code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", channel.ErrCredentialsMissing, apiErr.Message)
	case apiErr.Code == http.StatusForbidden, strings.Contains(desc, "private"), strings.Contains(desc, "not a member"):
		return fmt.Errorf("%w: %s", channel.ErrPrivateChannel, apiErr.Message)
	case apiErr.Code == http.StatusBadRequest, apiErr.Code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", channel.ErrNotFound, apiErr.Message)
	default:
		return fmt.Errorf("%w: status %d: %s", channel.ErrTransport, apiErr.Code, apiErr.Message)
	}
}
