package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/reelbot/app/cfg"
	"github.com/lysyi3m/reelbot/app/metadata"
	"github.com/lysyi3m/reelbot/app/request"
)

// AvailabilityChecker decides whether a title is already in the file catalog.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, title string, year string) bool
}

// Bot is the Telegram transport: it turns group messages into catalog
// searches and inline-button presses into lifecycle operations. All decisions
// about what to send and to whom live here; the lifecycle rules live in the
// request service.
type Bot struct {
	api      *tgbotapi.BotAPI
	lookup   metadata.Lookup
	checker  AvailabilityChecker
	requests *request.Service
	msgs     *Messages

	adminChannelID int64
	allowedGroupID int64
	targetGroupURL string
}

func New(api *tgbotapi.BotAPI, lookup metadata.Lookup, checker AvailabilityChecker,
	requests *request.Service, msgs *Messages) *Bot {
	cfg := cfg.Get()

	return &Bot{
		api:            api,
		lookup:         lookup,
		checker:        checker,
		requests:       requests,
		msgs:           msgs,
		adminChannelID: cfg.AdminChannelID,
		allowedGroupID: cfg.AllowedGroupID,
		targetGroupURL: cfg.TargetGroupURL,
	}
}

// Run polls Telegram for updates until the context is cancelled. Updates are
// handled one at a time, to completion, so no two flows interleave.
func (b *Bot) Run(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	updates := b.api.GetUpdatesChan(updateConfig)
	slog.Info("Telegram bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			slog.Info("Telegram bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

// handleMessage treats free text in the allowed group as a catalog search.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil || msg.Chat.ID != b.allowedGroupID {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" || msg.IsCommand() {
		return
	}

	candidates, err := b.lookup.Search(ctx, text)
	if err != nil {
		// Degrades to "no results": the provider being down should not
		// produce error chatter in the group.
		slog.Warn("Metadata search failed", "query", text, "error", err)
		return
	}
	if len(candidates) == 0 {
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, candidate := range candidates {
		label := candidate.Title
		if candidate.Year != "" {
			label += " (" + candidate.Year + ")"
		}
		label += " - " + strings.ToUpper(candidate.Kind)

		data := Callback{
			Kind:      CallbackView,
			Ref:       candidate.Ref,
			MediaKind: candidate.Kind,
			Year:      candidate.Year,
		}.Encode()
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, data)))
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf(b.msgs.SearchResults, text))
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(reply); err != nil {
		slog.Warn("Failed to send search results", "chat_id", msg.Chat.ID, "error", err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		slog.Debug("Failed to answer callback query", "error", err)
	}

	callback, err := DecodeCallback(query.Data)
	if err != nil {
		slog.Warn("Ignoring malformed callback", "data", query.Data, "error", err)
		return
	}

	switch callback.Kind {
	case CallbackView:
		b.handleView(ctx, query, callback)
	case CallbackRequest:
		b.handleRequestSubmit(ctx, query, callback)
	case CallbackReplace:
		b.handleReplace(ctx, query, callback)
	case CallbackAdminDecision:
		b.handleAdminDecision(ctx, query, callback)
	case CallbackUserCancel:
		b.handleUserCancel(ctx, query, callback)
	}
}

func fullName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(user.FirstName) + " " + strings.TrimSpace(user.LastName))
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
