package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/reelbot/app/database"
)

// NotifyRequestFulfilled sends the user a fulfilment card with a download
// button. The poster is fetched best-effort; a metadata failure degrades to a
// plain text notice rather than suppressing the notification.
func (b *Bot) NotifyRequestFulfilled(ctx context.Context, req *database.Request) error {
	caption := fmt.Sprintf(b.msgs.RequestFulfilled, req.Title, req.Year)
	keyboard := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(b.msgs.BtnDownloadNow, b.targetGroupURL)),
	}

	posterURL := ""
	if details, err := b.lookup.Details(ctx, req.ExternalRef, req.MediaKind); err != nil {
		slog.Debug("Poster lookup failed for fulfilment card", "request_id", req.ID, "error", err)
	} else {
		posterURL = details.PosterURL
	}

	if err := b.sendCard(req.UserID, posterURL, caption, keyboard); err != nil {
		return fmt.Errorf("failed to send fulfilment card: %w", err)
	}
	return nil
}

// UpdateAdminCard rewrites the stored admin-facing message to reflect the
// request's terminal status. Callers treat a failure (e.g. the message was
// deleted) as non-fatal.
func (b *Bot) UpdateAdminCard(ctx context.Context, req *database.Request) error {
	if req.AdminMessageID == 0 {
		return fmt.Errorf("request %s has no admin reference", req.ID)
	}

	var text string
	switch req.Status {
	case database.StatusCompleted:
		text = fmt.Sprintf(b.msgs.AdminCompleted, req.Title)
	case database.StatusCancelled:
		text = fmt.Sprintf(b.msgs.AdminCancelled, req.Title)
	default:
		return fmt.Errorf("request %s is not in a terminal status", req.ID)
	}

	edit := tgbotapi.NewEditMessageText(b.adminChannelID, req.AdminMessageID, text)
	if _, err := b.api.Send(edit); err != nil {
		return fmt.Errorf("failed to edit admin card: %w", err)
	}
	return nil
}
