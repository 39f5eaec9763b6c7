package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/reelbot/app/database"
	"github.com/lysyi3m/reelbot/app/request"
)

const overviewLimit = 500

// handleView sends the detail card for a selected search result to the
// user's private chat, with either a download link (available) or a request
// button (not available).
func (b *Bot) handleView(ctx context.Context, query *tgbotapi.CallbackQuery, callback Callback) {
	details, err := b.lookup.Details(ctx, callback.Ref, callback.MediaKind)
	if err != nil {
		slog.Warn("Metadata details lookup failed", "ref", callback.Ref, "kind", callback.MediaKind, "error", err)
		b.sendText(query.From.ID, b.msgs.GenericError)
		return
	}

	available := b.checker.IsAvailable(ctx, details.Title, callback.Year)

	caption := fmt.Sprintf(b.msgs.DetailCard, details.Title, callback.Year, truncate(details.Overview, overviewLimit))
	var keyboard [][]tgbotapi.InlineKeyboardButton
	if available {
		caption += b.msgs.DetailAvailable
		keyboard = append(keyboard, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(b.msgs.BtnDownload, b.targetGroupURL)))
	} else {
		caption += b.msgs.DetailNotAvailable
		data := Callback{
			Kind:      CallbackRequest,
			Ref:       callback.Ref,
			MediaKind: callback.MediaKind,
			Year:      callback.Year,
		}.Encode()
		keyboard = append(keyboard, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.msgs.BtnRequest, data)))
	}

	if err := b.sendCard(query.From.ID, details.PosterURL, caption, keyboard); err != nil {
		// The most common cause: the user never initiated a private chat
		// with the bot. Fall back to a prompt in the originating chat.
		slog.Debug("Failed to deliver detail card to private chat", "user_id", query.From.ID, "error", err)
		if query.Message != nil && query.Message.Chat != nil {
			b.sendText(query.Message.Chat.ID, b.msgs.PMRequired)
		}
		return
	}

	if query.Message != nil && query.Message.Chat != nil && !query.Message.Chat.IsPrivate() {
		b.sendText(query.Message.Chat.ID, fmt.Sprintf(b.msgs.DetailsSentPM, b.api.Self.UserName))
	}
}

// handleRequestSubmit creates a new pending request, or offers the replace
// keyboard when the user is at the pending quota.
func (b *Bot) handleRequestSubmit(ctx context.Context, query *tgbotapi.CallbackQuery, callback Callback) {
	sub, ok := b.buildSubmission(ctx, query, callback)
	if !ok {
		return
	}

	req, err := b.requests.Submit(ctx, sub)
	if err != nil {
		var quotaErr *request.QuotaExceededError
		if errors.As(err, &quotaErr) {
			b.offerReplace(query.From.ID, quotaErr.Pending, callback)
			return
		}
		slog.Error("Failed to submit request", "user_id", sub.UserID, "title", sub.Title, "error", err)
		b.sendText(query.From.ID, b.msgs.GenericError)
		return
	}

	b.announceRequest(ctx, req)
}

// handleReplace swaps an old pending request for a new one.
func (b *Bot) handleReplace(ctx context.Context, query *tgbotapi.CallbackQuery, callback Callback) {
	sub, ok := b.buildSubmission(ctx, query, callback)
	if !ok {
		return
	}

	req, err := b.requests.Replace(ctx, callback.OldRequestID, query.From.ID, sub)
	if err != nil {
		if errors.Is(err, request.ErrNotPending) {
			b.sendText(query.From.ID, b.msgs.ReplaceConflict)
			return
		}
		slog.Error("Failed to replace request", "user_id", sub.UserID, "old_request_id", callback.OldRequestID, "error", err)
		b.sendText(query.From.ID, b.msgs.GenericError)
		return
	}

	b.sendText(query.From.ID, b.msgs.OldRequestRemoved)
	b.announceRequest(ctx, req)
}

// handleAdminDecision applies an admin's Done/Cancel button press.
func (b *Bot) handleAdminDecision(ctx context.Context, query *tgbotapi.CallbackQuery, callback Callback) {
	resolved, err := b.requests.Resolve(ctx, callback.RequestID, callback.Outcome)
	if err != nil {
		switch {
		case errors.Is(err, request.ErrNotFound):
			b.editAdminMessage(query, b.msgs.RequestMissing)
		case errors.Is(err, request.ErrNotPending):
			// Already resolved elsewhere (background check or an earlier
			// press). No mutation happened, so no notification either.
			slog.Debug("Admin decision on non-pending request", "request_id", callback.RequestID)
		default:
			slog.Error("Failed to apply admin decision", "request_id", callback.RequestID, "error", err)
		}
		return
	}

	switch resolved.Status {
	case database.StatusCompleted:
		if err := b.NotifyRequestFulfilled(ctx, resolved); err != nil {
			slog.Warn("Failed to notify user of fulfilled request", "request_id", resolved.ID, "user_id", resolved.UserID, "error", err)
		}
		b.editAdminMessage(query, fmt.Sprintf(b.msgs.AdminCompleted, resolved.Title))
	case database.StatusCancelled:
		b.sendMarkdown(resolved.UserID, fmt.Sprintf(b.msgs.RequestCancelled, resolved.Title))
		b.editAdminMessage(query, fmt.Sprintf(b.msgs.AdminCancelled, resolved.Title))
	}
}

// handleUserCancel lets a user withdraw their own pending request.
func (b *Bot) handleUserCancel(ctx context.Context, query *tgbotapi.CallbackQuery, callback Callback) {
	resolved, err := b.requests.CancelByOwner(ctx, callback.RequestID, query.From.ID)
	if err != nil {
		switch {
		case errors.Is(err, request.ErrUnauthorized):
			b.sendText(query.From.ID, b.msgs.NotYourRequest)
		case errors.Is(err, request.ErrNotFound), errors.Is(err, request.ErrNotPending):
			b.sendText(query.From.ID, b.msgs.RequestMissing)
		default:
			slog.Error("Failed to cancel request", "request_id", callback.RequestID, "error", err)
			b.sendText(query.From.ID, b.msgs.GenericError)
		}
		return
	}

	b.sendText(query.From.ID, fmt.Sprintf(b.msgs.CancelConfirmed, resolved.Title))

	if resolved.AdminMessageID != 0 {
		edit := tgbotapi.NewEditMessageText(b.adminChannelID, resolved.AdminMessageID,
			fmt.Sprintf(b.msgs.AdminCancelledUser, resolved.Title))
		if _, err := b.api.Send(edit); err != nil {
			slog.Warn("Failed to update admin card", "request_id", resolved.ID, "error", err)
		}
	}
}

// buildSubmission resolves the metadata snapshot for a request or replace
// action. A details failure aborts the flow with a user-visible message and
// creates nothing.
func (b *Bot) buildSubmission(ctx context.Context, query *tgbotapi.CallbackQuery, callback Callback) (request.Submission, bool) {
	details, err := b.lookup.Details(ctx, callback.Ref, callback.MediaKind)
	if err != nil {
		slog.Warn("Metadata details lookup failed", "ref", callback.Ref, "kind", callback.MediaKind, "error", err)
		b.sendText(query.From.ID, b.msgs.GenericError)
		return request.Submission{}, false
	}

	year := callback.Year
	if year == "" {
		year = details.Year
	}

	return request.Submission{
		UserID:      query.From.ID,
		UserName:    fullName(query.From),
		Title:       details.Title,
		Year:        year,
		MediaKind:   callback.MediaKind,
		ExternalRef: callback.Ref,
	}, true
}

// announceRequest posts the admin card, persists its message id as the
// request's admin reference, and confirms to the user.
func (b *Bot) announceRequest(ctx context.Context, req *database.Request) {
	text := fmt.Sprintf(b.msgs.AdminNewRequest, req.Title, req.Year, req.UserName, req.UserID, req.ExternalRef)
	card := tgbotapi.NewMessage(b.adminChannelID, text)
	card.ParseMode = tgbotapi.ModeMarkdown
	card.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.msgs.BtnAdminDone,
				Callback{Kind: CallbackAdminDecision, RequestID: req.ID, Outcome: database.StatusCompleted}.Encode()),
			tgbotapi.NewInlineKeyboardButtonData(b.msgs.BtnAdminCancel,
				Callback{Kind: CallbackAdminDecision, RequestID: req.ID, Outcome: database.StatusCancelled}.Encode()),
		),
	)

	sent, err := b.api.Send(card)
	if err != nil {
		slog.Error("Failed to post admin card", "request_id", req.ID, "error", err)
	} else if err := b.requests.AttachAdminReference(ctx, req.ID, sent.MessageID); err != nil {
		slog.Error("Failed to persist admin reference", "request_id", req.ID, "admin_message_id", sent.MessageID, "error", err)
	}

	confirm := tgbotapi.NewMessage(req.UserID, fmt.Sprintf(b.msgs.RequestAdded, req.Title))
	confirm.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.msgs.BtnCancelOwn,
				Callback{Kind: CallbackUserCancel, RequestID: req.ID}.Encode())))
	if _, err := b.api.Send(confirm); err != nil {
		slog.Warn("Failed to confirm request to user", "request_id", req.ID, "user_id", req.UserID, "error", err)
	}
}

// offerReplace shows the quota-reached keyboard listing the user's pending
// requests, each button replacing that request with the new candidate.
func (b *Bot) offerReplace(userID int64, pending []database.Request, callback Callback) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, req := range pending {
		data := Callback{
			Kind:         CallbackReplace,
			OldRequestID: req.ID,
			Ref:          callback.Ref,
			MediaKind:    callback.MediaKind,
			Year:         callback.Year,
		}.Encode()
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf(b.msgs.BtnRemove, req.Title), data)))
	}

	msg := tgbotapi.NewMessage(userID, fmt.Sprintf(b.msgs.QuotaReached, request.PendingLimit, request.PendingLimit))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		slog.Warn("Failed to send replace keyboard", "user_id", userID, "error", err)
	}
}

// sendCard delivers a captioned poster photo, degrading to a plain message
// when no poster is known.
func (b *Bot) sendCard(chatID int64, posterURL, caption string, keyboard [][]tgbotapi.InlineKeyboardButton) error {
	markup := tgbotapi.NewInlineKeyboardMarkup(keyboard...)

	if posterURL != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(posterURL))
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeMarkdown
		photo.ReplyMarkup = markup
		_, err := b.api.Send(photo)
		return err
	}

	msg := tgbotapi.NewMessage(chatID, caption)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		slog.Debug("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		slog.Debug("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) editAdminMessage(query *tgbotapi.CallbackQuery, text string) {
	if query.Message == nil || query.Message.Chat == nil {
		return
	}
	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text)
	if _, err := b.api.Send(edit); err != nil {
		slog.Warn("Failed to edit admin card", "message_id", query.Message.MessageID, "error", err)
	}
}
