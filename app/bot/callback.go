package bot

import (
	"fmt"
	"strings"

	"github.com/lysyi3m/reelbot/app/database"
)

// CallbackKind enumerates the inline-button actions the bot understands.
type CallbackKind string

const (
	// CallbackView shows the detail card for a search result.
	CallbackView CallbackKind = "view"
	// CallbackRequest submits a request for a title.
	CallbackRequest CallbackKind = "req"
	// CallbackReplace removes an old pending request and submits a new one.
	CallbackReplace CallbackKind = "del"
	// CallbackAdminDecision is an admin completing or cancelling a request.
	CallbackAdminDecision CallbackKind = "adm"
	// CallbackUserCancel is a user cancelling their own pending request.
	CallbackUserCancel CallbackKind = "ucl"
)

// Callback is the decoded form of Telegram callback data. The wire format is
// a compact underscore-delimited string (Telegram caps callback data at 64
// bytes); it is decoded exactly once here and never re-parsed downstream.
type Callback struct {
	Kind CallbackKind

	// Ref, MediaKind and Year identify a metadata candidate
	// (View, Request, Replace).
	Ref       string
	MediaKind string
	Year      string

	// OldRequestID is the pending request being replaced (Replace).
	OldRequestID string

	// RequestID addresses an existing request (AdminDecision, UserCancel).
	RequestID string

	// Outcome is the admin's decision (AdminDecision).
	Outcome database.Status
}

// Encode renders the callback into its wire form.
func (c Callback) Encode() string {
	switch c.Kind {
	case CallbackView, CallbackRequest:
		return strings.Join([]string{string(c.Kind), c.Ref, c.MediaKind, c.Year}, "_")
	case CallbackReplace:
		return strings.Join([]string{string(c.Kind), c.OldRequestID, c.Ref, c.MediaKind, c.Year}, "_")
	case CallbackAdminDecision:
		action := "cancel"
		if c.Outcome == database.StatusCompleted {
			action = "done"
		}
		return strings.Join([]string{string(c.Kind), action, c.RequestID}, "_")
	case CallbackUserCancel:
		return strings.Join([]string{string(c.Kind), c.RequestID}, "_")
	}
	return ""
}

// DecodeCallback parses callback data into its typed form.
func DecodeCallback(data string) (Callback, error) {
	parts := strings.Split(data, "_")
	if len(parts) < 2 {
		return Callback{}, fmt.Errorf("malformed callback data %q", data)
	}

	switch CallbackKind(parts[0]) {
	case CallbackView, CallbackRequest:
		if len(parts) != 4 {
			return Callback{}, fmt.Errorf("malformed candidate callback %q", data)
		}
		return Callback{
			Kind:      CallbackKind(parts[0]),
			Ref:       parts[1],
			MediaKind: parts[2],
			Year:      parts[3],
		}, nil

	case CallbackReplace:
		if len(parts) != 5 {
			return Callback{}, fmt.Errorf("malformed replace callback %q", data)
		}
		return Callback{
			Kind:         CallbackReplace,
			OldRequestID: parts[1],
			Ref:          parts[2],
			MediaKind:    parts[3],
			Year:         parts[4],
		}, nil

	case CallbackAdminDecision:
		if len(parts) != 3 {
			return Callback{}, fmt.Errorf("malformed admin callback %q", data)
		}
		var outcome database.Status
		switch parts[1] {
		case "done":
			outcome = database.StatusCompleted
		case "cancel":
			outcome = database.StatusCancelled
		default:
			return Callback{}, fmt.Errorf("unknown admin action %q", parts[1])
		}
		return Callback{
			Kind:      CallbackAdminDecision,
			RequestID: parts[2],
			Outcome:   outcome,
		}, nil

	case CallbackUserCancel:
		if len(parts) != 2 {
			return Callback{}, fmt.Errorf("malformed cancel callback %q", data)
		}
		return Callback{
			Kind:      CallbackUserCancel,
			RequestID: parts[1],
		}, nil
	}

	return Callback{}, fmt.Errorf("unknown callback kind %q", parts[0])
}
