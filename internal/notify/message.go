package notify

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	"tutorchat/backend/internal/config"
	"tutorchat/backend/internal/localization"
	"tutorchat/backend/internal/models"
)

// MessageEvent describes an admitted message whose recipient should be told about it.
type MessageEvent struct {
	ConversationID string
	MessageID      string
	SenderID       string
	RecipientID    string
	Content        string
}

// ProfileDirectory holds the two profile sources a sender's identity is read from.
type ProfileDirectory interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	GetAccount(ctx context.Context, userID string) (*models.Account, error)
}

// Identity is the best-effort display data of a user.
type Identity struct {
	Name      string
	AvatarURL string
	Locale    string
}

// ResolveIdentity reads the primary profile and fills any missing field from the
// account row. Lookup errors are logged and leave the field empty.
func ResolveIdentity(ctx context.Context, dir ProfileDirectory, userID string) Identity {
	var id Identity

	profile, err := dir.GetProfile(ctx, userID)
	if err != nil {
		log.Printf("WARNING: profile lookup for %s failed: %v", userID, err)
	}
	if profile != nil {
		id.Name = strings.TrimSpace(profile.FullName)
		id.AvatarURL = profile.AvatarURL
		id.Locale = profile.Locale
	}
	if id.Name != "" && id.AvatarURL != "" {
		return id
	}

	account, err := dir.GetAccount(ctx, userID)
	if err != nil {
		log.Printf("WARNING: account lookup for %s failed: %v", userID, err)
	}
	if account != nil {
		if id.Name == "" {
			id.Name = strings.TrimSpace(account.DisplayName)
		}
		if id.AvatarURL == "" {
			id.AvatarURL = account.AvatarURL
		}
	}
	return id
}

// Preview cuts s to at most limit runes, marking the cut with an ellipsis.
func Preview(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}

// MessageNotifier turns a MessageEvent into a Contract and sends it.
type MessageNotifier struct {
	Directory ProfileDirectory
	Localizer *localization.Localizer
	Sender    Sender
	BaseURL   string
}

func NewMessageNotifier(dir ProfileDirectory, loc *localization.Localizer, sender Sender, baseURL string) *MessageNotifier {
	return &MessageNotifier{
		Directory: dir,
		Localizer: loc,
		Sender:    sender,
		BaseURL:   strings.TrimRight(baseURL, "/"),
	}
}

func (n *MessageNotifier) Notify(ctx context.Context, ev MessageEvent) Outcome {
	return n.Sender.Send(ctx, n.Contract(ctx, ev))
}

// Contract builds the notification for ev in the recipient's language.
func (n *MessageNotifier) Contract(ctx context.Context, ev MessageEvent) Contract {
	sender := ResolveIdentity(ctx, n.Directory, ev.SenderID)
	name := sender.Name
	if name == "" {
		name = "…"
	}

	lang := localization.DefaultLanguage
	if p, err := n.Directory.GetProfile(ctx, ev.RecipientID); err == nil && p != nil && p.Locale != "" {
		lang = p.Locale
	}

	args := map[string]string{"name": name}
	return Contract{
		RecipientID: ev.RecipientID,
		Title:       n.Localizer.Format(lang, localization.KeyNewMessageTitle, args),
		Message:     Preview(ev.Content, config.PreviewLength),
		Priority:    config.NotificationPriority,
		ActionURL:   n.BaseURL + "/conversations/" + ev.ConversationID,
		ActionText:  n.Localizer.GetString(lang, localization.KeyNewMessageAction),
		ImageURL:    sender.AvatarURL,
		Metadata: map[string]any{
			"conversationId": ev.ConversationID,
			"messageId":      ev.MessageID,
			"senderId":       ev.SenderID,
			"senderName":     sender.Name,
		},
		SendEmail: true,
		SendPush:  true,
	}
}
