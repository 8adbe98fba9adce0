package models

// Profile is the primary profile source, maintained by the user.
type Profile struct {
	UserID    string `gorm:"primaryKey" json:"user_id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	// Locale drives the language of notification strings (e.g. "en", "es").
	Locale string `json:"locale"`
	// TelegramChatID is set when the user linked Telegram for push notifications.
	TelegramChatID *int64 `json:"telegram_chat_id,omitempty"`
}

// Account is the secondary profile source, filled from the identity provider at sign-up.
type Account struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Email       string `gorm:"index" json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}
