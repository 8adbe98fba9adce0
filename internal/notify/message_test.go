package notify_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tutorchat/backend/internal/localization"
	"tutorchat/backend/internal/models"
	"tutorchat/backend/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", notify.Preview("short", 100))

	exact := strings.Repeat("a", 100)
	assert.Equal(t, exact, notify.Preview(exact, 100))

	long := strings.Repeat("я", 150)
	got := notify.Preview(long, 100)
	assert.Equal(t, strings.Repeat("я", 100)+"…", got, "cuts on runes, not bytes")
}

func TestResolveIdentity_PrimaryProfile(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("GetProfile", mock.Anything, "student-1").
		Return(&models.Profile{UserID: "student-1", FullName: "Ada Lovelace", AvatarURL: "https://cdn/ada.png"}, nil)

	id := notify.ResolveIdentity(context.Background(), dir, "student-1")

	assert.Equal(t, "Ada Lovelace", id.Name)
	assert.Equal(t, "https://cdn/ada.png", id.AvatarURL)
	dir.AssertNotCalled(t, "GetAccount", mock.Anything, mock.Anything)
}

func TestResolveIdentity_FallsBackToAccount(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("GetProfile", mock.Anything, "student-1").
		Return(&models.Profile{UserID: "student-1", FullName: "Ada Lovelace"}, nil)
	dir.On("GetAccount", mock.Anything, "student-1").
		Return(&models.Account{ID: "student-1", DisplayName: "ada", AvatarURL: "https://cdn/account.png"}, nil)

	id := notify.ResolveIdentity(context.Background(), dir, "student-1")

	assert.Equal(t, "Ada Lovelace", id.Name, "primary name wins")
	assert.Equal(t, "https://cdn/account.png", id.AvatarURL)
}

func TestResolveIdentity_LookupErrors(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("GetProfile", mock.Anything, "student-1").Return(nil, errors.New("db down"))
	dir.On("GetAccount", mock.Anything, "student-1").Return(nil, errors.New("db down"))

	id := notify.ResolveIdentity(context.Background(), dir, "student-1")

	assert.Equal(t, notify.Identity{}, id)
}

func TestMessageNotifier_Contract(t *testing.T) {
	loc, err := localization.NewLocalizer()
	require.NoError(t, err)

	dir := new(MockDirectory)
	dir.On("GetProfile", mock.Anything, "student-1").Return(nil, nil)
	dir.On("GetAccount", mock.Anything, "student-1").
		Return(&models.Account{ID: "student-1", DisplayName: "Ada", AvatarURL: "https://cdn/ada.png"}, nil)
	dir.On("GetProfile", mock.Anything, "tutor-1").
		Return(&models.Profile{UserID: "tutor-1", Locale: "es"}, nil)

	n := notify.NewMessageNotifier(dir, loc, nil, "https://app.example.com/")
	c := n.Contract(context.Background(), notify.MessageEvent{
		ConversationID: "conv-1",
		MessageID:      "msg-1",
		SenderID:       "student-1",
		RecipientID:    "tutor-1",
		Content:        strings.Repeat("x", 120),
	})

	assert.Equal(t, "tutor-1", c.RecipientID)
	assert.Equal(t, "Nuevo mensaje de Ada", c.Title)
	assert.Equal(t, "Abrir conversación", c.ActionText)
	assert.Equal(t, "https://app.example.com/conversations/conv-1", c.ActionURL)
	assert.Equal(t, "https://cdn/ada.png", c.ImageURL)
	assert.Equal(t, strings.Repeat("x", 100)+"…", c.Message)
	assert.Equal(t, "normal", c.Priority)
	assert.Equal(t, "msg-1", c.Metadata["messageId"])
	assert.True(t, c.SendEmail)
	assert.True(t, c.SendPush)
}

func TestMessageNotifier_Notify(t *testing.T) {
	loc, err := localization.NewLocalizer()
	require.NoError(t, err)

	dir := new(MockDirectory)
	dir.On("GetProfile", mock.Anything, mock.Anything).Return(nil, nil)
	dir.On("GetAccount", mock.Anything, mock.Anything).Return(nil, nil)
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(c notify.Contract) bool {
		return c.RecipientID == "tutor-1" && c.Title == "New message from …"
	})).Return(notify.Outcome{InApp: notify.InAppOutcome{Success: true}})

	out := notify.NewMessageNotifier(dir, loc, sender, "").Notify(context.Background(), notify.MessageEvent{
		ConversationID: "conv-1", SenderID: "student-1", RecipientID: "tutor-1", Content: "hi",
	})

	assert.True(t, out.InApp.Success)
	sender.AssertExpectations(t)
}
