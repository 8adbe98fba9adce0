package notify_test

import (
	"context"
	"errors"
	"mime"
	"net/smtp"
	"strings"
	"testing"

	"tutorchat/backend/internal/models"
	"tutorchat/backend/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestSMTP(dir notify.AccountDirectory, fail error) (*notify.SMTPChannel, *[]sentMail) {
	var sent []sentMail
	ch := notify.NewSMTPChannel("smtp.example.com", 587, "", "", "noreply@example.com", dir)
	ch.SendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		if fail != nil {
			return fail
		}
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return ch, &sent
}

func TestSMTPChannel_Email(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("GetAccount", mock.Anything, "tutor-1").Return(&models.Account{ID: "tutor-1", Email: "tutor@example.com"}, nil)
	ch, sent := newTestSMTP(dir, nil)

	ok, err := ch.Email(context.Background(), notify.Contract{
		RecipientID: "tutor-1",
		Title:       "New message\r\nBcc: evil@example.com",
		Message:     "hello",
		ActionURL:   "https://app.example.com/conversations/conv-1",
		ActionText:  "Open conversation",
	})

	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, *sent, 1)
	mail := (*sent)[0]
	assert.Equal(t, "smtp.example.com:587", mail.addr)
	assert.Equal(t, []string{"tutor@example.com"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: New message  Bcc: evil@example.com\r\n")
	assert.Contains(t, mail.msg, "Open conversation: https://app.example.com/conversations/conv-1")
}

func TestSMTPChannel_EncodesNonASCIISubject(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("GetAccount", mock.Anything, "tutor-1").Return(&models.Account{ID: "tutor-1", Email: "tutor@example.com"}, nil)
	ch, sent := newTestSMTP(dir, nil)

	title := "Нове повідомлення від Олени Коваленко"
	_, err := ch.Email(context.Background(), notify.Contract{RecipientID: "tutor-1", Title: title, Message: "привіт"})
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	var subject string
	for _, line := range strings.Split((*sent)[0].msg, "\r\n") {
		if strings.HasPrefix(line, "Subject: ") {
			subject = strings.TrimPrefix(line, "Subject: ")
			break
		}
	}
	assert.True(t, strings.HasPrefix(subject, "=?UTF-8?q?"), subject)
	for _, r := range subject {
		assert.Less(t, r, rune(128), "subject header must be 7-bit")
	}

	decoded, err := new(mime.WordDecoder).DecodeHeader(subject)
	require.NoError(t, err)
	assert.Equal(t, title, decoded)
}

func TestSMTPChannel_NoAddress(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("GetAccount", mock.Anything, "tutor-1").Return(nil, nil)
	ch, sent := newTestSMTP(dir, nil)

	ok, err := ch.Email(context.Background(), notify.Contract{RecipientID: "tutor-1"})

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, *sent)
}

func TestSMTPChannel_SendFails(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("GetAccount", mock.Anything, "tutor-1").Return(&models.Account{ID: "tutor-1", Email: "tutor@example.com"}, nil)
	ch, _ := newTestSMTP(dir, errors.New("connection refused"))

	ok, err := ch.Email(context.Background(), notify.Contract{RecipientID: "tutor-1"})

	assert.Error(t, err)
	assert.False(t, ok)
}
