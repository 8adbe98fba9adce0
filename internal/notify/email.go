package notify

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"tutorchat/backend/internal/models"
)

// AccountDirectory finds where a user receives email.
type AccountDirectory interface {
	GetAccount(ctx context.Context, userID string) (*models.Account, error)
}

// SendMailFunc has the signature of smtp.SendMail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPChannel sends the contract as a plain-text email.
type SMTPChannel struct {
	Addr      string
	Auth      smtp.Auth
	From      string
	Directory AccountDirectory
	SendMail  SendMailFunc
}

func NewSMTPChannel(host string, port int, username, password, from string, dir AccountDirectory) *SMTPChannel {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPChannel{
		Addr:      net.JoinHostPort(host, strconv.Itoa(port)),
		Auth:      auth,
		From:      from,
		Directory: dir,
		SendMail:  smtp.SendMail,
	}
}

// Email reports false without an error when the recipient has no address on file.
func (ch *SMTPChannel) Email(ctx context.Context, c Contract) (bool, error) {
	account, err := ch.Directory.GetAccount(ctx, c.RecipientID)
	if err != nil {
		return false, err
	}
	if account == nil || account.Email == "" {
		return false, nil
	}

	msg := buildEmail(ch.From, account.Email, c)
	if err := ch.SendMail(ch.Addr, ch.Auth, ch.From, []string{account.Email}, msg); err != nil {
		return false, fmt.Errorf("smtp send to %s: %w", account.Email, err)
	}
	return true, nil
}

func buildEmail(from, to string, c Contract) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("UTF-8", headerSafe(c.Title)) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(c.Message)
	if c.ActionURL != "" {
		b.WriteString("\r\n\r\n")
		if c.ActionText != "" {
			b.WriteString(c.ActionText + ": ")
		}
		b.WriteString(c.ActionURL)
	}
	b.WriteString("\r\n")
	return []byte(b.String())
}

func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
