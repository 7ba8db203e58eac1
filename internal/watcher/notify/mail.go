package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// MailNotifier sends new-station events by plain-text email.
type MailNotifier struct {
	addr string
	from string
	to   string
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailNotifier constructs a notifier. Username may be empty for
// unauthenticated relays.
func NewMailNotifier(host string, port int, from, to, username, password string) (*MailNotifier, error) {
	if host == "" {
		return nil, errors.New("mail notifier: empty host")
	}
	if from == "" || to == "" {
		return nil, errors.New("mail notifier: from and to required")
	}
	n := &MailNotifier{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		to:   to,
		send: smtp.SendMail,
	}
	if username != "" {
		n.auth = smtp.PlainAuth("", username, password, host)
	}
	return n, nil
}

// Notify sends one event by mail.
func (n *MailNotifier) Notify(ctx context.Context, event Event) error {
	if n == nil {
		return errors.New("mail notifier: nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := "New charging station for: " + event.ProviderName
	body := fmt.Sprintf(
		"Hello there sailor,\nThere are new charging stations from: %s\n\n%s",
		event.ProviderName, formatEventMessage(event),
	)
	msg := strings.Join([]string{
		"From: " + n.from,
		"To: " + n.to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")
	return n.send(n.addr, n.auth, n.from, []string{n.to}, []byte(msg))
}
