package jobs

import (
	"context"
	"fmt"
	"net/smtp"
)

// Mailer sends plain-text notification mail over SMTP. Pointed at Mailpit in
// development.
type Mailer struct {
	Host string
	Port int
	From string
}

// Send delivers one message.
func (m Mailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.From, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	return smtp.SendMail(addr, nil, m.From, []string{to}, []byte(msg))
}
