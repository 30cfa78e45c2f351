package notify

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer is the outbound email transport. Implementations may fail; the
// dispatcher logs and drops those failures.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends plain-text mail through a single SMTP relay.
type SMTPMailer struct {
	addr string
	from string
}

func NewSMTPMailer(host string, port uint16, from string) *SMTPMailer {
	return &SMTPMailer{addr: fmt.Sprintf("%s:%d", host, port), from: from}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	return smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg.String()))
}
