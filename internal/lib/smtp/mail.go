// Package smtp отправляет письма notifier'а через SMTP с STARTTLS.
package smtp

import (
	"fmt"
	"io"
	"mime"
	"strings"
)

// Client команды SMTP-сессии, которые нужны Send.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Mailer открывает SMTP-сессию и знает адрес отправителя.
type Mailer interface {
	Connect() (Client, error)
	Sender() string
}

// Message текстовое письмо в UTF-8.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Bytes собирает заголовки и тело письма.
func (m Message) Bytes(from string) []byte {
	return []byte(strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(m.To, ", "),
		"Subject: " + mime.QEncoding.Encode("utf-8", m.Subject),
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		m.Body,
	}, "\r\n"))
}

// Send открывает сессию через mailer и передаёт письмо всем адресатам msg.To.
func Send(mailer Mailer, msg Message) error {
	const op = "smtp.Send"
	if len(msg.To) == 0 {
		return fmt.Errorf("%s: no recipients", op)
	}
	from := mailer.Sender()

	client, err := mailer.Connect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("%s: MAIL FROM %s: %w", op, from, err)
	}
	for _, addr := range msg.To {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("%s: RCPT TO %s: %w", op, addr, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: DATA: %w", op, err)
	}
	if _, err := wc.Write(msg.Bytes(from)); err != nil {
		_ = wc.Close()
		return fmt.Errorf("%s: write body: %w", op, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("%s: close body: %w", op, err)
	}
	if err := client.Quit(); err != nil {
		return fmt.Errorf("%s: QUIT: %w", op, err)
	}
	return nil
}
