package smtp

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/sponsor-match/internal/config"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
)

const dialTimeout = 10 * time.Second

// Transport реализует Dialer поверх net/smtp.
type Transport struct {
	cfg config.SMTP
	log *slog.Logger
}

// smtpClientWrapper обертка для *smtp.Client, реализующая интерфейс Client.
type smtpClientWrapper struct {
	client *smtp.Client
}

func (w *smtpClientWrapper) Mail(from string) error        { return w.client.Mail(from) }
func (w *smtpClientWrapper) Rcpt(to string) error          { return w.client.Rcpt(to) }
func (w *smtpClientWrapper) Data() (io.WriteCloser, error) { return w.client.Data() }
func (w *smtpClientWrapper) Quit() error                   { return w.client.Quit() }
func (w *smtpClientWrapper) Close() error                  { return w.client.Close() }

// NewTransport создает новый экземпляр Transport.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log}
}

// Connect устанавливает соединение, включает STARTTLS и проходит аутентификацию.
func (t *Transport) Connect() (Client, error) {
	const op = "smtp.Connect"
	addr := net.JoinHostPort(t.cfg.SMTPHost, strconv.Itoa(t.cfg.SMTPPort))

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		t.closeQuietly(conn)
		return nil, fmt.Errorf("%s: new client: %w", op, err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		t.closeQuietly(client)
		return nil, fmt.Errorf("%s: server does not support STARTTLS", op)
	}
	tlsConfig := &tls.Config{
		ServerName: t.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		t.closeQuietly(client)
		return nil, fmt.Errorf("%s: starttls: %w", op, err)
	}

	if t.cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPassword, t.cfg.SMTPHost)
		if err = client.Auth(auth); err != nil {
			t.closeQuietly(client)
			return nil, fmt.Errorf("%s: auth: %w", op, err)
		}
	}

	return &smtpClientWrapper{client: client}, nil
}

func (t *Transport) closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		t.log.Error("failed to close smtp connection", sl.Err(err))
	}
}

// Message описывает простое текстовое письмо.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Bytes собирает письмо в формате RFC 5322 с переводами строк CRLF.
func (m Message) Bytes() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(m.Body, "\r\n", "\n"), "\n", "\r\n"))
	return []byte(b.String())
}

// Send отправляет письмо через новое соединение, полученное от d.
func Send(d Dialer, msg Message) error {
	const op = "smtp.Send"

	client, err := d.Connect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(msg.From); err != nil {
		return fmt.Errorf("%s: mail from: %w", op, err)
	}
	if err = client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("%s: rcpt to: %w", op, err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: data: %w", op, err)
	}
	if _, err = w.Write(msg.Bytes()); err != nil {
		_ = w.Close()
		return fmt.Errorf("%s: write: %w", op, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("%s: close data: %w", op, err)
	}
	if err = client.Quit(); err != nil {
		return fmt.Errorf("%s: quit: %w", op, err)
	}
	return nil
}
