// Package smtp delivers documents by mail as HTML attachments.
package smtp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/kindlefeed"
	"github.com/wneessen/go-mail"
)

// Ensure Mailer implements kindlefeed.Mailer at compile time.
var _ kindlefeed.Mailer = (*Mailer)(nil)

// Defaults for a Gmail account over implicit TLS.
const (
	DefaultHost    = "smtp.gmail.com"
	DefaultPort    = 465
	DefaultTimeout = 30 * time.Second
)

// Mailer sends documents from one account to one destination address.
type Mailer struct {
	host     string
	port     int
	timeout  time.Duration
	username string
	password string
	from     string
	to       string
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithHost sets the SMTP server host.
func WithHost(host string) Option {
	return func(m *Mailer) {
		m.host = host
	}
}

// WithPort sets the SMTP server port.
func WithPort(port int) Option {
	return func(m *Mailer) {
		m.port = port
	}
}

// WithTimeout sets the timeout for the whole SMTP session.
func WithTimeout(d time.Duration) Option {
	return func(m *Mailer) {
		m.timeout = d
	}
}

// NewMailer creates a Mailer that authenticates as from with password and
// delivers to to.
func NewMailer(from, password, to string, opts ...Option) *Mailer {
	m := &Mailer{
		host:     DefaultHost,
		port:     DefaultPort,
		timeout:  DefaultTimeout,
		username: from,
		password: password,
		from:     from,
		to:       to,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewMessage builds the message for doc: the title as subject, a short
// plain-text listing of the articles and the document attached as HTML.
func (m *Mailer) NewMessage(doc *kindlefeed.Document) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, kindlefeed.Errorf(kindlefeed.EDELIVERY, "invalid sender %q: %v", m.from, err)
	}
	if err := msg.To(m.to); err != nil {
		return nil, kindlefeed.Errorf(kindlefeed.EDELIVERY, "invalid recipient %q: %v", m.to, err)
	}
	msg.Subject(doc.Title)
	msg.SetBodyString(mail.TypeTextPlain, textBody(doc))
	if err := msg.AttachReader(doc.AttachmentName(), strings.NewReader(doc.HTML),
		mail.WithFileContentType(mail.TypeTextHTML)); err != nil {
		return nil, kindlefeed.Errorf(kindlefeed.EDELIVERY, "attach %s: %v", doc.AttachmentName(), err)
	}
	return msg, nil
}

// Send opens an authenticated session over implicit TLS and sends doc.
func (m *Mailer) Send(ctx context.Context, doc *kindlefeed.Document) error {
	msg, err := m.NewMessage(doc)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
		mail.WithTimeout(m.timeout),
	)
	if err != nil {
		return kindlefeed.Errorf(kindlefeed.EDELIVERY, "smtp client: %v", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return kindlefeed.Errorf(kindlefeed.EDELIVERY, "send to %s via %s:%d: %v", m.to, m.host, m.port, err)
	}
	return nil
}

func textBody(doc *kindlefeed.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", doc.Title)
	for i, a := range doc.Articles {
		title := a.Title
		if title == "" {
			title = a.URL
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
	}
	return b.String()
}
