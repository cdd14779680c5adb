package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	gomail "gopkg.in/gomail.v2"
)

// templatesFS embeds the HTML mail bodies. Template identifiers are paths
// like "mail/confirmed-open"; the corresponding file is
// templates/confirmed-open.html.
//
//go:embed templates/*.html
var templatesFS embed.FS

// SMTPConfig carries the connection settings for the outbound mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer implements Notifier over SMTP with gomail. Template rendering uses
// html/template, so data values are escaped into the HTML body.
type Mailer struct {
	dialer    *gomail.Dialer
	from      string
	templates *template.Template
}

// NewMailer parses the embedded templates and returns a ready Mailer.
func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("notify.NewMailer: parse templates: %w", err)
	}
	return &Mailer{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:      cfg.From,
		templates: tmpl,
	}, nil
}

// Send renders the template and delivers the message. The ctx is consulted
// before dialing so an admission that was cancelled upstream does not still
// send mail; gomail itself has no context support.
func (m *Mailer) Send(ctx context.Context, address, subject, tmplID string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("notify.Mailer.Send: %w", err)
	}

	name := templateFile(tmplID)
	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, name, data); err != nil {
		return fmt.Errorf("notify.Mailer.Send: render %s: %w", tmplID, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", address)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("notify.Mailer.Send: deliver to %s: %w", address, err)
	}
	return nil
}

// templateFile maps a template identifier like "mail/confirmed-open" to the
// embedded file name "confirmed-open.html".
func templateFile(tmplID string) string {
	name := strings.TrimPrefix(tmplID, "mail/")
	return name + ".html"
}
