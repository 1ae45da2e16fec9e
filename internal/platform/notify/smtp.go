package notify

import (
	"context"
	"fmt"
	"html"
	"time"

	"gopkg.in/gomail.v2"

	"SIMAPRO-backend/internal/platform/config"
)

// Decision は承認/却下の通知内容
type Decision struct {
	RequestCode   string
	TrackingToken string
	BorrowerName  string
	AssetName     string
	Approved      bool
	Reason        string
	StartDate     time.Time
	EndDate       time.Time
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	cfg    config.SMTPConfig
	dialer sender
}

// NewMailer returns nil when no SMTP host is configured; a nil *Mailer
// silently drops messages.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	if cfg.Host == "" {
		return nil
	}
	return &Mailer{cfg: cfg, dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)}
}

// SendDecision は ctx が切れた時点で送信完了を待たずに戻る
func (m *Mailer) SendDecision(ctx context.Context, to string, d Decision) error {
	if m == nil || to == "" {
		return nil
	}
	subject, htmlBody, plainBody := m.renderDecision(d)
	done := make(chan error, 1)
	go func() { done <- m.send(to, subject, htmlBody, plainBody) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("send email: %w", ctx.Err())
	}
}

func (m *Mailer) trackURL(token string) string {
	return fmt.Sprintf("%s/portal/track/%s", m.cfg.BaseURL, token)
}

func (m *Mailer) renderDecision(d Decision) (subject, htmlBody, plainBody string) {
	url := m.trackURL(d.TrackingToken)
	period := fmt.Sprintf("%s - %s", d.StartDate.Format("2006-01-02"), d.EndDate.Format("2006-01-02"))

	if d.Approved {
		subject = fmt.Sprintf("Loan request %s approved", d.RequestCode)
		htmlBody = fmt.Sprintf(`
		<html>
		<body>
			<h2>Your loan request has been approved</h2>
			<p>Hello %s,</p>
			<p>Request <strong>%s</strong> for <strong>%s</strong> (%s) has been approved.</p>
			<p>Please collect the asset from the responsible staff at the start of the loan period.</p>
			<p><a href="%s">View request status</a></p>
		</body>
		</html>
	`, html.EscapeString(d.BorrowerName), d.RequestCode, html.EscapeString(d.AssetName), period, url)
		plainBody = fmt.Sprintf(`
Hello %s,

Request %s for %s (%s) has been approved.
Please collect the asset from the responsible staff at the start of the loan period.

Status: %s
	`, d.BorrowerName, d.RequestCode, d.AssetName, period, url)
		return
	}

	subject = fmt.Sprintf("Loan request %s rejected", d.RequestCode)
	htmlBody = fmt.Sprintf(`
		<html>
		<body>
			<h2>Your loan request has been rejected</h2>
			<p>Hello %s,</p>
			<p>Request <strong>%s</strong> for <strong>%s</strong> (%s) was rejected.</p>
			<p>Reason: %s</p>
			<p><a href="%s">View request status</a></p>
		</body>
		</html>
	`, html.EscapeString(d.BorrowerName), d.RequestCode, html.EscapeString(d.AssetName), period,
		html.EscapeString(d.Reason), url)
	plainBody = fmt.Sprintf(`
Hello %s,

Request %s for %s (%s) was rejected.
Reason: %s

Status: %s
	`, d.BorrowerName, d.RequestCode, d.AssetName, period, d.Reason, url)
	return
}

func (m *Mailer) send(to, subject, htmlBody, plainBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.cfg.FromAddress, m.cfg.FromName))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plainBody)
	msg.AddAlternative("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
