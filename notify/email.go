// Package notify tells users they were added to a project.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"projecthub/config"
	"projecthub/models"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// EmailNotifier sends invite emails over SMTP.
type EmailNotifier struct {
	cfg       config.SMTPConfig
	publicURL string
	log       *zap.Logger
	send      func(m *gomail.Message) error
}

func NewEmailNotifier(cfg config.SMTPConfig, publicURL string, log *zap.Logger) *EmailNotifier {
	n := &EmailNotifier{cfg: cfg, publicURL: publicURL, log: log}
	n.send = func(m *gomail.Message) error {
		d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
		return d.DialAndSend(m)
	}
	return n
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (n *EmailNotifier) Enabled() bool {
	return n.cfg.Host != "" && n.cfg.From != ""
}

func (n *EmailNotifier) NotifyInvited(ctx context.Context, invitee models.User, project models.Project) error {
	if !n.Enabled() {
		n.log.Debug("smtp not configured, skip invite email")
		return nil
	}
	if strings.TrimSpace(invitee.Email) == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", invitee.Email)
	m.SetHeader("Subject", fmt.Sprintf("[projecthub] You were added to %s", project.NamaProject))
	m.SetBody("text/html", n.inviteBody(invitee, project))

	if err := n.send(m); err != nil {
		return fmt.Errorf("send invite email: %w", err)
	}

	n.log.Info("invite email sent", zap.String("to", invitee.Email), zap.Uint("project_id", project.ID))
	return nil
}

func (n *EmailNotifier) inviteBody(invitee models.User, project models.Project) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <p>Hi %s,</p>
    <p>You are now a collaborator on <strong>%s</strong>.</p>
    <p>Invite code: <code>%s</code></p>
    <p><a href="%s">Open projecthub</a></p>
  </div>
</body>
</html>`,
		html.EscapeString(invitee.Nama),
		html.EscapeString(project.NamaProject),
		html.EscapeString(project.InviteCode),
		html.EscapeString(n.publicURL))
}
