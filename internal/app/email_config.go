package app

import (
	"strings"

	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/mail"
)

// SMTPSettings converts EmailConfig to the mail package representation. SMTP
// is treated as enabled when a host is configured even if the flag is unset.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	host := strings.TrimSpace(c.SMTP.Host)
	return mail.SMTPSettings{
		Enabled:  c.SMTP.Enabled || host != "",
		Host:     host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
		UseTLS:   c.SMTP.UseTLS,
		Timeout:  c.SMTP.Timeout,
	}
}
