package infra

import (
	"fmt"
	"html"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/juliosincable/infourbi/internal/config"
)

// Mailer wraps SMTP configuration for transactional emails.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Configurado reports whether an SMTP host was given.
func (m *Mailer) Configurado() bool { return m.host != "" }

// MensajeBienvenida builds the welcome email of a new user.
func (m *Mailer) MensajeBienvenida(nombre, correo string) *email.Email {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{correo}
	e.Subject = "Bienvenido a infourbi"
	e.Text = []byte(fmt.Sprintf("Hola %s,\n\nTu cuenta en infourbi está lista. Ya puedes iniciar sesión con %s.\n", nombre, correo))
	e.HTML = []byte(fmt.Sprintf("<p>Hola <strong>%s</strong>,</p><p>Tu cuenta en infourbi está lista. Ya puedes iniciar sesión con %s.</p>",
		html.EscapeString(nombre), html.EscapeString(correo)))
	return e
}

// EnviarBienvenida sends the welcome email.
func (m *Mailer) EnviarBienvenida(nombre, correo string) error {
	if !m.Configurado() {
		return fmt.Errorf("mailer: SMTP_HOST no configurado")
	}
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := m.MensajeBienvenida(nombre, correo).Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", correo, err)
	}
	return nil
}
