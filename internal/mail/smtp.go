package mail

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"newsdesk/config"

	"github.com/rs/zerolog"
)

// SMTP sends each message with its own SMTP transaction; failures are counted, not fatal.
type SMTP struct {
	cfg  config.MailConfig
	log  zerolog.Logger
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTP(cfg config.MailConfig, log zerolog.Logger) *SMTP {
	return &SMTP{cfg: cfg, log: log, send: smtp.SendMail}
}

func (s *SMTP) SendBatch(ctx context.Context, msgs []Message) (Result, error) {
	res := Result{Recipients: len(msgs)}
	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort

	for _, m := range msgs {
		if err := ctx.Err(); err != nil {
			res.Failed += res.Recipients - res.Delivered - res.Failed
			return res, err
		}
		if err := s.send(addr, auth, s.cfg.From, []string{m.To}, buildMessage(s.cfg.From, m)); err != nil {
			s.log.Warn().Err(err).Str("to", m.To).Msg("smtp delivery failed")
			res.Failed++
			continue
		}
		res.Delivered++
	}
	return res, nil
}

func buildMessage(from string, m Message) []byte {
	var b strings.Builder
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", m.Subject) + "\r\n")
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + m.To + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	if m.Text == "" {
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(m.HTML + "\r\n")
		return []byte(b.String())
	}
	boundary := "newsdesk-alt-boundary"
	b.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary))
	b.WriteString("--" + boundary + "\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n" + m.Text + "\r\n")
	b.WriteString("--" + boundary + "\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n" + m.HTML + "\r\n")
	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String())
}

// New returns the SMTP mailer when a host is configured, otherwise the simulated one.
func New(cfg config.MailConfig, log zerolog.Logger) Mailer {
	if cfg.SMTPEnabled() {
		return NewSMTP(cfg, log)
	}
	return &Simulated{Delay: cfg.SimulatedDelay, Log: log}
}
