package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/wneessen/go-mail"

	"github.com/KaramelBytes/fluidreport/internal/utils"
)

// EnvPrefix is the environment prefix for SMTP credentials, e.g.
// FLUIDREPORT_SMTP_USERNAME and FLUIDREPORT_SMTP_PASSWORD.
const EnvPrefix = "FLUIDREPORT_SMTP"

// ErrNoRecipient is returned when a message has no destination address.
var ErrNoRecipient = errors.New("no recipient address")

// Message is one report delivery.
type Message struct {
	To         string
	Subject    string
	Body       string
	Attachment string // file path
}

// Sender delivers a message. Implementations report only success or failure.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Credentials authenticate against the SMTP server. They are read from the
// environment on every send and never stored in configuration files.
type Credentials struct {
	Username string `envconfig:"USERNAME" required:"true"`
	Password string `envconfig:"PASSWORD" required:"true"`
}

// LoadCredentials reads credentials from FLUIDREPORT_SMTP_* variables.
func LoadCredentials() (Credentials, error) {
	var c Credentials
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return Credentials{}, fmt.Errorf("smtp credentials: %w", err)
	}
	return c, nil
}

// SMTPConfig holds the non-secret transport settings.
type SMTPConfig struct {
	Host    string
	Port    int
	From    string // defaults to the credential username
	Timeout time.Duration
}

// SMTPSender sends messages over STARTTLS with PLAIN auth.
type SMTPSender struct {
	cfg         SMTPConfig
	credentials func() (Credentials, error)
	logger      *slog.Logger
}

// Option configures an SMTPSender.
type Option func(*SMTPSender)

// WithCredentials replaces the environment lookup.
func WithCredentials(fn func() (Credentials, error)) Option {
	return func(s *SMTPSender) { s.credentials = fn }
}

// WithLogger sets the sender's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *SMTPSender) { s.logger = l }
}

// NewSMTPSender validates cfg and returns a sender.
func NewSMTPSender(cfg SMTPConfig, opts ...Option) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	s := &SMTPSender{cfg: cfg, credentials: LoadCredentials, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Send builds the message and delivers it in one SMTP session.
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	creds, err := s.credentials()
	if err != nil {
		return err
	}
	msg, err := s.message(m, creds)
	if err != nil {
		return err
	}
	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(creds.Username),
		mail.WithPassword(creds.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(s.cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	s.logger.InfoContext(ctx, "report mailed",
		slog.String("component", "delivery"),
		slog.String("to", m.To),
		slog.String("host", s.cfg.Host))
	return nil
}

func (s *SMTPSender) message(m Message, creds Credentials) (*mail.Msg, error) {
	if m.To == "" {
		return nil, ErrNoRecipient
	}
	from := s.cfg.From
	if from == "" {
		from = creds.Username
	}
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)
	if m.Attachment != "" {
		if !utils.FileExists(m.Attachment) {
			return nil, fmt.Errorf("attachment %s not found", m.Attachment)
		}
		msg.AttachFile(m.Attachment)
	}
	return msg, nil
}

// LabReport is the message a student sends with a finished report.
func LabReport(name, supervisor, to, attachment string) Message {
	return Message{
		To:         to,
		Subject:    name + " - Final Lab Report",
		Body:       "Hello Professor " + supervisor + ", hope you are doing well. Attached is my final lab report. Thank you and have a great rest of your day! -" + name,
		Attachment: attachment,
	}
}
