package delivery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestLoadCredentialsFromEnv(t *testing.T) {
	t.Setenv("FLUIDREPORT_SMTP_USERNAME", "lab@example.edu")
	t.Setenv("FLUIDREPORT_SMTP_PASSWORD", "app-password")

	c, err := LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, "lab@example.edu", c.Username)
	assert.Equal(t, "app-password", c.Password)
}

func TestLoadCredentialsMissing(t *testing.T) {
	t.Setenv("FLUIDREPORT_SMTP_USERNAME", "")
	t.Setenv("FLUIDREPORT_SMTP_PASSWORD", "")
	os.Unsetenv("FLUIDREPORT_SMTP_USERNAME")
	os.Unsetenv("FLUIDREPORT_SMTP_PASSWORD")

	_, err := LoadCredentials()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp credentials")
}

func TestNewSMTPSenderDefaults(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{})
	require.Error(t, err)

	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.edu"})
	require.NoError(t, err)
	assert.Equal(t, 587, s.cfg.Port)
	assert.Positive(t, s.cfg.Timeout)
}

func TestSendFailsBeforeDialWithoutCredentials(t *testing.T) {
	boom := errors.New("no creds")
	s, err := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1},
		WithCredentials(func() (Credentials, error) { return Credentials{}, boom }))
	require.NoError(t, err)

	err = s.Send(context.Background(), Message{To: "prof@example.edu"})
	assert.ErrorIs(t, err, boom)
}

func TestSendRequiresRecipient(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1},
		WithCredentials(func() (Credentials, error) { return Credentials{Username: "u@example.edu", Password: "p"}, nil }))
	require.NoError(t, err)

	err = s.Send(context.Background(), Message{})
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestMessageHeadersAndAttachment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_report.docx")
	require.NoError(t, os.WriteFile(path, []byte("docx"), 0o644))

	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.edu"})
	require.NoError(t, err)
	m := LabReport("Ada", "Babbage", "prof@example.edu", path)
	msg, err := s.message(m, Credentials{Username: "ada@example.edu"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Ada - Final Lab Report"}, msg.GetGenHeader(mail.HeaderSubject))
	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"prof@example.edu"}, rcpts)
	sender, err := msg.GetSender(false)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.edu", sender)
	atts := msg.GetAttachments()
	require.Len(t, atts, 1)
	assert.Equal(t, "data_report.docx", atts[0].Name)
}

func TestMessageMissingAttachment(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.edu", From: "lab@example.edu"})
	require.NoError(t, err)
	_, err = s.message(Message{To: "prof@example.edu", Attachment: "/nope/report.docx"}, Credentials{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLabReportText(t *testing.T) {
	m := LabReport("Ada", "Babbage", "prof@example.edu", "r.docx")
	assert.Equal(t, "Ada - Final Lab Report", m.Subject)
	assert.Equal(t, "Hello Professor Babbage, hope you are doing well. Attached is my final lab report. Thank you and have a great rest of your day! -Ada", m.Body)
	assert.Equal(t, "r.docx", m.Attachment)
}
