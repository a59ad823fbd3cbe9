package services

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSendEmailComposesHTMLMessage(t *testing.T) {
	svc := NewEmailService("smtp.example.com", "587", "mailer", "secret", "care@ayurcare.example", "AyurCare", zap.NewNop())

	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	svc.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, string(msg)
		return nil
	}

	require.NoError(t, svc.SendEmail("patient@example.com", "Appointment tomorrow", "<p>hello</p>"))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "care@ayurcare.example", gotFrom)
	assert.Equal(t, []string{"patient@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "From: AyurCare <care@ayurcare.example>\r\n")
	assert.Contains(t, gotMsg, "Subject: Appointment tomorrow\r\n")
	assert.Contains(t, gotMsg, "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>hello</p>")
}

func TestSendEmailWithoutCredentialsSkipsAuth(t *testing.T) {
	svc := NewEmailService("localhost", "1025", "", "", "care@ayurcare.example", "", zap.NewNop())

	var gotAuth smtp.Auth = smtp.PlainAuth("", "x", "y", "z")
	svc.sendMail = func(_ string, a smtp.Auth, _ string, _ []string, msg []byte) error {
		gotAuth = a
		assert.Contains(t, string(msg), "From: care@ayurcare.example\r\n")
		return nil
	}

	require.NoError(t, svc.SendEmail("patient@example.com", "s", "b"))
	assert.Nil(t, gotAuth)
}

func TestSendEmailWrapsError(t *testing.T) {
	svc := NewEmailService("smtp.example.com", "587", "", "", "care@ayurcare.example", "", zap.NewNop())
	cause := errors.New("535 authentication failed")
	svc.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return cause }

	err := svc.SendEmail("patient@example.com", "s", "b")
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "patient@example.com")
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "ayurcare", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=ayurcare sslmode=disable", cfg.DSN())
}
