package service

import (
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recetario/backend/config"
	"github.com/pageza/recetario/backend/internal/model"
)

func TestSendPasswordResetEmail(t *testing.T) {
	svc := NewEmailService(&config.Config{
		SMTPHost:      "smtp.test",
		SMTPPort:      "2525",
		EmailFrom:     "no-reply@recetario.test",
		EmailFromName: "Recetario",
		FrontendURL:   "https://app.test/",
	})

	var gotAddr string
	var gotTo []string
	var gotMsg string
	svc.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	user := &model.User{Name: "lucía pérez", Email: "lucia@example.com"}
	require.NoError(t, svc.SendPasswordResetEmail(user, "tok en"))

	assert.Equal(t, "smtp.test:2525", gotAddr)
	assert.Equal(t, []string{"lucia@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Reset your Recetario password")
	assert.Contains(t, gotMsg, "https://app.test/reset-password?token=tok+en")
	assert.Contains(t, gotMsg, "Hello Lucía Pérez,")
	assert.True(t, strings.HasPrefix(gotMsg, "To: lucia@example.com\r\n"))
}

func TestSendEmailWithoutSMTPLogsOnly(t *testing.T) {
	svc := NewEmailService(&config.Config{})
	called := false
	svc.send = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}
	require.NoError(t, svc.SendWelcomeEmail(&model.User{Name: "chef", Email: "c@example.com", Role: model.RoleChef}))
	assert.False(t, called)
}
