package mailer_test

import (
	"context"
	"testing"

	"gnsons/pkg/mailer"

	"github.com/stretchr/testify/assert"
)

func TestMessage_Validate(t *testing.T) {
	assert.NoError(t, mailer.Message{To: "a@x.com", Subject: "Hi"}.Validate())
	assert.Error(t, mailer.Message{Subject: "Hi"}.Validate())
	assert.Error(t, mailer.Message{To: "a@x.com\r\nBcc: b@x.com", Subject: "Hi"}.Validate())
}

func TestSMTPMailer_RejectsInvalidMessageBeforeDialing(t *testing.T) {
	m := mailer.NewSMTPMailer(mailer.Config{Host: "smtp.invalid", Port: "465"})
	err := m.Send(context.Background(), mailer.Message{})
	assert.EqualError(t, err, "mail recipient is required")
}
