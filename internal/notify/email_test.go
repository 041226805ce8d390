package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/domodwyer/mailyak/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/venue-booking-agent/pkg/logging"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "",
		FromEmail: "test@example.com",
	}, nil)

	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "test@example.com",
	}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != defaultFromName {
		t.Errorf("expected default from name %q, got %q", defaultFromName, sender.fromName)
	}
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{client: nil}

	err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test",
		Body:    "Test body",
	})

	if err == nil {
		t.Error("expected error when client is nil")
	}
}

func TestSendGridSender_BuildsAttachments(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "k", FromEmail: "events@example.com", FromName: "Events"}, nil)
	require.NotNil(t, sender)

	message := sender.build(EmailMessage{
		To:          "lead@example.com",
		ToName:      "Sarah Khan",
		Subject:     "Brochure",
		Body:        "plain only",
		Attachments: []Attachment{{Filename: "venues.pdf", Data: []byte("pdf")}},
	})

	require.Len(t, message.Attachments, 1)
	assert.Equal(t, "venues.pdf", message.Attachments[0].Filename)
	assert.Equal(t, "application/octet-stream", message.Attachments[0].Type)
	assert.Equal(t, "cGRm", message.Attachments[0].Content)
	assert.Equal(t, "Events", message.From.Name)
	require.Len(t, message.Content, 2)
	assert.Equal(t, "plain only", message.Content[1].Value, "html falls back to the plain body")
}

func TestLogEmailSender_Send(t *testing.T) {
	sender := NewLogEmailSender(logging.New("error"))

	err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test Subject",
		Body:    "Test body",
	})
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sender.Send(ctx, EmailMessage{To: "recipient@example.com"}), context.Canceled)
}

func TestNewSMTPSender_NilWithoutHost(t *testing.T) {
	assert.Nil(t, NewSMTPSender(SMTPConfig{FromEmail: "events@example.com"}, nil))
}

func TestNewSMTPSender_Defaults(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", FromEmail: "events@example.com"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "smtp.example.com:587", sender.addr)
	assert.Nil(t, sender.auth)
	assert.Equal(t, defaultFromName, sender.fromName)

	withAuth := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 2525, Username: "u", Password: "p"}, nil)
	require.NotNil(t, withAuth)
	assert.Equal(t, "smtp.example.com:2525", withAuth.addr)
	assert.NotNil(t, withAuth.auth)
}

func TestSMTPSender_Send_ComposesMIME(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", FromEmail: "events@example.com", FromName: "Events"}, logging.New("error"))
	require.NotNil(t, sender)

	var mime string
	sender.send = func(m *mailyak.MailYak) error {
		buf, err := m.MimeBuf()
		require.NoError(t, err)
		mime = buf.String()
		return nil
	}

	err := sender.Send(context.Background(), EmailMessage{
		To:      "lead@example.com",
		Subject: "Your brochure",
		Body:    "plain",
		HTML:    "<p>html</p>",
		Attachments: []Attachment{{
			Filename:    "brochure.pdf",
			ContentType: "application/pdf",
			Data:        []byte("%PDF-1.4"),
		}},
	})
	require.NoError(t, err)
	assert.Contains(t, mime, "Subject: Your brochure")
	assert.Contains(t, mime, "lead@example.com")
	assert.Contains(t, mime, "events@example.com")
	assert.Contains(t, mime, "brochure.pdf")
}

func TestSMTPSender_Send_Error(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", FromEmail: "events@example.com"}, logging.New("error"))
	require.NotNil(t, sender)
	sender.send = func(*mailyak.MailYak) error { return errors.New("connection refused") }

	err := sender.Send(context.Background(), EmailMessage{To: "lead@example.com", Subject: "x", Body: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSMTPSender_Send_CancelledContext(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", FromEmail: "events@example.com"}, logging.New("error"))
	require.NotNil(t, sender)
	called := false
	sender.send = func(*mailyak.MailYak) error { called = true; return nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sender.Send(ctx, EmailMessage{To: "lead@example.com"}), context.Canceled)
	assert.False(t, called)
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestNewSESSender_NilWithoutClient(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{FromEmail: "events@example.com"}, nil))
}

func TestSESSender_Send_RawMIME(t *testing.T) {
	client := &fakeSES{}
	sender := NewSESSender(client, SESConfig{FromEmail: "events@example.com", FromName: "Events"}, logging.New("error"))

	err := sender.Send(context.Background(), EmailMessage{
		To:          "lead@example.com",
		Subject:     "Brochure",
		HTML:        "<p>hi</p>",
		Attachments: []Attachment{{Filename: "venues.pdf", ContentType: "application/pdf", Data: []byte("pdf")}},
	})
	require.NoError(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, []string{"lead@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, `"Events" <events@example.com>`, aws.ToString(client.input.FromEmailAddress))
	assert.Nil(t, client.input.ConfigurationSetName)
	require.NotNil(t, client.input.Content.Raw)
	raw := string(client.input.Content.Raw.Data)
	assert.True(t, strings.Contains(raw, "venues.pdf"), "raw MIME should include the attachment")
	assert.Contains(t, raw, "Subject: Brochure")
}

func TestSESSender_Send_ConfigurationSet(t *testing.T) {
	client := &fakeSES{}
	sender := NewSESSender(client, SESConfig{FromEmail: "events@example.com", ConfigurationSet: "bookings"}, logging.New("error"))

	require.NoError(t, sender.Send(context.Background(), EmailMessage{To: "lead@example.com", Subject: "x", Body: "y"}))
	assert.Equal(t, "bookings", aws.ToString(client.input.ConfigurationSetName))
	assert.Equal(t, `"Venue Bookings" <events@example.com>`, aws.ToString(client.input.FromEmailAddress))
}

func TestSESSender_Send_Error(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled")}
	sender := NewSESSender(client, SESConfig{FromEmail: "events@example.com"}, logging.New("error"))

	err := sender.Send(context.Background(), EmailMessage{To: "lead@example.com", Subject: "x", Body: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}
