package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/venue-booking-agent/pkg/logging"
)

type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func brochureServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/pdf; qs=0.9")
		_, _ = w.Write([]byte("%PDF-1.7 brochure"))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestBrochureNotifier_Disabled(t *testing.T) {
	ctx := context.Background()

	noSender := NewBrochureNotifier(nil, BrochureConfig{DocumentURL: "https://example.com/b.pdf"}, logging.New("error"))
	assert.False(t, noSender.Enabled())
	assert.ErrorIs(t, noSender.SendBookingEmail(ctx, "lead@example.com", "Lead"), ErrNotificationDisabled)

	noDoc := NewBrochureNotifier(&recordingSender{}, BrochureConfig{}, logging.New("error"))
	assert.False(t, noDoc.Enabled())
	assert.ErrorIs(t, noDoc.SendBookingEmail(ctx, "lead@example.com", "Lead"), ErrNotificationDisabled)

	var nilNotifier *BrochureNotifier
	assert.False(t, nilNotifier.Enabled())
}

func TestBrochureNotifier_SendsWithAttachment(t *testing.T) {
	ts := brochureServer(t, http.StatusOK)
	sender := &recordingSender{}
	n := NewBrochureNotifier(sender, BrochureConfig{DocumentURL: ts.URL + "/docs/Venue%20Brochure.pdf"}, logging.New("error"))

	err := n.SendBookingEmail(context.Background(), "lead@example.com", "Sam <Lee>")
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "lead@example.com", msg.To)
	assert.Equal(t, defaultSubject, msg.Subject)
	assert.Contains(t, msg.HTML, "Sam &lt;Lee&gt;")
	assert.Contains(t, msg.HTML, ts.URL+"/docs/Venue%20Brochure.pdf")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "Venue Brochure.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
	assert.Equal(t, []byte("%PDF-1.7 brochure"), msg.Attachments[0].Data)
}

func TestBrochureNotifier_DefaultsRecipientName(t *testing.T) {
	ts := brochureServer(t, http.StatusOK)
	sender := &recordingSender{}
	n := NewBrochureNotifier(sender, BrochureConfig{DocumentURL: ts.URL + "/"}, logging.New("error"))

	require.NoError(t, n.SendBookingEmail(context.Background(), "lead@example.com", "  "))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].HTML, "Dear Guest,")
	assert.Equal(t, defaultFilename, sender.sent[0].Attachments[0].Filename)
}

func TestBrochureNotifier_DocumentFetchFailure(t *testing.T) {
	ts := brochureServer(t, http.StatusNotFound)
	sender := &recordingSender{}
	n := NewBrochureNotifier(sender, BrochureConfig{DocumentURL: ts.URL + "/missing.pdf"}, logging.New("error"))

	err := n.SendBookingEmail(context.Background(), "lead@example.com", "Lead")
	require.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestBrochureNotifier_TransportFailure(t *testing.T) {
	ts := brochureServer(t, http.StatusOK)
	sender := &recordingSender{err: errors.New("smtp down")}
	n := NewBrochureNotifier(sender, BrochureConfig{DocumentURL: ts.URL + "/b.pdf"}, logging.New("error"))

	err := n.SendBookingEmail(context.Background(), "lead@example.com", "Lead")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
}

func TestBrochureNotifier_RequiresRecipient(t *testing.T) {
	n := NewBrochureNotifier(&recordingSender{}, BrochureConfig{DocumentURL: "https://example.com/b.pdf"}, logging.New("error"))
	assert.Error(t, n.SendBookingEmail(context.Background(), "", "Lead"))
}
