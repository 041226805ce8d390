package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/wolfman30/venue-booking-agent/pkg/logging"
)

const (
	maxDocumentBytes = 20 << 20
	defaultSubject   = "Your event enquiry and venue brochure"
	defaultFilename  = "brochure.pdf"
)

// ErrNotificationDisabled is returned when no transport or document URL is configured.
var ErrNotificationDisabled = errors.New("notify: booking email disabled")

var bookingEmailTemplate = template.Must(template.New("booking_email").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #222;">
    <p>Dear {{.Name}},</p>
    <p>Thank you for your group booking enquiry. Our events team has received your details and will be in touch shortly to tailor the event to you.</p>
    <p>In the meantime, please find our venue brochure attached. You can also view it online <a href="{{.DocumentURL}}">here</a>.</p>
    <p>Kind regards,<br>The Events Team</p>
  </body>
</html>`))

// BrochureConfig configures the booking email.
type BrochureConfig struct {
	DocumentURL string
	Subject     string
	HTTPClient  *http.Client
}

// BrochureNotifier emails group-booking leads with the venue brochure attached.
type BrochureNotifier struct {
	sender      EmailSender
	documentURL string
	subject     string
	httpClient  *http.Client
	logger      *logging.Logger
}

// NewBrochureNotifier creates a notifier. A nil sender or empty document URL
// yields a notifier whose sends report ErrNotificationDisabled.
func NewBrochureNotifier(sender EmailSender, cfg BrochureConfig, logger *logging.Logger) *BrochureNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Subject == "" {
		cfg.Subject = defaultSubject
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &BrochureNotifier{
		sender:      sender,
		documentURL: strings.TrimSpace(cfg.DocumentURL),
		subject:     cfg.Subject,
		httpClient:  cfg.HTTPClient,
		logger:      logger,
	}
}

// Enabled reports whether the notifier has both a transport and a document.
func (n *BrochureNotifier) Enabled() bool {
	return n != nil && n.sender != nil && n.documentURL != ""
}

// SendBookingEmail renders the booking email, fetches the brochure and sends
// both to toAddress.
func (n *BrochureNotifier) SendBookingEmail(ctx context.Context, toAddress, recipientName string) error {
	if !n.Enabled() {
		return ErrNotificationDisabled
	}
	if strings.TrimSpace(toAddress) == "" {
		return fmt.Errorf("notify: recipient address required")
	}
	name := strings.TrimSpace(recipientName)
	if name == "" {
		name = "Guest"
	}

	var html bytes.Buffer
	if err := bookingEmailTemplate.Execute(&html, map[string]string{
		"Name":        name,
		"DocumentURL": n.documentURL,
	}); err != nil {
		return fmt.Errorf("notify: render booking email: %w", err)
	}

	attachment, err := n.fetchDocument(ctx)
	if err != nil {
		n.logger.Error("notify: brochure download failed", "error", err, "url", n.documentURL)
		return err
	}

	msg := EmailMessage{
		To:          toAddress,
		ToName:      name,
		Subject:     n.subject,
		Body:        fmt.Sprintf("Dear %s,\n\nThank you for your group booking enquiry. Our venue brochure is attached and also available at %s.\n\nKind regards,\nThe Events Team", name, n.documentURL),
		HTML:        html.String(),
		Attachments: []Attachment{attachment},
	}
	return n.sender.Send(ctx, msg)
}

func (n *BrochureNotifier) fetchDocument(ctx context.Context) (Attachment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.documentURL, nil)
	if err != nil {
		return Attachment{}, fmt.Errorf("notify: create brochure request: %w", err)
	}
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return Attachment{}, fmt.Errorf("notify: fetch brochure: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Attachment{}, fmt.Errorf("notify: fetch brochure: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return Attachment{}, fmt.Errorf("notify: read brochure: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	} else {
		contentType = "application/pdf"
	}
	return Attachment{
		Filename:    documentFilename(n.documentURL),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func documentFilename(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return defaultFilename
	}
	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" {
		return defaultFilename
	}
	return base
}
