package conversation

import (
	"context"
	"strings"

	"github.com/wolfman30/venue-booking-agent/internal/observability/metrics"
	"github.com/wolfman30/venue-booking-agent/pkg/logging"
	"go.opentelemetry.io/otel/codes"
)

// FallbackReply is returned whenever generation fails.
const FallbackReply = "I'm sorry, I'm having a little trouble responding right now. Could you please say that again?"

// Tone selects the instruction appended to a prompt.
type Tone int

const (
	// ToneConversational asks for a short, friendly rewording.
	ToneConversational Tone = iota
	// ToneVerbatimConfirm asks for the facts to be repeated exactly.
	ToneVerbatimConfirm
)

const replyPreamble = "You are the booking assistant for a group of hospitality venues, chatting with a guest. " +
	"Write the next message to the guest based on the draft reply below. " +
	"Keep every fact (numbers, names, dates, times, venues, prices) exactly as written and do not add new ones.\n\nDraft reply:\n"

func (t Tone) instruction() string {
	if t == ToneVerbatimConfirm {
		return "Repeat the booking summary line by line exactly as given, without changing, dropping or reordering any detail, " +
			"then ask the guest to confirm."
	}
	return "Reply in a warm, concise and conversational tone in no more than three sentences. " +
		"If the draft contains a list, keep the list."
}

// TextGenerator produces text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ReplyGenerator phrases handler replies through a TextGenerator.
type ReplyGenerator struct {
	gen     TextGenerator
	metrics *metrics.WebhookMetrics
	logger  *logging.Logger
}

// NewReplyGenerator wraps gen. A nil gen yields a nil generator, which
// callers treat as "use the deterministic wording".
func NewReplyGenerator(gen TextGenerator, m *metrics.WebhookMetrics, logger *logging.Logger) *ReplyGenerator {
	if gen == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ReplyGenerator{gen: gen, metrics: m, logger: logger}
}

// Generate returns the generated reply for prompt, or FallbackReply when the
// call fails or yields nothing.
func (r *ReplyGenerator) Generate(ctx context.Context, prompt string, tone Tone) string {
	ctx, span := tracer.Start(ctx, "conversation.generate_reply")
	defer span.End()

	full := strings.TrimSpace(prompt) + "\n\n" + tone.instruction()
	text, err := r.gen.Generate(ctx, full)
	r.metrics.ObserveDependency("gemini", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		r.logger.Error("reply generation failed", "error", err)
		return FallbackReply
	}
	text = strings.TrimSpace(text)
	if text == "" {
		r.logger.Warn("reply generation returned empty text")
		return FallbackReply
	}
	return text
}

// Phrase turns a handler's draft reply into the text sent to the guest.
func (r *ReplyGenerator) Phrase(ctx context.Context, draft string, tone Tone) string {
	if r == nil {
		return draft
	}
	return r.Generate(ctx, replyPreamble+draft, tone)
}
