package conversation

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/wolfman30/venue-booking-agent/internal/airtable"
	"github.com/wolfman30/venue-booking-agent/internal/observability/metrics"
	"github.com/wolfman30/venue-booking-agent/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("venuebooking.internal.conversation")

// ErrInternal is returned by Handle when an intent handler panicked.
var ErrInternal = errors.New("conversation: internal error")

// InternalErrorReply is the fixed text sent when a request cannot be handled.
const InternalErrorReply = "I'm sorry, something went wrong on our side. Please try again in a moment."

// Intent display names.
const (
	IntentWelcome     = "Default Welcome Intent"
	IntentBooking     = "Booking Intent"
	IntentGuestCount  = "Capture Guest Count Intent"
	IntentDatetime    = "Capture DateTime Intent"
	IntentSelectVenue = "Select Venue Intent"
	IntentContact     = "Capture Contact Details Intent"
	IntentConfirm     = "Confirm Booking Intent"
	IntentDeny        = "Deny Booking Intent"
	IntentRestart     = "Restart Booking Intent"
	IntentCancel      = "Cancel Booking Intent"
	IntentListVenues  = "List Venues Intent"
	IntentFallback    = "Default Fallback Intent"
)

// VenueStore lists venues able to host a party.
type VenueStore interface {
	ListVenues(ctx context.Context, minCapacity int) []airtable.Venue
}

// BookingStore persists finalized bookings.
type BookingStore interface {
	CreateBooking(ctx context.Context, b airtable.Booking, status string) (string, error)
}

// BookingNotifier emails group leads.
type BookingNotifier interface {
	SendBookingEmail(ctx context.Context, toAddress, recipientName string) error
}

// Dependencies are the collaborators a Dispatcher calls out to.
type Dependencies struct {
	Venues   VenueStore
	Bookings BookingStore
	Notifier BookingNotifier
	Replies  *ReplyGenerator
	Guard    FinalizeGuard
	Metrics  *metrics.WebhookMetrics
	Logger   *logging.Logger
}

// Options tune reply content.
type Options struct {
	Location           *time.Location
	TablePricePerGuest float64
	Currency           string
}

// IntentHandler handles one intent. Handlers mutate t.Draft and describe the
// next contexts by logical name.
type IntentHandler func(ctx context.Context, t *Turn) Reply

// Reply is a handler's result before phrasing.
type Reply struct {
	Text string
	Tone Tone
	// Verbatim skips the reply generator.
	Verbatim bool
	Contexts []Context
}

// Dispatcher routes webhook requests to intent handlers.
type Dispatcher struct {
	venues   VenueStore
	bookings BookingStore
	notifier BookingNotifier
	replies  *ReplyGenerator
	guard    FinalizeGuard
	metrics  *metrics.WebhookMetrics
	logger   *logging.Logger
	opts     Options
	handlers map[string]IntentHandler
}

// NewDispatcher wires the intent table.
func NewDispatcher(deps Dependencies, opts Options) *Dispatcher {
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	if deps.Guard == nil {
		deps.Guard = noopFinalizeGuard{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Currency == "" {
		opts.Currency = "AED"
	}
	d := &Dispatcher{
		venues:   deps.Venues,
		bookings: deps.Bookings,
		notifier: deps.Notifier,
		replies:  deps.Replies,
		guard:    deps.Guard,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		opts:     opts,
	}
	d.handlers = map[string]IntentHandler{
		IntentWelcome:     d.handleWelcome,
		IntentBooking:     d.handleBooking,
		IntentGuestCount:  d.handleGuestCount,
		IntentDatetime:    d.handleDatetime,
		IntentSelectVenue: d.handleSelectVenue,
		IntentContact:     d.handleContact,
		IntentConfirm:     d.handleConfirm,
		IntentDeny:        d.handleDeny,
		IntentRestart:     d.handleRestart,
		IntentCancel:      d.handleCancel,
		IntentListVenues:  d.handleListVenues,
		IntentFallback:    d.handleFallback,
	}
	return d
}

// Handle answers one webhook request. A non-nil error means a handler
// panicked; the response then carries InternalErrorReply.
func (d *Dispatcher) Handle(ctx context.Context, req WebhookRequest) (resp WebhookResponse, err error) {
	start := time.Now()
	intent := strings.TrimSpace(req.QueryResult.Intent.DisplayName)
	handler, known := d.handlers[intent]
	label := intent
	if !known {
		handler = d.handleFallback
		label = "unknown"
	}

	ctx, span := tracer.Start(ctx, "conversation.dispatch", trace.WithAttributes(
		attribute.String("conversation.intent", label),
	))
	defer span.End()

	logger := d.logger.WithSession(req.Session)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("intent handler panicked", "intent", intent, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			span.SetStatus(codes.Error, "handler panic")
			d.metrics.ObserveIntent(label, "panic")
			resp = WebhookResponse{FulfillmentText: InternalErrorReply}
			err = ErrInternal
		}
	}()

	turn := newTurn(req, logger)
	logger.Debug("dispatching intent", "intent", intent, "active_contexts", turn.activeNames())

	reply := handler(ctx, turn)
	text := reply.Text
	if !reply.Verbatim {
		text = d.replies.Phrase(ctx, reply.Text, reply.Tone)
	}

	d.metrics.ObserveIntent(label, "handled")
	d.metrics.ObserveLatency(label, time.Since(start).Seconds())
	return WebhookResponse{
		FulfillmentText: text,
		OutputContexts:  qualifyContexts(req.Session, reply.Contexts),
	}, nil
}

// qualifyContexts expands logical names and keeps the last entry per name.
func qualifyContexts(session string, contexts []Context) []Context {
	if len(contexts) == 0 {
		return nil
	}
	index := make(map[string]int, len(contexts))
	out := make([]Context, 0, len(contexts))
	for _, c := range contexts {
		logical := LogicalName(c.Name)
		c.Name = ContextName(session, logical)
		if i, ok := index[logical]; ok {
			out[i] = c
			continue
		}
		index[logical] = len(out)
		out = append(out, c)
	}
	return out
}
