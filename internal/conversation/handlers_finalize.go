package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfman30/venue-booking-agent/internal/bookingtime"
	"github.com/wolfman30/venue-booking-agent/internal/notify"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const restartApology = "I'm sorry, I've lost track of your booking details. Please say \"restart\" and we'll start again."

func (d *Dispatcher) handleConfirm(ctx context.Context, t *Turn) Reply {
	if !t.HasFlow() {
		t.logger.Warn("confirm without booking-flow context")
		return Reply{Text: restartApology, Verbatim: true}
	}
	if !t.Draft.Complete() {
		t.logger.Warn("confirm with incomplete draft", "params", t.Draft.Parameters())
		return Reply{Text: restartApology, Verbatim: true, Contexts: t.advanceTo(ContextAwaitingRestart)}
	}

	ctx, span := tracer.Start(ctx, "conversation.finalize")
	defer span.End()
	bookingType := InferType(t.Draft.GuestCount)
	span.SetAttributes(attribute.String("booking.type", string(bookingType)))

	acquired, err := d.guard.Acquire(ctx, t.Session)
	if err != nil {
		t.logger.Warn("finalize guard unavailable, continuing", "error", err)
		acquired = true
	}
	if !acquired {
		t.logger.Info("booking already finalized for session")
		return Reply{
			Text:     "Your booking has already been confirmed. Is there anything else I can help you with?",
			Contexts: t.expireAll(),
		}
	}

	bookingID, err := d.bookings.CreateBooking(ctx, t.Draft.Booking(), bookingType.Status())
	d.metrics.ObserveDependency("airtable", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "booking persist failed")
		t.logger.Error("failed to persist booking", "error", err, "type", bookingType)
		if relErr := d.guard.Release(ctx, t.Session); relErr != nil {
			t.logger.Warn("failed to release finalize guard", "error", relErr)
		}
		return Reply{
			Text:     "I'm sorry, I couldn't save your booking just now. Please reply \"yes\" to try confirming again.",
			Verbatim: true,
			Contexts: t.advanceTo(ContextAwaitingConfirmation),
		}
	}
	d.metrics.ObserveBooking(string(bookingType))
	t.logger.Info("booking finalized", "booking_id", bookingID, "type", bookingType, "guests", t.Draft.GuestCount)

	date, clock := bookingtime.FormatLocal(t.Draft.BookingUTC, d.opts.Location)
	marker := ContextBookingFinalized
	text := fmt.Sprintf("Your table for %d at %s on %s at %s is confirmed, %s. We look forward to welcoming you!",
		t.Draft.GuestCount, t.Draft.Venue, date, clock, t.Draft.FullName)

	if bookingType == BookingGroup {
		marker = ContextGroupLeadSubmitted
		text = fmt.Sprintf("Thank you, %s! Your group event enquiry for %d guests at %s on %s at %s has been received "+
			"and our events team will be in touch shortly.", t.Draft.FullName, t.Draft.GuestCount, t.Draft.Venue, date, clock)
		text += d.sendBrochure(ctx, t)
	}

	contexts := append(t.expireAll(), Context{
		Name:          marker,
		LifespanCount: TerminalLifespan,
		Parameters: map[string]any{
			"bookingId": bookingID,
			draftType:   string(bookingType),
			draftVenue:  t.Draft.Venue,
		},
	})
	return Reply{Text: text, Contexts: contexts}
}

// sendBrochure emails the group lead and returns the sentence describing the
// outcome. Failures never fail the booking.
func (d *Dispatcher) sendBrochure(ctx context.Context, t *Turn) string {
	if d.notifier == nil {
		return ""
	}
	err := d.notifier.SendBookingEmail(ctx, t.Draft.EmailAddress, t.Draft.FullName)
	switch {
	case err == nil:
		d.metrics.ObserveDependency("email", nil)
		return fmt.Sprintf(" We've emailed our venue brochure to %s.", t.Draft.EmailAddress)
	case errors.Is(err, notify.ErrNotificationDisabled):
		t.logger.Info("brochure email disabled")
		return ""
	default:
		d.metrics.ObserveDependency("email", err)
		t.logger.Error("failed to send brochure email", "error", err)
		return fmt.Sprintf(" We couldn't email our brochure to %s just now, but the team will share it when they contact you.", t.Draft.EmailAddress)
	}
}
