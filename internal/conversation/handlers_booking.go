package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/wolfman30/venue-booking-agent/internal/airtable"
	"github.com/wolfman30/venue-booking-agent/internal/bookingtime"
	"golang.org/x/text/cases"
)

func (d *Dispatcher) handleBooking(ctx context.Context, t *Turn) Reply {
	if n, ok := t.Params.GuestCount(); ok {
		t.Draft.SetGuestCount(n)
	}
	if date, clock := t.Params.Date(), t.Params.Time(); date != "" && clock != "" {
		if err := d.applySchedule(&t.Draft, date, clock); err != nil {
			t.logger.Info("ignoring unusable booking datetime", "error", err)
		}
	}
	return d.advance(ctx, t)
}

func (d *Dispatcher) handleGuestCount(ctx context.Context, t *Turn) Reply {
	n, ok := t.Params.GuestCount()
	if !ok {
		return Reply{
			Text:     "I didn't catch how many guests. Please tell me the number of guests as a whole number greater than zero.",
			Contexts: t.advanceTo(ContextAwaitingGuestCount),
		}
	}
	t.Draft.SetGuestCount(n)
	return d.advance(ctx, t)
}

func (d *Dispatcher) handleDatetime(ctx context.Context, t *Turn) Reply {
	date := lo.Ternary(t.Params.Date() != "", t.Params.Date(), t.Draft.BookingDate)
	clock := lo.Ternary(t.Params.Time() != "", t.Params.Time(), t.Draft.BookingTime)
	if date == "" || clock == "" {
		return Reply{
			Text:     "Could you tell me both the date and the time you'd like to book for?",
			Contexts: t.advanceTo(ContextAwaitingDatetime),
		}
	}
	if err := d.applySchedule(&t.Draft, date, clock); err != nil {
		t.logger.Info("rejecting booking datetime", "error", err, "date", date, "time", clock)
		return Reply{
			Text:     "Sorry, I couldn't work out that date and time. Which date and time would you like?",
			Contexts: t.advanceTo(ContextAwaitingDatetime),
		}
	}
	return d.advance(ctx, t)
}

func (d *Dispatcher) handleSelectVenue(ctx context.Context, t *Turn) Reply {
	requested := foldVenueName(t.Params.Venue())
	if t.Draft.Venue != "" && (requested == "" || requested == foldVenueName(t.Draft.Venue)) {
		return d.advance(ctx, t)
	}
	// Capacity and availability can only be checked once the party size and
	// schedule are known.
	if t.Draft.GuestCount == 0 || !t.Draft.HasSchedule() {
		return d.advance(ctx, t)
	}
	if requested == "" {
		return d.offerVenues(ctx, t)
	}

	venues := d.venues.ListVenues(ctx, t.Draft.GuestCount)
	match, ok := lo.Find(venues, func(v airtable.Venue) bool {
		return foldVenueName(v.Name) == requested
	})
	if !ok {
		if len(venues) == 0 {
			return d.noCapacity(t)
		}
		return Reply{
			Text: fmt.Sprintf("I couldn't find a venue called %q that can host your party. Please choose one of these:\n%s",
				strings.TrimSpace(t.Params.Venue()), venueList(venues)),
			Contexts: t.advanceTo(ContextAwaitingVenue),
		}
	}

	t.Draft.Venue = match.Name
	t.Draft.VenueID = match.ID
	next := d.advance(ctx, t)
	next.Text = fmt.Sprintf("%s is a great choice. %s", match.Name, next.Text)
	return next
}

func (d *Dispatcher) handleListVenues(ctx context.Context, t *Turn) Reply {
	venues := d.venues.ListVenues(ctx, t.Draft.GuestCount)
	if len(venues) == 0 {
		return Reply{
			Text:     "I'm sorry, I can't find any venues to suggest right now.",
			Contexts: t.keepFlow(),
		}
	}
	intro := "Here are our venues:"
	if t.Draft.GuestCount > 0 {
		intro = fmt.Sprintf("Here are our venues that can host %d guests:", t.Draft.GuestCount)
	}
	return Reply{
		Text:     intro + "\n" + venueList(venues),
		Contexts: t.keepFlow(),
	}
}

// advance asks for the first missing piece of the booking.
func (d *Dispatcher) advance(ctx context.Context, t *Turn) Reply {
	switch {
	case t.Draft.GuestCount == 0:
		return Reply{
			Text:     "How many guests will be joining?",
			Contexts: t.advanceTo(ContextAwaitingGuestCount),
		}
	case !t.Draft.HasSchedule():
		return Reply{
			Text:     fmt.Sprintf("Lovely, that's %s. What date and time would you like to book for?", partyLabel(t.Draft)),
			Contexts: t.advanceTo(ContextAwaitingDatetime),
		}
	case t.Draft.Venue == "":
		return d.offerVenues(ctx, t)
	case len(t.Draft.MissingContact()) > 0:
		return askContact(t)
	default:
		return d.summary(t)
	}
}

func (d *Dispatcher) offerVenues(ctx context.Context, t *Turn) Reply {
	venues := d.venues.ListVenues(ctx, t.Draft.GuestCount)
	if len(venues) == 0 {
		return d.noCapacity(t)
	}
	date, clock := bookingtime.FormatLocal(t.Draft.BookingUTC, d.opts.Location)
	return Reply{
		Text: fmt.Sprintf("Here are the venues that can host %d guests on %s at %s:\n%s\nWhich venue would you like?",
			t.Draft.GuestCount, date, clock, venueList(venues)),
		Contexts: t.advanceTo(ContextAwaitingVenue),
	}
}

func (d *Dispatcher) noCapacity(t *Turn) Reply {
	return Reply{
		Text: fmt.Sprintf("I'm sorry, none of our venues can host %d guests at that time. "+
			"Would you like to try a smaller party or a different date?", t.Draft.GuestCount),
		Contexts: t.advanceTo(ContextAwaitingGuestCount),
	}
}

// applySchedule validates and stores a date and time. The draft is left
// untouched on error.
func (d *Dispatcher) applySchedule(draft *BookingDraft, rawDate, rawClock string) error {
	date, err := bookingtime.ExtractDate(rawDate)
	if err != nil {
		return err
	}
	clock, err := bookingtime.ExtractClock(rawClock)
	if err != nil {
		return err
	}
	utc, err := bookingtime.BuildLocalUTC(date, clock, d.opts.Location)
	if err != nil {
		return err
	}
	draft.BookingDate = date
	draft.BookingTime = clock
	draft.BookingUTC = utc
	return nil
}

func foldVenueName(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

func venueList(venues []airtable.Venue) string {
	lines := lo.Map(venues, func(v airtable.Venue, _ int) string {
		if v.Description == "" {
			return "- " + v.Name
		}
		return fmt.Sprintf("- %s: %s", v.Name, v.Description)
	})
	return strings.Join(lines, "\n")
}

func partyLabel(d BookingDraft) string {
	if InferType(d.GuestCount) == BookingGroup {
		return fmt.Sprintf("a group event for %d guests", d.GuestCount)
	}
	if d.GuestCount == 1 {
		return "a table for 1"
	}
	return fmt.Sprintf("a table for %d", d.GuestCount)
}
