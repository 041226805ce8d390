package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/venue-booking-agent/internal/bookingtime"
)

func (d *Dispatcher) handleContact(ctx context.Context, t *Turn) Reply {
	name := t.Params.FullName()
	if name == "" && t.Draft.FullName == "" {
		name = NameFromQuery(t.QueryText)
	}
	t.Draft.MergeContact(name, t.Params.MobileNumber(), t.Params.EmailAddress())
	return d.advance(ctx, t)
}

func askContact(t *Turn) Reply {
	missing := t.Draft.MissingContact()
	text := fmt.Sprintf("To finish up, could I have your %s?", joinWords(missing))
	if len(missing) < 3 {
		text = fmt.Sprintf("Thanks! I still need your %s.", joinWords(missing))
	}
	return Reply{
		Text:     text,
		Contexts: t.advanceTo(ContextAwaitingContact),
	}
}

// summary lists every booking detail for the guest to confirm.
func (d *Dispatcher) summary(t *Turn) Reply {
	draft := &t.Draft
	draft.EstimatedTotal = nil
	if InferType(draft.GuestCount) == BookingTable && d.opts.TablePricePerGuest > 0 {
		total := d.opts.TablePricePerGuest * float64(draft.GuestCount)
		draft.EstimatedTotal = &total
	}

	date, clock := bookingtime.FormatLocal(draft.BookingUTC, d.opts.Location)
	var b strings.Builder
	if InferType(draft.GuestCount) == BookingGroup {
		b.WriteString("Here's a summary of your group event enquiry:\n")
	} else {
		b.WriteString("Here's a summary of your table booking:\n")
	}
	fmt.Fprintf(&b, "- Name: %s\n", draft.FullName)
	fmt.Fprintf(&b, "- Mobile: %s\n", draft.MobileNumber)
	fmt.Fprintf(&b, "- Email: %s\n", draft.EmailAddress)
	fmt.Fprintf(&b, "- Guests: %d\n", draft.GuestCount)
	fmt.Fprintf(&b, "- Venue: %s\n", draft.Venue)
	fmt.Fprintf(&b, "- Date: %s\n", date)
	fmt.Fprintf(&b, "- Time: %s\n", clock)
	if draft.EstimatedTotal != nil {
		fmt.Fprintf(&b, "- Estimated total: %s %.2f\n", d.opts.Currency, *draft.EstimatedTotal)
	}
	b.WriteString("Shall I go ahead and confirm this?")

	return Reply{
		Text:     b.String(),
		Tone:     ToneVerbatimConfirm,
		Contexts: t.advanceTo(ContextAwaitingConfirmation),
	}
}

func joinWords(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	}
	return strings.Join(words[:len(words)-1], ", ") + " and " + words[len(words)-1]
}
