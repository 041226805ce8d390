package conversation

import (
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/venue-booking-agent/internal/airtable"
)

// GroupThreshold is the smallest party handled as a group lead.
const GroupThreshold = 10

// BookingType separates directly confirmed table bookings from group leads.
type BookingType string

const (
	BookingTable BookingType = "table"
	BookingGroup BookingType = "group"
)

// InferType returns the booking type for a guest count.
func InferType(guestCount int) BookingType {
	if guestCount >= GroupThreshold {
		return BookingGroup
	}
	return BookingTable
}

// Status returns the record status a finalized booking of this type is
// written with.
func (t BookingType) Status() string {
	if t == BookingGroup {
		return airtable.StatusNewLead
	}
	return airtable.StatusConfirmed
}

// Draft parameter keys inside the booking-flow context.
const (
	draftType           = "type"
	draftGuestCount     = "guestCount"
	draftBookingDate    = "bookingDate"
	draftBookingTime    = "bookingTime"
	draftBookingUTC     = "bookingUTC"
	draftVenue          = "venue"
	draftVenueID        = "venueId"
	draftFullName       = "fullName"
	draftMobileNumber   = "mobileNumber"
	draftEmailAddress   = "emailAddress"
	draftEstimatedTotal = "estimatedTotal"
)

// BookingDraft accumulates booking fields across turns.
type BookingDraft struct {
	Type           BookingType
	GuestCount     int
	BookingDate    string
	BookingTime    string
	BookingUTC     time.Time
	Venue          string
	VenueID        string
	FullName       string
	MobileNumber   string
	EmailAddress   string
	EstimatedTotal *float64
}

// DraftFromParameters decodes a draft from booking-flow context parameters.
// Unknown keys and malformed values are ignored.
func DraftFromParameters(params map[string]any) BookingDraft {
	p := Params(params)
	var d BookingDraft
	if n, ok := positiveInt(p[draftGuestCount]); ok {
		d.GuestCount = n
	}
	switch BookingType(scalarString(p[draftType])) {
	case BookingTable:
		d.Type = BookingTable
	case BookingGroup:
		d.Type = BookingGroup
	}
	if d.GuestCount > 0 {
		d.Type = InferType(d.GuestCount)
	}
	d.BookingDate = scalarString(p[draftBookingDate])
	d.BookingTime = scalarString(p[draftBookingTime])
	if raw := scalarString(p[draftBookingUTC]); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			d.BookingUTC = t.UTC()
		}
	}
	d.Venue = scalarString(p[draftVenue])
	d.VenueID = scalarString(p[draftVenueID])
	d.FullName = scalarString(p[draftFullName])
	d.MobileNumber = scalarString(p[draftMobileNumber])
	d.EmailAddress = scalarString(p[draftEmailAddress])
	if total, ok := floatValue(p[draftEstimatedTotal]); ok {
		d.EstimatedTotal = &total
	}
	return d
}

// Parameters encodes the draft for the booking-flow context. Empty fields are
// omitted.
func (d BookingDraft) Parameters() map[string]any {
	out := map[string]any{}
	if d.Type != "" {
		out[draftType] = string(d.Type)
	}
	if d.GuestCount > 0 {
		out[draftGuestCount] = d.GuestCount
	}
	setString(out, draftBookingDate, d.BookingDate)
	setString(out, draftBookingTime, d.BookingTime)
	if !d.BookingUTC.IsZero() {
		out[draftBookingUTC] = d.BookingUTC.UTC().Format(time.RFC3339)
	}
	setString(out, draftVenue, d.Venue)
	setString(out, draftVenueID, d.VenueID)
	setString(out, draftFullName, d.FullName)
	setString(out, draftMobileNumber, d.MobileNumber)
	setString(out, draftEmailAddress, d.EmailAddress)
	if d.EstimatedTotal != nil {
		out[draftEstimatedTotal] = *d.EstimatedTotal
	}
	return out
}

// SetGuestCount stores n and re-infers the type. A changed count clears the
// venue, whose capacity was only checked against the previous count (or not
// at all when no count was known).
func (d *BookingDraft) SetGuestCount(n int) {
	if n <= 0 {
		return
	}
	if d.GuestCount != n {
		d.Venue = ""
		d.VenueID = ""
		d.EstimatedTotal = nil
	}
	d.GuestCount = n
	d.Type = InferType(n)
}

// HasSchedule reports whether date, time and the derived UTC instant are set.
func (d BookingDraft) HasSchedule() bool {
	return d.BookingDate != "" && d.BookingTime != "" && !d.BookingUTC.IsZero()
}

// MergeContact fills contact fields from non-blank values, never replacing a
// known field with a blank one.
func (d *BookingDraft) MergeContact(fullName, mobile, email string) {
	if v := strings.TrimSpace(fullName); v != "" {
		d.FullName = v
	}
	if v := strings.TrimSpace(mobile); v != "" {
		d.MobileNumber = v
	}
	if v := strings.TrimSpace(email); v != "" {
		d.EmailAddress = v
	}
}

// MissingContact lists the contact fields still needed, in prompt order.
func (d BookingDraft) MissingContact() []string {
	var missing []string
	if d.FullName == "" {
		missing = append(missing, "full name")
	}
	if d.MobileNumber == "" {
		missing = append(missing, "mobile number")
	}
	if d.EmailAddress == "" {
		missing = append(missing, "email address")
	}
	return missing
}

// Complete reports whether every field needed to finalize is present.
func (d BookingDraft) Complete() bool {
	return d.GuestCount > 0 && d.HasSchedule() && d.Venue != "" && len(d.MissingContact()) == 0
}

// Booking converts a complete draft into a record for the booking store.
func (d BookingDraft) Booking() airtable.Booking {
	return airtable.Booking{
		Type:           string(InferType(d.GuestCount)),
		GuestCount:     d.GuestCount,
		BookingDate:    d.BookingDate,
		BookingTime:    d.BookingTime,
		BookingUTC:     d.BookingUTC,
		Venue:          d.Venue,
		VenueID:        d.VenueID,
		FullName:       d.FullName,
		MobileNumber:   d.MobileNumber,
		EmailAddress:   d.EmailAddress,
		EstimatedTotal: d.EstimatedTotal,
	}
}

func setString(out map[string]any, key, value string) {
	if value != "" {
		out[key] = value
	}
}

func floatValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	}
	return 0, false
}
