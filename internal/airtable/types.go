package airtable

import (
	"errors"
	"time"
)

// Booking record statuses.
const (
	StatusConfirmed = "Confirmed"
	StatusNewLead   = "New Lead"
)

// CapacityField names which venue capacity column the guest-count filter reads.
type CapacityField string

const (
	CapacityStanding CapacityField = "standing"
	CapacitySeated   CapacityField = "seated"
)

// ParseCapacityField maps a configuration value to a CapacityField,
// defaulting to standing capacity.
func ParseCapacityField(raw string) CapacityField {
	if CapacityField(raw) == CapacitySeated {
		return CapacitySeated
	}
	return CapacityStanding
}

// ErrBookingCreationFailed is returned when the booking insert does not succeed.
var ErrBookingCreationFailed = errors.New("airtable: booking creation failed")

// Venue is a read-only snapshot of a venue record.
type Venue struct {
	ID               string
	Name             string
	Description      string
	StandingCapacity int
	SeatedCapacity   int
}

// Capacity returns the venue capacity for the given field.
func (v Venue) Capacity(field CapacityField) int {
	if field == CapacitySeated {
		return v.SeatedCapacity
	}
	return v.StandingCapacity
}

// Booking is a completed booking ready to be written.
type Booking struct {
	Type           string
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

// Airtable column names.
const (
	fieldReference      = "Reference"
	fieldFullName       = "Full Name"
	fieldMobileNumber   = "Mobile Number"
	fieldEmailAddress   = "Email Address"
	fieldGuestCount     = "Guest Count"
	fieldBookingType    = "Booking Type"
	fieldVenue          = "Venue"
	fieldVenueName      = "Venue Name"
	fieldBookingDate    = "Booking Date"
	fieldBookingTime    = "Booking Time"
	fieldBookingUTC     = "Booking UTC"
	fieldEventDate      = "Event Date"
	fieldEventTime      = "Event Time"
	fieldEventDisplay   = "Event Date Time"
	fieldStatus         = "Status"
	fieldCreatedAt      = "Created At"
	fieldEstimatedTotal = "Estimated Total"
	fieldPackage        = "Package"
	fieldAddOns         = "Add Ons"
	fieldGrandTotal     = "Grand Total"
)

type venueFields struct {
	Name             string  `json:"Name"`
	Description      string  `json:"Description"`
	StandingCapacity float64 `json:"Standing Capacity"`
	SeatedCapacity   float64 `json:"Seated Capacity"`
}

type venueRecord struct {
	ID     string      `json:"id"`
	Fields venueFields `json:"fields"`
}

type listVenuesResponse struct {
	Records []venueRecord `json:"records"`
	Offset  string        `json:"offset"`
}

type createRecord struct {
	Fields map[string]any `json:"fields"`
}

type createRequest struct {
	Records  []createRecord `json:"records"`
	Typecast bool           `json:"typecast"`
}

type createdRecord struct {
	ID string `json:"id"`
}

type createResponse struct {
	Records []createdRecord `json:"records"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
