package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositiveInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{12.0, 12, true},
		{7, 7, true},
		{" 4 ", 4, true},
		{[]any{3.0, 9.0}, 3, true},
		{0.0, 0, false},
		{-1, 0, false},
		{2.5, 0, false},
		{"two", 0, false},
		{nil, 0, false},
		{[]any{}, 0, false},
		{map[string]any{"amount": 3}, 0, false},
	}
	for _, tt := range tests {
		got, ok := positiveInt(tt.in)
		assert.Equal(t, tt.ok, ok, "%#v", tt.in)
		assert.Equal(t, tt.want, got, "%#v", tt.in)
	}
}

func TestParams_DateAndTimeCollapse(t *testing.T) {
	p := Params{
		"date": []any{"", "2025-08-01", "2025-08-02"},
		"time": []any{"2025-08-01T18:00:00+04:00", "2025-08-01T21:00:00+04:00", ""},
	}
	assert.Equal(t, "2025-08-01", p.Date())
	assert.Equal(t, "2025-08-01T21:00:00+04:00", p.Time())

	period := Params{
		"bookingdate": map[string]any{"startDate": "2025-09-01T00:00:00+04:00", "endDate": "2025-09-03T00:00:00+04:00"},
		"bookingtime": map[string]any{"date_time": "2025-09-01T20:00:00+04:00"},
	}
	assert.Equal(t, "2025-09-01T00:00:00+04:00", period.Date())
	assert.Equal(t, "2025-09-01T20:00:00+04:00", period.Time())
}

func TestParams_AliasesAndBlankValues(t *testing.T) {
	p := Params{
		"guestCount":   "",
		"number":       6.0,
		"bookingdate":  "  ",
		"date":         "2025-08-01",
		"venue":        []any{},
		"venueName":    map[string]any{"name": " Rooftop Terrace "},
		"fullName":     nil,
		"person":       map[string]any{"name": "Ada Lovelace"},
		"phone-number": []any{"+971500000001"},
		"email":        "ada@example.com",
	}

	n, ok := p.GuestCount()
	assert.True(t, ok)
	assert.Equal(t, 6, n)
	assert.Equal(t, "2025-08-01", p.Date())
	assert.Equal(t, "", p.Time())
	assert.Equal(t, "Rooftop Terrace", p.Venue())
	assert.Equal(t, "Ada Lovelace", p.FullName())
	assert.Equal(t, "+971500000001", p.MobileNumber())
	assert.Equal(t, "ada@example.com", p.EmailAddress())
}

func TestParams_FullNameFromSplitParts(t *testing.T) {
	p := Params{"given-name": "Grace", "last-name": "Hopper"}
	assert.Equal(t, "Grace Hopper", p.FullName())
	assert.Equal(t, "Grace", Params{"given-name": "Grace"}.FullName())
	assert.Equal(t, "", Params{}.FullName())
}

func TestScalarString(t *testing.T) {
	assert.Equal(t, "12", scalarString(12.0))
	assert.Equal(t, "12.5", scalarString(12.5))
	assert.Equal(t, "true", scalarString(true))
	assert.Equal(t, "x", scalarString(" x "))
	assert.Equal(t, "", scalarString(nil))
}
