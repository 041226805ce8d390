package conversation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Platform parameter keys, including the aliases different agent versions send.
var (
	guestCountKeys = []string{"guestCount", "guests", "guest_count", "number"}
	dateKeys       = []string{"bookingdate", "bookingDate", "date"}
	timeKeys       = []string{"bookingtime", "bookingTime", "time"}
	venueKeys      = []string{"venue", "venueName", "venue_name"}
	fullNameKeys   = []string{"fullName", "person", "name"}
	mobileKeys     = []string{"mobileNumber", "phone-number", "phone"}
	emailKeys      = []string{"emailAddress", "email"}

	// Keys carried by structured date/time entities.
	dateObjectKeys = []string{"date_time", "startDate", "startDateTime", "date"}
	timeObjectKeys = []string{"date_time", "startTime", "startDateTime", "time"}
)

// Params is the raw parameter bag of one turn.
type Params map[string]any

// lookup returns the first value stored under keys that is not blank.
func (p Params) lookup(keys ...string) any {
	for _, k := range keys {
		v, ok := p[k]
		if !ok || isBlank(v) {
			continue
		}
		return v
	}
	return nil
}

// GuestCount returns the positive guest count carried by the turn, if any.
func (p Params) GuestCount() (int, bool) {
	return positiveInt(p.lookup(guestCountKeys...))
}

// Date returns the raw date value. Arrays collapse to their first element.
func (p Params) Date() string {
	return firstString(p.lookup(dateKeys...), dateObjectKeys...)
}

// Time returns the raw time value. Arrays collapse to their last element.
func (p Params) Time() string {
	return lastString(p.lookup(timeKeys...), timeObjectKeys...)
}

// Venue returns the requested venue name.
func (p Params) Venue() string {
	return nameString(p.lookup(venueKeys...))
}

// FullName returns the guest's name from a plain string or a person entity.
// Split given/last name parameters are joined when no full name is present.
func (p Params) FullName() string {
	if name := nameString(p.lookup(fullNameKeys...)); name != "" {
		return name
	}
	given := scalarString(p.lookup("given-name"))
	last := scalarString(p.lookup("last-name"))
	return strings.TrimSpace(given + " " + last)
}

// MobileNumber returns the guest's phone number.
func (p Params) MobileNumber() string {
	return firstString(p.lookup(mobileKeys...))
}

// EmailAddress returns the guest's email address.
func (p Params) EmailAddress() string {
	return firstString(p.lookup(emailKeys...))
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		for _, item := range val {
			if !isBlank(item) {
				return false
			}
		}
		return true
	case map[string]any:
		return len(val) == 0
	}
	return false
}

// scalarString renders a scalar parameter value as trimmed text.
func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		if val == math.Trunc(val) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// firstString collapses arrays to their first non-blank element and objects
// to the first non-blank value under objectKeys.
func firstString(v any, objectKeys ...string) string {
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s := firstString(item, objectKeys...); s != "" {
				return s
			}
		}
		return ""
	case map[string]any:
		return objectString(val, objectKeys)
	}
	return scalarString(v)
}

// lastString collapses arrays to their last non-blank element.
func lastString(v any, objectKeys ...string) string {
	switch val := v.(type) {
	case []any:
		for i := len(val) - 1; i >= 0; i-- {
			if s := lastString(val[i], objectKeys...); s != "" {
				return s
			}
		}
		return ""
	case map[string]any:
		return objectString(val, objectKeys)
	}
	return scalarString(v)
}

// nameString reads entity objects of the form {"name": "..."}; arrays
// collapse to their first element.
func nameString(v any) string {
	return firstString(v, "name", "original")
}

func objectString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if s := firstString(m[k], keys...); s != "" {
			return s
		}
	}
	return ""
}

// positiveInt reads numbers and numeric strings. Zero, negatives, fractions
// and anything unparseable report false.
func positiveInt(v any) (int, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case []any:
		if len(val) == 0 {
			return 0, false
		}
		return positiveInt(val[0])
	default:
		return 0, false
	}
	if f <= 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
