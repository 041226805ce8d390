package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/wolfman30/venue-booking-agent/internal/bookingtime"
	"github.com/wolfman30/venue-booking-agent/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultBaseURL = "https://api.airtable.com/v0"
	defaultTimeout = 15 * time.Second
	pageSize       = 100
	maxPages       = 50
)

var tracer = otel.Tracer("venuebooking.internal.airtable")

// Config configures the record store client.
type Config struct {
	BaseURL       string
	BaseID        string
	VenuesTable   string
	BookingsTable string
	Token         string
	CapacityField CapacityField
	Location      *time.Location
	HTTPClient    *http.Client
}

// Client is a thin REST client for the venue and booking tables.
type Client struct {
	baseURL       string
	baseID        string
	venuesTable   string
	bookingsTable string
	token         string
	capacityField CapacityField
	loc           *time.Location
	httpClient    *http.Client
	logger        *logging.Logger
	now           func() time.Time
}

// NewClient creates a record store client.
func NewClient(cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.CapacityField == "" {
		cfg.CapacityField = CapacityStanding
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		baseID:        cfg.BaseID,
		venuesTable:   cfg.VenuesTable,
		bookingsTable: cfg.BookingsTable,
		token:         cfg.Token,
		capacityField: cfg.CapacityField,
		loc:           cfg.Location,
		httpClient:    cfg.HTTPClient,
		logger:        logger,
		now:           time.Now,
	}
}

// ListVenues returns every named venue whose configured capacity is at least
// minCapacity. A minCapacity of zero or less disables the filter. Failures are
// logged and yield an empty list.
func (c *Client) ListVenues(ctx context.Context, minCapacity int) []Venue {
	ctx, span := tracer.Start(ctx, "airtable.list_venues")
	defer span.End()
	span.SetAttributes(attribute.Int("min_capacity", minCapacity))

	records, err := c.listVenueRecords(ctx)
	if err != nil {
		span.RecordError(err)
		c.logger.Error("airtable: list venues failed", "error", err)
		return []Venue{}
	}

	named := lo.Filter(records, func(r venueRecord, _ int) bool {
		return strings.TrimSpace(r.Fields.Name) != ""
	})
	venues := lo.Map(named, func(r venueRecord, _ int) Venue {
		return Venue{
			ID:               r.ID,
			Name:             strings.TrimSpace(r.Fields.Name),
			Description:      strings.TrimSpace(r.Fields.Description),
			StandingCapacity: int(r.Fields.StandingCapacity),
			SeatedCapacity:   int(r.Fields.SeatedCapacity),
		}
	})
	if minCapacity > 0 {
		venues = lo.Filter(venues, func(v Venue, _ int) bool {
			return v.Capacity(c.capacityField) >= minCapacity
		})
	}
	span.SetAttributes(attribute.Int("venue_count", len(venues)))
	return venues
}

func (c *Client) listVenueRecords(ctx context.Context) ([]venueRecord, error) {
	var all []venueRecord
	offset := ""
	for page := 0; page < maxPages; page++ {
		q := url.Values{}
		q.Set("pageSize", fmt.Sprint(pageSize))
		if offset != "" {
			q.Set("offset", offset)
		}

		var out listVenuesResponse
		if err := c.do(ctx, http.MethodGet, c.tableURL(c.venuesTable)+"?"+q.Encode(), nil, &out); err != nil {
			return nil, err
		}
		all = append(all, out.Records...)
		if out.Offset == "" {
			return all, nil
		}
		offset = out.Offset
	}
	c.logger.Warn("airtable: venue pagination truncated", "pages", maxPages)
	return all, nil
}

// CreateBooking writes a single booking record with the given status and
// returns the new record id.
func (c *Client) CreateBooking(ctx context.Context, b Booking, status string) (string, error) {
	ctx, span := tracer.Start(ctx, "airtable.create_booking")
	defer span.End()
	span.SetAttributes(
		attribute.String("booking_type", b.Type),
		attribute.String("status", status),
	)

	req := createRequest{
		Records:  []createRecord{{Fields: c.bookingFields(b, status)}},
		Typecast: true,
	}

	var out createResponse
	if err := c.do(ctx, http.MethodPost, c.tableURL(c.bookingsTable), req, &out); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%w: %w", ErrBookingCreationFailed, err)
	}
	if len(out.Records) == 0 || out.Records[0].ID == "" {
		return "", fmt.Errorf("%w: empty response", ErrBookingCreationFailed)
	}

	c.logger.Info("airtable: booking created", "record_id", out.Records[0].ID, "status", status, "type", b.Type)
	return out.Records[0].ID, nil
}

func (c *Client) bookingFields(b Booking, status string) map[string]any {
	eventDate, eventTime := bookingtime.FormatLocal(b.BookingUTC, c.loc)
	fields := map[string]any{
		fieldReference:    strings.ToUpper(strings.Split(uuid.NewString(), "-")[0]),
		fieldFullName:     b.FullName,
		fieldMobileNumber: b.MobileNumber,
		fieldEmailAddress: b.EmailAddress,
		fieldGuestCount:   b.GuestCount,
		fieldBookingType:  b.Type,
		fieldVenueName:    b.Venue,
		fieldBookingDate:  b.BookingDate,
		fieldBookingTime:  b.BookingTime,
		fieldBookingUTC:   b.BookingUTC.UTC().Format(time.RFC3339),
		fieldEventDate:    eventDate,
		fieldEventTime:    eventTime,
		fieldEventDisplay: bookingtime.FormatDisplay(b.BookingUTC, c.loc),
		fieldStatus:       status,
		fieldCreatedAt:    c.now().UTC().Format(time.RFC3339),
		fieldPackage:      nil,
		fieldAddOns:       nil,
		fieldGrandTotal:   nil,
	}
	if b.VenueID != "" {
		fields[fieldVenue] = []string{b.VenueID}
	}
	if b.EstimatedTotal != nil {
		fields[fieldEstimatedTotal] = *b.EstimatedTotal
	}
	return fields
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(table))
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any, out any) error {
	if strings.TrimSpace(c.token) == "" {
		return errors.New("airtable: missing token")
	}
	if strings.TrimSpace(c.baseID) == "" {
		return errors.New("airtable: missing base id")
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("airtable: marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("airtable: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("airtable: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("airtable: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("airtable: status %d: %s: %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return fmt.Errorf("airtable: status %d: %s", resp.StatusCode, msg)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("airtable: unmarshal response: %w", err)
	}
	return nil
}
