package conversation

import "strings"

// WebhookRequest is the fulfillment payload posted by the NLU platform.
type WebhookRequest struct {
	ResponseID  string      `json:"responseId,omitempty"`
	Session     string      `json:"session"`
	QueryResult QueryResult `json:"queryResult"`
}

// QueryResult carries the matched intent and its extracted parameters.
type QueryResult struct {
	QueryText      string         `json:"queryText"`
	LanguageCode   string         `json:"languageCode,omitempty"`
	Intent         Intent         `json:"intent"`
	Parameters     map[string]any `json:"parameters"`
	OutputContexts []Context      `json:"outputContexts"`
}

// Intent identifies the matched intent by display name.
type Intent struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName"`
}

// Context is a named, lifespan-bounded parameter bag echoed between turns.
type Context struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespanCount"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// WebhookResponse is returned to the platform.
type WebhookResponse struct {
	FulfillmentText string    `json:"fulfillmentText"`
	OutputContexts  []Context `json:"outputContexts,omitempty"`
}

// Logical context names.
const (
	ContextBookingFlow          = "booking-flow"
	ContextAwaitingBookingType  = "awaiting-booking-type"
	ContextAwaitingGuestCount   = "awaiting-guest-count"
	ContextAwaitingDatetime     = "awaiting-datetime"
	ContextAwaitingVenue        = "awaiting-venue-selection"
	ContextAwaitingContact      = "awaiting-contact-details"
	ContextAwaitingConfirmation = "awaiting-final-confirmation"
	ContextAwaitingRestart      = "awaiting-restart-or-cancel"
	ContextBookingFinalized     = "booking-finalized"
	ContextGroupLeadSubmitted   = "group-lead-submitted"
)

// Context lifespans in conversational turns.
const (
	FlowLifespan     = 20
	StepLifespan     = 5
	TerminalLifespan = 1
)

const contextSegment = "/contexts/"

// ContextName builds the fully qualified name of a logical context in session.
func ContextName(session, logical string) string {
	return strings.TrimSuffix(session, "/") + contextSegment + logical
}

// LogicalName returns the part of a fully qualified context name after
// "/contexts/". Names without the segment are returned unchanged.
func LogicalName(full string) string {
	if idx := strings.LastIndex(full, contextSegment); idx >= 0 {
		return full[idx+len(contextSegment):]
	}
	return full
}
