package conversation

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/venue-booking-agent/pkg/logging"
)

func postWebhook(t *testing.T, h *Handler, body []byte) (*httptest.ResponseRecorder, WebhookResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Fulfill(w, req)

	var resp WebhookResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return w, resp
}

func TestHandler_Fulfill(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	h := NewHandler(env.dispatcher, logging.New("error"))

	body := `{
		"responseId": "r-1",
		"session": "` + testSession + `",
		"queryResult": {
			"queryText": "a table for 12 on the 1st of August at 7pm",
			"intent": {"displayName": "Booking Intent"},
			"parameters": {"guestCount": 12, "bookingdate": "2025-08-01T12:00:00+04:00", "bookingtime": "2025-08-01T19:00:00+04:00"},
			"outputContexts": []
		}
	}`
	w, resp := postWebhook(t, h, []byte(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, resp.FulfillmentText, "Which venue would you like?")

	flow := findContext(t, resp, ContextBookingFlow)
	assert.Equal(t, float64(12), flow.Parameters["guestCount"])
	assert.Equal(t, "group", flow.Parameters["type"])
	assert.Equal(t, "2025-08-01T15:00:00Z", flow.Parameters["bookingUTC"])
	assert.Equal(t, StepLifespan, findContext(t, resp, ContextAwaitingVenue).LifespanCount)
}

func TestHandler_Fulfill_ExpiredContextsSerializeLifespanZero(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	h := NewHandler(env.dispatcher, logging.New("error"))

	req := webhookRequest(IntentCancel, nil, inboundFlow(completeDraft(4)))
	body, err := json.Marshal(req)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Fulfill(w, httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"lifespanCount":0`)
}

func TestHandler_Fulfill_BadJSON(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	h := NewHandler(env.dispatcher, logging.New("error"))

	w, resp := postWebhook(t, h, []byte(`{"session": `))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, InternalErrorReply, resp.FulfillmentText)
}

func TestHandler_Fulfill_PanicReturns500(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	env.venues.panicMsg = "airtable client exploded"
	h := NewHandler(env.dispatcher, logging.New("error"))

	body, err := json.Marshal(webhookRequest(IntentListVenues, nil))
	require.NoError(t, err)
	w, resp := postWebhook(t, h, body)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, InternalErrorReply, resp.FulfillmentText)
	assert.False(t, strings.Contains(w.Body.String(), "exploded"), "error detail must not leak")
}
