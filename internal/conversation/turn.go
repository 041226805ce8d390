package conversation

import (
	"sort"

	"github.com/wolfman30/venue-booking-agent/pkg/logging"
)

// stepContexts are the single-step markers that say which answer is expected.
var stepContexts = []string{
	ContextAwaitingBookingType,
	ContextAwaitingGuestCount,
	ContextAwaitingDatetime,
	ContextAwaitingVenue,
	ContextAwaitingContact,
	ContextAwaitingConfirmation,
	ContextAwaitingRestart,
}

// Turn is one decoded webhook request.
type Turn struct {
	Session   string
	Intent    string
	QueryText string
	Params    Params
	Draft     BookingDraft

	active map[string]Context
	logger *logging.Logger
}

func newTurn(req WebhookRequest, logger *logging.Logger) *Turn {
	t := &Turn{
		Session:   req.Session,
		Intent:    req.QueryResult.Intent.DisplayName,
		QueryText: req.QueryResult.QueryText,
		Params:    Params(req.QueryResult.Parameters),
		active:    make(map[string]Context),
		logger:    logger,
	}
	if t.Params == nil {
		t.Params = Params{}
	}
	for _, c := range req.QueryResult.OutputContexts {
		if c.LifespanCount <= 0 {
			continue
		}
		t.active[LogicalName(c.Name)] = c
	}
	if flow, ok := t.active[ContextBookingFlow]; ok {
		t.Draft = DraftFromParameters(flow.Parameters)
	}
	return t
}

// Active reports whether the logical context name arrived with a positive lifespan.
func (t *Turn) Active(name string) bool {
	_, ok := t.active[name]
	return ok
}

// HasFlow reports whether a booking is in progress.
func (t *Turn) HasFlow() bool {
	return t.Active(ContextBookingFlow)
}

func (t *Turn) activeNames() []string {
	names := make([]string, 0, len(t.active))
	for name := range t.active {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Turn) flowContext() Context {
	return Context{Name: ContextBookingFlow, LifespanCount: FlowLifespan, Parameters: t.Draft.Parameters()}
}

// advanceTo carries the draft forward and makes step the only expected answer.
func (t *Turn) advanceTo(step string) []Context {
	out := []Context{t.flowContext()}
	for _, name := range stepContexts {
		if name != step && t.Active(name) {
			out = append(out, expired(name))
		}
	}
	return append(out, Context{Name: step, LifespanCount: StepLifespan})
}

// keepFlow re-emits the in-progress flow and the active step contexts as they
// were, for turns that answer a side question.
func (t *Turn) keepFlow() []Context {
	if !t.HasFlow() {
		return nil
	}
	out := []Context{t.flowContext()}
	for _, name := range stepContexts {
		if c, ok := t.active[name]; ok {
			out = append(out, Context{Name: name, LifespanCount: StepLifespan, Parameters: c.Parameters})
		}
	}
	return out
}

// expireAll zeroes every active context.
func (t *Turn) expireAll() []Context {
	out := make([]Context, 0, len(t.active))
	for _, name := range t.activeNames() {
		out = append(out, expired(name))
	}
	return out
}

func expired(name string) Context {
	return Context{Name: name, LifespanCount: 0}
}
