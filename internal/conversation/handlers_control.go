package conversation

import "context"

const bookingTypeQuestion = "Would you like to book a table or plan a group event?"

func (d *Dispatcher) handleWelcome(_ context.Context, t *Turn) Reply {
	contexts := []Context{{Name: ContextAwaitingBookingType, LifespanCount: StepLifespan}}
	if t.HasFlow() {
		contexts = append(t.keepFlow(), contexts...)
	}
	return Reply{
		Text:     "Hello and welcome! I can help you book one of our venues. " + bookingTypeQuestion,
		Contexts: contexts,
	}
}

func (d *Dispatcher) handleDeny(_ context.Context, t *Turn) Reply {
	return Reply{
		Text:     "No problem. Would you like to restart your booking or cancel it?",
		Contexts: t.advanceTo(ContextAwaitingRestart),
	}
}

func (d *Dispatcher) handleRestart(_ context.Context, t *Turn) Reply {
	contexts := t.expireAll()
	if !t.HasFlow() {
		contexts = append(contexts, expired(ContextBookingFlow))
	}
	return Reply{
		Text:     "Let's start again. " + bookingTypeQuestion,
		Contexts: append(contexts, Context{Name: ContextAwaitingBookingType, LifespanCount: StepLifespan}),
	}
}

func (d *Dispatcher) handleCancel(_ context.Context, t *Turn) Reply {
	contexts := t.expireAll()
	if !t.HasFlow() {
		contexts = append(contexts, expired(ContextBookingFlow))
	}
	return Reply{
		Text:     "Your booking has been cancelled. If you change your mind, just say hello.",
		Contexts: contexts,
	}
}

func (d *Dispatcher) handleFallback(_ context.Context, t *Turn) Reply {
	if t.HasFlow() {
		return Reply{
			Text:     "Sorry, I didn't quite catch that. Could you please rephrase?",
			Contexts: t.keepFlow(),
		}
	}
	return Reply{
		Text: "Sorry, I didn't understand that. " + bookingTypeQuestion,
	}
}
