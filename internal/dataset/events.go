package dataset

import "github.com/roach88/ecomkpi/internal/rng"

// GenerateEvents walks sessions in order and emits each session's funnel.
// It returns the events and the ids of the sessions that reached purchase,
// in session order.
func GenerateEvents(src *rng.Source, p Params, sessions []Session) ([]Event, []int64) {
	gates := []float64{p.Funnel.AddToCart, p.Funnel.Checkout, p.Funnel.Purchase}

	events := make([]Event, 0, len(sessions)+len(sessions)/2)
	var purchasing []int64
	next := int64(1)
	emit := func(sessionID int64, typ EventType) {
		events = append(events, Event{ID: next, SessionID: sessionID, Type: typ})
		next++
	}

	for _, s := range sessions {
		emit(s.ID, EventView)
		reached := EventView
		for i, step := range FunnelSteps[1:] {
			if !src.Bernoulli(gates[i]) {
				break
			}
			emit(s.ID, step)
			reached = step
		}
		if reached == EventPurchase {
			purchasing = append(purchasing, s.ID)
		}
	}
	return events, purchasing
}

// completeFunnel appends the funnel steps session sessionID is missing, with
// the next dense event ids. It draws nothing.
func completeFunnel(events []Event, sessionID int64) []Event {
	have := make(map[EventType]bool, len(FunnelSteps))
	for _, e := range events {
		if e.SessionID == sessionID {
			have[e.Type] = true
		}
	}
	next := int64(len(events)) + 1
	for _, step := range FunnelSteps {
		if have[step] {
			continue
		}
		events = append(events, Event{ID: next, SessionID: sessionID, Type: step})
		next++
	}
	return events
}
