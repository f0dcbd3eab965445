package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Sink receives every event the session emits. Delivery is fire-and-forget:
// a failing sink is logged and never blocks a session transition.
type Sink interface {
	Publish(ev Event) error
}

// Emitter wraps session transitions into event envelopes and fans them out
// to the configured sinks.
type Emitter struct {
	sessionID string
	clock     clockwork.Clock
	sinks     []Sink
}

// NewEmitter creates an emitter with a fresh session run ID.
func NewEmitter(clock clockwork.Clock, sinks ...Sink) *Emitter {
	return &Emitter{
		sessionID: uuid.New().String()[:8],
		clock:     clock,
		sinks:     sinks,
	}
}

// SessionID returns the short run ID stamped on every event.
func (e *Emitter) SessionID() string { return e.sessionID }

// Emit marshals the payload and hands the event to every sink.
func (e *Emitter) Emit(eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		return
	}
	ev := Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		SessionID: e.sessionID,
		Timestamp: e.clock.Now(),
		Payload:   data,
	}
	for _, s := range e.sinks {
		if err := s.Publish(ev); err != nil {
			log.Error().Err(err).Str("event_type", eventType).Msg("event sink publish failed")
		}
	}
}

// Now exposes the emitter's clock, mostly for stamping payload timestamps.
func (e *Emitter) Now() time.Time { return e.clock.Now() }
