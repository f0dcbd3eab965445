package events

import "github.com/rs/zerolog/log"

// LogSink mirrors every event into the process log. Always installed so a
// session's transitions are traceable even without NATS.
type LogSink struct{}

// Publish logs the event at debug level.
func (LogSink) Publish(ev Event) error {
	log.Debug().
		Str("event_id", ev.EventID).
		Str("event_type", ev.EventType).
		Str("session_id", ev.SessionID).
		RawJSON("payload", ev.Payload).
		Msg("session event")
	return nil
}
