package gateway

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const outboundBuffer = 256

// Announcer delivers session broadcasts to the quiz channel. Sends are
// queued and shipped by a single goroutine so message order is preserved
// while the session never blocks on Discord round-trips.
type Announcer struct {
	ds        *discordgo.Session
	channelID string
	out       chan string
	done      chan struct{}
}

// NewAnnouncer creates an announcer bound to the quiz channel.
func NewAnnouncer(ds *discordgo.Session, channelID string) *Announcer {
	return &Announcer{
		ds:        ds,
		channelID: channelID,
		out:       make(chan string, outboundBuffer),
		done:      make(chan struct{}),
	}
}

// Broadcast queues a message for delivery. It never blocks; if the queue
// is full the message is dropped and logged.
func (a *Announcer) Broadcast(text string) {
	select {
	case a.out <- text:
	default:
		log.Warn().Str("channel_id", a.channelID).Msg("outbound queue full, dropping broadcast")
	}
}

// Run ships queued messages until Close is called.
func (a *Announcer) Run() {
	for {
		select {
		case text := <-a.out:
			if _, err := a.ds.ChannelMessageSend(a.channelID, text); err != nil {
				log.Error().Err(err).Str("channel_id", a.channelID).Msg("failed to send broadcast")
			}
		case <-a.done:
			return
		}
	}
}

// Close stops the delivery loop.
func (a *Announcer) Close() {
	close(a.done)
}
