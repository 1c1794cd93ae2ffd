package multicast

import (
	"math"
	"time"

	"github.com/ngrok/lyricsync/internal/proto"
)

// Envelope is one published lyric line. An empty Text means the player shows
// no lyric.
type Envelope struct {
	Text       string
	DurationMs uint32
	Timestamp  time.Time
	// Source identifies the publisher, if it sent one.
	Source string
}

// NewEnvelope stamps a lyric line with the current time. durationMs is raised
// to at least 1.
func NewEnvelope(text string, durationMs uint32) Envelope {
	if durationMs < 1 {
		durationMs = 1
	}
	return Envelope{
		Text:       text,
		DurationMs: durationMs,
		Timestamp:  time.Now(),
	}
}

func (e Envelope) message() proto.Message {
	return proto.Message{
		Lyric:     e.Text,
		Duration:  e.DurationMs,
		Timestamp: float64(e.Timestamp.UnixNano()) / float64(time.Second),
		Source:    e.Source,
	}
}

func envelopeFromMessage(m proto.Message) Envelope {
	sec, frac := math.Modf(m.Timestamp)
	return Envelope{
		Text:       m.Lyric,
		DurationMs: m.Duration,
		Timestamp:  time.Unix(int64(sec), int64(frac*float64(time.Second))),
		Source:     m.Source,
	}
}
