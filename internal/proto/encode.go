package proto

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrMalformed indicates a datagram that is not a lyric message.
	ErrMalformed = errors.New("malformed lyric datagram")
	// ErrTooLarge indicates a message that does not fit in one datagram.
	ErrTooLarge = errors.New("lyric datagram too large")
)

// EncodeDatagram encodes msg, prefixed with the current version. A zero
// Duration is sent as 1.
func EncodeDatagram(msg Message) ([]byte, error) {
	return encodeVersioned(msg, Version)
}

func encodeVersioned(msg Message, version uint32) ([]byte, error) {
	duration := int64(msg.Duration)
	if duration < 1 {
		duration = 1
	}
	wire := wireMessage{
		Lyric:     &msg.Lyric,
		Duration:  &duration,
		Timestamp: &msg.Timestamp,
		Source:    msg.Source,
	}

	var buf bytes.Buffer
	buf.Write(encodeVersion(version))
	enc := json.NewEncoder(&buf)
	// lyrics are shown, not embedded in html
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wire); err != nil {
		return nil, err
	}
	if buf.Len() > MaxDatagramSize {
		return nil, errors.Wrapf(ErrTooLarge, "%d bytes", buf.Len())
	}
	return buf.Bytes(), nil
}

// DecodeDatagram decodes a datagram and reports the version it was written
// with, or UnknownVersion if its prefix is not a version. Durations below 1ms
// are raised to 1ms.
func DecodeDatagram(data []byte) (Message, uint32, error) {
	var prefix []byte
	for i := 0; i < len(data); i++ {
		if !isJSONIgnorableWhitespace(data[i]) {
			prefix = data[0:i]
			break
		}
	}
	version, err := decodeVersion(prefix)
	if err != nil {
		// only the payload decides whether a datagram is usable
		version = UnknownVersion
	}

	var wire wireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return Message{}, version, errors.Wrapf(ErrMalformed, "%v", err)
	}
	switch {
	case wire.Lyric == nil:
		return Message{}, version, errors.Wrap(ErrMalformed, "missing key \"lyric\"")
	case wire.Duration == nil:
		return Message{}, version, errors.Wrap(ErrMalformed, "missing key \"duration\"")
	case wire.Timestamp == nil:
		return Message{}, version, errors.Wrap(ErrMalformed, "missing key \"timestamp\"")
	}

	duration := *wire.Duration
	if duration < 1 {
		duration = 1
	}
	if duration > math.MaxUint32 {
		duration = math.MaxUint32
	}
	return Message{
		Lyric:     *wire.Lyric,
		Duration:  uint32(duration),
		Timestamp: *wire.Timestamp,
		Source:    wire.Source,
	}, version, nil
}
