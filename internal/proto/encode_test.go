package proto

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestEncodeDatagramIsPlainJSON(t *testing.T) {
	data, err := EncodeDatagram(Message{Lyric: "La la la", Duration: 3000, Timestamp: 1718000000.25})
	require.NoError(t, err)

	// what an unversioned subscriber does with it
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	require.Equal(t, "La la la", m["lyric"])
	require.Equal(t, float64(3000), m["duration"])
	require.Equal(t, 1718000000.25, m["timestamp"])
	require.NotContains(t, m, "source")
}

func TestDecodeDatagram(t *testing.T) {
	data, err := EncodeDatagram(Message{Lyric: "<月亮> & 星星", Duration: 2500, Timestamp: 12.5, Source: "c0ffee"})
	require.NoError(t, err)
	require.Contains(t, string(data), "<月亮> & 星星")

	msg, version, err := DecodeDatagram(data)
	require.NoError(t, err)
	require.Equal(t, uint32(Version), version)
	require.Equal(t, Message{Lyric: "<月亮> & 星星", Duration: 2500, Timestamp: 12.5, Source: "c0ffee"}, msg)
}

func TestDecodeUnversioned(t *testing.T) {
	// as sent by publishers that predate versioning
	msg, version, err := DecodeDatagram([]byte(`{"lyric": "hi", "duration": 3000, "timestamp": 1718000000.123, "extra": [1, 2]}`))
	require.NoError(t, err)
	require.Equal(t, uint32(0), version)
	require.Equal(t, "hi", msg.Lyric)
	require.Equal(t, uint32(3000), msg.Duration)
}

func TestDecodeEmptyLyric(t *testing.T) {
	msg, _, err := DecodeDatagram([]byte(`{"lyric": "", "duration": 3000, "timestamp": 1}`))
	require.NoError(t, err)
	require.Equal(t, "", msg.Lyric)
}

func TestDecodeClampsDuration(t *testing.T) {
	msg, _, err := DecodeDatagram([]byte(`{"lyric": "x", "duration": 0, "timestamp": 1}`))
	require.NoError(t, err)
	require.Equal(t, uint32(1), msg.Duration)

	msg, _, err = DecodeDatagram([]byte(`{"lyric": "x", "duration": -40, "timestamp": 1}`))
	require.NoError(t, err)
	require.Equal(t, uint32(1), msg.Duration)
}

func TestDecodeMalformed(t *testing.T) {
	for _, data := range []string{
		``,
		`   `,
		`not json`,
		`["lyric"]`,
		`{"duration": 3000, "timestamp": 1}`,
		`{"lyric": "x", "timestamp": 1}`,
		`{"lyric": "x", "duration": 3000}`,
		`{"lyric": 7, "duration": 3000, "timestamp": 1}`,
	} {
		_, _, err := DecodeDatagram([]byte(data))
		require.True(t, errors.Is(err, ErrMalformed), "%q: got %v", data, err)
	}
}

func TestEncodeTooLarge(t *testing.T) {
	_, err := EncodeDatagram(Message{Lyric: strings.Repeat("啦", MaxDatagramSize), Duration: 1})
	require.True(t, errors.Is(err, ErrTooLarge), "got %v", err)
}

func TestDecodeLongWhitespacePrefix(t *testing.T) {
	data := strings.Repeat(" ", 17) + `{"lyric": "padded", "duration": 3000, "timestamp": 1}`
	msg, version, err := DecodeDatagram([]byte(data))
	require.NoError(t, err)
	require.Equal(t, UnknownVersion, version)
	require.Equal(t, "padded", msg.Lyric)

	// still malformed when the payload is
	_, version, err = DecodeDatagram([]byte(strings.Repeat("\n", 40) + `{"lyric": "x"}`))
	require.True(t, errors.Is(err, ErrMalformed), "got %v", err)
	require.Equal(t, UnknownVersion, version)
}
