package proto

// Message is the decoded form of a lyric datagram.
type Message struct {
	Lyric string
	// Duration is how long the line is expected to be shown, in milliseconds.
	Duration uint32
	// Timestamp is when the line was published, in seconds since the epoch.
	Timestamp float64
	// Source identifies the publisher. Optional.
	Source string
}

// wireMessage uses pointers so missing keys can be told apart from zero
// values.
type wireMessage struct {
	Lyric     *string  `json:"lyric"`
	Duration  *int64   `json:"duration"`
	Timestamp *float64 `json:"timestamp"`
	Source    string   `json:"source,omitempty"`
}
