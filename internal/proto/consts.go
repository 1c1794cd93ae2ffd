package proto

const (
	// Version is the latest version of the datagram format. Publishers that
	// predate versioning send no prefix and are read as version 0.
	Version = 1

	// UnknownVersion is reported for a datagram whose version prefix cannot
	// be read. Such datagrams are still decoded.
	UnknownVersion = ^uint32(0)

	// MaxDatagramSize bounds an encoded datagram. Anything larger is rejected
	// on encode so that a single lyric always fits in one unfragmented packet.
	MaxDatagramSize = 1400
)
