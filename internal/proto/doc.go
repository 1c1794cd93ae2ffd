// Package proto encodes and decodes the lyric datagrams exchanged over
// multicast.
//
// A datagram is a UTF-8 JSON object:
//
//	{"lyric": "La la la", "duration": 3000, "timestamp": 1718000000.25}
//
// duration is in milliseconds and timestamp is in seconds since the unix
// epoch. Unknown keys are ignored, which lets newer publishers add keys such
// as "source" without breaking older subscribers. A datagram missing one of
// the three keys above is malformed.
//
// The format version is encoded as JSON-ignorable whitespace in front of the
// object (see encode_version.go), so a datagram is still a plain JSON document
// to any parser that does not know about versions.
package proto
