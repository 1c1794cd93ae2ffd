package proto

import "fmt"

// A version is written as a run of JSON whitespace in front of the datagram.
// JSON ignores the four whitespace characters, so each one can carry two bits
// (a crumb), least significant crumb first. Version 0 is the empty prefix,
// which makes an unversioned datagram indistinguishable from a version 0 one.
var crumbChars = [4]byte{' ', '\t', '\r', '\n'}

func encodeVersion(version uint32) []byte {
	var out []byte
	for version > 0 {
		out = append(out, crumbChars[version&0x3])
		version >>= 2
	}
	return out
}

func decodeVersion(prefix []byte) (uint32, error) {
	if len(prefix) > 16 {
		return 0, fmt.Errorf("version prefix of %d characters overflows uint32", len(prefix))
	}
	var version uint32
	for i := len(prefix) - 1; i >= 0; i-- {
		crumb, err := decodeCrumb(prefix[i])
		if err != nil {
			return 0, err
		}
		version = version<<2 | uint32(crumb)
	}
	return version, nil
}

func decodeCrumb(char byte) (byte, error) {
	for i, c := range crumbChars {
		if c == char {
			return byte(i), nil
		}
	}
	return 0, fmt.Errorf("%#x is not a version crumb", char)
}

func isJSONIgnorableWhitespace(char byte) bool {
	_, err := decodeCrumb(char)
	return err == nil
}
