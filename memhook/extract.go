package memhook

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

const (
	// DefaultReadSize is how many bytes of the lyric buffer are read. Longer
	// lyrics are cut off.
	DefaultReadSize = 120
	// DefaultEncoding is the code page the player stores lyrics in.
	DefaultEncoding = "gbk"
)

// ErrDecodeFailure indicates lyric bytes cannot be decoded at all, which only
// happens when the configured encoding is unknown. Bad bytes never cause it.
var ErrDecodeFailure = errors.New("lyric text cannot be decoded")

// lyricTerminator ends the player's in-memory lyric string.
const lyricTerminator = "\r\n\x00"

// LookupEncoding returns the encoding for a WHATWG encoding label such as
// "gbk" or "utf-8".
func LookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.Wrapf(ErrDecodeFailure, "unknown text encoding %q: %v", name, err)
	}
	return enc, nil
}

// Extract decodes a raw lyric buffer. Byte sequences that are invalid in enc
// are dropped. The text up to the first terminator is returned with
// surrounding whitespace trimmed; without a terminator the whole buffer is
// used.
func Extract(raw []byte, enc encoding.Encoding) string {
	text := decode(raw, enc)
	if i := strings.Index(text, lyricTerminator); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

func decode(raw []byte, enc encoding.Encoding) string {
	if enc == nil {
		return dropInvalid(string(raw))
	}
	// x/text decoders substitute U+FFFD for bad input rather than fail, so an
	// error here only means the output stopped early; keep what made it out.
	var t transform.Transformer = enc.NewDecoder()
	if enc == simplifiedchinese.GBK {
		t = transform.Chain(dropLoneEuro{}, t)
	}
	out, _, _ := transform.Bytes(t, raw)
	return dropInvalid(string(out))
}

// dropLoneEuro removes 0x80 bytes that stand alone in GBK text. The WHATWG
// GBK decoder reads one as '€'; the player's code page has no such character.
// 0x80 is left alone as the trail byte of a two byte character.
type dropLoneEuro struct{ transform.NopResetter }

func isGBKTrail(c byte) bool {
	return (c >= 0x40 && c < 0x7f) || (c >= 0x80 && c < 0xff)
}

func (dropLoneEuro) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		n := 1
		switch {
		case c == 0x80:
			nSrc++
			continue
		case c > 0x80 && c < 0xff:
			if nSrc+1 >= len(src) {
				if !atEOF {
					return nDst, nSrc, transform.ErrShortSrc
				}
			} else if isGBKTrail(src[nSrc+1]) {
				n = 2
			}
		}
		if nDst+n > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		copy(dst[nDst:], src[nSrc:nSrc+n])
		nDst += n
		nSrc += n
	}
	return nDst, nSrc, nil
}

// dropInvalid removes replacement characters and any remaining invalid UTF-8.
func dropInvalid(s string) string {
	if !strings.ContainsRune(s, utf8.RuneError) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r != utf8.RuneError {
			b.WriteRune(r)
		}
	}
	return b.String()
}
