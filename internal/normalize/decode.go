package normalize

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Reasons a decode fell back to the fallback charset.
const (
	fallbackLowConfidence = "low_confidence"
	fallbackUnsupported   = "unsupported"
)

// singleByteTables maps charset labels to their x/text decoding tables.
// These are the single-byte charsets the statistical detector can propose.
var singleByteTables = map[string]*charmap.Charmap{
	EncISO88591:    charmap.ISO8859_1,
	"iso-8859-2":   charmap.ISO8859_2,
	"iso-8859-5":   charmap.ISO8859_5,
	"iso-8859-6":   charmap.ISO8859_6,
	"iso-8859-7":   charmap.ISO8859_7,
	"iso-8859-8":   charmap.ISO8859_8,
	"iso-8859-9":   charmap.ISO8859_9,
	"koi8-r":       charmap.KOI8R,
	"windows-1251": charmap.Windows1251,
	EncWindows1252: charmap.Windows1252,
	"windows-1256": charmap.Windows1256,
}

// Replacement records one substitution made during decoding: the raw bytes
// at Offset could not be decoded and became U+FFFD in the text. Offsets are
// relative to the original input, byte-order mark included.
type Replacement struct {
	Offset int
	Bytes  []byte
}

// DecodedText is the outcome of decoding one raw input to UTF-8.
type DecodedText struct {
	Text     string
	Detected Detection // the detector's verdict, unmodified

	// Used is the charset actually applied and Method tags how it was
	// chosen: MethodBOM, MethodSniffed, or MethodFallback.
	Used   string
	Method string

	BOMStripped bool

	// FallbackUsed is true when the fallback charset was applied or any
	// replacement was made. FallbackReason distinguishes why the fallback
	// charset was chosen; empty when the detected charset was used.
	FallbackUsed   bool
	FallbackReason string

	// Replacements lists every substitution in byte-offset order.
	Replacements []Replacement
}

// Decode converts raw bytes to UTF-8 text using the detected charset. When
// the detection confidence is below rules.MinDetectConfidence, or the
// detected charset is not in the supported set, rules.FallbackEncoding is
// used instead and the reason is recorded.
//
// Decoding never fails: undecodable sequences become U+FFFD, each recorded
// in Replacements with its byte offset. A leading byte-order mark is
// structural, not content, and is stripped.
func Decode(raw []byte, det Detection, rules Rules) DecodedText {
	used, method, reason := det.Charset, det.Method, ""
	switch {
	case det.Confidence < rules.MinDetectConfidence:
		used, method, reason = rules.FallbackEncoding, MethodFallback, fallbackLowConfidence
	case !supportedCharset(det.Charset):
		used, method, reason = rules.FallbackEncoding, MethodFallback, fallbackUnsupported
	}

	body := raw[det.BOMLen:]
	var text string
	var reps []Replacement
	switch used {
	case EncUTF8:
		text, reps = decodeUTF8(body, det.BOMLen)
	case EncUTF16LE:
		text, reps = decodeUTF16(body, det.BOMLen, true)
	case EncUTF16BE:
		text, reps = decodeUTF16(body, det.BOMLen, false)
	default:
		cm := singleByteTables[used]
		if cm == nil {
			cm = charmap.Windows1252
		}
		text, reps = decodeSingleByte(body, det.BOMLen, cm)
	}

	return DecodedText{
		Text:           text,
		Detected:       det,
		Used:           used,
		Method:         method,
		BOMStripped:    det.BOMLen > 0,
		FallbackUsed:   reason != "" || len(reps) > 0,
		FallbackReason: reason,
		Replacements:   reps,
	}
}

// supportedCharset reports whether the decoder can apply the charset
// directly, without falling back.
func supportedCharset(charset string) bool {
	switch charset {
	case EncUTF8, EncUTF16LE, EncUTF16BE:
		return true
	}
	_, ok := singleByteTables[charset]
	return ok
}

// decodeUTF8 validates b as UTF-8, replacing each invalid byte with U+FFFD.
// base is added to recorded offsets.
func decodeUTF8(b []byte, base int) (string, []Replacement) {
	if utf8.Valid(b) {
		return string(b), nil
	}
	var sb strings.Builder
	sb.Grow(len(b))
	var reps []Replacement
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			reps = append(reps, Replacement{Offset: base + i, Bytes: []byte{b[i]}})
			sb.WriteRune(utf8.RuneError)
			i++
			continue
		}
		sb.Write(b[i : i+size])
		i += size
	}
	return sb.String(), reps
}

// decodeUTF16 decodes b as UTF-16 code units, combining surrogate pairs.
// Unpaired surrogates and an odd trailing byte become U+FFFD.
func decodeUTF16(b []byte, base int, littleEndian bool) (string, []Replacement) {
	var sb strings.Builder
	sb.Grow(len(b) / 2)
	var reps []Replacement
	i := 0
	for ; i+1 < len(b); i += 2 {
		u := utf16Unit(b, i, littleEndian)
		switch {
		case u >= 0xD800 && u <= 0xDBFF:
			if i+3 < len(b) {
				u2 := utf16Unit(b, i+2, littleEndian)
				if u2 >= 0xDC00 && u2 <= 0xDFFF {
					sb.WriteRune(utf16.DecodeRune(rune(u), rune(u2)))
					i += 2
					continue
				}
			}
			reps = append(reps, Replacement{Offset: base + i, Bytes: []byte{b[i], b[i+1]}})
			sb.WriteRune(utf8.RuneError)
		case u >= 0xDC00 && u <= 0xDFFF:
			reps = append(reps, Replacement{Offset: base + i, Bytes: []byte{b[i], b[i+1]}})
			sb.WriteRune(utf8.RuneError)
		default:
			sb.WriteRune(rune(u))
		}
	}
	if i < len(b) {
		reps = append(reps, Replacement{Offset: base + i, Bytes: []byte{b[i]}})
		sb.WriteRune(utf8.RuneError)
	}
	return sb.String(), reps
}

// utf16Unit reads one 16-bit code unit at byte index i.
func utf16Unit(b []byte, i int, littleEndian bool) uint16 {
	if littleEndian {
		return uint16(b[i]) | uint16(b[i+1])<<8
	}
	return uint16(b[i])<<8 | uint16(b[i+1])
}

// decodeSingleByte maps each byte through a charmap table. Bytes the table
// leaves undefined decode to U+FFFD and are recorded as replacements.
func decodeSingleByte(b []byte, base int, cm *charmap.Charmap) (string, []Replacement) {
	var sb strings.Builder
	sb.Grow(len(b))
	var reps []Replacement
	for i := 0; i < len(b); i++ {
		r := cm.DecodeByte(b[i])
		if r == utf8.RuneError {
			reps = append(reps, Replacement{Offset: base + i, Bytes: []byte{b[i]}})
		}
		sb.WriteRune(r)
	}
	return sb.String(), reps
}
