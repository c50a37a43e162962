package normalize

import (
	"bytes"
	"strings"

	"github.com/gogs/chardet"
)

// Charset labels referenced throughout the pipeline. Labels are always
// lower case; see singleByteTables for the rest of the supported set.
const (
	EncUTF8        = "utf-8"
	EncUTF16LE     = "utf-16le"
	EncUTF16BE     = "utf-16be"
	EncISO88591    = "iso-8859-1"
	EncWindows1252 = "windows-1252"
	EncUnknown     = "unknown"
)

// Methods recorded in the encoding and delimiter report entries.
const (
	MethodBOM     = "bom"
	MethodSniffed = "sniffed"
	// MethodFallback tags a decode that used the fallback charset instead
	// of the detected one.
	MethodFallback = "fallback"
	// MethodDefaulted tags a delimiter decision where no candidate was
	// consistent and comma was assumed.
	MethodDefaulted = "defaulted"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Detection is the encoding detector's verdict on one raw input.
type Detection struct {
	// Charset is the best-guess label, lower case. It may name a charset
	// the decoder does not support; the decoder then falls back.
	Charset string
	// Confidence is 0-100. A byte-order mark is definitive.
	Confidence int
	// Method is MethodBOM or MethodSniffed.
	Method string
	// BOMLen is the byte length of a leading byte-order mark, 0 if none.
	BOMLen int
}

// charsetAliases folds detector spelling variants onto the labels the
// decoder knows. Detector output not covered here passes through lower-cased.
var charsetAliases = map[string]string{
	"latin1":       EncISO88591,
	"latin-1":      EncISO88591,
	"cp1252":       EncWindows1252,
	"iso-8859-8-i": "iso-8859-8",
}

// DetectEncoding proposes a source charset for raw bytes. A recognized
// byte-order mark is definitive. Pure ASCII is valid UTF-8 by construction
// and short-circuits the statistical detector, which is unreliable on small
// inputs. Everything else goes through chardet's byte-pattern analysis.
//
// Detection never fails: when the detector has no answer the result is
// EncUnknown with confidence 0, which the decoder treats as a fallback.
func DetectEncoding(raw []byte, rules Rules) Detection {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return Detection{Charset: EncUTF8, Confidence: 100, Method: MethodBOM, BOMLen: len(bomUTF8)}
	case bytes.HasPrefix(raw, bomUTF16BE):
		return Detection{Charset: EncUTF16BE, Confidence: 100, Method: MethodBOM, BOMLen: len(bomUTF16BE)}
	case bytes.HasPrefix(raw, bomUTF16LE):
		return Detection{Charset: EncUTF16LE, Confidence: 100, Method: MethodBOM, BOMLen: len(bomUTF16LE)}
	}

	if isASCII(raw) {
		return Detection{Charset: EncUTF8, Confidence: 100, Method: MethodSniffed}
	}

	best, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil || best == nil {
		return Detection{Charset: EncUnknown, Confidence: 0, Method: MethodSniffed}
	}
	return Detection{
		Charset:    normalizeCharset(best.Charset),
		Confidence: best.Confidence,
		Method:     MethodSniffed,
	}
}

// normalizeCharset lower-cases a detector label and folds known aliases.
func normalizeCharset(charset string) string {
	lower := strings.ToLower(strings.TrimSpace(charset))
	if lower == "" {
		return EncUnknown
	}
	if alias, ok := charsetAliases[lower]; ok {
		return alias
	}
	return lower
}

// isASCII reports whether every byte is below 0x80.
func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}
