package normalize

import "strings"

// NewlineStats counts the line-ending forms observed in decoded text before
// canonicalization. A CRLF pair counts once, as CRLF; LF counts lone line
// feeds only.
type NewlineStats struct {
	CRLF int
	CR   int
	LF   int
}

// NormalizeNewlines rewrites every CRLF and lone CR in text to LF, counting
// each original form. The rewrite is a single pass and applies everywhere,
// including inside quoted regions; quoting is a later stage's concern.
func NormalizeNewlines(text string) (string, NewlineStats) {
	var stats NewlineStats
	if !strings.ContainsRune(text, '\r') {
		stats.LF = strings.Count(text, "\n")
		return text, stats
	}

	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				stats.CRLF++
				i++
			} else {
				stats.CR++
			}
			sb.WriteByte('\n')
		case '\n':
			stats.LF++
			sb.WriteByte('\n')
		default:
			sb.WriteByte(text[i])
		}
	}
	return sb.String(), stats
}
