package normalize

import "strings"

// DelimiterDecision records the delimiter detector's outcome, including the
// evidence that led to it.
type DelimiterDecision struct {
	Delimiter rune
	// Method is MethodSniffed or MethodDefaulted.
	Method string
	// Candidates maps each candidate's report name to its consistent
	// per-line count, 0 when the candidate was not consistent.
	Candidates map[string]int
	// LinesSampled is how many non-empty lines were examined.
	LinesSampled int
}

// DetectDelimiter chooses the field separator for newline-normalized text.
//
// It samples the first rules.SniffSampleLines non-empty lines and counts
// each candidate's occurrences per line, ignoring occurrences inside
// double-quoted spans. A candidate is consistent when the same non-zero
// count repeats on more than half of the sampled lines; that count is its
// score. The highest score wins and is tagged MethodSniffed. Ties resolve
// by candidate order in rules.DelimiterCandidates. With no consistent
// candidate the decision is comma, tagged MethodDefaulted.
func DetectDelimiter(text string, rules Rules) DelimiterDecision {
	lines := sampleLines(text, rules.SniffSampleLines)

	decision := DelimiterDecision{
		Delimiter:    TargetDelimiter,
		Method:       MethodDefaulted,
		Candidates:   make(map[string]int, len(rules.DelimiterCandidates)),
		LinesSampled: len(lines),
	}

	bestScore := 0
	for _, cand := range rules.DelimiterCandidates {
		score := consistentCount(lines, cand)
		decision.Candidates[candidateName(cand)] = score
		if score > bestScore {
			decision.Delimiter = cand
			decision.Method = MethodSniffed
			bestScore = score
		}
	}
	return decision
}

// sampleLines returns up to max leading non-empty lines without splitting
// the whole text.
func sampleLines(text string, max int) []string {
	var lines []string
	rest := text
	for len(rest) > 0 && len(lines) < max {
		var line string
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			line, rest = rest[:i], rest[i+1:]
		} else {
			line, rest = rest, ""
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// consistentCount returns the per-line count of d that repeats on more than
// half of the lines, or 0 when no non-zero count does. At most one count
// value can hold a majority, so the result is order-independent.
func consistentCount(lines []string, d rune) int {
	if len(lines) == 0 {
		return 0
	}
	freq := make(map[int]int)
	for _, line := range lines {
		freq[countOutsideQuotes(line, d)]++
	}
	for count, support := range freq {
		if count > 0 && support*2 > len(lines) {
			return count
		}
	}
	return 0
}

// countOutsideQuotes counts occurrences of d outside double-quoted spans.
// Quote state simply toggles on each quote, which counts correctly for both
// well-formed fields and escaped "" pairs.
func countOutsideQuotes(line string, d rune) int {
	count := 0
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == d && !inQuotes:
			count++
		}
	}
	return count
}

// candidateName returns the report label for a delimiter candidate.
func candidateName(d rune) string {
	switch d {
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '\t':
		return "tab"
	case '|':
		return "pipe"
	}
	return string(d)
}
