package normalize

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// Issue kinds recorded in report entries.
const (
	IssueShortRow           = "short_row"
	IssueLongRow            = "long_row"
	IssueUnterminatedQuote  = "unterminated_quote"
	IssueLowConfidence      = "low_confidence_encoding"
	IssueUnsupportedCharset = "unsupported_encoding"
	IssueInvalidBytes       = "invalid_byte_sequence"
)

// Actions recorded in report entries, one per issue kind.
const (
	ActionPadded           = "padded"
	ActionKept             = "kept"
	ActionMergedRemainder  = "merged_remainder"
	ActionFallbackDecoding = "fallback_decoding"
	ActionReplaced         = "replaced"
)

// ReportItem is one warning or error entry. Row, Column, and Value are
// pointers so absent context serializes as null, keeping the wire shape
// stable across entry kinds. Offset appears only on decode replacements.
type ReportItem struct {
	Row    *int    `json:"row"`
	Column *string `json:"column"`
	Issue  string  `json:"issue"`
	Value  *string `json:"value"`
	Action string  `json:"action"`
	Offset *int    `json:"offset,omitempty"`
}

// Summary is the report's headline numbers. Rows counts every row of the
// final table, header included; Columns is the expected width.
type Summary struct {
	Rows          int  `json:"rows"`
	Columns       int  `json:"columns"`
	Warnings      int  `json:"warnings"`
	Errors        int  `json:"errors"`
	Deterministic bool `json:"deterministic"`
}

// EncodingRecord describes the encoding stage's decisions.
type EncodingRecord struct {
	Detected     string `json:"detected"`
	Confidence   int    `json:"confidence"`
	Method       string `json:"method"`
	Used         string `json:"used"`
	BOMStripped  bool   `json:"bom_stripped"`
	FallbackUsed bool   `json:"fallback_used"`
	Replacements int    `json:"replacements"`
}

// NewlineRecord reports the line-ending forms found and the canonical form.
type NewlineRecord struct {
	CRLF         int    `json:"crlf"`
	CR           int    `json:"cr"`
	LF           int    `json:"lf"`
	NormalizedTo string `json:"normalized_to"`
}

// DelimiterRecord reports the delimiter decision and its evidence.
type DelimiterRecord struct {
	Detected     string         `json:"detected"`
	Method       string         `json:"method"`
	Candidates   map[string]int `json:"candidates"`
	LinesSampled int            `json:"lines_sampled"`
}

// RowWidthRecord reports the rectangularization outcome.
type RowWidthRecord struct {
	ExpectedWidth int `json:"expected_width"`
	PaddedRows    int `json:"padded_rows"`
	OverflowRows  int `json:"overflow_rows"`
}

// Normalizations holds one record per stage. A struct rather than a map so
// the JSON field order is fixed: encoding, newlines, delimiter, row_width.
type Normalizations struct {
	Encoding  EncodingRecord  `json:"encoding"`
	Newlines  NewlineRecord   `json:"newlines"`
	Delimiter DelimiterRecord `json:"delimiter"`
	RowWidth  RowWidthRecord  `json:"row_width"`
}

// Report is the complete account of one pipeline run: what was detected,
// what was changed, and every condition worth a consumer's attention.
type Report struct {
	Summary        Summary        `json:"summary"`
	Normalizations Normalizations `json:"normalizations"`
	Warnings       []ReportItem   `json:"warnings"`
	Errors         []ReportItem   `json:"errors"`
}

// BuildReport aggregates the facts produced by every stage of one run. It
// makes no decisions of its own: entries appear in stage order (decoding,
// then parsing, then rectangularization), and within a stage in byte-offset
// or row order. Warnings and Errors are always non-nil so they serialize as
// [] rather than null.
func BuildReport(dec DecodedText, nl NewlineStats, dl DelimiterDecision, table Table, quote *UnterminatedQuote) Report {
	warns := []ReportItem{}
	errs := []ReportItem{}

	if dec.FallbackReason != "" {
		issue := IssueLowConfidence
		if dec.FallbackReason == fallbackUnsupported {
			issue = IssueUnsupportedCharset
		}
		warns = append(warns, ReportItem{
			Issue:  issue,
			Value:  strPtr(dec.Detected.Charset),
			Action: ActionFallbackDecoding,
		})
	}
	for _, rep := range dec.Replacements {
		warns = append(warns, ReportItem{
			Issue:  IssueInvalidBytes,
			Value:  strPtr(hexBytes(rep.Bytes)),
			Action: ActionReplaced,
			Offset: intPtr(rep.Offset),
		})
	}

	if quote != nil {
		errs = append(errs, ReportItem{
			Row:    intPtr(quote.Line),
			Issue:  IssueUnterminatedQuote,
			Action: ActionMergedRemainder,
		})
	}

	padded, overflow := 0, 0
	for i := range table.Rows {
		row := &table.Rows[i]
		switch row.Status {
		case RowPadded:
			padded++
			warns = append(warns, ReportItem{
				Row:    intPtr(row.Line),
				Issue:  IssueShortRow,
				Value:  strPtr(strconv.Itoa(row.ParsedWidth)),
				Action: ActionPadded,
			})
		case RowOverflow:
			overflow++
			errs = append(errs, ReportItem{
				Row:    intPtr(row.Line),
				Issue:  IssueLongRow,
				Value:  strPtr(strconv.Itoa(row.ParsedWidth)),
				Action: ActionKept,
			})
		}
	}

	return Report{
		Summary: Summary{
			Rows:          len(table.Rows),
			Columns:       table.ExpectedWidth,
			Warnings:      len(warns),
			Errors:        len(errs),
			Deterministic: true,
		},
		Normalizations: Normalizations{
			Encoding: EncodingRecord{
				Detected:     dec.Detected.Charset,
				Confidence:   dec.Detected.Confidence,
				Method:       dec.Method,
				Used:         dec.Used,
				BOMStripped:  dec.BOMStripped,
				FallbackUsed: dec.FallbackUsed,
				Replacements: len(dec.Replacements),
			},
			Newlines: NewlineRecord{
				CRLF:         nl.CRLF,
				CR:           nl.CR,
				LF:           nl.LF,
				NormalizedTo: "lf",
			},
			Delimiter: DelimiterRecord{
				Detected:     string(dl.Delimiter),
				Method:       dl.Method,
				Candidates:   dl.Candidates,
				LinesSampled: dl.LinesSampled,
			},
			RowWidth: RowWidthRecord{
				ExpectedWidth: table.ExpectedWidth,
				PaddedRows:    padded,
				OverflowRows:  overflow,
			},
		},
		Warnings: warns,
		Errors:   errs,
	}
}

// hexBytes renders raw bytes as 0x-prefixed upper-case hex for report values.
func hexBytes(b []byte) string {
	return "0x" + strings.ToUpper(hex.EncodeToString(b))
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }
