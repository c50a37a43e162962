package normalize

import (
	"context"
	"strings"
)

// RowStatus classifies a row's shape relative to the expected width.
type RowStatus string

const (
	RowOK       RowStatus = "ok"
	RowPadded   RowStatus = "padded"
	RowOverflow RowStatus = "overflow"
)

// Row is one parsed CSV record.
type Row struct {
	// Fields holds the field values in source order.
	Fields []string
	// Line is the 1-based source line on which the row starts. A row with
	// quoted newlines spans several lines; Line is the first of them.
	Line int
	// Status is RowOK as parsed; the rectangularizer may change it.
	Status RowStatus
	// ParsedWidth is the field count as parsed, before any padding.
	ParsedWidth int
}

// UnterminatedQuote reports a quoted field still open at end of input. The
// parser recovers by keeping the remainder of the input inside that field;
// Line is the source line on which the affected row starts.
type UnterminatedQuote struct {
	Line int
}

// ParseRows tokenizes newline-normalized text into rows using delim as the
// field separator, honoring RFC 4180 quoting: a field may be wrapped in
// double quotes; inside quotes, delimiters and newlines are literal and ""
// is an escaped quote. A quote inside an unquoted field is literal, and
// text following a closing quote joins the same field.
//
// The final newline is a row terminator, not the start of an empty row, and
// a blank interior line parses as a single empty field.
//
// Parsing never fails on content; malformed quoting is recovered and
// described by the returned UnterminatedQuote. The only error returned is
// ctx.Err(), checked every rules.ContextCheckInterval rows.
func ParseRows(ctx context.Context, text string, delim rune, rules Rules) ([]Row, *UnterminatedQuote, error) {
	db := byte(delim)
	rows := make([]Row, 0, strings.Count(text, "\n")+1)

	var (
		fields    []string
		field     strings.Builder
		line      = 1 // current source line
		rowLine   = 1 // line where the current row started
		inQuotes  = false
		quoteLine = 0 // rowLine at the time the open quote began
	)

	flushRow := func() {
		fields = append(fields, field.String())
		field.Reset()
		rows = append(rows, Row{
			Fields:      fields,
			Line:        rowLine,
			Status:      RowOK,
			ParsedWidth: len(fields),
		})
		fields = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inQuotes {
			switch c {
			case '"':
				if i+1 < len(text) && text[i+1] == '"' {
					field.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
			case '\n':
				field.WriteByte('\n')
				line++
			default:
				field.WriteByte(c)
			}
			continue
		}

		switch c {
		case '"':
			if field.Len() == 0 {
				inQuotes = true
				quoteLine = rowLine
			} else {
				field.WriteByte('"')
			}
		case db:
			fields = append(fields, field.String())
			field.Reset()
		case '\n':
			flushRow()
			line++
			rowLine = line
			if rules.ContextCheckInterval > 0 && len(rows)%rules.ContextCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return nil, nil, err
				}
			}
		default:
			field.WriteByte(c)
		}
	}

	var unterminated *UnterminatedQuote
	if inQuotes {
		unterminated = &UnterminatedQuote{Line: quoteLine}
	}
	if field.Len() > 0 || len(fields) > 0 {
		flushRow()
	}
	return rows, unterminated, nil
}
