package normalize

import "context"

// Table is the rectangularized row sequence. ExpectedWidth is fixed by the
// first row and never recomputed.
type Table struct {
	Rows          []Row
	ExpectedWidth int
}

// Rectangularize enforces the header-derived width over parsed rows. The
// first row fixes the expected width. Short rows gain empty trailing fields
// and status RowPadded; long rows keep every field and get status
// RowOverflow. Rows are never truncated, dropped, or reordered.
//
// Ownership of rows transfers to the returned Table; the slice is adjusted
// in place. Cancellation is checked every rules.ContextCheckInterval rows.
func Rectangularize(ctx context.Context, rows []Row, rules Rules) (Table, error) {
	if len(rows) == 0 {
		return Table{Rows: []Row{}}, nil
	}

	width := len(rows[0].Fields)
	for i := 1; i < len(rows); i++ {
		switch {
		case len(rows[i].Fields) < width:
			for len(rows[i].Fields) < width {
				rows[i].Fields = append(rows[i].Fields, "")
			}
			rows[i].Status = RowPadded
		case len(rows[i].Fields) > width:
			rows[i].Status = RowOverflow
		}

		if rules.ContextCheckInterval > 0 && i%rules.ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Table{}, err
			}
		}
	}
	return Table{Rows: rows, ExpectedWidth: width}, nil
}
