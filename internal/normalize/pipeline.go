package normalize

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
)

// NormalizedCSV is the wire form of a normalized artifact.
type NormalizedCSV struct {
	SHA256     string `json:"sha256"`
	Encoding   string `json:"encoding"`
	ContentB64 string `json:"content_b64"`
}

// Result pairs the normalized artifact with its report. It marshals
// directly to the service's response body.
type Result struct {
	NormalizedCSV NormalizedCSV `json:"normalized_csv"`
	Report        Report        `json:"report"`
}

// Pipeline runs the normalization stages with a fixed decision table. One
// Pipeline is safe for concurrent use: it holds only the rules, and every
// run builds its own intermediate state.
type Pipeline struct {
	rules Rules
}

// New returns a pipeline using DefaultRules.
func New() *Pipeline {
	return &Pipeline{rules: DefaultRules()}
}

// NewWithRules returns a pipeline with a custom decision table, for tests
// that tighten or relax individual rules.
func NewWithRules(rules Rules) *Pipeline {
	return &Pipeline{rules: rules}
}

// Normalize runs the full pipeline over raw input and returns the canonical
// artifact together with the report of everything detected and corrected.
//
// Identical input always yields identical artifact bytes, digest, and
// report. Data-quality problems never fail a run; the only errors are
// ErrEmptyInput and context cancellation.
func (p *Pipeline) Normalize(ctx context.Context, raw []byte) (NormalizedArtifact, Report, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return NormalizedArtifact{}, Report{}, ErrEmptyInput
	}

	det := DetectEncoding(raw, p.rules)
	dec := Decode(raw, det, p.rules)
	// A file that is only a byte-order mark, or whitespace in a multi-byte
	// encoding, has no content either.
	if strings.TrimSpace(dec.Text) == "" {
		return NormalizedArtifact{}, Report{}, ErrEmptyInput
	}

	text, nlStats := NormalizeNewlines(dec.Text)
	delim := DetectDelimiter(text, p.rules)

	rows, quote, err := ParseRows(ctx, text, delim.Delimiter, p.rules)
	if err != nil {
		return NormalizedArtifact{}, Report{}, err
	}
	table, err := Rectangularize(ctx, rows, p.rules)
	if err != nil {
		return NormalizedArtifact{}, Report{}, err
	}

	artifact := Serialize(table)
	report := BuildReport(dec, nlStats, delim, table, quote)
	return artifact, report, nil
}

// NewResult wraps an artifact and its report into the wire-level Result,
// with the artifact bytes base64-encoded.
func NewResult(artifact NormalizedArtifact, report Report) *Result {
	return &Result{
		NormalizedCSV: NormalizedCSV{
			SHA256:     artifact.SHA256,
			Encoding:   artifact.Encoding,
			ContentB64: base64.StdEncoding.EncodeToString(artifact.Bytes),
		},
		Report: report,
	}
}

// Run is Normalize wrapped into the wire-level Result.
func (p *Pipeline) Run(ctx context.Context, raw []byte) (*Result, error) {
	artifact, report, err := p.Normalize(ctx, raw)
	if err != nil {
		return nil, err
	}
	return NewResult(artifact, report), nil
}
