package normalize

// Fixed properties of the normalized artifact. These are part of the output
// contract and are not tunable.
const (
	// TargetEncoding is the encoding label of every normalized artifact:
	// UTF-8 with a leading byte-order mark.
	TargetEncoding = "utf-8-sig"

	// TargetDelimiter is the field separator of every normalized artifact.
	TargetDelimiter = ','

	// HashAlgorithm names the digest computed over the final output bytes.
	HashAlgorithm = "sha256"
)

// Default decision-rule values. Exported so callers and tests can refer to
// them; [DefaultRules] bundles them into a Rules value.
const (
	// DefaultSniffSampleLines is how many leading non-empty lines the
	// delimiter detector examines.
	DefaultSniffSampleLines = 20

	// DefaultMinDetectConfidence is the detector confidence (0-100) below
	// which the decoder falls back to [DefaultFallbackEncoding].
	DefaultMinDetectConfidence = 30

	// DefaultFallbackEncoding is the safe decoding applied when detection
	// is unconfident or proposes an unsupported charset. Windows-1252
	// decodes every byte except five undefined code points, so arbitrary
	// bytes survive with at most isolated replacements.
	DefaultFallbackEncoding = "windows-1252"

	// DefaultContextCheckInterval is how many rows row-proportional loops
	// process between context cancellation checks.
	DefaultContextCheckInterval = 100
)

// Rules is the complete decision table for one pipeline run: candidate sets,
// sample sizes, thresholds, and fallbacks. It is passed explicitly through
// the stages rather than held as package state, so tests can tighten or
// loosen individual rules without touching anything shared.
type Rules struct {
	// DelimiterCandidates lists the delimiters the detector considers, in
	// tie-break priority order (earlier wins a tie).
	DelimiterCandidates []rune

	// SniffSampleLines bounds how many leading non-empty lines the
	// delimiter detector samples.
	SniffSampleLines int

	// MinDetectConfidence is the encoding-detection confidence below which
	// decoding uses FallbackEncoding instead of the detected charset.
	MinDetectConfidence int

	// FallbackEncoding is the charset used when detection is unconfident
	// or unsupported. Must be a member of the supported decoding set.
	FallbackEncoding string

	// ContextCheckInterval is the row stride between ctx.Err() checks in
	// parsing and rectangularization.
	ContextCheckInterval int
}

// DefaultRules returns the production decision table. The returned value is
// a fresh copy; mutating it affects nothing else.
func DefaultRules() Rules {
	return Rules{
		DelimiterCandidates:  []rune{',', ';', '\t', '|'},
		SniffSampleLines:     DefaultSniffSampleLines,
		MinDetectConfidence:  DefaultMinDetectConfidence,
		FallbackEncoding:     DefaultFallbackEncoding,
		ContextCheckInterval: DefaultContextCheckInterval,
	}
}
