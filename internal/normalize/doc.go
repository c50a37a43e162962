// Package normalize implements the deterministic CSV normalization pipeline.
//
// This package is the heart of the service, containing all domain logic
// independent of any transport layer. It can be used by web handlers, CLI
// tools, or tests without modification.
//
// # Pipeline
//
// A run is a strictly linear sequence of stages; each stage consumes the
// complete output of its predecessor:
//
//  1. Encoding detection: BOM sniff, then statistical analysis of the raw
//     bytes ([DetectEncoding]).
//  2. Decoding to UTF-8 with a deterministic fallback and per-replacement
//     reporting ([Decode]).
//  3. Newline canonicalization: CRLF and lone CR become LF, with per-form
//     counts ([NormalizeNewlines]).
//  4. Delimiter detection over a fixed candidate set ([DetectDelimiter]).
//  5. Quote-aware row parsing with source line attribution ([ParseRows]).
//  6. Rectangularization against the header-derived width ([Rectangularize]).
//  7. Serialization as UTF-8 (with BOM), LF-terminated, comma-delimited,
//     minimally quoted CSV plus a SHA-256 content hash ([Serialize]).
//
// [Pipeline.Run] wires the stages together and [BuildReport] aggregates
// every detection and correction into a [Report].
//
// # Determinism
//
// Identical input bytes always produce bit-identical output bytes, hash, and
// report. Every ambiguous signal (encoding, delimiter, row shape) is resolved
// by a fixed rule from [Rules]; nothing is randomized, and no map iteration
// order leaks into output. Data-quality problems never abort a run: short
// rows are padded, long rows are kept, malformed quoting is recovered, and
// each of these surfaces as a report entry. The only fatal conditions are
// empty input ([ErrEmptyInput]) and context cancellation.
//
// # Ownership
//
// All intermediate values are created fresh per run and owned by a single
// pipeline instance. The package holds no global state, so any number of
// runs may proceed concurrently.
package normalize
