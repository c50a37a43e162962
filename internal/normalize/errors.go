package normalize

import "errors"

// ErrEmptyInput reports input with no CSV content: zero bytes, whitespace
// only, or nothing but a byte-order mark. It is the only data-driven
// condition that aborts a run instead of being recovered and reported;
// callers should match it with errors.Is.
var ErrEmptyInput = errors.New("empty input: no CSV content to normalize")
