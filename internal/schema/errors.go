package schema

import "errors"

// ErrMalformedInput marks invalid caller input: empty dependency sides,
// attributes outside the declared universe, empty or oversized universes,
// non-positive sampling parameters. Matched with errors.Is.
var ErrMalformedInput = errors.New("malformed input")
