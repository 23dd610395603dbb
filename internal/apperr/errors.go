// Package apperr defines the sentinel errors shared across the wiki core.
package apperr

import "errors"

// ErrNotFound marks lookups whose title resolves to nothing. Callers match
// it with errors.Is regardless of the wrapping layer.
var ErrNotFound = errors.New("not found")
