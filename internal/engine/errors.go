package engine

import "errors"

// Errors returned by engine operations. Parse, bounds and stale reference
// errors come from the markdown package and are matched with errors.Is
// against markdown.ErrParseFailure, markdown.ErrOutOfBounds and
// markdown.ErrStaleReference.
var (
	// ErrUnknownSnippet indicates InsertSnippet was given a name not in the catalogue.
	ErrUnknownSnippet = errors.New("unknown snippet")
)
