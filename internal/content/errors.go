package content

import "errors"

var (
	// ErrInvalidSourceRedirect reports a config `source` that does not resolve to a directory.
	ErrInvalidSourceRedirect = errors.New("invalid source redirect")

	// ErrNotDirectory reports a content root that is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrRedirectCycle reports a discovery path already being listed by an ancestor.
	ErrRedirectCycle = errors.New("source redirect cycle")

	ErrAliasAlreadySet = errors.New("alias already set")
	ErrInvalidAlias    = errors.New("invalid alias target")
)
