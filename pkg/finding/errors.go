package finding

import "errors"

// Issue.Validate returns these, wrapped with the issue key where one exists.
var (
	ErrMissingKey       = errors.New("finding: record has no key")
	ErrMissingComponent = errors.New("finding: record has no component")
)
