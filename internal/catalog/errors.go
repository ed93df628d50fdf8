package catalog

import "fmt"

// ParseError reports a malformed catalog payload or manifest. Nothing was
// written when it is returned.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("parse catalog: %v", e.Err)
	}
	return fmt.Sprintf("parse catalog %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
