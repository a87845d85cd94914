package weberr

import "errors"

type fielder interface {
	Fields() map[string]any
}

// Fields digs through err's unwrap chain for attached log fields.
func Fields(err error) (map[string]any, bool) {
	var fe fielder
	if errors.As(err, &fe) {
		return fe.Fields(), true
	}
	return nil, false
}

type loggedError struct {
	error
	fields map[string]any
}

func (e *loggedError) Fields() map[string]any { return e.fields }

func (e *loggedError) Unwrap() error { return e.error }
