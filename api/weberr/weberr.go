// Package weberr decorates errors with the extras the middleware needs to
// serve them: an HTTP response to render and fields to log. Handlers keep
// returning plain errors; the decoration travels on the unwrap chain.
package weberr

// Opt attaches one behavior to an error.
type Opt func(error) error

// Wrap applies every opt to err, in order.
func Wrap(err error, opts ...Opt) error {
	for _, opt := range opts {
		err = opt(err)
	}
	return err
}

// WithResponse sets the body and status code the errors middleware
// renders for this error instead of the generic 500.
func WithResponse(body any, status int) Opt {
	return func(err error) error {
		return &httpError{error: err, body: body, status: status}
	}
}

// WithFields attaches structured fields that the errors middleware adds
// to the log line.
func WithFields(fields map[string]any) Opt {
	return func(err error) error {
		return &loggedError{error: err, fields: fields}
	}
}
