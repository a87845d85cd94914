package weberr

import "errors"

type responder interface {
	Response() (body any, status int)
}

// Response digs through err's unwrap chain for an attached HTTP response.
func Response(err error) (body any, status int, ok bool) {
	var re responder
	if errors.As(err, &re) {
		body, status = re.Response()
		return body, status, true
	}
	return nil, 0, false
}

type httpError struct {
	error
	body   any
	status int
}

func (e *httpError) Response() (any, int) { return e.body, e.status }

func (e *httpError) Unwrap() error { return e.error }
