package api

import (
	"fmt"
	"net/url"
)

// Request describes a single call to the wallet backend: method, path
// relative to the API root, optional query parameters and an optional
// JSON-serializable body.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// NewRequest builds a Request with a formatted path.
func NewRequest(method, pathFormat string, args ...any) Request {
	return Request{Method: method, Path: fmt.Sprintf(pathFormat, args...)}
}

// WithQuery returns a copy of the request with the query parameter set.
func (r Request) WithQuery(key, value string) Request {
	q := url.Values{}
	for k, vs := range r.Query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set(key, value)
	r.Query = q
	return r
}

// WithBody returns a copy of the request with the JSON body set.
func (r Request) WithBody(body any) Request {
	r.Body = body
	return r
}
