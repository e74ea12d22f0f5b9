package semantic

import (
	"encoding/json"
	"strings"

	"httpstack/application/http"
	"httpstack/application/util/uri"
)

// Request is the request as handlers see it: split path and query, header
// map, captured path parameters and the body bytes.
type Request struct {
	Method  string
	Path    string
	Version http.Version

	Headers *Headers
	Body    []byte

	PathParams  map[string]string
	QueryParams map[string][]string

	jsonValue  any
	jsonParsed bool
}

// RequestFrom lifts a raw wire request. The target is split at the first
// '?'; query values are percent-decoded.
func RequestFrom(raw *http.Request) *Request {
	req := &Request{
		Method:      raw.Method,
		Path:        raw.Target,
		Version:     raw.Version,
		Headers:     HeadersFrom(raw.Headers),
		Body:        raw.Body,
		PathParams:  map[string]string{},
		QueryParams: map[string][]string{},
	}

	if path, query, found := strings.Cut(raw.Target, "?"); found {
		req.Path = path
		req.QueryParams = uri.ParseQuery(query)
	}

	return req
}

// Text decodes the body as UTF-8, replacing invalid sequences.
func (r *Request) Text() string {
	return strings.ToValidUTF8(string(r.Body), "�")
}

// JSON parses the body as JSON, caching the result. ok is false when the
// body is not valid JSON; repeated calls do not re-parse.
func (r *Request) JSON() (value any, ok bool) {
	if r.jsonParsed {
		return r.jsonValue, r.jsonValue != nil
	}

	r.jsonParsed = true
	if err := json.Unmarshal(r.Body, &r.jsonValue); err != nil {
		r.jsonValue = nil
		return nil, false
	}
	return r.jsonValue, true
}

// PathParam returns the captured path segment, or "" if absent.
func (r *Request) PathParam(name string) string { return r.PathParams[name] }

// QueryParam returns the first value for name, flattening single-valued
// keys to a scalar.
func (r *Request) QueryParam(name string) (string, bool) {
	vs, ok := r.QueryParams[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// QueryValues returns every value for name.
func (r *Request) QueryValues(name string) []string { return r.QueryParams[name] }
