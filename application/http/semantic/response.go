package semantic

import (
	"encoding/json"

	"httpstack/application/http"
	"httpstack/application/http/semantic/status"

	"github.com/pkg/errors"
)

// Response is what handlers produce. The textual body is encoded into
// wire bytes once and cached.
type Response struct {
	Status  uint
	Headers *Headers

	Body string

	// bodyBytes caches the encoded Body; binary bodies set it directly.
	bodyBytes []byte
}

func NewResponse(body string, code uint) *Response {
	return &Response{Status: code, Headers: NewHeaders(), Body: body}
}

// Text creates a plain text response.
func Text(body string, code uint) *Response {
	res := NewResponse(body, code)
	res.Headers.Set("Content-Type", "text/plain")
	return res
}

// JSON creates a response with data serialized as compact JSON.
func JSON(data any, code uint) (*Response, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling response body")
	}

	res := NewResponse(string(body), code)
	res.Headers.Set("Content-Type", "application/json")
	return res, nil
}

// HTML creates an HTML response.
func HTML(body string, code uint) *Response {
	res := NewResponse(body, code)
	res.Headers.Set("Content-Type", "text/html")
	return res
}

// Redirect creates a redirect to location. A zero code means 302.
func Redirect(location string, code uint) *Response {
	if code == 0 {
		code = 302
	}
	res := NewResponse("", code)
	res.Headers.Set("Location", location)
	return res
}

// NotFound is the stock route-miss response.
func NotFound() *Response {
	return NewResponse("Not Found", status.NotFound.Code)
}

// InternalServerError carries the failure message in the body.
func InternalServerError(msg string) *Response {
	return NewResponse("Internal Server Error: "+msg, status.InternalServerError.Code)
}

// SetBinaryBody replaces the body with raw bytes, bypassing text encoding.
func (r *Response) SetBinaryBody(b []byte) {
	r.Body = ""
	r.bodyBytes = b
}

// BodyBytes encodes the body once and caches it.
func (r *Response) BodyBytes() []byte {
	if r.bodyBytes == nil && r.Body != "" {
		r.bodyBytes = []byte(r.Body)
	}
	return r.bodyBytes
}

// DiscardBody drops the body, as required for HEAD responses.
func (r *Response) DiscardBody() {
	r.Body = ""
	r.bodyBytes = nil
}

// Raw lowers the response for the wire encoder.
func (r *Response) Raw() http.Response {
	return http.Response{
		StatusCode: r.Status,
		Headers:    r.Headers.Fields(),
		Body:       r.BodyBytes(),
	}
}
