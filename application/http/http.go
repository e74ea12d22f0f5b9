package http

import (
	"bytes"
	"strconv"
	"strings"

	"httpstack/application/util/rule"

	"github.com/pkg/errors"
)

// Version is [Major, Minor].
type Version [2]uint

// ParseVersion parses http version text (e.g. "HTTP/1.1") into [Version].
func ParseVersion(b []byte) (Version, error) {
	prefix := []byte("HTTP/")
	if !bytes.HasPrefix(b, prefix) {
		return Version{}, errors.Errorf("http version prefix not found: %s", b)
	}

	first, second, found := bytes.Cut(b[len(prefix):], []byte{'.'})
	if !found {
		return Version{}, errors.Errorf("dot separator not found on version: %s", b)
	}

	major, err1 := strconv.ParseUint(string(first), 10, 64)
	minor, err2 := strconv.ParseUint(string(second), 10, 64)
	if err1 != nil || err2 != nil {
		return Version{}, errors.Errorf("http version is not convertible to int: %s", b)
	}

	return Version{uint(major), uint(minor)}, nil
}

func (ver Version) Text() []byte {
	buf := bytes.NewBuffer(nil)
	buf.WriteString("HTTP/")
	buf.WriteString(strconv.FormatUint(uint64(ver[0]), 10))
	buf.WriteByte('.')
	buf.WriteString(strconv.FormatUint(uint64(ver[1]), 10))
	return buf.Bytes()
}

func (ver Version) String() string { return string(ver.Text()) }

// Field is one header line, as received.
type Field struct{ Name, Value string }

// ParseField splits a field line at the first colon, trimming optional
// whitespace around name and value. Lines without a colon yield ok ==
// false and are skipped by the caller.
func ParseField(fieldLine []byte) (f Field, ok bool) {
	name, value, found := bytes.Cut(fieldLine, []byte{':'})
	if !found {
		return Field{}, false
	}

	ows := string(rule.OWS)
	f.Name = strings.Trim(string(name), ows)
	f.Value = strings.Trim(string(value), ows)
	return f, true
}

type RequestLine struct {
	Method  string
	Target  string
	Version Version
}

// Request is a raw, wire-level request: the request line, header fields in
// arrival order, and the body bytes.
type Request struct {
	RequestLine
	Headers []Field
	Body    []byte
}

// KeepAlive decides whether the connection survives this exchange.
// HTTP/1.1 defaults to keep-alive unless "Connection: close"; anything
// else defaults to close unless "Connection: keep-alive".
func (r *Request) KeepAlive() bool {
	v := strings.ToLower(LastFieldValue(r.Headers, "Connection"))
	if r.Version == (Version{1, 1}) {
		return v != "close"
	}
	return v == "keep-alive"
}

// Response is a raw, wire-level response. The status line's reason phrase
// is derived from the code during encoding.
type Response struct {
	StatusCode uint
	Headers    []Field
	Body       []byte
}

// LastFieldValue returns the value of the last field named name
// (case-insensitive), or "" if absent. Later duplicates win, mirroring
// map-overwrite header semantics.
func LastFieldValue(fields []Field, name string) string {
	v := ""
	for _, f := range fields {
		if strings.EqualFold(f.Name, name) {
			v = f.Value
		}
	}
	return v
}

var ErrMalformedRequestLine = errors.New("request line is malformed")

// ParseRequestHead parses a header block (through its terminating blank
// line) into the request line and header fields. A malformed request line
// is fatal for the connection.
func ParseRequestHead(head []byte) (RequestLine, []Field, error) {
	head = bytes.TrimSuffix(head, []byte("\r\n\r\n"))
	lines := bytes.Split(head, rule.CRLF)
	if len(lines) == 0 {
		return RequestLine{}, nil, ErrMalformedRequestLine
	}

	reqLine, err := parseRequestLine(lines[0])
	if err != nil {
		return RequestLine{}, nil, errors.Wrap(ErrMalformedRequestLine, err.Error())
	}

	fields := make([]Field, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if len(line) == 0 {
			continue
		}
		if f, ok := ParseField(line); ok {
			fields = append(fields, f)
		}
	}

	return reqLine, fields, nil
}

func parseRequestLine(line []byte) (RequestLine, error) {
	parts := bytes.Split(line, []byte{rule.SP})
	if len(parts) != 3 {
		return RequestLine{}, errors.New("expected 3 space-separated parts")
	}

	method := string(parts[0])
	if !rule.IsValidToken(method) {
		return RequestLine{}, errors.New("method is not a valid token")
	}

	target := string(parts[1])
	if len(target) == 0 {
		return RequestLine{}, errors.New("request target should not be empty")
	}

	ver, err := ParseVersion(parts[2])
	if err != nil {
		return RequestLine{}, errors.Wrap(err, "parsing version")
	}

	return RequestLine{Method: method, Target: target, Version: ver}, nil
}
