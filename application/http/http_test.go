package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected Version
		wantErr  bool
	}{
		{
			desc:     "1.1",
			input:    "HTTP/1.1",
			expected: Version{1, 1},
		},
		{
			desc:     "2.0",
			input:    "HTTP/2.0",
			expected: Version{2, 0},
		},
		{
			desc:    "missing prefix",
			input:   "1.1",
			wantErr: true,
		},
		{
			desc:    "missing dot",
			input:   "HTTP/11",
			wantErr: true,
		},
		{
			desc:    "non-numeric",
			input:   "HTTP/a.b",
			wantErr: true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			v, err := ParseVersion([]byte(tc.input))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, v)
			assert.Equal(t, tc.input, v.String())
		})
	}
}

func TestParseField(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected Field
		ok       bool
	}{
		{
			desc:     "simple",
			input:    "Host: example.com",
			expected: Field{"Host", "example.com"},
			ok:       true,
		},
		{
			desc:     "no space after colon",
			input:    "Host:example.com",
			expected: Field{"Host", "example.com"},
			ok:       true,
		},
		{
			desc:     "value containing colon",
			input:    "Referer: http://a/b",
			expected: Field{"Referer", "http://a/b"},
			ok:       true,
		},
		{
			desc:  "no colon",
			input: "garbage line",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			f, ok := ParseField([]byte(tc.input))
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, f)
		})
	}
}

func TestParseRequestHead(t *testing.T) {
	head := []byte("GET /users/42?x=1 HTTP/1.1\r\nHost: localhost\r\nAccept: */*\r\n\r\n")

	reqLine, fields, err := ParseRequestHead(head)
	require.NoError(t, err)

	assert.Equal(t, "GET", reqLine.Method)
	assert.Equal(t, "/users/42?x=1", reqLine.Target)
	assert.Equal(t, Version{1, 1}, reqLine.Version)
	assert.Equal(t, []Field{
		{"Host", "localhost"},
		{"Accept", "*/*"},
	}, fields)
}

func TestParseRequestHeadMalformed(t *testing.T) {
	testcases := []struct {
		desc  string
		input string
	}{
		{desc: "two parts", input: "GET /\r\n\r\n"},
		{desc: "bad method", input: "GE T / HTTP/1.1\r\n\r\n"},
		{desc: "bad version", input: "GET / FTP/1.1\r\n\r\n"},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			_, _, err := ParseRequestHead([]byte(tc.input))
			assert.ErrorIs(t, err, ErrMalformedRequestLine)
		})
	}
}

func TestKeepAlive(t *testing.T) {
	testcases := []struct {
		desc       string
		version    Version
		connection string
		expected   bool
	}{
		{
			desc:     "1.1 default",
			version:  Version{1, 1},
			expected: true,
		},
		{
			desc:       "1.1 close",
			version:    Version{1, 1},
			connection: "close",
			expected:   false,
		},
		{
			desc:       "1.1 explicit keep-alive",
			version:    Version{1, 1},
			connection: "keep-alive",
			expected:   true,
		},
		{
			desc:     "1.0 default",
			version:  Version{1, 0},
			expected: false,
		},
		{
			desc:       "1.0 keep-alive",
			version:    Version{1, 0},
			connection: "Keep-Alive",
			expected:   true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			req := Request{RequestLine: RequestLine{Version: tc.version}}
			if tc.connection != "" {
				req.Headers = []Field{{"Connection", tc.connection}}
			}
			assert.Equal(t, tc.expected, req.KeepAlive())
		})
	}
}

func TestLastFieldValue(t *testing.T) {
	fields := []Field{
		{"X-A", "1"},
		{"x-a", "2"},
		{"X-B", "3"},
	}

	assert.Equal(t, "2", LastFieldValue(fields, "X-A"))
	assert.Equal(t, "3", LastFieldValue(fields, "x-b"))
	assert.Equal(t, "", LastFieldValue(fields, "X-C"))
}

func TestParseRequestLineInvalidToken(t *testing.T) {
	_, _, err := ParseRequestHead([]byte("GET@ / HTTP/1.1\r\n\r\n"))
	assert.ErrorIs(t, err, ErrMalformedRequestLine)
}
