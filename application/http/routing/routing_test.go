package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	testcases := []struct {
		desc    string
		method  string
		pattern string

		reqMethod string
		reqPath   string

		expected Params
		miss     bool
	}{
		{
			desc:      "literal",
			method:    "GET",
			pattern:   "/users",
			reqMethod: "GET",
			reqPath:   "/users",
			expected:  Params{},
		},
		{
			desc:      "trailing slash tolerated",
			method:    "GET",
			pattern:   "/users",
			reqMethod: "GET",
			reqPath:   "/users/",
			expected:  Params{},
		},
		{
			desc:      "single param",
			method:    "GET",
			pattern:   "/users/{id}",
			reqMethod: "GET",
			reqPath:   "/users/42",
			expected:  Params{"id": "42"},
		},
		{
			desc:      "param does not cross slash",
			method:    "GET",
			pattern:   "/users/{id}",
			reqMethod: "GET",
			reqPath:   "/users/42/posts",
			miss:      true,
		},
		{
			desc:      "catch-all crosses slashes",
			method:    "GET",
			pattern:   "/static/{file:path}",
			reqMethod: "GET",
			reqPath:   "/static/css/site.css",
			expected:  Params{"file": "css/site.css"},
		},
		{
			desc:      "method mismatch",
			method:    "GET",
			pattern:   "/users",
			reqMethod: "POST",
			reqPath:   "/users",
			miss:      true,
		},
		{
			desc:      "method case-insensitive",
			method:    "get",
			pattern:   "/users",
			reqMethod: "GET",
			reqPath:   "/users",
			expected:  Params{},
		},
		{
			desc:      "root",
			method:    "GET",
			pattern:   "/",
			reqMethod: "GET",
			reqPath:   "/",
			expected:  Params{},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			r := NewRegistry[string]()
			require.NoError(t, r.Add(tc.method, tc.pattern, "h"))

			h, params, ok := r.Match(tc.reqMethod, tc.reqPath)
			if tc.miss {
				assert.False(t, ok)
				return
			}

			require.True(t, ok)
			assert.Equal(t, "h", h)
			assert.Equal(t, tc.expected, params)
		})
	}
}

func TestFirstMatchWins(t *testing.T) {
	r := NewRegistry[string]()
	require.NoError(t, r.Add("GET", "/users/me", "me"))
	require.NoError(t, r.Add("GET", "/users/{id}", "byID"))

	h, _, ok := r.Match("GET", "/users/me")
	require.True(t, ok)
	assert.Equal(t, "me", h)

	h, params, ok := r.Match("GET", "/users/42")
	require.True(t, ok)
	assert.Equal(t, "byID", h)
	assert.Equal(t, Params{"id": "42"}, params)
}

func TestCatchAllMustBeLast(t *testing.T) {
	r := NewRegistry[string]()
	assert.Error(t, r.Add("GET", "/{rest:path}/x", "h"))
}

func TestWebSocketMethodIsSeparate(t *testing.T) {
	r := NewRegistry[string]()
	require.NoError(t, r.Add(MethodWebSocket, "/ws", "ws"))

	_, _, ok := r.Match("GET", "/ws")
	assert.False(t, ok)

	h, _, ok := r.Match(MethodWebSocket, "/ws")
	require.True(t, ok)
	assert.Equal(t, "ws", h)
}
