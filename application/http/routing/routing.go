// Package routing maps request method+path pairs to handlers.
//
// Patterns are matched segment by segment. A segment written as {name}
// captures one path segment; a trailing {name:path} captures the rest of
// the path including slashes. A trailing slash on the request path is
// tolerated.
package routing

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// MethodWebSocket registers a route for websocket upgrades. It never
// matches a plain request method.
const MethodWebSocket = "WEBSOCKET"

// Params holds the values captured by {name} segments.
type Params map[string]string

type route[H any] struct {
	method  string
	re      *regexp.Regexp
	handler H
}

// Registry matches in registration order, first match wins.
type Registry[H any] struct {
	routes []route[H]
}

func NewRegistry[H any]() *Registry[H] {
	return &Registry[H]{}
}

var paramSegment = regexp.MustCompile(`^\{([a-zA-Z_][a-zA-Z0-9_]*)(:path)?\}$`)

// Add compiles pattern and appends the route.
func (r *Registry[H]) Add(method, pattern string, handler H) error {
	re, err := compile(pattern)
	if err != nil {
		return errors.Wrapf(err, "compiling route %q", pattern)
	}

	r.routes = append(r.routes, route[H]{
		method:  strings.ToUpper(method),
		re:      re,
		handler: handler,
	})
	return nil
}

// Match finds the first route for method whose pattern matches path.
// Params is non-nil on a match even when nothing was captured.
func (r *Registry[H]) Match(method, path string) (H, Params, bool) {
	method = strings.ToUpper(method)

	for _, rt := range r.routes {
		if rt.method != method {
			continue
		}
		m := rt.re.FindStringSubmatch(path)
		if m == nil {
			continue
		}

		params := make(Params)
		for i, name := range rt.re.SubexpNames() {
			if i == 0 || name == "" {
				continue
			}
			params[name] = m[i]
		}
		return rt.handler, params, true
	}

	var zero H
	return zero, nil, false
}

func compile(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")

	segments := strings.Split(strings.Trim(pattern, "/"), "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		m := paramSegment.FindStringSubmatch(seg)
		switch {
		case m == nil:
			sb.WriteString("/")
			sb.WriteString(regexp.QuoteMeta(seg))
		case m[2] == ":path":
			if i != len(segments)-1 {
				return nil, errors.New("catch-all segment must be last")
			}
			sb.WriteString("/(?P<" + m[1] + ">.+)")
		default:
			sb.WriteString("/(?P<" + m[1] + ">[^/]+)")
		}
	}

	sb.WriteString("/?$")
	return regexp.Compile(sb.String())
}
