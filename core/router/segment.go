package router

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type segmentKind uint8

const (
	segLiteral  segmentKind = iota // users
	segParam                       // :id
	segWildcard                    // *rest
)

// segment is one parsed element of a route pattern. For params and
// wildcards value holds the capture name.
type segment struct {
	kind  segmentKind
	value string
}

func (s segment) String() string {
	switch s.kind {
	case segParam:
		return ":" + s.value
	case segWildcard:
		if s.value == "*" {
			return "*"
		}
		return "*" + s.value
	default:
		return s.value
	}
}

// parsePattern splits a route pattern into segments. Empty segments are
// dropped, so "/users/" and "//users" both parse as "/users".
func parsePattern(pattern string) ([]segment, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, fmt.Errorf("%w: '%s' must start with '/'", ErrInvalidPattern, pattern)
	}

	parts := splitPath(pattern)
	segs := make([]segment, 0, len(parts))
	names := make(map[string]struct{}, len(parts))

	for i, part := range parts {
		var s segment
		switch part[0] {
		case ':':
			if len(part) == 1 {
				return nil, fmt.Errorf("%w: empty parameter name in '%s'", ErrInvalidPattern, pattern)
			}
			s = segment{kind: segParam, value: part[1:]}
		case '*':
			if i != len(parts)-1 {
				return nil, fmt.Errorf("%w: %w: '%s'", ErrRegistrationConflict, ErrWildcardPosition, pattern)
			}
			name := part[1:]
			if name == "" {
				name = "*"
			}
			s = segment{kind: segWildcard, value: name}
		default:
			lit, err := url.PathUnescape(part)
			if err != nil {
				return nil, fmt.Errorf("%w: '%s': %w", ErrInvalidPattern, pattern, err)
			}
			s = segment{kind: segLiteral, value: norm.NFC.String(lit)}
		}

		if s.kind != segLiteral {
			if _, dup := names[s.value]; dup {
				return nil, fmt.Errorf("%w: '%s' in '%s'", ErrDuplicateParam, s.value, pattern)
			}
			names[s.value] = struct{}{}
		}
		segs = append(segs, s)
	}

	return segs, nil
}

// patternString renders segments in canonical form. The root pattern is "/".
func patternString(segs []segment) string {
	if len(segs) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range segs {
		b.WriteByte('/')
		b.WriteString(s.String())
	}
	return b.String()
}

// splitRequestPath normalizes an escaped request path into decoded segments.
// It reports false when a segment carries a malformed percent-escape.
func splitRequestPath(path string) ([]string, bool) {
	parts := splitPath(path)
	for i, part := range parts {
		if strings.IndexByte(part, '%') >= 0 {
			v, err := url.PathUnescape(part)
			if err != nil {
				return nil, false
			}
			part = v
		}
		parts[i] = norm.NFC.String(part)
	}
	return parts, true
}

func splitPath(path string) []string {
	parts := make([]string, 0, strings.Count(path, "/")+1)
	for len(path) > 0 {
		i := strings.IndexByte(path, '/')
		if i < 0 {
			parts = append(parts, path)
			break
		}
		if i > 0 {
			parts = append(parts, path[:i])
		}
		path = path[i+1:]
	}
	return parts
}

// joinPattern appends a sub-pattern to a prefix without doubling slashes.
func joinPattern(prefix, pattern string) string {
	prefix = strings.TrimRight(prefix, "/")
	if pattern == "" || pattern == "/" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	return prefix + "/" + strings.TrimLeft(pattern, "/")
}
