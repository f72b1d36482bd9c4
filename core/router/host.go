package router

import (
	"fmt"
	"net"
	"slices"
	"strings"

	"github.com/dmitrymomot/waypoint/core/handler"
)

// hostRoute routes requests whose Host matches labels to a mounted router.
type hostRoute[C handler.Context] struct {
	labels []segment // right to left
	mount  *mountPoint[C]
}

// parseHost splits a host pattern such as ":tenant.example.com" into labels,
// rightmost first. A ":name" label captures one host label, "*" matches any
// single label, and anything else matches case-insensitively.
func parseHost(pattern string) ([]segment, error) {
	host := strings.TrimSuffix(strings.TrimSpace(pattern), ".")
	if host == "" {
		return nil, fmt.Errorf("%w: empty host pattern", ErrInvalidPattern)
	}

	parts := strings.Split(host, ".")
	labels := make([]segment, 0, len(parts))
	names := make(map[string]struct{}, len(parts))

	for i := len(parts) - 1; i >= 0; i-- {
		part := parts[i]
		switch {
		case part == "":
			return nil, fmt.Errorf("%w: empty label in host '%s'", ErrInvalidPattern, pattern)
		case part == "*":
			labels = append(labels, segment{kind: segWildcard, value: "*"})
		case part[0] == ':':
			name := part[1:]
			if name == "" {
				return nil, fmt.Errorf("%w: empty parameter name in host '%s'", ErrInvalidPattern, pattern)
			}
			if _, dup := names[name]; dup {
				return nil, fmt.Errorf("%w: '%s' in host '%s'", ErrDuplicateParam, name, pattern)
			}
			names[name] = struct{}{}
			labels = append(labels, segment{kind: segParam, value: name})
		default:
			labels = append(labels, segment{kind: segLiteral, value: strings.ToLower(part)})
		}
	}
	return labels, nil
}

// hostString renders labels in their usual left to right order.
func hostString(labels []segment) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[len(labels)-1-i] = l.String()
	}
	return strings.Join(parts, ".")
}

// splitHost turns a request Host header into lowercase labels, rightmost
// first. The port and a trailing dot are dropped.
func splitHost(host string) []string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return nil
	}
	labels := strings.Split(host, ".")
	slices.Reverse(labels)
	return labels
}

// match reports whether the request labels fit h, appending captured
// labels to params. On a mismatch params may hold partial captures; the
// caller truncates them.
func (h *hostRoute[C]) match(labels []string, params []param) ([]param, bool) {
	if len(labels) != len(h.labels) {
		return params, false
	}
	for i, l := range h.labels {
		switch l.kind {
		case segLiteral:
			if labels[i] != l.value {
				return params, false
			}
		case segParam:
			params = append(params, param{key: l.value, value: labels[i]})
		}
	}
	return params, true
}

// dynamic counts the labels that are not literals.
func (h *hostRoute[C]) dynamic() int {
	n := 0
	for _, l := range h.labels {
		if l.kind != segLiteral {
			n++
		}
	}
	return n
}

// attachHost adds a host router to n. Hosts with fewer dynamic labels are
// tried first; ties keep registration order.
func (n *node[C]) attachHost(labels []segment, mp *mountPoint[C]) error {
	for _, h := range n.hosts {
		if h.mount.host == mp.host {
			return fmt.Errorf("%w: %w: a router is already bound to host '%s'", ErrRegistrationConflict, ErrMountConflict, mp.host)
		}
	}

	hr := &hostRoute[C]{labels: labels, mount: mp}
	i := len(n.hosts)
	for i > 0 && n.hosts[i-1].dynamic() > hr.dynamic() {
		i--
	}
	n.hosts = slices.Insert(n.hosts, i, hr)
	return nil
}
