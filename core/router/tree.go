package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrymomot/waypoint/core/handler"
)

// node is one position in the route tree. Literal children are keyed by
// their decoded text; a node has at most one param child and at most one
// wildcard child, and a wildcard child is always a leaf.
type node[C handler.Context] struct {
	static   map[string]*node[C]
	param    *node[C]
	wildcard *node[C]

	// name is the capture name when this node is a param or wildcard child.
	name string

	endpoints map[methodTyp]*endpoint[C]
	fallback  *endpoint[C] // bound with All, serves any method

	mount *mountPoint[C]

	// hosts is only populated on the root node of a router.
	hosts []*hostRoute[C]
}

type endpoint[C handler.Context] struct {
	handler handler.HandlerFunc[C]

	// pattern is the canonical pattern local to the owning router
	pattern string
}

// mountPoint attaches a sub-router below a node. The sub-router sees only
// the segments left after the prefix.
type mountPoint[C handler.Context] struct {
	router *mux[C]
	prefix string
	host   string

	// inline middleware active on the mounting router
	middlewares []handler.Middleware[C]
	// inline middleware of the mounted value itself (sub.With(...)), run
	// inside the mounted router's own middleware
	inner []handler.Middleware[C]
}

// insert binds ep under segs for method. Conflicts are detected before the
// tree is touched, so a failed registration leaves it unchanged.
func (n *node[C]) insert(method methodTyp, segs []segment, ep *endpoint[C]) error {
	target, err := n.locate(segs, ep.pattern, false)
	if err != nil {
		return err
	}
	if target != nil {
		if err := target.canBind(method, ep.pattern); err != nil {
			return err
		}
	}

	target, err = n.locate(segs, ep.pattern, true)
	if err != nil {
		return err
	}

	if method == mALL {
		target.fallback = ep
		return nil
	}
	if target.endpoints == nil {
		target.endpoints = make(map[methodTyp]*endpoint[C])
	}
	target.endpoints[method] = ep
	return nil
}

// attach stores mp at the node addressed by segs.
func (n *node[C]) attach(segs []segment, mp *mountPoint[C]) error {
	for _, s := range segs {
		if s.kind == segWildcard {
			return fmt.Errorf("%w: %w: prefix '%s' cannot end in a wildcard", ErrRegistrationConflict, ErrMountConflict, mp.prefix)
		}
	}

	target, err := n.locate(segs, mp.prefix, false)
	if err != nil {
		return err
	}
	if target != nil {
		if err := target.canMount(mp.prefix); err != nil {
			return err
		}
	}

	target, err = n.locate(segs, mp.prefix, true)
	if err != nil {
		return err
	}
	target.mount = mp
	return nil
}

// locate walks segs from n. Without create it returns nil as soon as a node
// is missing; any conflict found on the way is reported either way.
func (n *node[C]) locate(segs []segment, pattern string, create bool) (*node[C], error) {
	cur := n
	for _, s := range segs {
		var next *node[C]

		switch s.kind {
		case segLiteral:
			next = cur.static[s.value]
			if next == nil && create {
				if cur.static == nil {
					cur.static = make(map[string]*node[C])
				}
				next = &node[C]{}
				cur.static[s.value] = next
			}

		case segParam:
			if cur.param != nil && cur.param.name != s.value {
				return nil, fmt.Errorf("%w: %w: ':%s' conflicts with ':%s' in '%s'",
					ErrRegistrationConflict, ErrParamNameConflict, s.value, cur.param.name, pattern)
			}
			if cur.param == nil && create {
				cur.param = &node[C]{name: s.value}
			}
			next = cur.param

		case segWildcard:
			if cur.mount != nil {
				return nil, fmt.Errorf("%w: %w: '%s' overlaps router mounted at '%s'",
					ErrRegistrationConflict, ErrMountConflict, pattern, cur.mount.prefix)
			}
			if cur.wildcard != nil && cur.wildcard.name != s.value {
				return nil, fmt.Errorf("%w: %w: '*%s' conflicts with '*%s' in '%s'",
					ErrRegistrationConflict, ErrParamNameConflict, s.value, cur.wildcard.name, pattern)
			}
			if cur.wildcard == nil && create {
				cur.wildcard = &node[C]{name: s.value}
			}
			next = cur.wildcard
		}

		if next == nil {
			return nil, nil
		}
		cur = next
	}
	return cur, nil
}

func (n *node[C]) canBind(method methodTyp, pattern string) error {
	if n.mount != nil {
		return fmt.Errorf("%w: %w: '%s' is a mount point", ErrRegistrationConflict, ErrMountConflict, pattern)
	}
	if method == mALL {
		if n.fallback != nil {
			return fmt.Errorf("%w: %w: all methods already bound on '%s'", ErrRegistrationConflict, ErrMethodConflict, pattern)
		}
		return nil
	}
	if _, ok := n.endpoints[method]; ok {
		return fmt.Errorf("%w: %w: %s '%s'", ErrRegistrationConflict, ErrMethodConflict, reverseMethodMap[method], pattern)
	}
	return nil
}

func (n *node[C]) canMount(prefix string) error {
	switch {
	case n.mount != nil:
		return fmt.Errorf("%w: %w: a router is already mounted at '%s'", ErrRegistrationConflict, ErrMountConflict, prefix)
	case n.wildcard != nil:
		return fmt.Errorf("%w: %w: '%s' already has a wildcard route", ErrRegistrationConflict, ErrMountConflict, prefix)
	case n.bound():
		return fmt.Errorf("%w: %w: '%s' already has handlers", ErrRegistrationConflict, ErrMountConflict, prefix)
	}
	return nil
}

func (n *node[C]) bound() bool {
	return len(n.endpoints) > 0 || n.fallback != nil
}

// endpointFor picks the handler for method: an exact binding, then GET for
// HEAD, then the fallback.
func (n *node[C]) endpointFor(method methodTyp) *endpoint[C] {
	if ep, ok := n.endpoints[method]; ok {
		return ep
	}
	if method == mHEAD {
		if ep, ok := n.endpoints[mGET]; ok {
			return ep
		}
	}
	return n.fallback
}

// methods returns the set of explicitly bound methods.
func (n *node[C]) methods() methodTyp {
	var set methodTyp
	for mt := range n.endpoints {
		set |= mt
	}
	return set
}

// resolver carries per-request lookup state. Captures and mount layers are
// pushed on the way down and truncated when a branch is abandoned.
type resolver[C handler.Context] struct {
	method  methodTyp
	host    []string // request host labels, right to left
	params  []param
	layers  []*mountPoint[C]
	allowed methodTyp
}

type param struct {
	key   string
	value string
}

// lookup matches segs below n trying host, literal, param, wildcard and
// mount branches in that order and backtracking out of dead ends. A host
// router that cannot serve the path falls through to the path branches.
// Methods of every node that matches the full path are collected into
// rv.allowed.
func (n *node[C]) lookup(rv *resolver[C], segs []string) *endpoint[C] {
	for _, h := range n.hosts {
		mark := len(rv.params)
		var ok bool
		if rv.params, ok = h.match(rv.host, rv.params); ok {
			if ep := rv.descend(h.mount, segs); ep != nil {
				return ep
			}
		}
		rv.params = rv.params[:mark]
	}

	if len(segs) == 0 {
		if ep := n.endpointFor(rv.method); ep != nil {
			return ep
		}
		rv.allowed |= n.methods()
		if n.mount != nil {
			return rv.descend(n.mount, segs)
		}
		return nil
	}

	if child, ok := n.static[segs[0]]; ok {
		if ep := child.lookup(rv, segs[1:]); ep != nil {
			return ep
		}
	}

	if n.param != nil {
		mark := len(rv.params)
		rv.params = append(rv.params, param{key: n.param.name, value: segs[0]})
		if ep := n.param.lookup(rv, segs[1:]); ep != nil {
			return ep
		}
		rv.params = rv.params[:mark]
	}

	if n.wildcard != nil {
		if ep := n.wildcard.endpointFor(rv.method); ep != nil {
			rv.params = append(rv.params, param{key: n.wildcard.name, value: strings.Join(segs, "/")})
			return ep
		}
		rv.allowed |= n.wildcard.methods()
	}

	if n.mount != nil {
		return rv.descend(n.mount, segs)
	}
	return nil
}

func (rv *resolver[C]) descend(mp *mountPoint[C], segs []string) *endpoint[C] {
	mark := len(rv.layers)
	rv.layers = append(rv.layers, mp)
	if ep := mp.router.tree.lookup(rv, segs); ep != nil {
		return ep
	}
	rv.layers = rv.layers[:mark]
	return nil
}

// pattern returns the full pattern of ep including every mount prefix
// crossed to reach it.
func (rv *resolver[C]) pattern(ep *endpoint[C]) string {
	if len(rv.layers) == 0 {
		return ep.pattern
	}
	p := ""
	for _, l := range rv.layers {
		p = joinPattern(p, l.prefix)
	}
	return joinPattern(p, ep.pattern)
}

// routes appends every binding below n to out. Patterns of mounted routers
// are prefixed with their mount point; bindings of host routers carry the
// host pattern.
func (n *node[C]) routes(host, prefix string, out []RouteInfo) []RouteInfo {
	for _, h := range n.hosts {
		out = h.mount.router.tree.routes(h.mount.host, prefix, out)
	}
	for mt, ep := range n.endpoints {
		out = append(out, RouteInfo{Method: reverseMethodMap[mt], Pattern: joinPattern(prefix, ep.pattern), Host: host})
	}
	if n.fallback != nil {
		out = append(out, RouteInfo{Method: AnyMethod, Pattern: joinPattern(prefix, n.fallback.pattern), Host: host})
	}
	if n.mount != nil {
		out = n.mount.router.tree.routes(host, joinPattern(prefix, n.mount.prefix), out)
	}
	for _, child := range n.static {
		out = child.routes(host, prefix, out)
	}
	if n.param != nil {
		out = n.param.routes(host, prefix, out)
	}
	if n.wildcard != nil {
		out = n.wildcard.routes(host, prefix, out)
	}
	return out
}

// mounts visits every router mounted below n, depth first.
func (n *node[C]) mounts(fn func(*mux[C]) bool) bool {
	for _, h := range n.hosts {
		if fn(h.mount.router) || h.mount.router.tree.mounts(fn) {
			return true
		}
	}
	if n.mount != nil {
		if fn(n.mount.router) || n.mount.router.tree.mounts(fn) {
			return true
		}
	}
	for _, child := range n.static {
		if child.mounts(fn) {
			return true
		}
	}
	if n.param != nil && n.param.mounts(fn) {
		return true
	}
	return false
}

func sortRoutes(rts []RouteInfo) {
	sort.Slice(rts, func(i, j int) bool {
		if rts[i].Host != rts[j].Host {
			return rts[i].Host < rts[j].Host
		}
		if rts[i].Pattern != rts[j].Pattern {
			return rts[i].Pattern < rts[j].Pattern
		}
		return rts[i].Method < rts[j].Method
	})
}
