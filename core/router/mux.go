package router

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"sync/atomic"

	"github.com/dmitrymomot/waypoint/core/handler"
	"github.com/dmitrymomot/waypoint/core/logger"
)

// mux is the private implementation of Router interface.
type mux[C handler.Context] struct {
	tree         *node[C]
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request, map[string]string) C
	logger       *slog.Logger
	parent       *mux[C] // for inline routers
	inline       bool
	configured   configured // settings set explicitly or inherited
	routed       bool       // set once the first route is registered
	sealed       atomic.Bool
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		tree:         &node[C]{},
		errorHandler: defaultErrorHandler[C],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.newContext == nil {
		m.newContext = func(w http.ResponseWriter, r *http.Request, params map[string]string) C {
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(newContext(w, r, params)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}

	return m
}

// ServeHTTP resolves the request and runs the selected handler through the
// middleware of every router on the path. Unmatched requests go straight to
// the error handler with ErrNotFound or ErrMethodNotAllowed; the latter
// also sets the Allow header.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if m.inline {
		m.root().ServeHTTP(w, r)
		return
	}

	ww := newResponseWriter(w)
	sel := m.ResolveHost(r.Method, r.Host, r.URL.EscapedPath())

	if sel.Pattern != "" {
		r = r.WithContext(withRoutePattern(r.Context(), sel.Pattern))
	}
	ctx := m.newContext(ww, r, sel.Params)

	defer func() {
		if p := recover(); p != nil {
			perr := &panicError{value: p, stack: debug.Stack()}
			m.logger.ErrorContext(r.Context(), "handler panicked",
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.Route(sel.Pattern),
				logger.Error(perr),
				slog.String("stack", string(perr.stack)),
			)
			if !ww.Written() {
				m.errorHandler(ctx, perr)
			}
		}
	}()

	switch sel.Outcome {
	case NotFound:
		m.errorHandler(ctx, ErrNotFound)
		return
	case MethodNotAllowed:
		ww.Header().Set("Allow", strings.Join(sel.Allowed, ", "))
		m.errorHandler(ctx, ErrMethodNotAllowed)
		return
	}

	resp := sel.Endpoint()(ctx)
	if resp == nil {
		m.errorHandler(ctx, ErrNilResponse)
		return
	}

	if err := resp(ww, ctx.Request()); err != nil {
		m.logger.DebugContext(r.Context(), "request failed",
			logger.Method(r.Method),
			logger.Route(sel.Pattern),
			logger.Error(err),
		)
		m.errorHandler(ctx, err)
	}
}

// Resolve selects the handler for method and path without host routing.
// The path is the escaped form (as returned by url.URL.EscapedPath);
// leading, trailing and repeated slashes are ignored and each segment is
// percent-decoded.
func (m *mux[C]) Resolve(method, path string) Selection[C] {
	return m.ResolveHost(method, "", path)
}

// ResolveHost is Resolve for a request sent to host, which may carry a port.
func (m *mux[C]) ResolveHost(method, host, path string) Selection[C] {
	root := m.root()
	root.seal()

	segs, ok := splitRequestPath(path)
	if !ok {
		return Selection[C]{Outcome: NotFound}
	}

	rv := resolver[C]{method: parseMethod(method), host: splitHost(host)}
	ep := root.tree.lookup(&rv, segs)
	if ep == nil {
		if rv.allowed != 0 {
			return Selection[C]{Outcome: MethodNotAllowed, Allowed: methodNames(rv.allowed)}
		}
		return Selection[C]{Outcome: NotFound}
	}

	// Later captures come from deeper routers and overwrite earlier ones.
	params := make(map[string]string, len(rv.params))
	for _, p := range rv.params {
		params[p.key] = p.value
	}

	mws := root.middlewares
	if len(rv.layers) > 0 {
		mws = make([]handler.Middleware[C], 0, len(mws)+len(rv.layers))
		mws = append(mws, root.middlewares...)
		for _, l := range rv.layers {
			mws = append(mws, l.middlewares...)
			mws = append(mws, l.router.middlewares...)
			mws = append(mws, l.inner...)
		}
	}

	return Selection[C]{
		Outcome:     Matched,
		Handler:     ep.handler,
		Params:      params,
		Pattern:     rv.pattern(ep),
		middlewares: mws,
	}
}

// Get registers a handler for GET requests.
func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mGET, pattern, h)
}

// Post registers a handler for POST requests.
func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mPOST, pattern, h)
}

// Put registers a handler for PUT requests.
func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mPUT, pattern, h)
}

// Delete registers a handler for DELETE requests.
func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mDELETE, pattern, h)
}

// Patch registers a handler for PATCH requests.
func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mPATCH, pattern, h)
}

// Head registers a handler for HEAD requests.
func (m *mux[C]) Head(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mHEAD, pattern, h)
}

// Options registers a handler for OPTIONS requests.
func (m *mux[C]) Options(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mOPTIONS, pattern, h)
}

// Connect registers a handler for CONNECT requests.
func (m *mux[C]) Connect(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mCONNECT, pattern, h)
}

// Trace registers a handler for TRACE requests.
func (m *mux[C]) Trace(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mTRACE, pattern, h)
}

// Handle registers a fallback handler for all HTTP methods.
func (m *mux[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mALL, pattern, h)
}

// Method registers a handler for one or more specific HTTP methods.
func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods provided", ErrInvalidMethod))
	}

	var set methodTyp
	for _, method := range methods {
		mt, ok := methodMap[strings.ToUpper(method)]
		if !ok {
			panic(fmt.Errorf("%w: %s", ErrInvalidMethod, method))
		}
		if set&mt != 0 {
			continue
		}
		set |= mt
		m.handle(mt, pattern, h)
	}
}

// At returns a builder for chained registrations on pattern.
func (m *mux[C]) At(pattern string) *Route[C] {
	if _, err := parsePattern(pattern); err != nil {
		panic(err)
	}
	return &Route[C]{mux: m, pattern: pattern}
}

// Use appends router-level middleware. It must be called before any route
// is registered on this router.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	m.checkMutable()
	if m.inline {
		m.middlewares = append(m.middlewares, middlewares...)
		return
	}
	if m.routed {
		panic(ErrLateMiddleware)
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

// With creates an inline router sharing this tree. Its middleware is baked
// into every handler registered through it.
func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	return &mux[C]{
		inline:       true,
		parent:       m,
		configured:   m.configured,
		tree:         m.tree,
		middlewares:  middlewares,
		errorHandler: m.errorHandler,
		newContext:   m.newContext,
		logger:       m.logger,
	}
}

// Group creates an inline router for grouping routes.
func (m *mux[C]) Group(fn func(r Router[C])) Router[C] {
	im := m.With()
	if fn != nil {
		fn(im)
	}
	return im
}

// Route creates a sub-router, lets fn populate it and mounts it at pattern.
func (m *mux[C]) Route(pattern string, fn func(r Router[C])) Router[C] {
	if fn == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilSubrouter, pattern))
	}

	sub := newMux[C]()
	sub.inherit(m.root())

	fn(sub)
	m.Mount(pattern, sub)
	return sub
}

// Mount attaches sub at pattern. Requests below pattern are resolved by sub
// with the prefix segments removed, so the same router can be mounted at
// several prefixes or served on its own. Mounting sub.With(mw...) runs mw
// for every route of sub, inside sub's own middleware.
//
// While serving through m, m's error handler, logger and context factory
// apply. For standalone serving sub keeps the settings it was built with;
// settings it never configured are taken from the first router it is
// mounted on.
func (m *mux[C]) Mount(pattern string, sub Router[C]) {
	m.checkMutable()

	subMux, inner := m.mountable(pattern, sub)

	segs, err := parsePattern(pattern)
	if err != nil {
		panic(err)
	}

	mp := &mountPoint[C]{
		router:      subMux,
		prefix:      patternString(segs),
		middlewares: m.inlineMiddlewares(),
		inner:       inner,
	}
	if err := m.tree.attach(segs, mp); err != nil {
		panic(err)
	}
	subMux.inherit(m)

	m.root().routed = true
	m.logger.Debug("router mounted", logger.Component("router"), logger.Route(mp.prefix))
}

// Host routes requests whose Host header matches pattern to sub before path
// routing is tried. Labels are compared right to left and the label count
// must match: "api.example.com" matches only that host, ":tenant.example.com"
// captures the first label as the "tenant" param, and "*" matches any one
// label. Ports are ignored. When sub has no route for the path, resolution
// falls through to the routes of m.
func (m *mux[C]) Host(pattern string, sub Router[C]) {
	m.checkMutable()

	subMux, inner := m.mountable(pattern, sub)

	labels, err := parseHost(pattern)
	if err != nil {
		panic(err)
	}

	mp := &mountPoint[C]{
		router:      subMux,
		host:        hostString(labels),
		middlewares: m.inlineMiddlewares(),
		inner:       inner,
	}
	if err := m.tree.attachHost(labels, mp); err != nil {
		panic(err)
	}
	subMux.inherit(m)

	m.root().routed = true
	m.logger.Debug("host router added", logger.Component("router"), slog.String("host", mp.host))
}

// mountable validates sub for attachment below m and returns its root
// together with the inline middleware of the value passed in.
func (m *mux[C]) mountable(pattern string, sub Router[C]) (*mux[C], []handler.Middleware[C]) {
	if sub == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilRouter, pattern))
	}
	subMux, ok := sub.(*mux[C])
	if !ok {
		panic(fmt.Errorf("%w: %T", ErrUnsupportedRouter, sub))
	}
	inner := subMux.inlineMiddlewares()
	subMux = subMux.root()

	if subMux.sealed.Load() {
		panic(fmt.Errorf("%w: cannot mount at '%s'", ErrRouterSealed, pattern))
	}
	if subMux.contains(m.root()) {
		panic(fmt.Errorf("%w: %w: '%s'", ErrRegistrationConflict, ErrMountCycle, pattern))
	}
	return subMux, inner
}

// inherit fills the settings m never configured from parent.
func (m *mux[C]) inherit(parent *mux[C]) {
	if m.configured&cfgErrorHandler == 0 {
		m.errorHandler = parent.errorHandler
		m.configured |= cfgErrorHandler
	}
	if m.configured&cfgLogger == 0 {
		m.logger = parent.logger
		m.configured |= cfgLogger
	}
	if m.configured&cfgContext == 0 {
		m.newContext = parent.newContext
		m.configured |= cfgContext
	}
}

// Routes returns every registered binding sorted by host, then by pattern
// and method.
func (m *mux[C]) Routes() []RouteInfo {
	rts := m.root().tree.routes("", "", nil)
	sortRoutes(rts)
	return rts
}

func (m *mux[C]) handle(method methodTyp, pattern string, fn handler.HandlerFunc[C]) {
	m.checkMutable()

	if fn == nil {
		panic(fmt.Errorf("%w: '%s'", ErrNilHandler, pattern))
	}

	segs, err := parsePattern(pattern)
	if err != nil {
		panic(err)
	}

	h := fn
	if mws := m.inlineMiddlewares(); len(mws) > 0 {
		h = handler.Chain(fn, mws...)
	}

	canonical := patternString(segs)
	if err := m.tree.insert(method, segs, &endpoint[C]{handler: h, pattern: canonical}); err != nil {
		panic(err)
	}

	m.root().routed = true
	m.logger.Debug("route registered",
		logger.Component("router"),
		logger.Method(methodLabel(method)),
		logger.Route(canonical),
	)
}

// inlineMiddlewares collects middleware of the inline routers between m and
// its root, outermost first.
func (m *mux[C]) inlineMiddlewares() []handler.Middleware[C] {
	var mws []handler.Middleware[C]
	for cur := m; cur != nil && cur.inline; cur = cur.parent {
		if len(cur.middlewares) > 0 {
			mws = append(append([]handler.Middleware[C]{}, cur.middlewares...), mws...)
		}
	}
	return mws
}

func (m *mux[C]) root() *mux[C] {
	cur := m
	for cur.inline {
		cur = cur.parent
	}
	return cur
}

func (m *mux[C]) checkMutable() {
	if m.root().sealed.Load() {
		panic(ErrRouterSealed)
	}
}

// seal freezes m and every router mounted below it.
func (m *mux[C]) seal() {
	if m.sealed.Load() {
		return
	}
	m.sealed.Store(true)
	m.tree.mounts(func(sub *mux[C]) bool {
		sub.sealed.Store(true)
		return false
	})
}

// contains reports whether target is m or mounted anywhere below m.
func (m *mux[C]) contains(target *mux[C]) bool {
	if m == target {
		return true
	}
	return m.tree.mounts(func(sub *mux[C]) bool {
		return sub == target
	})
}
