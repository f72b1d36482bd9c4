package router

import "github.com/dmitrymomot/waypoint/core/handler"

// Route binds handlers to one pattern. Every call is a separate
// registration and panics on conflict like the Router methods do.
//
//	r.At("/users/:id").
//		Get(showUser).
//		Put(updateUser).
//		Delete(deleteUser)
type Route[C handler.Context] struct {
	mux     *mux[C]
	pattern string
}

// Pattern returns the pattern the builder registers under.
func (rt *Route[C]) Pattern() string { return rt.pattern }

// At returns a builder for pattern appended to this one.
func (rt *Route[C]) At(pattern string) *Route[C] {
	return rt.mux.At(joinPattern(rt.pattern, pattern))
}

func (rt *Route[C]) Get(h handler.HandlerFunc[C]) *Route[C]     { return rt.bind(mGET, h) }
func (rt *Route[C]) Post(h handler.HandlerFunc[C]) *Route[C]    { return rt.bind(mPOST, h) }
func (rt *Route[C]) Put(h handler.HandlerFunc[C]) *Route[C]     { return rt.bind(mPUT, h) }
func (rt *Route[C]) Delete(h handler.HandlerFunc[C]) *Route[C]  { return rt.bind(mDELETE, h) }
func (rt *Route[C]) Patch(h handler.HandlerFunc[C]) *Route[C]   { return rt.bind(mPATCH, h) }
func (rt *Route[C]) Head(h handler.HandlerFunc[C]) *Route[C]    { return rt.bind(mHEAD, h) }
func (rt *Route[C]) Options(h handler.HandlerFunc[C]) *Route[C] { return rt.bind(mOPTIONS, h) }
func (rt *Route[C]) Connect(h handler.HandlerFunc[C]) *Route[C] { return rt.bind(mCONNECT, h) }
func (rt *Route[C]) Trace(h handler.HandlerFunc[C]) *Route[C]   { return rt.bind(mTRACE, h) }

// All binds h as the fallback for methods without their own handler.
func (rt *Route[C]) All(h handler.HandlerFunc[C]) *Route[C] { return rt.bind(mALL, h) }

// Method binds h for each of the given methods.
func (rt *Route[C]) Method(h handler.HandlerFunc[C], methods ...string) *Route[C] {
	rt.mux.Method(rt.pattern, h, methods...)
	return rt
}

// Mount attaches sub at this pattern.
func (rt *Route[C]) Mount(sub Router[C]) {
	rt.mux.Mount(rt.pattern, sub)
}

func (rt *Route[C]) bind(mt methodTyp, h handler.HandlerFunc[C]) *Route[C] {
	rt.mux.handle(mt, rt.pattern, h)
	return rt
}
