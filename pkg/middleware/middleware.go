// Package middleware provides the HTTP middleware stack and the CORS,
// request logging, and panic recovery middleware used by every module.
package middleware

import "net/http"

// Func wraps an http.Handler.
type Func func(http.Handler) http.Handler

// System manages an ordered stack of HTTP middleware.
type System interface {
	Use(mw func(http.Handler) http.Handler)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	fns []func(http.Handler) http.Handler
}

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(fn func(http.Handler) http.Handler) {
	s.fns = append(s.fns, fn)
}

// Apply wraps handler so the first registered middleware runs outermost.
func (s *stack) Apply(handler http.Handler) http.Handler {
	return Chain(handler, s.fns...)
}

// Chain wraps handler with fns, first element outermost.
func Chain(handler http.Handler, fns ...func(http.Handler) http.Handler) http.Handler {
	for i := len(fns) - 1; i >= 0; i-- {
		handler = fns[i](handler)
	}
	return handler
}
