// Package routes declares HTTP routes as data and registers them on a mux.
package routes

import (
	"net/http"
	"slices"
)

// Route binds an HTTP method and pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group organizes routes under a common prefix. Middleware applies to every
// route in the group and its children, outermost first.
type Group struct {
	Prefix     string
	Middleware []func(http.Handler) http.Handler
	Routes     []Route
	Children   []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		register(mux, "", nil, group)
	}
}

func register(mux *http.ServeMux, parent string, inherited []func(http.Handler) http.Handler, group Group) {
	prefix := parent + group.Prefix
	chain := append(slices.Clone(inherited), group.Middleware...)

	for _, route := range group.Routes {
		var h http.Handler = route.Handler
		for i := len(chain) - 1; i >= 0; i-- {
			h = chain[i](h)
		}
		mux.Handle(route.Method+" "+prefix+route.Pattern, h)
	}
	for _, child := range group.Children {
		register(mux, prefix, chain, child)
	}
}
