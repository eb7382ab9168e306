// Package module mounts prefixed sub-applications, each with its own
// middleware stack, onto a single top-level router.
package module

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/JaimeStill/hand2voice/pkg/middleware"
)

// ErrInvalidPrefix is returned when a module prefix is not a single-level
// absolute path such as "/api".
var ErrInvalidPrefix = errors.New("invalid module prefix")

// Module strips its prefix and delegates to an inner handler wrapped by the
// module's middleware stack.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System
}

// New creates a Module mounted at prefix.
func New(prefix string, router http.Handler) (*Module, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return nil, err
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}, nil
}

// Handler returns the inner router wrapped with the module's middleware.
func (m *Module) Handler() http.Handler {
	return m.middleware.Apply(m.router)
}

func (m *Module) Prefix() string {
	return m.prefix
}

// Serve strips the prefix from the request path and dispatches inward.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, stripPrefix(req, m.prefix))
}

func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware.Use(mw)
}

// ValidatePrefix reports whether prefix can be used to mount a module.
func ValidatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("%w: empty", ErrInvalidPrefix)
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("%w: %q must start with /", ErrInvalidPrefix, prefix)
	case len(prefix) == 1 || strings.Count(prefix, "/") != 1:
		return fmt.Errorf("%w: %q must be a single path segment", ErrInvalidPrefix, prefix)
	}
	return nil
}

func stripPrefix(req *http.Request, prefix string) *http.Request {
	path := strings.TrimPrefix(req.URL.Path, prefix)
	if path == "" {
		path = "/"
	}

	out := req.Clone(req.Context())
	out.URL = new(url.URL)
	*out.URL = *req.URL
	out.URL.Path = path
	out.URL.RawPath = ""
	return out
}
