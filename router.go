package apicall

import (
	"fmt"
	"net/url"

	"github.com/gorilla/mux"
)

// Router turns a route name and its parameters into a concrete URL.
type Router interface {
	URL(name string, params map[string]string) (string, error)
}

// RouterFunc adapts a function to the Router interface.
type RouterFunc func(name string, params map[string]string) (string, error)

// URL calls f.
func (f RouterFunc) URL(name string, params map[string]string) (string, error) {
	return f(name, params)
}

// MuxRouter resolves names against the named routes of a gorilla/mux router,
// usually the same router the API under test serves from.
//
// Parameters that match route variables are substituted into the route template;
// the remaining ones are appended as a query string. BaseURL, when set, is joined
// in front of the route path.
type MuxRouter struct {
	router  *mux.Router
	BaseURL string
}

// NewMuxRouter wraps r.
func NewMuxRouter(r *mux.Router, baseURL string) *MuxRouter {
	return &MuxRouter{router: r, BaseURL: baseURL}
}

// URL implements Router.
func (m *MuxRouter) URL(name string, params map[string]string) (string, error) {
	route := m.router.Get(name)
	if route == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}

	varNames, err := route.GetVarNames()
	if err != nil {
		return "", fmt.Errorf("route %s: %w", name, err)
	}

	consumed := make(map[string]bool, len(varNames))
	pairs := make([]string, 0, len(varNames)*2)
	for _, v := range varNames {
		value, ok := params[v]
		if !ok {
			return "", fmt.Errorf("route %s: missing parameter %q", name, v)
		}
		pairs = append(pairs, v, value)
		consumed[v] = true
	}

	built, err := route.URL(pairs...)
	if err != nil {
		return "", fmt.Errorf("route %s: %w", name, err)
	}

	extra := url.Values{}
	for k, v := range params {
		if !consumed[k] {
			extra.Set(k, v)
		}
	}

	return resolveAgainstBase(m.BaseURL, appendQuery(built.String(), extra.Encode()))
}
