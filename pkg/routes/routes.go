// Package routes declares HTTP endpoints as prefix groups that handlers
// expose and modules register on a ServeMux.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group organizes routes under a common prefix.
type Group struct {
	Prefix string
	Routes []Route
}

// Patterns returns the ServeMux patterns for every route in g.
func (g Group) Patterns() []string {
	patterns := make([]string, 0, len(g.Routes))
	for _, r := range g.Routes {
		patterns = append(patterns, r.Method+" "+g.Prefix+r.Pattern)
	}
	return patterns
}

// Register adds all routes from the given groups to the mux and returns the
// registered patterns in order.
func Register(mux *http.ServeMux, groups ...Group) []string {
	var registered []string
	for _, g := range groups {
		for i, pattern := range g.Patterns() {
			mux.HandleFunc(pattern, g.Routes[i].Handler)
			registered = append(registered, pattern)
		}
	}
	return registered
}
