// Package navigation maps the URL fragment onto the page being displayed.
package navigation

import (
	"fmt"
	"strings"
	"sync"
)

type Route int

const (
	Home Route = iota
	About
	Contact
)

func (r Route) String() string {
	switch r {
	case About:
		return "about"
	case Contact:
		return "contact"
	default:
		return "home"
	}
}

func (r Route) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Route) UnmarshalText(text []byte) error {
	switch string(text) {
	case "home":
		*r = Home
	case "about":
		*r = About
	case "contact":
		*r = Contact
	default:
		return fmt.Errorf("unknown route %q", text)
	}
	return nil
}

// Normalize trims target, strips a leading '#' and lower-cases the rest.
func Normalize(target string) string {
	s := strings.TrimSpace(target)
	s = strings.TrimPrefix(s, "#")
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseRoute resolves a fragment. Anything other than about/contact is Home.
func ParseRoute(fragment string) Route {
	switch Normalize(fragment) {
	case "about":
		return About
	case "contact":
		return Contact
	default:
		return Home
	}
}

// Router is the single writer of the current Route.
type Router struct {
	mu          sync.RWMutex
	loc         Location
	current     Route
	listeners   map[int]func(Route)
	nextID      int
	unsubscribe func()
}

// NewRouter derives the initial route from loc and follows its fragment
// changes until Close.
func NewRouter(loc Location) *Router {
	r := &Router{
		loc:       loc,
		current:   ParseRoute(loc.Fragment()),
		listeners: make(map[int]func(Route)),
	}
	r.unsubscribe = loc.Subscribe(r.HandleFragmentChange)
	return r
}

func (r *Router) Current() Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *Router) Fragment() string {
	return r.loc.Fragment()
}

// Navigate moves to target. Home clears the fragment; any other keyword,
// known or not, becomes the fragment verbatim.
func (r *Router) Navigate(target string) {
	clean := Normalize(target)
	if clean == "" || clean == "home" {
		r.loc.SetFragment("")
	} else {
		r.loc.SetFragment(clean)
	}
	// The location stays silent when the fragment is unchanged.
	r.set(ParseRoute(clean))
}

// HandleFragmentChange re-derives the route after back/forward or a manual
// address bar edit.
func (r *Router) HandleFragmentChange(fragment string) {
	r.set(ParseRoute(fragment))
}

// OnChange registers fn to run after every route change.
func (r *Router) OnChange(fn func(Route)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.listeners[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

func (r *Router) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}

func (r *Router) set(route Route) {
	r.mu.Lock()
	if route == r.current {
		r.mu.Unlock()
		return
	}
	r.current = route
	fns := make([]func(Route), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(route)
	}
}
