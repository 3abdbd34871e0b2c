package navigation

import "sync"

// Location is the addressable fragment of the page URL. Subscribers are
// notified only when the stored fragment actually changes, the same way a
// browser fires hashchange.
type Location interface {
	Fragment() string
	SetFragment(fragment string)
	Subscribe(fn func(fragment string)) (unsubscribe func())
}

// MemoryLocation holds the fragment for one page session.
type MemoryLocation struct {
	mu        sync.Mutex
	fragment  string
	listeners map[int]func(string)
	nextID    int
}

func NewMemoryLocation(fragment string) *MemoryLocation {
	return &MemoryLocation{
		fragment:  stripMarker(fragment),
		listeners: make(map[int]func(string)),
	}
}

func (l *MemoryLocation) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fragment
}

func (l *MemoryLocation) SetFragment(fragment string) {
	fragment = stripMarker(fragment)

	l.mu.Lock()
	if fragment == l.fragment {
		l.mu.Unlock()
		return
	}
	l.fragment = fragment
	fns := make([]func(string), 0, len(l.listeners))
	for _, fn := range l.listeners {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(fragment)
	}
}

func (l *MemoryLocation) Subscribe(fn func(fragment string)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	l.listeners[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.listeners, id)
	}
}

func stripMarker(fragment string) string {
	if len(fragment) > 0 && fragment[0] == '#' {
		return fragment[1:]
	}
	return fragment
}
