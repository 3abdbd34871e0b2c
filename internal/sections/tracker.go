// Package sections tracks which home page section is in view so the
// navigation bar can highlight it. It never changes the route.
package sections

import (
	"strings"
	"sync"
)

type Section string

const (
	SectionHome    Section = "home"
	SectionAbout   Section = "about"
	SectionContact Section = "contact"
)

// DefaultThreshold is the visible fraction of a section that counts as a crossing.
const DefaultThreshold = 0.45

// WatchedSections lists the observed element ids in registration order.
var WatchedSections = []string{"home", "about", "services", "projects", "contact"}

// SectionFor collapses an element id onto the coarser highlight set.
func SectionFor(id string) Section {
	switch id {
	case "about":
		return SectionAbout
	case "contact":
		return SectionContact
	default:
		return SectionHome
	}
}

// Entry is one visibility crossing reported by the platform.
type Entry struct {
	SectionID      string  `json:"section_id"`
	IsIntersecting bool    `json:"is_intersecting"`
	Ratio          float64 `json:"ratio"`
}

// Policy decides which intersecting entry of a batch wins.
type Policy int

const (
	// PolicyLastWriter keeps the last intersecting entry in batch order.
	PolicyLastWriter Policy = iota
	// PolicyLargestRatio keeps the entry with the largest visible ratio;
	// ties go to the earlier entry.
	PolicyLargestRatio
)

func ParsePolicy(s string) Policy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "largest-ratio", "largest_ratio", "ratio":
		return PolicyLargestRatio
	default:
		return PolicyLastWriter
	}
}

func (p Policy) String() string {
	if p == PolicyLargestRatio {
		return "largest-ratio"
	}
	return "last-writer"
}

// Observer registers elements with the platform's visibility observer.
type Observer interface {
	Observe(sectionID string, threshold float64)
	Disconnect()
}

type Tracker struct {
	mu        sync.Mutex
	observer  Observer
	policy    Policy
	threshold float64
	active    Section
	running   bool
	listeners map[int]func(Section)
	nextID    int
}

func NewTracker(observer Observer, policy Policy) *Tracker {
	return &Tracker{
		observer:  observer,
		policy:    policy,
		threshold: DefaultThreshold,
		active:    SectionHome,
		listeners: make(map[int]func(Section)),
	}
}

// Start registers every watched section. Calling it twice is a no-op.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}
	t.running = true
	for _, id := range WatchedSections {
		t.observer.Observe(id, t.threshold)
	}
}

// Stop disconnects the observer. Batches arriving afterwards are dropped.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.running = false
	t.observer.Disconnect()
}

func (t *Tracker) Active() Section {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Tracker) Policy() Policy {
	return t.policy
}

func (t *Tracker) Threshold() float64 {
	return t.threshold
}

// HandleBatch applies one notification batch and returns the active section.
func (t *Tracker) HandleBatch(entries []Entry) Section {
	t.mu.Lock()
	if !t.running {
		active := t.active
		t.mu.Unlock()
		return active
	}

	next, ok := t.pick(entries)
	if !ok || next == t.active {
		active := t.active
		t.mu.Unlock()
		return active
	}

	t.active = next
	fns := make([]func(Section), 0, len(t.listeners))
	for _, fn := range t.listeners {
		fns = append(fns, fn)
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
	return next
}

func (t *Tracker) pick(entries []Entry) (Section, bool) {
	var (
		winner Section
		best   = -1.0
		found  bool
	)
	for _, e := range entries {
		if !e.IsIntersecting {
			continue
		}
		// A zero ratio means the platform did not report one.
		if e.Ratio > 0 && e.Ratio < t.Threshold() {
			continue
		}
		switch t.policy {
		case PolicyLargestRatio:
			if e.Ratio > best {
				best = e.Ratio
				winner = SectionFor(e.SectionID)
			}
		default:
			winner = SectionFor(e.SectionID)
		}
		found = true
	}
	return winner, found
}

// OnChange registers fn to run after every active section change.
func (t *Tracker) OnChange(fn func(Section)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	t.listeners[id] = fn

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.listeners, id)
	}
}
