// Package session composes the per-tab page controller: router, section
// tracker and conversation manager.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio-backend/internal/conversation"
	"portfolio-backend/internal/models"
	"portfolio-backend/internal/navigation"
	"portfolio-backend/internal/sections"
)

// Publisher pushes page events to whoever is listening for a session.
type Publisher interface {
	Publish(ctx context.Context, sessionID uuid.UUID, msg models.WSMessage)
}

type Config struct {
	SectionPolicy sections.Policy
	Conversation  conversation.Options
	TTL           time.Duration
}

// WebSocket event types
const (
	EventRouteChanged    = "route_changed"
	EventSectionChanged  = "section_changed"
	EventMessageAppended = "message_appended"
	EventStateChanged    = "state_changed"
)

type RouteChanged struct {
	Route    navigation.Route `json:"route"`
	Fragment string           `json:"fragment"`
}

type SectionChanged struct {
	ActiveSection sections.Section `json:"active_section"`
}

type StateChanged struct {
	State conversation.State `json:"state"`
}

type Page struct {
	ID        uuid.UUID
	CreatedAt time.Time

	Router       *navigation.Router
	Tracker      *sections.Tracker
	Conversation *conversation.Manager

	location     *navigation.MemoryLocation
	observations *sections.ObservationList
	unsubscribe  []func()

	mu       sync.Mutex
	lastSeen time.Time
	closed   bool
}

func NewPage(id uuid.UUID, fragment string, completer conversation.Completer, cfg Config, pub Publisher) *Page {
	now := time.Now()
	loc := navigation.NewMemoryLocation(fragment)
	obs := &sections.ObservationList{}

	p := &Page{
		ID:           id,
		CreatedAt:    now,
		Router:       navigation.NewRouter(loc),
		Tracker:      sections.NewTracker(obs, cfg.SectionPolicy),
		Conversation: conversation.NewManager(completer, cfg.Conversation),
		location:     loc,
		observations: obs,
		lastSeen:     now,
	}
	p.Tracker.Start()

	if pub != nil {
		p.unsubscribe = append(p.unsubscribe,
			p.Router.OnChange(func(route navigation.Route) {
				pub.Publish(context.Background(), id, models.WSMessage{
					Type:    EventRouteChanged,
					Payload: RouteChanged{Route: route, Fragment: loc.Fragment()},
				})
			}),
			p.Tracker.OnChange(func(s sections.Section) {
				pub.Publish(context.Background(), id, models.WSMessage{
					Type:    EventSectionChanged,
					Payload: SectionChanged{ActiveSection: s},
				})
			}),
			p.Conversation.OnEvent(func(e conversation.Event) {
				switch e.Type {
				case conversation.EventMessageAppended:
					pub.Publish(context.Background(), id, models.WSMessage{Type: EventMessageAppended, Payload: e.Message})
				case conversation.EventStateChanged:
					pub.Publish(context.Background(), id, models.WSMessage{Type: EventStateChanged, Payload: StateChanged{State: e.State}})
				}
			}),
		)
	}

	return p
}

// Watch tells the client which elements to observe and at what threshold.
type Watch struct {
	Policy       string                 `json:"policy"`
	Threshold    float64                `json:"threshold"`
	Observations []sections.Observation `json:"observations"`
}

type Snapshot struct {
	ID            uuid.UUID              `json:"id"`
	Route         navigation.Route       `json:"route"`
	Fragment      string                 `json:"fragment"`
	ActiveSection sections.Section       `json:"active_section"`
	Watch         Watch                  `json:"watch"`
	State         conversation.State     `json:"state"`
	Draft         string                 `json:"draft"`
	Messages      []conversation.Message `json:"messages"`
}

func (p *Page) Snapshot() Snapshot {
	return Snapshot{
		ID:            p.ID,
		Route:         p.Router.Current(),
		Fragment:      p.location.Fragment(),
		ActiveSection: p.Tracker.Active(),
		Watch: Watch{
			Policy:       p.Tracker.Policy().String(),
			Threshold:    p.Tracker.Threshold(),
			Observations: p.observations.Observations(),
		},
		State:    p.Conversation.State(),
		Draft:    p.Conversation.Draft(),
		Messages: p.Conversation.Messages(),
	}
}

// SetFragment changes the page's location as if the user edited the URL;
// the router follows through its location subscription.
func (p *Page) SetFragment(fragment string) {
	p.location.SetFragment(fragment)
}

func (p *Page) Touch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSeen = time.Now()
}

// Busy reports whether a reply is still in flight; busy pages are not evicted.
func (p *Page) Busy() bool {
	return p.Conversation.State() == conversation.StateSending
}

func (p *Page) idleSince(now time.Time) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return now.Sub(p.lastSeen)
}

// Close tears down observers and listeners. A reply already in flight still
// lands in the log but is no longer published.
func (p *Page) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	for _, fn := range p.unsubscribe {
		fn()
	}
	p.Tracker.Stop()
	p.Router.Close()
}
