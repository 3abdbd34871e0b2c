package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio-backend/internal/conversation"
	"portfolio-backend/internal/log"
)

const DefaultTTL = 2 * time.Hour

type ErrNotFound struct{ ID uuid.UUID }

func (e *ErrNotFound) Error() string { return "session not found: " + e.ID.String() }

// Store keeps live pages in memory and evicts idle ones.
type Store struct {
	mu        sync.RWMutex
	pages     map[uuid.UUID]*Page
	completer conversation.Completer
	cfg       Config
	pub       Publisher
	stopChan  chan struct{}
	stopOnce  sync.Once
}

func NewStore(completer conversation.Completer, cfg Config, pub Publisher) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Store{
		pages:     make(map[uuid.UUID]*Page),
		completer: completer,
		cfg:       cfg,
		pub:       pub,
		stopChan:  make(chan struct{}),
	}
}

func (s *Store) Create(fragment string) *Page {
	p := NewPage(uuid.New(), fragment, s.completer, s.cfg, s.pub)

	s.mu.Lock()
	s.pages[p.ID] = p
	count := len(s.pages)
	s.mu.Unlock()

	log.Infow("Session started", "session_id", p.ID, "route", p.Router.Current().String(), "live_sessions", count)
	return p
}

func (s *Store) Get(id uuid.UUID) (*Page, error) {
	s.mu.RLock()
	p, ok := s.pages[id]
	s.mu.RUnlock()
	if !ok {
		return nil, &ErrNotFound{ID: id}
	}
	p.Touch()
	return p, nil
}

func (s *Store) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	p, ok := s.pages[id]
	delete(s.pages, id)
	s.mu.Unlock()

	if ok {
		p.Close()
		log.Infow("Session ended", "session_id", id)
	}
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}

// Start runs the eviction loop until Stop.
func (s *Store) Start() {
	interval := s.cfg.TTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopChan:
				return
			case now := <-ticker.C:
				s.evictIdle(now)
			}
		}
	}()
}

func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })

	s.mu.Lock()
	pages := s.pages
	s.pages = make(map[uuid.UUID]*Page)
	s.mu.Unlock()

	for _, p := range pages {
		p.Close()
	}
}

func (s *Store) evictIdle(now time.Time) int {
	var expired []*Page

	s.mu.Lock()
	for id, p := range s.pages {
		if p.idleSince(now) > s.cfg.TTL && !p.Busy() {
			expired = append(expired, p)
			delete(s.pages, id)
		}
	}
	s.mu.Unlock()

	for _, p := range expired {
		p.Close()
	}
	if len(expired) > 0 {
		log.Infof("Evicted %d idle sessions", len(expired))
	}
	return len(expired)
}
