// Package conversation owns the chat widget's message log and mediates
// completion calls, one at a time.
package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"portfolio-backend/internal/log"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type State string

const (
	StateIdle    State = "idle"
	StateSending State = "sending"
)

const (
	// FallbackReply replaces an empty completion.
	FallbackReply = "Sorry, I didn't catch that."
	// ErrorReply replaces a failed or timed out completion.
	ErrorReply = "I seem to be having a momentary glitch. Must contain too much creative energy! Try again?"

	DefaultGreeting      = "Hi! I'm the portfolio's AI Assistant. Ask me anything about skills, projects, or automation experience!"
	DefaultTimeout       = 30 * time.Second
	DefaultHistoryWindow = 20
)

type Message struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Turn is the role/text pair sent to the completion endpoint.
type Turn struct {
	Role Role
	Text string
}

type CompletionRequest struct {
	SystemPreamble string
	PriorTurns     []Turn
	NewUserText    string
}

// Completer produces the assistant's reply text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type Options struct {
	Greeting       string
	SystemPreamble string
	// Timeout bounds a single completion call.
	Timeout time.Duration
	// HistoryWindow caps how many prior messages are sent; 0 sends all.
	HistoryWindow int
	Now           func() time.Time
}

type EventType string

const (
	EventMessageAppended EventType = "message_appended"
	EventStateChanged    EventType = "state_changed"
)

type Event struct {
	Type    EventType
	Message Message
	State   State
}

type Manager struct {
	mu        sync.Mutex
	completer Completer
	opts      Options
	messages  []Message
	state     State
	draft     string
	listeners map[int]func(Event)
	nextID    int
}

func NewManager(completer Completer, opts Options) *Manager {
	if opts.Greeting == "" {
		opts.Greeting = DefaultGreeting
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HistoryWindow < 0 {
		opts.HistoryWindow = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := &Manager{
		completer: completer,
		opts:      opts,
		state:     StateIdle,
		listeners: make(map[int]func(Event)),
	}
	m.messages = []Message{m.SeedGreeting()}
	return m
}

// SeedGreeting builds the assistant message every conversation starts with.
func (m *Manager) SeedGreeting() Message {
	return Message{Role: RoleAssistant, Text: m.opts.Greeting, CreatedAt: m.opts.Now()}
}

func (m *Manager) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Draft() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

func (m *Manager) SetDraft(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = text
}

// Submit sends userText and blocks until the reply is appended. It returns
// false without touching the log when userText is blank or another reply is
// still pending. Completion failures never surface: the turn always ends
// with an assistant message and the manager back in StateIdle.
func (m *Manager) Submit(ctx context.Context, userText string) (Message, bool) {
	m.mu.Lock()
	if strings.TrimSpace(userText) == "" || m.state == StateSending {
		m.mu.Unlock()
		return Message{}, false
	}

	req := CompletionRequest{
		SystemPreamble: m.opts.SystemPreamble,
		PriorTurns:     m.priorTurns(),
		NewUserText:    userText,
	}
	userMsg := Message{Role: RoleUser, Text: userText, CreatedAt: m.opts.Now()}
	m.messages = append(m.messages, userMsg)
	m.draft = ""
	m.state = StateSending
	fns := m.snapshotListeners()
	m.mu.Unlock()

	emit(fns, Event{Type: EventMessageAppended, Message: userMsg, State: StateSending})
	emit(fns, Event{Type: EventStateChanged, State: StateSending})

	text := m.complete(ctx, req)

	m.mu.Lock()
	reply := Message{Role: RoleAssistant, Text: text, CreatedAt: m.opts.Now()}
	m.messages = append(m.messages, reply)
	m.state = StateIdle
	fns = m.snapshotListeners()
	m.mu.Unlock()

	emit(fns, Event{Type: EventMessageAppended, Message: reply, State: StateIdle})
	emit(fns, Event{Type: EventStateChanged, State: StateIdle})

	return reply, true
}

type completion struct {
	text     string
	err      error
	panicked bool
}

// complete runs the call in its own goroutine so a completer that ignores
// ctx still cannot hold the manager in StateSending past the timeout.
func (m *Manager) complete(ctx context.Context, req CompletionRequest) string {
	callCtx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
	defer cancel()

	done := make(chan completion, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("completion panicked: %v", r)
				done <- completion{panicked: true}
			}
		}()
		text, err := m.completer.Complete(callCtx, req)
		done <- completion{text: text, err: err}
	}()

	var res completion
	select {
	case res = <-done:
	case <-callCtx.Done():
		log.Warnw("completion timed out", "error", callCtx.Err(), "prior_turns", len(req.PriorTurns))
		return ErrorReply
	}

	switch {
	case res.panicked:
		return ErrorReply
	case res.err != nil:
		log.Warnw("completion failed", "error", res.err, "prior_turns", len(req.PriorTurns))
		return ErrorReply
	case res.text == "":
		return FallbackReply
	}
	return res.text
}

// priorTurns converts the log (before the new message) into turns, keeping
// only the most recent HistoryWindow entries. Caller holds m.mu.
func (m *Manager) priorTurns() []Turn {
	msgs := m.messages
	if w := m.opts.HistoryWindow; w > 0 && len(msgs) > w {
		msgs = msgs[len(msgs)-w:]
	}
	turns := make([]Turn, len(msgs))
	for i, msg := range msgs {
		turns[i] = Turn{Role: msg.Role, Text: msg.Text}
	}
	return turns
}

// OnEvent registers fn for appended messages and state changes.
func (m *Manager) OnEvent(fn func(Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) snapshotListeners() []func(Event) {
	fns := make([]func(Event), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func emit(fns []func(Event), e Event) {
	for _, fn := range fns {
		fn(e)
	}
}
