package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []CompletionRequest
	// gate, when set, blocks Complete until closed.
	gate    chan struct{}
	entered chan struct{}
}

func (s *stubCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	gate, entered := s.gate, s.entered
	s.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

func (s *stubCompleter) Calls() []CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CompletionRequest(nil), s.calls...)
}

func TestFreshManagerHasGreetingOnly(t *testing.T) {
	t.Parallel()

	m := NewManager(&stubCompleter{}, Options{Greeting: "Hello there"})

	msgs := m.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Equal(t, "Hello there", msgs[0].Text)
	assert.Equal(t, StateIdle, m.State())
}

func TestDefaultGreeting(t *testing.T) {
	t.Parallel()

	m := NewManager(&stubCompleter{}, Options{})
	assert.Equal(t, DefaultGreeting, m.Messages()[0].Text)
}

func TestBlankSubmitIsNoop(t *testing.T) {
	t.Parallel()

	stub := &stubCompleter{reply: "unused"}
	m := NewManager(stub, Options{})

	for _, input := range []string{"", "   ", "\n\t"} {
		_, ok := m.Submit(context.Background(), input)
		assert.False(t, ok)
	}

	assert.Len(t, m.Messages(), 1)
	assert.Equal(t, StateIdle, m.State())
	assert.Empty(t, stub.Calls())
}

func TestSubmitWhileSendingIsRejected(t *testing.T) {
	t.Parallel()

	stub := &stubCompleter{
		reply:   "first reply",
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	m := NewManager(stub, Options{})

	done := make(chan Message)
	go func() {
		reply, _ := m.Submit(context.Background(), "First")
		done <- reply
	}()

	<-stub.entered
	assert.Equal(t, StateSending, m.State())

	_, ok := m.Submit(context.Background(), "Hello")
	assert.False(t, ok)
	assert.Len(t, m.Messages(), 2, "only the first user message is logged")

	close(stub.gate)
	reply := <-done
	assert.Equal(t, "first reply", reply.Text)
	assert.Equal(t, StateIdle, m.State())
	assert.Len(t, stub.Calls(), 1)
}

func TestFailedCompletionAppendsFallback(t *testing.T) {
	t.Parallel()

	m := NewManager(&stubCompleter{err: errors.New("network down")}, Options{})

	reply, ok := m.Submit(context.Background(), "Hi")
	require.True(t, ok)

	msgs := m.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, Message{Role: RoleUser, Text: "Hi", CreatedAt: msgs[1].CreatedAt}, msgs[1])
	assert.Equal(t, RoleAssistant, msgs[2].Role)
	assert.Equal(t, ErrorReply, msgs[2].Text)
	assert.Equal(t, ErrorReply, reply.Text)
	assert.Equal(t, StateIdle, m.State())
}

func TestSuccessfulCompletionAppendsReply(t *testing.T) {
	t.Parallel()

	m := NewManager(&stubCompleter{reply: "Great to meet you!"}, Options{})

	_, ok := m.Submit(context.Background(), "Hi")
	require.True(t, ok)

	msgs := m.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "Great to meet you!", msgs[2].Text)
}

func TestEmptyCompletionUsesFallback(t *testing.T) {
	t.Parallel()

	m := NewManager(&stubCompleter{reply: ""}, Options{})

	reply, ok := m.Submit(context.Background(), "Hi")
	require.True(t, ok)
	assert.Equal(t, "Sorry, I didn't catch that.", reply.Text)
}

func TestWhitespaceCompletionKeptAsIs(t *testing.T) {
	t.Parallel()

	m := NewManager(&stubCompleter{reply: " \n"}, Options{})

	reply, ok := m.Submit(context.Background(), "Hi")
	require.True(t, ok)
	assert.Equal(t, " \n", reply.Text)
	assert.NotEqual(t, FallbackReply, reply.Text)
}

func TestSubmitKeepsRawTextAndClearsDraft(t *testing.T) {
	t.Parallel()

	stub := &stubCompleter{reply: "ok"}
	m := NewManager(stub, Options{SystemPreamble: "be nice"})
	m.SetDraft("  padded  ")

	_, ok := m.Submit(context.Background(), "  padded  ")
	require.True(t, ok)

	assert.Equal(t, "", m.Draft())
	assert.Equal(t, "  padded  ", m.Messages()[1].Text)

	calls := stub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "be nice", calls[0].SystemPreamble)
	assert.Equal(t, "  padded  ", calls[0].NewUserText)
	assert.Equal(t, []Turn{{Role: RoleAssistant, Text: DefaultGreeting}}, calls[0].PriorTurns)
}

func TestPriorTurnsFollowLogOrder(t *testing.T) {
	t.Parallel()

	stub := &stubCompleter{reply: "answer"}
	m := NewManager(stub, Options{Greeting: "greet"})

	m.Submit(context.Background(), "one")
	m.Submit(context.Background(), "two")

	calls := stub.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []Turn{
		{Role: RoleAssistant, Text: "greet"},
		{Role: RoleUser, Text: "one"},
		{Role: RoleAssistant, Text: "answer"},
	}, calls[1].PriorTurns)
	assert.Equal(t, "two", calls[1].NewUserText)
}

func TestHistoryWindowCapsPriorTurns(t *testing.T) {
	t.Parallel()

	stub := &stubCompleter{reply: "r"}
	m := NewManager(stub, Options{Greeting: "g", HistoryWindow: 2})

	m.Submit(context.Background(), "a")
	m.Submit(context.Background(), "b")

	calls := stub.Calls()
	assert.Equal(t, []Turn{
		{Role: RoleUser, Text: "a"},
		{Role: RoleAssistant, Text: "r"},
	}, calls[1].PriorTurns)
	assert.Len(t, m.Messages(), 5, "the log itself is never truncated")
}

func TestTimeoutFallsBackToErrorReply(t *testing.T) {
	t.Parallel()

	stub := &stubCompleter{gate: make(chan struct{})}
	m := NewManager(stub, Options{Timeout: 20 * time.Millisecond})

	reply, ok := m.Submit(context.Background(), "anyone there?")
	require.True(t, ok)
	assert.Equal(t, ErrorReply, reply.Text)
	assert.Equal(t, StateIdle, m.State())
}

type stubbornCompleter struct{ release chan struct{} }

func (s stubbornCompleter) Complete(context.Context, CompletionRequest) (string, error) {
	<-s.release
	return "too late", nil
}

func TestTimeoutHoldsForCompleterIgnoringContext(t *testing.T) {
	t.Parallel()

	stub := stubbornCompleter{release: make(chan struct{})}
	defer close(stub.release)
	m := NewManager(stub, Options{Timeout: 20 * time.Millisecond})

	reply, ok := m.Submit(context.Background(), "hello?")
	require.True(t, ok)
	assert.Equal(t, ErrorReply, reply.Text)
	assert.Equal(t, StateIdle, m.State())
}

type panickingCompleter struct{}

func (panickingCompleter) Complete(context.Context, CompletionRequest) (string, error) {
	panic("boom")
}

func TestPanickingCompleterIsAbsorbed(t *testing.T) {
	t.Parallel()

	m := NewManager(panickingCompleter{}, Options{})

	reply, ok := m.Submit(context.Background(), "Hi")
	require.True(t, ok)
	assert.Equal(t, ErrorReply, reply.Text)
	assert.Equal(t, StateIdle, m.State())
}

func TestEventsFireInOrder(t *testing.T) {
	t.Parallel()

	m := NewManager(&stubCompleter{reply: "yo"}, Options{})

	var events []Event
	m.OnEvent(func(e Event) { events = append(events, e) })

	m.Submit(context.Background(), "hey")

	require.Len(t, events, 4)
	assert.Equal(t, EventMessageAppended, events[0].Type)
	assert.Equal(t, RoleUser, events[0].Message.Role)
	assert.Equal(t, EventStateChanged, events[1].Type)
	assert.Equal(t, StateSending, events[1].State)
	assert.Equal(t, EventMessageAppended, events[2].Type)
	assert.Equal(t, "yo", events[2].Message.Text)
	assert.Equal(t, StateIdle, events[3].State)
}
