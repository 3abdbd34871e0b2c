package services

import (
	"context"
	"fmt"
	"time"

	"portfolio-backend/internal/conversation"
	"portfolio-backend/internal/log"
)

type CompleterConfig struct {
	Provider        string // "gemini" | "openai"
	GeminiAPIKey    string
	GeminiModel     string
	OpenAIAPIKey    string
	OpenAIModel     string
	ConcurrentReqs  int
	MissingKeyReply string
}

// NewCompleter picks the provider named in cfg. A provider without an API key
// yields a completer that answers with cfg.MissingKeyReply and never touches
// the network. The returned func releases provider resources.
func NewCompleter(cfg CompleterConfig) (conversation.Completer, func(), error) {
	noop := func() {}

	switch cfg.Provider {
	case "", "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Warnf("⚠ GEMINI_API_KEY not set, chat replies will ask visitors to reach out directly")
			return &missingKeyCompleter{reply: cfg.MissingKeyReply}, noop, nil
		}
		gemini, err := NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, noop, err
		}
		return NewLimitedCompleter(gemini, cfg.ConcurrentReqs), gemini.Close, nil

	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Warnf("⚠ OPENAI_API_KEY not set, chat replies will ask visitors to reach out directly")
			return &missingKeyCompleter{reply: cfg.MissingKeyReply}, noop, nil
		}
		return NewLimitedCompleter(NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel), cfg.ConcurrentReqs), noop, nil

	default:
		return nil, noop, fmt.Errorf("unsupported completion provider: %s", cfg.Provider)
	}
}

// missingKeyCompleter short-circuits every call with a fixed reply.
type missingKeyCompleter struct {
	reply string
}

func (c *missingKeyCompleter) Complete(ctx context.Context, req conversation.CompletionRequest) (string, error) {
	if c.reply == "" {
		return "I'm sorry, but I can't connect to my brain right now (API Key missing).", nil
	}
	return c.reply, nil
}

// LimitedCompleter bounds concurrent provider calls across all sessions.
type LimitedCompleter struct {
	next     conversation.Completer
	rateChan chan struct{} // Token bucket
}

func NewLimitedCompleter(next conversation.Completer, concurrentReqs int) *LimitedCompleter {
	if concurrentReqs <= 0 {
		concurrentReqs = 1
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}
	return &LimitedCompleter{next: next, rateChan: rateChan}
}

func (c *LimitedCompleter) Complete(ctx context.Context, req conversation.CompletionRequest) (string, error) {
	if err := c.acquireRate(ctx); err != nil {
		return "", err
	}
	defer c.releaseRate()
	return c.next.Complete(ctx, req)
}

// acquireRate blocks until a rate slot is available
func (c *LimitedCompleter) acquireRate(ctx context.Context) error {
	select {
	case <-c.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Minute):
		return fmt.Errorf("timeout waiting for completion rate slot")
	}
}

func (c *LimitedCompleter) releaseRate() {
	c.rateChan <- struct{}{}
}
