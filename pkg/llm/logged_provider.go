package llm

import (
	"context"
	"log"
	"strings"
	"time"
)

const trafficSnippetCap = 300

// LoggedProvider decorates a Provider with a dedicated traffic log: one line
// per model call recording the operation, latency, a prompt snippet and the
// reply or error. Logging never alters the call result.
type LoggedProvider struct {
	inner   Provider
	traffic *log.Logger
}

var _ Provider = &LoggedProvider{}

func NewLoggedProvider(inner Provider, traffic *log.Logger) *LoggedProvider {
	return &LoggedProvider{
		inner:   inner,
		traffic: traffic,
	}
}

func (p *LoggedProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	start := time.Now()
	reply, err := p.inner.Chat(ctx, history, options...)
	p.record("chat", lastContent(history), reply, start, err)
	return reply, err
}

func (p *LoggedProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	start := time.Now()
	reply, err := p.inner.Generate(ctx, prompt, options...)
	p.record("generate", prompt, reply, start, err)
	return reply, err
}

func (p *LoggedProvider) record(op, prompt, reply string, start time.Time, err error) {
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		p.traffic.Printf("[%s] error after %s: %v | prompt: %s", op, elapsed, err, snippet(prompt))
		return
	}
	p.traffic.Printf("[%s] ok in %s | prompt: %s | reply: %s", op, elapsed, snippet(prompt), snippet(reply))
}

func snippet(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > trafficSnippetCap {
		return s[:trafficSnippetCap] + "..."
	}
	return s
}

func lastContent(history []Message) string {
	if len(history) == 0 {
		return ""
	}
	return history[len(history)-1].Content
}
