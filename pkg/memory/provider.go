package memory

import (
	"context"
	"time"

	"vault-copilot-be/pkg/llm"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "USER"
	RoleAssistant Role = "ASSISTANT"
	RoleSystem    Role = "SYSTEM"
)

// Turn is one conversation message. Immutable once appended.
type Turn struct {
	Role      Role
	Text      string
	CreatedAt time.Time
}

// Policy caps the context window per platform. A turn is included whole or
// not at all; no truncation within a turn.
type Policy struct {
	MaxMessages int
	MaxChars    int
}

// TurnSource yields a conversation's turns newest-first.
type TurnSource interface {
	TurnsNewestFirst(ctx context.Context, conversationID uuid.UUID) ([]Turn, error)
}

// Provider builds bounded context windows over conversation history.
type Provider struct {
	source TurnSource
	policy Policy
}

func NewProvider(source TurnSource, policy Policy) *Provider {
	if policy.MaxMessages <= 0 {
		policy.MaxMessages = 50
	}
	if policy.MaxChars <= 0 {
		policy.MaxChars = 16000
	}
	return &Provider{
		source: source,
		policy: policy,
	}
}

// BuildContextMessages returns the most recent turns that fit the policy,
// in chronological order.
func (p *Provider) BuildContextMessages(ctx context.Context, conversationID uuid.UUID) ([]Turn, error) {
	turns, err := p.source.TurnsNewestFirst(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return Window(turns, p.policy), nil
}

// Window applies a policy to a newest-first slice of turns and returns the
// kept turns in chronological order.
func Window(newestFirst []Turn, policy Policy) []Turn {
	var kept []Turn
	chars := 0
	for _, turn := range newestFirst {
		if len(kept) >= policy.MaxMessages {
			break
		}
		if chars+len(turn.Text) > policy.MaxChars {
			break
		}
		chars += len(turn.Text)
		kept = append(kept, turn)
	}

	// Restore chronological order
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}

// Tail returns the last n turns of a chronological history. The intent
// classifier uses a fixed 4-turn window independent of platform policy.
func Tail(turns []Turn, n int) []Turn {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

// ToMessages converts turns to the provider-agnostic LLM message format.
func ToMessages(turns []Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := "user"
		switch t.Role {
		case RoleAssistant:
			role = "assistant"
		case RoleSystem:
			role = "system"
		}
		messages = append(messages, llm.Message{Role: role, Content: t.Text})
	}
	return messages
}
