package agent

import (
	"context"
	"errors"
	"testing"

	"vault-copilot-be/internal/pkg/logger"
	"vault-copilot-be/pkg/llm"
	"vault-copilot-be/pkg/memory"

	"github.com/stretchr/testify/assert"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want IntentType
	}{
		{name: "exact label", raw: "CREATE_NOTE", want: IntentCreateNote},
		{name: "lowercase label", raw: "search_notes", want: IntentSearchNotes},
		{name: "surrounding whitespace", raw: "  SUMMARIZE_NOTE  ", want: IntentSummarizeNote},
		{name: "quoted label", raw: `"GENERATE_FLASHCARDS"`, want: IntentGenerateFlashcards},
		{name: "trailing period", raw: "STUDY_GOAL.", want: IntentStudyGoal},
		{name: "normal chat", raw: "NORMAL_CHAT", want: IntentNormalChat},
		{name: "arbitrary text", raw: "banana", want: IntentUnknown},
		{name: "partial label", raw: "CREATE", want: IntentUnknown},
		{name: "empty", raw: "", want: IntentUnknown},
		{name: "sentence containing label", raw: "CREATE_NOTE_EXTRA", want: IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseIntent(tt.raw)
			if got != tt.want {
				t.Errorf("ParseIntent(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

type stubLLM struct {
	response string
	err      error
	prompts  []string
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if len(history) > 0 {
		s.prompts = append(s.prompts, history[len(history)-1].Content)
	}
	return s.response, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func TestClassifierResolvesLabel(t *testing.T) {
	c := NewClassifier(&stubLLM{response: "SEARCH_NOTES"}, logger.NewNop())

	intent, err := c.Classify(context.Background(), "find my kubernetes notes", nil, nil)

	assert.NoError(t, err)
	assert.Equal(t, IntentSearchNotes, intent)
}

func TestClassifierChattyResponseUsesFirstToken(t *testing.T) {
	c := NewClassifier(&stubLLM{response: "CREATE_NOTE because the user asked for a note"}, logger.NewNop())

	intent, err := c.Classify(context.Background(), "write a note about go", nil, nil)

	assert.NoError(t, err)
	assert.Equal(t, IntentCreateNote, intent)
}

func TestClassifierUnparseableResponseIsUnknown(t *testing.T) {
	c := NewClassifier(&stubLLM{response: "I think this is probably a search"}, logger.NewNop())

	intent, err := c.Classify(context.Background(), "hello", nil, nil)

	assert.NoError(t, err)
	assert.Equal(t, IntentUnknown, intent)
}

func TestClassifierProviderFailureDegradesToUnknown(t *testing.T) {
	c := NewClassifier(&stubLLM{err: errors.New("connection refused")}, logger.NewNop())

	intent, err := c.Classify(context.Background(), "hello", nil, nil)

	assert.NoError(t, err, "classifier must not surface provider errors")
	assert.Equal(t, IntentUnknown, intent)
}

func TestClassifierPromptWindowsHistory(t *testing.T) {
	stub := &stubLLM{response: "NORMAL_CHAT"}
	c := NewClassifier(stub, logger.NewNop())

	history := []memory.Turn{
		{Role: memory.RoleUser, Text: "turn-1"},
		{Role: memory.RoleAssistant, Text: "turn-2"},
		{Role: memory.RoleUser, Text: "turn-3"},
		{Role: memory.RoleAssistant, Text: "turn-4"},
		{Role: memory.RoleUser, Text: "turn-5"},
		{Role: memory.RoleAssistant, Text: "turn-6"},
	}

	_, err := c.Classify(context.Background(), "hi", history, nil)
	assert.NoError(t, err)

	if assert.Len(t, stub.prompts, 1) {
		prompt := stub.prompts[0]
		assert.NotContains(t, prompt, "turn-1")
		assert.NotContains(t, prompt, "turn-2")
		assert.Contains(t, prompt, "turn-3")
		assert.Contains(t, prompt, "turn-6")
	}
}
