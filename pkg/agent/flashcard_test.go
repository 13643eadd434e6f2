package agent

import (
	"context"
	"testing"

	"vault-copilot-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlashcards(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []Flashcard
	}{
		{
			name: "well formed pairs",
			response: `Q: What is a goroutine?
A: A lightweight thread managed by the Go runtime.
Q: What does channel send do on a nil channel?
A: Blocks forever.`,
			want: []Flashcard{
				{Question: "What is a goroutine?", Answer: "A lightweight thread managed by the Go runtime."},
				{Question: "What does channel send do on a nil channel?", Answer: "Blocks forever."},
			},
		},
		{
			name: "noise between pairs is ignored",
			response: `Here are your flashcards:

Q: What is TCP?
A: A reliable, ordered transport protocol.

Hope these help!`,
			want: []Flashcard{
				{Question: "What is TCP?", Answer: "A reliable, ordered transport protocol."},
			},
		},
		{
			name: "lowercase markers",
			response: `q: capital of France?
a: Paris`,
			want: []Flashcard{
				{Question: "capital of France?", Answer: "Paris"},
			},
		},
		{
			name: "unanswered question dropped",
			response: `Q: first question?
A: first answer
Q: dangling question?`,
			want: []Flashcard{
				{Question: "first question?", Answer: "first answer"},
			},
		},
		{
			name: "answer without question dropped",
			response: `A: orphan answer
Q: real question?
A: real answer`,
			want: []Flashcard{
				{Question: "real question?", Answer: "real answer"},
			},
		},
		{
			name:     "empty response",
			response: "",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFlashcards(tt.response))
		})
	}
}

func TestFlashcardAgentPublishesGeneratedEvent(t *testing.T) {
	fs := &fakeVaultFS{files: map[string]string{
		"bio/photosynthesis.md": "Chlorophyll absorbs light in the chloroplast.",
	}}
	pub := &recordingPublisher{}
	agent := NewFlashcardAgent(fs, &stubLLM{
		response: "Q: What absorbs light?\nA: Chlorophyll.\nQ: Where does it sit?\nA: In the chloroplast.",
	}, nil, pub, logger.NewNop())

	actx := searchContext()
	actx.CurrentNotePath = "bio/photosynthesis.md"

	result, err := agent.Execute(context.Background(), "generate flashcards from this note", nil, actx)

	require.NoError(t, err)
	require.Equal(t, KindFlashcardsGenerated, result.Kind)
	assert.Equal(t, 2, result.FlashcardsGenerated.Count)

	require.Equal(t, []string{"flashcards/photosynthesis.md"}, pub.saved)
	assert.Equal(t, []string{"flashcards/photosynthesis.md"}, pub.flashcards)
	assert.Equal(t, []int{2}, pub.cardCounts)
}
