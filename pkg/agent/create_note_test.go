package agent

import (
	"context"
	"errors"
	"testing"

	"vault-copilot-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	saved      []string
	flashcards []string
	cardCounts []int
}

func (p *recordingPublisher) NoteSaved(ctx context.Context, vaultID, path string) {
	p.saved = append(p.saved, path)
}

func (p *recordingPublisher) FlashcardsGenerated(ctx context.Context, vaultID, path string, count int) {
	p.flashcards = append(p.flashcards, path)
	p.cardCounts = append(p.cardCounts, count)
}

func TestCreateNoteWithInlineContent(t *testing.T) {
	fs := &fakeVaultFS{files: map[string]string{}}
	pub := &recordingPublisher{}
	agent := NewCreateNoteAgent(fs, &stubLLM{response: "should not be used"}, pub, logger.NewNop())

	result, err := agent.Execute(context.Background(),
		"create a note titled shopping list: milk, eggs, bread",
		nil, searchContext())

	require.NoError(t, err)
	require.Equal(t, KindNoteCreated, result.Kind)
	assert.Equal(t, "shopping list", result.NoteCreated.Title)
	assert.Equal(t, "shopping-list.md", result.NoteCreated.Path)
	assert.Contains(t, fs.files["shopping-list.md"], "# shopping list")
	assert.Contains(t, fs.files["shopping-list.md"], "milk, eggs, bread")
	assert.Equal(t, []string{"shopping-list.md"}, pub.saved)
}

func TestCreateNoteTopicOnlyDraftsBody(t *testing.T) {
	fs := &fakeVaultFS{files: map[string]string{}}
	agent := NewCreateNoteAgent(fs, &stubLLM{response: "A starter line about Go."}, nil, logger.NewNop())

	result, err := agent.Execute(context.Background(), "create a note about Go concurrency", nil, searchContext())

	require.NoError(t, err)
	assert.Equal(t, "Go concurrency", result.NoteCreated.Title)
	assert.Contains(t, fs.files[result.NoteCreated.Path], "A starter line about Go.")
}

func TestCreateNoteDraftFailureCreatesEmptyNote(t *testing.T) {
	fs := &fakeVaultFS{files: map[string]string{}}
	agent := NewCreateNoteAgent(fs, &stubLLM{err: errors.New("model offline")}, nil, logger.NewNop())

	result, err := agent.Execute(context.Background(), "create a note about chess openings", nil, searchContext())

	require.NoError(t, err, "a dead model must not block note creation")
	assert.Contains(t, fs.files[result.NoteCreated.Path], "# chess openings")
}

func TestCreateNoteAvoidsFilenameCollision(t *testing.T) {
	fs := &fakeVaultFS{files: map[string]string{
		"todo.md":   "existing",
		"todo-2.md": "also existing",
	}}
	agent := NewCreateNoteAgent(fs, &stubLLM{response: "body"}, nil, logger.NewNop())

	result, err := agent.Execute(context.Background(), "create a note titled todo: buy milk", nil, searchContext())

	require.NoError(t, err)
	assert.Equal(t, "todo-3.md", result.NoteCreated.Path)
	assert.Equal(t, "existing", fs.files["todo.md"])
}

func TestCreateNoteWithoutVault(t *testing.T) {
	agent := NewCreateNoteAgent(&fakeVaultFS{files: map[string]string{}}, &stubLLM{}, nil, logger.NewNop())

	result, err := agent.Execute(context.Background(), "create a note titled x", nil, &Context{})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoVault)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Meeting Minutes", want: "Meeting-Minutes"},
		{in: "hello, world!", want: "hello-world"},
		{in: "   spaced   out   ", want: "spaced-out"},
		{in: "???", want: "untitled"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
