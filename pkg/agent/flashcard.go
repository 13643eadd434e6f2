package agent

import (
	"context"
	"fmt"
	"strings"

	"vault-copilot-be/internal/pkg/logger"
	"vault-copilot-be/pkg/llm"
	"vault-copilot-be/pkg/memory"
	"vault-copilot-be/pkg/vaultfs"
)

const defaultCardCount = 10

var flashcardTopicPatterns = compilePatterns(
	`(?i)^(?:generate|make|create) (?:some )?flashcards? (?:about|on|from|for) (.+)$`,
	`(?i)^flashcards? (?:about|on|from|for) (.+)$`,
	`(?i)^quiz me (?:about|on) (.+)$`,
)

// FlashcardAgent turns the open note (or a retrieved topic) into Q/A cards
// and persists them as a markdown note in the vault.
type FlashcardAgent struct {
	fs        vaultfs.FileSystem
	llm       llm.Provider
	retriever ChunkRetriever // used when no note is open
	publisher NotePublisher  // optional
	log       logger.ILogger
}

var _ Agent = &FlashcardAgent{}

func NewFlashcardAgent(fs vaultfs.FileSystem, provider llm.Provider, retriever ChunkRetriever, publisher NotePublisher, log logger.ILogger) *FlashcardAgent {
	return &FlashcardAgent{
		fs:        fs,
		llm:       provider,
		retriever: retriever,
		publisher: publisher,
		log:       log,
	}
}

func (a *FlashcardAgent) Execute(ctx context.Context, message string, history []memory.Turn, actx *Context) (*Result, error) {
	if !actx.HasVault() {
		return nil, ErrNoVault
	}
	if a.fs == nil || a.llm == nil {
		return nil, ErrMissingCollaborator
	}

	source, label, err := a.sourceMaterial(ctx, message, actx)
	if err != nil {
		return nil, err
	}

	cards, err := a.generateCards(ctx, source, actx)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("agent: model produced no usable flashcards")
	}

	notePath, err := a.writeCards(ctx, label, cards)
	if err != nil {
		return nil, err
	}
	if a.publisher != nil {
		a.publisher.NoteSaved(ctx, actx.VaultID, notePath)
		a.publisher.FlashcardsGenerated(ctx, actx.VaultID, notePath, len(cards))
	}

	return NewFlashcardsResult(&FlashcardsGenerated{
		Cards:    cards,
		NotePath: notePath,
		Count:    len(cards),
	}), nil
}

// sourceMaterial prefers the open note; without one it needs a topic it can
// retrieve chunks for.
func (a *FlashcardAgent) sourceMaterial(ctx context.Context, message string, actx *Context) (string, string, error) {
	if actx.CurrentNotePath != "" {
		content, err := a.fs.Read(ctx, actx.CurrentNotePath)
		if err != nil {
			return "", "", fmt.Errorf("read open note: %w", err)
		}
		return content, noteTitle(actx.CurrentNotePath), nil
	}

	topic, ok := extractAfter(flashcardTopicPatterns, message)
	if !ok {
		return "", "", ErrNoOpenNote
	}
	if a.retriever == nil {
		return "", "", ErrMissingCollaborator
	}

	chunks, err := a.retriever.RetrieveChunks(ctx, actx.VaultID, topic, topicChunkCap)
	if err != nil {
		return "", "", fmt.Errorf("retrieve chunks for %q: %w", topic, err)
	}
	if len(chunks) == 0 {
		return "", "", fmt.Errorf("%w: nothing about %q", ErrNoResults, topic)
	}

	var parts []string
	for _, c := range chunks {
		parts = append(parts, truncateWords(c.Text, chunkWordCap))
	}
	return strings.Join(parts, "\n\n"), topic, nil
}

func (a *FlashcardAgent) generateCards(ctx context.Context, source string, actx *Context) ([]Flashcard, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Create up to %d flashcards from the material below.\n", defaultCardCount)
	b.WriteString("Output ONLY lines in this exact format, one pair per card:\n")
	b.WriteString("Q: <question>\nA: <answer>\n\n")
	b.WriteString("Material:\n")
	b.WriteString(source)

	var opts []llm.Option
	if actx != nil && actx.Settings.ChatModel != "" {
		opts = append(opts, llm.WithModel(actx.Settings.ChatModel))
	}

	response, err := a.llm.Generate(ctx, b.String(), opts...)
	if err != nil {
		return nil, fmt.Errorf("generate flashcards: %w", err)
	}
	return ParseFlashcards(response), nil
}

// ParseFlashcards reads the Q:/A: line protocol. A question with no answer
// before the next question is dropped.
func ParseFlashcards(response string) []Flashcard {
	var cards []Flashcard
	var question string

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case hasFoldedPrefix(trimmed, "Q:"):
			question = strings.TrimSpace(trimmed[2:])
		case hasFoldedPrefix(trimmed, "A:"):
			answer := strings.TrimSpace(trimmed[2:])
			if question != "" && answer != "" {
				cards = append(cards, Flashcard{Question: question, Answer: answer})
			}
			question = ""
		}
	}
	return cards
}

func hasFoldedPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func (a *FlashcardAgent) writeCards(ctx context.Context, label string, cards []Flashcard) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Flashcards: %s\n\n", label)
	for i, c := range cards {
		fmt.Fprintf(&b, "%d. **Q:** %s\n   **A:** %s\n\n", i+1, c.Question, c.Answer)
	}

	notePath := "flashcards/" + slugify(label) + ".md"
	if err := a.fs.Write(ctx, notePath, b.String()); err != nil {
		return "", fmt.Errorf("write flashcards note: %w", err)
	}
	return notePath, nil
}
