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

const (
	topicChunkCap     = 6
	chunkWordCap      = 800
	summarizeTopKPool = 12
)

var summarizeTopicPatterns = compilePatterns(
	`(?i)^summarize (?:my )?notes? (?:about|on|regarding) (.+)$`,
	`(?i)^summarize (?:everything|all) (?:i have )?(?:about|on) (.+)$`,
	`(?i)^(?:give me|write) a summary (?:of|about) (.+)$`,
	`(?i)^summarize (.+)$`,
)

// SummarizeAgent runs in one of two mutually exclusive modes selected by
// context: current-note mode when a note is open, topic mode otherwise.
type SummarizeAgent struct {
	llm       llm.Provider
	fs        vaultfs.FileSystem
	retriever ChunkRetriever
	log       logger.ILogger
}

var _ Agent = &SummarizeAgent{}

func NewSummarizeAgent(provider llm.Provider, fs vaultfs.FileSystem, retriever ChunkRetriever, log logger.ILogger) *SummarizeAgent {
	return &SummarizeAgent{
		llm:       provider,
		fs:        fs,
		retriever: retriever,
		log:       log,
	}
}

func (a *SummarizeAgent) Execute(ctx context.Context, message string, history []memory.Turn, actx *Context) (*Result, error) {
	if a.llm == nil {
		return nil, ErrMissingCollaborator
	}

	if actx != nil && actx.CurrentNotePath != "" {
		return a.summarizeCurrentNote(ctx, actx)
	}
	return a.summarizeTopic(ctx, message, actx)
}

func (a *SummarizeAgent) summarizeCurrentNote(ctx context.Context, actx *Context) (*Result, error) {
	if a.fs == nil {
		return nil, ErrMissingCollaborator
	}
	content, err := a.fs.Read(ctx, actx.CurrentNotePath)
	if err != nil {
		return nil, fmt.Errorf("read open note: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("agent: open note %s is empty", actx.CurrentNotePath)
	}

	summary, err := a.summarize(ctx, content, actx)
	if err != nil {
		return nil, err
	}

	return NewNoteSummarizedResult(&NoteSummarized{
		Title:       noteTitle(actx.CurrentNotePath),
		Summary:     summary,
		SourceFiles: []string{actx.CurrentNotePath},
	}), nil
}

func (a *SummarizeAgent) summarizeTopic(ctx context.Context, message string, actx *Context) (*Result, error) {
	if a.retriever == nil {
		return nil, ErrMissingCollaborator
	}

	topic, ok := extractAfter(summarizeTopicPatterns, message)
	if !ok {
		topic = cleanArgument(message)
	}

	vaultID := ""
	if actx != nil {
		vaultID = actx.VaultID
	}
	chunks, err := a.retriever.RetrieveChunks(ctx, vaultID, "notes about "+topic, summarizeTopKPool)
	if err != nil {
		return nil, fmt.Errorf("retrieve chunks for %q: %w", topic, err)
	}

	// Keep only chunks that actually mention the topic; semantic neighbors
	// that never name it make for drifting summaries on small models.
	lowerTopic := strings.ToLower(topic)
	var kept []string
	var sources []string
	seen := map[string]bool{}
	for _, c := range chunks {
		if !strings.Contains(strings.ToLower(c.Text), lowerTopic) {
			continue
		}
		kept = append(kept, truncateWords(c.Text, chunkWordCap))
		if p := c.FilePath(); p != "" && !seen[p] {
			seen[p] = true
			sources = append(sources, p)
		}
		if len(kept) >= topicChunkCap {
			break
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: nothing about %q", ErrNoResults, topic)
	}

	summary, err := a.summarize(ctx, strings.Join(kept, "\n\n---\n\n"), actx)
	if err != nil {
		return nil, err
	}

	return NewNoteSummarizedResult(&NoteSummarized{
		Title:       topic,
		Summary:     summary,
		SourceFiles: sources,
	}), nil
}

// summarize uses a minimal, instruction-free template. Short prompts behave
// better on small local models than elaborate system instructions.
func (a *SummarizeAgent) summarize(ctx context.Context, text string, actx *Context) (string, error) {
	prompt := "Summarize these notes concisely:\n\n" + text + "\n\nSummary:"

	var opts []llm.Option
	if actx != nil && actx.Settings.ChatModel != "" {
		opts = append(opts, llm.WithModel(actx.Settings.ChatModel))
	}

	summary, err := a.llm.Generate(ctx, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(summary), nil
}

func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ")
}
