package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"vault-copilot-be/internal/pkg/logger"
	"vault-copilot-be/pkg/llm"
	"vault-copilot-be/pkg/memory"
	"vault-copilot-be/pkg/vaultfs"
)

var createTitlePatterns = compilePatterns(
	`(?i)^create (?:a )?(?:new )?note (?:titled|called|named) (.+)$`,
	`(?i)^create (?:a )?(?:new )?note (?:about|on|for) (.+)$`,
	`(?i)^(?:make|add|write) (?:me )?(?:a )?(?:new )?note (?:titled|called|named|about|on|for) (.+)$`,
	`(?i)^(?:take a|new) note:? (.+)$`,
)

// splits "title: content" style messages
var createContentSplit = regexp.MustCompile(`(?s)^(.+?)\s*[:\-]\s+(.+)$`)

// CreateNoteAgent writes a new markdown note into the vault, drafting the
// body with the LLM when the message only names a topic.
type CreateNoteAgent struct {
	fs        vaultfs.FileSystem
	llm       llm.Provider
	publisher NotePublisher // optional
	log       logger.ILogger
}

var _ Agent = &CreateNoteAgent{}

func NewCreateNoteAgent(fs vaultfs.FileSystem, provider llm.Provider, publisher NotePublisher, log logger.ILogger) *CreateNoteAgent {
	return &CreateNoteAgent{
		fs:        fs,
		llm:       provider,
		publisher: publisher,
		log:       log,
	}
}

func (a *CreateNoteAgent) Execute(ctx context.Context, message string, history []memory.Turn, actx *Context) (*Result, error) {
	if !actx.HasVault() {
		return nil, ErrNoVault
	}
	if a.fs == nil {
		return nil, ErrMissingCollaborator
	}

	arg, ok := extractAfter(createTitlePatterns, message)
	if !ok {
		arg = cleanArgument(message)
	}
	if arg == "" {
		return nil, fmt.Errorf("agent: cannot tell what the note should be about")
	}

	title, body := splitTitleBody(arg)
	if body == "" {
		body = a.draftBody(ctx, title, actx)
	}

	content := "# " + title + "\n\n" + body + "\n"

	notePath, err := a.freePath(ctx, title)
	if err != nil {
		return nil, err
	}
	if err := a.fs.Write(ctx, notePath, content); err != nil {
		return nil, fmt.Errorf("write note: %w", err)
	}

	if a.publisher != nil {
		a.publisher.NoteSaved(ctx, actx.VaultID, notePath)
	}

	return NewNoteCreatedResult(&NoteCreated{
		Path:    notePath,
		Title:   title,
		Preview: truncateRunes(body, 160),
	}), nil
}

// splitTitleBody treats "shopping list: milk, eggs" as title + content and a
// bare topic as title only.
func splitTitleBody(arg string) (string, string) {
	if m := createContentSplit.FindStringSubmatch(arg); len(m) == 3 && len(m[1]) <= 80 {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return arg, ""
}

// draftBody asks the model for a short starter body. A drafting failure is
// not fatal; the note is simply created empty.
func (a *CreateNoteAgent) draftBody(ctx context.Context, title string, actx *Context) string {
	if a.llm == nil {
		return ""
	}
	prompt := "Write a short starter note body (3-6 plain markdown lines, no heading) for a note titled: " + title

	var opts []llm.Option
	if actx != nil && actx.Settings.ChatModel != "" {
		opts = append(opts, llm.WithModel(actx.Settings.ChatModel))
	}

	body, err := a.llm.Generate(ctx, prompt, opts...)
	if err != nil {
		a.log.Warn("create_note", "draft generation failed, creating empty note", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return strings.TrimSpace(body)
}

// freePath slugs the title and probes for an unused filename.
func (a *CreateNoteAgent) freePath(ctx context.Context, title string) (string, error) {
	slug := slugify(title)
	candidate := slug + ".md"
	for i := 2; ; i++ {
		exists, err := a.fs.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d.md", slug, i)
	}
}

var slugStrip = regexp.MustCompile(`[^\p{L}\p{N} -]+`)

func slugify(title string) string {
	s := slugStrip.ReplaceAllString(title, "")
	s = strings.Join(strings.Fields(s), "-")
	if s == "" {
		s = "untitled"
	}
	if len(s) > 80 {
		s = s[:80]
	}
	return s
}
