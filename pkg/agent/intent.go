package agent

import (
	"context"
	"strings"

	"vault-copilot-be/internal/pkg/logger"
	"vault-copilot-be/pkg/llm"
	"vault-copilot-be/pkg/memory"
)

// IntentType is the classified purpose of a user message. Closed set.
type IntentType string

const (
	IntentCreateNote         IntentType = "CREATE_NOTE"
	IntentSearchNotes        IntentType = "SEARCH_NOTES"
	IntentSummarizeNote      IntentType = "SUMMARIZE_NOTE"
	IntentGenerateFlashcards IntentType = "GENERATE_FLASHCARDS"
	IntentStudyGoal          IntentType = "STUDY_GOAL"
	IntentNormalChat         IntentType = "NORMAL_CHAT"
	IntentUnknown            IntentType = "UNKNOWN"
)

var knownIntents = map[IntentType]bool{
	IntentCreateNote:         true,
	IntentSearchNotes:        true,
	IntentSummarizeNote:      true,
	IntentGenerateFlashcards: true,
	IntentStudyGoal:          true,
	IntentNormalChat:         true,
	IntentUnknown:            true,
}

// ParseIntent maps a raw model token onto an IntentType. The token is
// trimmed and upper-cased, then matched exactly; anything else is UNKNOWN.
func ParseIntent(raw string) IntentType {
	token := strings.ToUpper(strings.Trim(strings.TrimSpace(raw), "\"'`.,!"))
	if intent := IntentType(token); knownIntents[intent] {
		return intent
	}
	return IntentUnknown
}

// classifierWindow is the fixed number of recent turns shown to the
// classifier, independent of the platform memory policy.
const classifierWindow = 4

// IntentClassifier labels one message with one intent. Implementations that
// can fail return an error; the master treats that the same as UNKNOWN.
type IntentClassifier interface {
	Classify(ctx context.Context, message string, history []memory.Turn, actx *Context) (IntentType, error)
}

// Classifier is the LLM-backed IntentClassifier: a single model call with a
// compact fixed instruction. It never returns an error; any provider failure
// or unparseable response degrades to UNKNOWN.
type Classifier struct {
	llm llm.Provider
	log logger.ILogger
}

var _ IntentClassifier = &Classifier{}

func NewClassifier(provider llm.Provider, log logger.ILogger) *Classifier {
	return &Classifier{
		llm: provider,
		log: log,
	}
}

func (c *Classifier) Classify(ctx context.Context, message string, history []memory.Turn, actx *Context) (IntentType, error) {
	prompt := buildClassifierPrompt(message, memory.Tail(history, classifierWindow))

	opts := []llm.Option{llm.WithTemperature(0.0)}
	if actx != nil && actx.Settings.ClassifierModel != "" {
		opts = append(opts, llm.WithModel(actx.Settings.ClassifierModel))
	}

	response, err := c.llm.Generate(ctx, prompt, opts...)
	if err != nil {
		c.log.Warn("classifier", "intent classification failed, degrading to UNKNOWN", map[string]interface{}{"error": err.Error()})
		return IntentUnknown, nil
	}

	intent := ParseIntent(firstToken(response))
	c.log.Debug("classifier", "intent resolved", map[string]interface{}{"intent": string(intent)})
	return intent, nil
}

func buildClassifierPrompt(message string, recent []memory.Turn) string {
	var b strings.Builder

	b.WriteString("You classify one user message for a personal notes assistant.\n")
	b.WriteString("Reply with EXACTLY ONE label, nothing else:\n\n")
	b.WriteString("CREATE_NOTE - user wants a new note written\n")
	b.WriteString("SEARCH_NOTES - user wants to find notes in their vault\n")
	b.WriteString("SUMMARIZE_NOTE - user wants a note or topic summarized\n")
	b.WriteString("GENERATE_FLASHCARDS - user wants flashcards made\n")
	b.WriteString("STUDY_GOAL - user wants a study goal, plan, roadmap or session\n")
	b.WriteString("NORMAL_CHAT - anything else: questions, conversation, chitchat\n\n")

	if len(recent) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, t := range recent {
			b.WriteString(string(t.Role))
			b.WriteString(": ")
			b.WriteString(t.Text)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Message: ")
	b.WriteString(message)
	b.WriteString("\nLabel:")

	return b.String()
}

// firstToken keeps chatty models honest: only the first whitespace-delimited
// token of the response is considered.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
