package agent

import (
	"context"

	"vault-copilot-be/internal/pkg/logger"
	"vault-copilot-be/pkg/memory"
)

// Master is the single entry point of the agent pipeline: classify once,
// dispatch to exactly one concrete agent, or signal that nothing applies.
type Master struct {
	classifier IntentClassifier
	agents     map[IntentType]Agent
	log        logger.ILogger
}

func NewMaster(
	classifier IntentClassifier,
	createNote Agent,
	searchNote Agent,
	summarize Agent,
	flashcard Agent,
	study Agent,
	log logger.ILogger,
) *Master {
	return &Master{
		classifier: classifier,
		agents: map[IntentType]Agent{
			IntentCreateNote:         createNote,
			IntentSearchNotes:        searchNote,
			IntentSummarizeNote:      summarize,
			IntentGenerateFlashcards: flashcard,
			IntentStudyGoal:          study,
		},
		log: log,
	}
}

// TryHandle runs one classify-dispatch pass for a message. It returns a
// materialized result from exactly one agent, or (nil, false) when no agent
// applies. It never returns an error: classification failures and agent
// failures are indistinguishable from "no agent matched" at this boundary.
func (m *Master) TryHandle(ctx context.Context, message string, history []memory.Turn, actx *Context) (*Result, bool) {
	intent, err := m.classifier.Classify(ctx, message, history, actx)
	if err != nil {
		m.log.Warn("master", "classification failed, falling through to chat", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	if intent == IntentNormalChat || intent == IntentUnknown {
		return nil, false
	}

	ag, ok := m.agents[intent]
	if !ok || ag == nil {
		m.log.Warn("master", "no agent registered for intent", map[string]interface{}{"intent": string(intent)})
		return nil, false
	}

	result, err := ag.Execute(ctx, message, history, actx)
	if err != nil {
		m.log.Info("master", "agent declined or failed, falling through to chat", map[string]interface{}{
			"intent": string(intent),
			"error":  err.Error(),
		})
		return nil, false
	}
	if result == nil {
		return nil, false
	}

	m.log.Info("master", "agent handled message", map[string]interface{}{
		"intent": string(intent),
		"kind":   string(result.Kind),
	})
	return result, true
}
