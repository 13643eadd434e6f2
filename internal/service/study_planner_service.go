package service

import (
	"context"
	"fmt"
	"strings"

	"vault-copilot-be/internal/pkg/logger"
	repoMemory "vault-copilot-be/internal/repository/memory"
	"vault-copilot-be/pkg/agent"
	"vault-copilot-be/pkg/events"
	"vault-copilot-be/pkg/llm"

	"github.com/google/uuid"
)

const (
	planStepCap      = 8
	materialsTopK    = 5
	materialsWordCap = 120
)

// studyPlannerService implements the study-domain collaborator behind the
// study agent. Goals are held in the in-memory goal repository; plans and
// roadmaps come from the LLM. Each operation performs at most one notes
// search, to ground the output in the vault.
type studyPlannerService struct {
	llmProvider llm.Provider
	retriever   agent.NoteRetriever
	goals       *repoMemory.GoalRepository
	publisher   IPublisherService
	log         logger.ILogger
}

var _ agent.StudyPlanner = &studyPlannerService{}

func NewStudyPlannerService(
	llmProvider llm.Provider,
	retriever agent.NoteRetriever,
	goals *repoMemory.GoalRepository,
	publisher IPublisherService,
	log logger.ILogger,
) agent.StudyPlanner {
	return &studyPlannerService{
		llmProvider: llmProvider,
		retriever:   retriever,
		goals:       goals,
		publisher:   publisher,
		log:         log,
	}
}

func (s *studyPlannerService) CreateGoal(ctx context.Context, vaultID, topic string) (*agent.StudyGoalCreated, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("study goal needs a topic")
	}

	description, err := s.llmProvider.Generate(ctx,
		fmt.Sprintf("Write one sentence describing a study goal for the topic %q. Reply with the sentence only.", topic),
		llm.WithTemperature(0.4),
	)
	if err != nil {
		// Goal creation must not depend on the model being up.
		s.log.Warn("study", "goal description generation failed", map[string]interface{}{"error": err.Error()})
		description = ""
	}

	goal := &repoMemory.StudyGoal{
		Id:          uuid.New(),
		VaultId:     vaultID,
		Topic:       topic,
		Description: strings.TrimSpace(description),
	}
	s.goals.Save(goal)

	if s.publisher != nil {
		s.publisher.PublishEvent(ctx, events.NewStudyGoalCreated(vaultID, goal.Id.String(), topic))
	}

	return &agent.StudyGoalCreated{
		GoalID:      goal.Id.String(),
		Topic:       goal.Topic,
		Description: goal.Description,
	}, nil
}

func (s *studyPlannerService) PlanGoal(ctx context.Context, vaultID, goalRef string) (*agent.StudyPlanCreated, error) {
	goal, err := s.resolveGoal(ctx, vaultID, goalRef)
	if err != nil {
		return nil, err
	}

	raw, err := s.llmProvider.Generate(ctx, buildPlanPrompt(goal.Topic), llm.WithTemperature(0.5))
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	steps := parseSteps(raw)
	if len(steps) == 0 {
		return nil, fmt.Errorf("model returned no usable plan steps")
	}
	if len(steps) > planStepCap {
		steps = steps[:planStepCap]
	}

	goal.Steps = steps
	s.goals.Save(goal)

	return &agent.StudyPlanCreated{
		GoalID: goal.Id.String(),
		Steps:  steps,
	}, nil
}

func (s *studyPlannerService) GenerateRoadmap(ctx context.Context, vaultID, topic string) (*agent.StudyRoadmapGenerated, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("roadmap needs a topic")
	}

	roadmap, err := s.llmProvider.Generate(ctx, buildRoadmapPrompt(topic), llm.WithTemperature(0.5))
	if err != nil {
		return nil, fmt.Errorf("generate roadmap: %w", err)
	}

	return &agent.StudyRoadmapGenerated{
		Topic:   topic,
		Roadmap: strings.TrimSpace(roadmap),
	}, nil
}

func (s *studyPlannerService) PrepareSession(ctx context.Context, vaultID, goalRef string) (*agent.StudySessionPrepared, error) {
	goal, err := s.resolveGoal(ctx, vaultID, goalRef)
	if err != nil {
		return nil, err
	}

	// A session points at existing notes; the single notes search happens here.
	var materials []string
	if s.retriever != nil {
		paths, err := s.retriever.RetrieveNotes(ctx, vaultID, goal.Topic, materialsTopK)
		if err != nil {
			s.log.Warn("study", "materials lookup failed, preparing empty session", map[string]interface{}{"error": err.Error()})
		} else {
			materials = paths
		}
	}

	return &agent.StudySessionPrepared{
		SessionID: uuid.New().String(),
		GoalID:    goal.Id.String(),
		Materials: materials,
	}, nil
}

// resolveGoal accepts either a goal id or a topic-ish reference. An id hits
// the repository directly; anything else creates the goal on the fly so the
// command still succeeds.
func (s *studyPlannerService) resolveGoal(ctx context.Context, vaultID, goalRef string) (*repoMemory.StudyGoal, error) {
	goalRef = strings.TrimSpace(goalRef)

	if id, err := uuid.Parse(goalRef); err == nil {
		if goal, found := s.goals.Get(id); found {
			return goal, nil
		}
		return nil, fmt.Errorf("study goal %s not found", goalRef)
	}

	if goalRef == "" || strings.EqualFold(goalRef, "my goal") {
		if goal, found := s.goals.Latest(vaultID); found {
			return goal, nil
		}
		return nil, fmt.Errorf("no study goal exists yet")
	}

	created, err := s.CreateGoal(ctx, vaultID, goalRef)
	if err != nil {
		return nil, err
	}
	id, _ := uuid.Parse(created.GoalID)
	goal, _ := s.goals.Get(id)
	return goal, nil
}

func buildPlanPrompt(topic string) string {
	var b strings.Builder
	b.WriteString("Create a short study plan for the topic: ")
	b.WriteString(topic)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Reply with a numbered list only, one step per line.\n")
	b.WriteString(fmt.Sprintf("- At most %d steps.\n", planStepCap))
	b.WriteString("- Each step is one concrete action.\n")
	return b.String()
}

func buildRoadmapPrompt(topic string) string {
	var b strings.Builder
	b.WriteString("Write a concise learning roadmap for: ")
	b.WriteString(topic)
	b.WriteString("\n\nOrganize it as markdown with stages from beginner to advanced. Keep it under 300 words.")
	return b.String()
}

// parseSteps strips list markers off each non-empty line.
func parseSteps(raw string) []string {
	var steps []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789.-)* ")
		if line == "" {
			continue
		}
		steps = append(steps, line)
	}
	return steps
}
