package agent

import (
	"context"
	"fmt"

	"vault-copilot-be/internal/pkg/logger"
	"vault-copilot-be/pkg/memory"
)

// StudyPlanner is the study-domain collaborator. The scheduling logic lives
// outside this core; the agent only extracts parameters and dispatches.
type StudyPlanner interface {
	CreateGoal(ctx context.Context, vaultID, topic string) (*StudyGoalCreated, error)
	PlanGoal(ctx context.Context, vaultID, goalRef string) (*StudyPlanCreated, error)
	GenerateRoadmap(ctx context.Context, vaultID, topic string) (*StudyRoadmapGenerated, error)
	PrepareSession(ctx context.Context, vaultID, goalRef string) (*StudySessionPrepared, error)
}

var (
	studySessionPatterns = compilePatterns(
		`(?i)^prepare (?:a )?(?:study )?session (?:for|on) (.+)$`,
		`(?i)^(?:start|prep) (?:a )?(?:study )?session (?:for|on) (.+)$`,
	)
	studyRoadmapPatterns = compilePatterns(
		`(?i)^(?:generate|make|create|build) (?:a )?(?:learning |study )?roadmap (?:for|to learn|on) (.+)$`,
		`(?i)^roadmap (?:for|to learn) (.+)$`,
	)
	studyPlanPatterns = compilePatterns(
		`(?i)^plan (?:my )?(?:study )?goal:? (.+)$`,
		`(?i)^(?:make|create) (?:a )?(?:study )?plan for (.+)$`,
	)
	studyGoalPatterns = compilePatterns(
		`(?i)^(?:create|set|add) (?:a )?(?:new )?(?:study )?goal:? (?:to learn |for |about )?(.+)$`,
		`(?i)^i want to (?:learn|study|master) (.+)$`,
		`(?i)^help me (?:learn|study) (.+)$`,
	)
)

// StudyAgent maps the four study operations onto the planner collaborator.
// The sub-operation is decided by ordered pattern matching; an unmatched
// message defaults to creating a goal from the whole message.
type StudyAgent struct {
	planner StudyPlanner
	log     logger.ILogger
}

var _ Agent = &StudyAgent{}

func NewStudyAgent(planner StudyPlanner, log logger.ILogger) *StudyAgent {
	return &StudyAgent{
		planner: planner,
		log:     log,
	}
}

func (a *StudyAgent) Execute(ctx context.Context, message string, history []memory.Turn, actx *Context) (*Result, error) {
	if a.planner == nil {
		return nil, ErrMissingCollaborator
	}
	vaultID := ""
	if actx != nil {
		vaultID = actx.VaultID
	}

	if goalRef, ok := extractAfter(studySessionPatterns, message); ok {
		prepared, err := a.planner.PrepareSession(ctx, vaultID, goalRef)
		if err != nil {
			return nil, fmt.Errorf("prepare session: %w", err)
		}
		return NewStudySessionResult(prepared), nil
	}

	if topic, ok := extractAfter(studyRoadmapPatterns, message); ok {
		roadmap, err := a.planner.GenerateRoadmap(ctx, vaultID, topic)
		if err != nil {
			return nil, fmt.Errorf("generate roadmap: %w", err)
		}
		return NewStudyRoadmapResult(roadmap), nil
	}

	if goalRef, ok := extractAfter(studyPlanPatterns, message); ok {
		plan, err := a.planner.PlanGoal(ctx, vaultID, goalRef)
		if err != nil {
			return nil, fmt.Errorf("plan goal: %w", err)
		}
		return NewStudyPlanResult(plan), nil
	}

	topic, ok := extractAfter(studyGoalPatterns, message)
	if !ok {
		topic = cleanArgument(message)
	}
	goal, err := a.planner.CreateGoal(ctx, vaultID, topic)
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return NewStudyGoalResult(goal), nil
}
