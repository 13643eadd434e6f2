package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"vault-copilot-be/internal/pkg/logger"
	repoMemory "vault-copilot-be/internal/repository/memory"
	"vault-copilot-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.response, s.err
}

type stubNoteRetriever struct {
	paths []string
	err   error
}

func (r *stubNoteRetriever) RetrieveNotes(ctx context.Context, vaultID, query string, topK int) ([]string, error) {
	return r.paths, r.err
}

func TestParseSteps(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "numbered list",
			raw:  "1. Read the basics\n2. Do exercises\n3. Build a project",
			want: []string{"Read the basics", "Do exercises", "Build a project"},
		},
		{
			name: "bullet list with blanks",
			raw:  "- First\n\n- Second\n",
			want: []string{"First", "Second"},
		},
		{
			name: "empty",
			raw:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSteps(tt.raw))
		})
	}
}

func TestCreateGoalSurvivesDeadModel(t *testing.T) {
	goals := repoMemory.NewGoalRepository()
	planner := NewStudyPlannerService(&stubLLM{err: errors.New("offline")}, nil, goals, nil, logger.NewNop())

	created, err := planner.CreateGoal(context.Background(), "vault-1", "linear algebra")

	require.NoError(t, err)
	assert.Equal(t, "linear algebra", created.Topic)
	assert.Empty(t, created.Description)

	id, err := uuid.Parse(created.GoalID)
	require.NoError(t, err)
	_, found := goals.Get(id)
	assert.True(t, found)
}

func TestPlanGoalByID(t *testing.T) {
	goals := repoMemory.NewGoalRepository()
	planner := NewStudyPlannerService(&stubLLM{response: "1. Step one\n2. Step two"}, nil, goals, nil, logger.NewNop())

	created, err := planner.CreateGoal(context.Background(), "vault-1", "rust")
	require.NoError(t, err)

	plan, err := planner.PlanGoal(context.Background(), "vault-1", created.GoalID)

	require.NoError(t, err)
	assert.Equal(t, created.GoalID, plan.GoalID)
	assert.Equal(t, []string{"Step one", "Step two"}, plan.Steps)
}

func TestPlanGoalUnknownID(t *testing.T) {
	goals := repoMemory.NewGoalRepository()
	planner := NewStudyPlannerService(&stubLLM{response: "1. x"}, nil, goals, nil, logger.NewNop())

	_, err := planner.PlanGoal(context.Background(), "vault-1", uuid.NewString())

	assert.Error(t, err)
}

func TestPrepareSessionCollectsMaterials(t *testing.T) {
	goals := repoMemory.NewGoalRepository()
	retriever := &stubNoteRetriever{paths: []string{"rust/ownership.md", "rust/borrowing.md"}}
	planner := NewStudyPlannerService(&stubLLM{response: "desc"}, retriever, goals, nil, logger.NewNop())

	created, err := planner.CreateGoal(context.Background(), "vault-1", "rust")
	require.NoError(t, err)

	session, err := planner.PrepareSession(context.Background(), "vault-1", created.GoalID)

	require.NoError(t, err)
	assert.Equal(t, created.GoalID, session.GoalID)
	assert.NotEmpty(t, session.SessionID)
	assert.Equal(t, []string{"rust/ownership.md", "rust/borrowing.md"}, session.Materials)
}

func TestPrepareSessionRetrieverFailureDegrades(t *testing.T) {
	goals := repoMemory.NewGoalRepository()
	planner := NewStudyPlannerService(&stubLLM{response: "desc"}, &stubNoteRetriever{err: errors.New("down")}, goals, nil, logger.NewNop())

	created, err := planner.CreateGoal(context.Background(), "vault-1", "go")
	require.NoError(t, err)

	session, err := planner.PrepareSession(context.Background(), "vault-1", created.GoalID)

	require.NoError(t, err)
	assert.Empty(t, session.Materials)
}

func TestUnnamedGoalResolvesToMostRecent(t *testing.T) {
	goals := repoMemory.NewGoalRepository()
	planner := NewStudyPlannerService(&stubLLM{response: "1. Step"}, nil, goals, nil, logger.NewNop())

	first, err := planner.CreateGoal(context.Background(), "vault-1", "sorting")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	second, err := planner.CreateGoal(context.Background(), "vault-1", "graphs")
	require.NoError(t, err)

	firstID, err := uuid.Parse(first.GoalID)
	require.NoError(t, err)
	saved, found := goals.Get(firstID)
	require.True(t, found)
	require.False(t, saved.CreatedAt.IsZero())

	plan, err := planner.PlanGoal(context.Background(), "vault-1", "my goal")
	require.NoError(t, err)
	assert.Equal(t, second.GoalID, plan.GoalID)
}
