package service

import (
	"context"
	"fmt"

	"vault-copilot-be/internal/config"
	"vault-copilot-be/internal/dto"
	"vault-copilot-be/internal/mapper"
	"vault-copilot-be/pkg/agent"
	"vault-copilot-be/pkg/memory"
	"vault-copilot-be/pkg/vaultfs"
)

type IToolsService interface {
	CreateNote(ctx context.Context, req *dto.CreateNoteToolRequest) (*dto.AgentResultDTO, error)
	Search(ctx context.Context, req *dto.SearchToolRequest) (*dto.AgentResultDTO, error)
	Summarize(ctx context.Context, req *dto.SummarizeToolRequest) (*dto.AgentResultDTO, error)
	Flashcards(ctx context.Context, req *dto.FlashcardToolRequest) (*dto.AgentResultDTO, error)
	StudyGoal(ctx context.Context, req *dto.StudyGoalToolRequest) (*dto.AgentResultDTO, error)
	StudyPlan(ctx context.Context, req *dto.StudyPlanToolRequest) (*dto.AgentResultDTO, error)
	StudyRoadmap(ctx context.Context, req *dto.StudyRoadmapToolRequest) (*dto.AgentResultDTO, error)
	StudySession(ctx context.Context, req *dto.StudySessionToolRequest) (*dto.AgentResultDTO, error)
	DeleteNote(ctx context.Context, req *dto.DeleteNoteToolRequest) error
}

// toolsService exposes each agent directly, bypassing intent classification.
// Requests are translated into the same command phrasing the agents parse in
// chat, so both entry points share one execution path.
type toolsService struct {
	cfg          *config.Config
	createNote   agent.Agent
	searchNote   agent.Agent
	summarize    agent.Agent
	flashcard    agent.Agent
	study        agent.Agent
	fs           vaultfs.FileSystem
	publisher    IPublisherService
	resultMapper *mapper.ResultMapper
}

func NewToolsService(
	cfg *config.Config,
	createNote agent.Agent,
	searchNote agent.Agent,
	summarize agent.Agent,
	flashcard agent.Agent,
	study agent.Agent,
	fs vaultfs.FileSystem,
	publisher IPublisherService,
) IToolsService {
	return &toolsService{
		cfg:          cfg,
		createNote:   createNote,
		searchNote:   searchNote,
		summarize:    summarize,
		flashcard:    flashcard,
		study:        study,
		fs:           fs,
		publisher:    publisher,
		resultMapper: mapper.NewResultMapper(),
	}
}

func (s *toolsService) execute(ctx context.Context, a agent.Agent, vaultId, notePath, message string) (*dto.AgentResultDTO, error) {
	actx := &agent.Context{
		VaultID:         vaultId,
		VaultRoot:       s.cfg.App.VaultRoot,
		CurrentNotePath: notePath,
		Settings: agent.Settings{
			ChatModel:           s.cfg.Ai.LLMModel,
			ClassifierModel:     s.cfg.Ai.ClassifierModel,
			SimilarityThreshold: s.cfg.Retrieval.SimilarityThreshold,
			TopK:                s.cfg.Retrieval.TopK,
			WebMaxResults:       s.cfg.Retrieval.WebMaxResults,
			MemoryPolicy: memory.Policy{
				MaxMessages: s.cfg.Memory.DesktopMaxMessages,
				MaxChars:    s.cfg.Memory.DesktopMaxChars,
			},
		},
	}

	result, err := a.Execute(ctx, message, nil, actx)
	if err != nil {
		return nil, err
	}
	return s.resultMapper.ToDTO(result), nil
}

func (s *toolsService) CreateNote(ctx context.Context, req *dto.CreateNoteToolRequest) (*dto.AgentResultDTO, error) {
	message := fmt.Sprintf("create a note titled %s", req.Title)
	if req.Content != "" {
		message = fmt.Sprintf("create a note titled %s: %s", req.Title, req.Content)
	}
	return s.execute(ctx, s.createNote, req.VaultId, "", message)
}

func (s *toolsService) Search(ctx context.Context, req *dto.SearchToolRequest) (*dto.AgentResultDTO, error) {
	return s.execute(ctx, s.searchNote, req.VaultId, "", fmt.Sprintf("search my notes for %s", req.Query))
}

func (s *toolsService) Summarize(ctx context.Context, req *dto.SummarizeToolRequest) (*dto.AgentResultDTO, error) {
	if req.NotePath != "" {
		return s.execute(ctx, s.summarize, req.VaultId, req.NotePath, "summarize this note")
	}
	return s.execute(ctx, s.summarize, req.VaultId, "", fmt.Sprintf("summarize my notes about %s", req.Topic))
}

func (s *toolsService) Flashcards(ctx context.Context, req *dto.FlashcardToolRequest) (*dto.AgentResultDTO, error) {
	if req.NotePath != "" {
		return s.execute(ctx, s.flashcard, req.VaultId, req.NotePath, "generate flashcards from this note")
	}
	return s.execute(ctx, s.flashcard, req.VaultId, "", fmt.Sprintf("generate flashcards about %s", req.Topic))
}

func (s *toolsService) StudyGoal(ctx context.Context, req *dto.StudyGoalToolRequest) (*dto.AgentResultDTO, error) {
	return s.execute(ctx, s.study, req.VaultId, "", fmt.Sprintf("create a study goal: %s", req.Topic))
}

func (s *toolsService) StudyPlan(ctx context.Context, req *dto.StudyPlanToolRequest) (*dto.AgentResultDTO, error) {
	return s.execute(ctx, s.study, req.VaultId, "", fmt.Sprintf("plan my study goal: %s", req.GoalId))
}

func (s *toolsService) StudyRoadmap(ctx context.Context, req *dto.StudyRoadmapToolRequest) (*dto.AgentResultDTO, error) {
	return s.execute(ctx, s.study, req.VaultId, "", fmt.Sprintf("generate a roadmap for %s", req.Topic))
}

func (s *toolsService) StudySession(ctx context.Context, req *dto.StudySessionToolRequest) (*dto.AgentResultDTO, error) {
	return s.execute(ctx, s.study, req.VaultId, "", fmt.Sprintf("prepare a session for %s", req.GoalId))
}

// DeleteNote removes a note from the vault and announces the deletion so the
// index drops its chunks.
func (s *toolsService) DeleteNote(ctx context.Context, req *dto.DeleteNoteToolRequest) error {
	exists, err := s.fs.IsFile(ctx, req.Path)
	if err != nil {
		return fmt.Errorf("check note %s: %w", req.Path, err)
	}
	if !exists {
		return ErrNoteNotFound
	}
	if err := s.fs.Remove(ctx, req.Path); err != nil {
		return fmt.Errorf("delete note %s: %w", req.Path, err)
	}
	if s.publisher != nil {
		s.publisher.NoteDeleted(ctx, req.VaultId, req.Path)
	}
	return nil
}
