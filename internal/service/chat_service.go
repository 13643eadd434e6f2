package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"vault-copilot-be/internal/config"
	"vault-copilot-be/internal/dto"
	"vault-copilot-be/internal/mapper"
	"vault-copilot-be/internal/model"
	"vault-copilot-be/internal/pkg/logger"
	"vault-copilot-be/internal/repository"
	"vault-copilot-be/pkg/agent"
	"vault-copilot-be/pkg/llm"
	"vault-copilot-be/pkg/memory"
	"vault-copilot-be/pkg/prompt"
	"vault-copilot-be/pkg/retrieval"

	"github.com/google/uuid"
)

const conversationTitleCap = 60

type IChatService interface {
	SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	ListConversations(ctx context.Context, vaultId string) ([]dto.ConversationSummaryResponse, error)
	GetHistory(ctx context.Context, conversationId uuid.UUID) ([]dto.ConversationMessageResponse, error)
}

// chatService drives one user message through the assistant: agents first,
// then the retrieval-augmented chat fallback. Exactly one assistant reply
// comes back per message.
type chatService struct {
	cfg              *config.Config
	conversationRepo repository.IConversationRepository
	master           *agent.Master
	retrievalService *retrieval.Service
	llmProvider      llm.Provider
	resultMapper     *mapper.ResultMapper
	log              logger.ILogger
}

func NewChatService(
	cfg *config.Config,
	conversationRepo repository.IConversationRepository,
	master *agent.Master,
	retrievalService *retrieval.Service,
	llmProvider llm.Provider,
	log logger.ILogger,
) IChatService {
	return &chatService{
		cfg:              cfg,
		conversationRepo: conversationRepo,
		master:           master,
		retrievalService: retrievalService,
		llmProvider:      llmProvider,
		resultMapper:     mapper.NewResultMapper(),
		log:              log,
	}
}

func (s *chatService) SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	conversation, err := s.resolveConversation(ctx, req)
	if err != nil {
		return nil, err
	}

	policy := s.policyFor(req.Platform)
	history, err := s.contextWindow(ctx, conversation.Id, policy)
	if err != nil {
		return nil, err
	}

	actx := s.buildAgentContext(req, policy)

	// Agents get the first shot. Any agent failure falls through to chat.
	if result, handled := s.master.TryHandle(ctx, req.Message, history, actx); handled {
		reply := s.resultMapper.RenderText(result)
		if err := s.persistExchange(ctx, conversation.Id, req.Message, reply); err != nil {
			return nil, err
		}
		return &dto.SendMessageResponse{
			ConversationId: conversation.Id,
			Reply:          reply,
			Handled:        "agent",
			Result:         s.resultMapper.ToDTO(result),
		}, nil
	}

	reply, err := s.completeChat(ctx, req, history)
	if err != nil {
		return nil, err
	}

	if err := s.persistExchange(ctx, conversation.Id, req.Message, reply); err != nil {
		return nil, err
	}

	return &dto.SendMessageResponse{
		ConversationId: conversation.Id,
		Reply:          reply,
		Handled:        "chat",
	}, nil
}

// completeChat is the normal-chat fallback: retrieve context per the
// requested mode, build the grounded prompt and ask the model.
func (s *chatService) completeChat(ctx context.Context, req *dto.SendMessageRequest, history []memory.Turn) (string, error) {
	mode := retrieval.ParseMode(req.RetrievalMode)

	rctx, err := s.retrievalService.Retrieve(ctx, req.VaultId, req.Message, mode)
	if err != nil {
		// Retrieval is already degraded internally; getting here means no
		// source produced anything. The turn still fails as a chat error so
		// the client sees a single, explicit failure.
		return "", &ChatError{
			Provider: s.cfg.Ai.LLMProvider,
			Model:    s.cfg.Ai.LLMModel,
			Err:      err,
		}
	}

	grounded := prompt.NewBuilder(rctx, req.Message).Build()

	messages := memory.ToMessages(history)
	messages = append(messages, llm.Message{Role: "user", Content: grounded})

	reply, err := s.llmProvider.Chat(ctx, messages, llm.WithTemperature(0.7))
	if err != nil {
		return "", &ChatError{
			Provider: s.cfg.Ai.LLMProvider,
			Model:    s.cfg.Ai.LLMModel,
			Err:      err,
		}
	}
	return reply, nil
}

func (s *chatService) resolveConversation(ctx context.Context, req *dto.SendMessageRequest) (*model.Conversation, error) {
	if req.ConversationId != nil {
		conversation, err := s.conversationRepo.FindById(ctx, *req.ConversationId)
		if err != nil {
			return nil, err
		}
		if conversation == nil {
			return nil, ErrConversationNotFound
		}
		return conversation, nil
	}

	conversation := &model.Conversation{
		Id:      uuid.New(),
		VaultId: req.VaultId,
		Title:   titleFromMessage(req.Message),
	}
	if err := s.conversationRepo.Create(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *chatService) contextWindow(ctx context.Context, conversationId uuid.UUID, policy memory.Policy) ([]memory.Turn, error) {
	provider := memory.NewProvider(s.conversationRepo, policy)
	return provider.BuildContextMessages(ctx, conversationId)
}

func (s *chatService) policyFor(platform string) memory.Policy {
	if platform == "mobile" {
		return memory.Policy{
			MaxMessages: s.cfg.Memory.MobileMaxMessages,
			MaxChars:    s.cfg.Memory.MobileMaxChars,
		}
	}
	return memory.Policy{
		MaxMessages: s.cfg.Memory.DesktopMaxMessages,
		MaxChars:    s.cfg.Memory.DesktopMaxChars,
	}
}

func (s *chatService) buildAgentContext(req *dto.SendMessageRequest, policy memory.Policy) *agent.Context {
	return &agent.Context{
		VaultID:         req.VaultId,
		VaultRoot:       s.cfg.App.VaultRoot,
		CurrentNotePath: req.CurrentNotePath,
		Settings: agent.Settings{
			ChatModel:           s.cfg.Ai.LLMModel,
			ClassifierModel:     s.cfg.Ai.ClassifierModel,
			SimilarityThreshold: s.cfg.Retrieval.SimilarityThreshold,
			TopK:                s.cfg.Retrieval.TopK,
			WebMaxResults:       s.cfg.Retrieval.WebMaxResults,
			MemoryPolicy:        policy,
		},
	}
}

// persistExchange appends the user and assistant turns together. A cancelled
// request persists neither turn; the conversation never records half an
// exchange.
func (s *chatService) persistExchange(ctx context.Context, conversationId uuid.UUID, userText, assistantText string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now()
	return s.conversationRepo.AppendMessages(ctx, []*model.ConversationMessage{
		{
			ConversationId: conversationId,
			Role:           string(memory.RoleUser),
			Text:           userText,
			CreatedAt:      now,
		},
		{
			ConversationId: conversationId,
			Role:           string(memory.RoleAssistant),
			Text:           assistantText,
			CreatedAt:      now.Add(time.Millisecond),
		},
	})
}

func (s *chatService) ListConversations(ctx context.Context, vaultId string) ([]dto.ConversationSummaryResponse, error) {
	conversations, err := s.conversationRepo.ListByVault(ctx, vaultId)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ConversationSummaryResponse, 0, len(conversations))
	for _, c := range conversations {
		out = append(out, dto.ConversationSummaryResponse{
			Id:        c.Id,
			Title:     c.Title,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return out, nil
}

func (s *chatService) GetHistory(ctx context.Context, conversationId uuid.UUID) ([]dto.ConversationMessageResponse, error) {
	turns, err := s.conversationRepo.TurnsNewestFirst(ctx, conversationId)
	if err != nil {
		return nil, err
	}

	// Newest-first is storage order; clients want chronological.
	out := make([]dto.ConversationMessageResponse, 0, len(turns))
	for i := len(turns) - 1; i >= 0; i-- {
		out = append(out, dto.ConversationMessageResponse{
			Role:      string(turns[i].Role),
			Text:      turns[i].Text,
			CreatedAt: turns[i].CreatedAt,
		})
	}
	return out, nil
}

func titleFromMessage(message string) string {
	title := strings.TrimSpace(message)
	if line, _, found := strings.Cut(title, "\n"); found {
		title = line
	}
	if utf8.RuneCountInString(title) > conversationTitleCap {
		runes := []rune(title)
		title = strings.TrimSpace(string(runes[:conversationTitleCap])) + "…"
	}
	if title == "" {
		title = "New conversation"
	}
	return title
}
