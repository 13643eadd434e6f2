package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"vault-copilot-be/internal/config"
	"vault-copilot-be/internal/dto"
	"vault-copilot-be/internal/model"
	"vault-copilot-be/internal/pkg/logger"
	"vault-copilot-be/pkg/agent"
	"vault-copilot-be/pkg/memory"
	"vault-copilot-be/pkg/retrieval"
	"vault-copilot-be/pkg/vectorstore"
	"vault-copilot-be/pkg/websearch"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory conversation repository; newest-first ordering is preserved by
// appending and reading backwards.
type memConversationRepo struct {
	conversations map[uuid.UUID]*model.Conversation
	messages      map[uuid.UUID][]*model.ConversationMessage
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{
		conversations: map[uuid.UUID]*model.Conversation{},
		messages:      map[uuid.UUID][]*model.ConversationMessage{},
	}
}

func (r *memConversationRepo) Create(ctx context.Context, c *model.Conversation) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	r.conversations[c.Id] = c
	return nil
}

func (r *memConversationRepo) FindById(ctx context.Context, id uuid.UUID) (*model.Conversation, error) {
	return r.conversations[id], nil
}

func (r *memConversationRepo) ListByVault(ctx context.Context, vaultId string) ([]model.Conversation, error) {
	var out []model.Conversation
	for _, c := range r.conversations {
		if c.VaultId == vaultId {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memConversationRepo) AppendMessages(ctx context.Context, msgs []*model.ConversationMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, m := range msgs {
		r.messages[m.ConversationId] = append(r.messages[m.ConversationId], m)
	}
	return nil
}

func (r *memConversationRepo) TurnsNewestFirst(ctx context.Context, conversationId uuid.UUID) ([]memory.Turn, error) {
	msgs := r.messages[conversationId]
	turns := make([]memory.Turn, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		turns = append(turns, memory.Turn{
			Role:      memory.Role(msgs[i].Role),
			Text:      msgs[i].Text,
			CreatedAt: msgs[i].CreatedAt,
		})
	}
	return turns, nil
}

type fixedClassifier struct {
	intent agent.IntentType
}

func (c *fixedClassifier) Classify(ctx context.Context, message string, history []memory.Turn, actx *agent.Context) (agent.IntentType, error) {
	return c.intent, nil
}

type fixedAgent struct {
	result *agent.Result
	err    error
}

func (a *fixedAgent) Execute(ctx context.Context, message string, history []memory.Turn, actx *agent.Context) (*agent.Result, error) {
	return a.result, a.err
}

type nilEmbedder struct{}

func (nilEmbedder) Generate(ctx context.Context, text, taskType string) ([]float32, error) {
	return []float32{0.1}, nil
}

type nilStore struct{}

func (nilStore) Search(ctx context.Context, embedding []float32, topK int, filters map[string]string) ([]vectorstore.ScoredChunk, error) {
	return nil, nil
}
func (nilStore) Upsert(ctx context.Context, chunks []vectorstore.Chunk) error { return nil }

func (nilStore) DeleteByFilePath(ctx context.Context, vaultID, filePath string) error { return nil }

func (nilStore) Clear(ctx context.Context, vaultID string) error { return nil }

type nilWeb struct{}

func (nilWeb) Search(ctx context.Context, query string, maxResults int) ([]websearch.Snippet, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Ai: config.AIConfig{
			LLMProvider: "ollama",
			LLMModel:    "llama3",
		},
		Retrieval: config.RetrievalConfig{
			SimilarityThreshold: 0.35,
			TopK:                10,
			WebMaxResults:       5,
		},
		Memory: config.MemoryConfig{
			DesktopMaxMessages: 50,
			DesktopMaxChars:    16000,
			MobileMaxMessages:  30,
			MobileMaxChars:     8000,
		},
	}
}

func newTestChatService(repo *memConversationRepo, intent agent.IntentType, handler *fixedAgent, chatLLM *stubLLM) IChatService {
	noop := &fixedAgent{}
	agents := map[agent.IntentType]*fixedAgent{
		agent.IntentCreateNote:         noop,
		agent.IntentSearchNotes:        noop,
		agent.IntentSummarizeNote:      noop,
		agent.IntentGenerateFlashcards: noop,
		agent.IntentStudyGoal:          noop,
	}
	if handler != nil {
		agents[intent] = handler
	}

	master := agent.NewMaster(
		&fixedClassifier{intent: intent},
		agents[agent.IntentCreateNote],
		agents[agent.IntentSearchNotes],
		agents[agent.IntentSummarizeNote],
		agents[agent.IntentGenerateFlashcards],
		agents[agent.IntentStudyGoal],
		logger.NewNop(),
	)

	retrievalService := retrieval.NewService(nilEmbedder{}, nilStore{}, nil, nilWeb{}, retrieval.DefaultConfig(), logger.NewNop())

	return NewChatService(testConfig(), repo, master, retrievalService, chatLLM, logger.NewNop())
}

func TestSendMessageAgentHandled(t *testing.T) {
	repo := newMemConversationRepo()
	handler := &fixedAgent{result: agent.NewNoteCreatedResult(&agent.NoteCreated{
		Path:  "ideas.md",
		Title: "ideas",
	})}
	svc := newTestChatService(repo, agent.IntentCreateNote, handler, &stubLLM{response: "should not be called"})

	res, err := svc.SendMessage(context.Background(), &dto.SendMessageRequest{
		VaultId: "vault-1",
		Message: "create a note titled ideas",
	})

	require.NoError(t, err)
	assert.Equal(t, "agent", res.Handled)
	require.NotNil(t, res.Result)
	assert.Equal(t, string(agent.KindNoteCreated), res.Result.Kind)
	assert.Contains(t, res.Reply, "ideas.md")

	// both turns of the exchange are persisted
	msgs := repo.messages[res.ConversationId]
	require.Len(t, msgs, 2)
	assert.Equal(t, string(memory.RoleUser), msgs[0].Role)
	assert.Equal(t, string(memory.RoleAssistant), msgs[1].Role)
}

func TestSendMessageFallsBackToChat(t *testing.T) {
	repo := newMemConversationRepo()
	svc := newTestChatService(repo, agent.IntentNormalChat, nil, &stubLLM{response: "hello there"})

	res, err := svc.SendMessage(context.Background(), &dto.SendMessageRequest{
		VaultId:       "vault-1",
		Message:       "how are you?",
		RetrievalMode: "NONE",
	})

	require.NoError(t, err)
	assert.Equal(t, "chat", res.Handled)
	assert.Nil(t, res.Result)
	assert.Equal(t, "hello there", res.Reply)
	assert.Len(t, repo.messages[res.ConversationId], 2)
}

func TestSendMessageAgentFailureFallsBackToChat(t *testing.T) {
	repo := newMemConversationRepo()
	failing := &fixedAgent{err: agent.ErrNoResults}
	svc := newTestChatService(repo, agent.IntentSearchNotes, failing, &stubLLM{response: "fallback answer"})

	res, err := svc.SendMessage(context.Background(), &dto.SendMessageRequest{
		VaultId:       "vault-1",
		Message:       "find something that does not exist",
		RetrievalMode: "NONE",
	})

	require.NoError(t, err)
	assert.Equal(t, "chat", res.Handled)
	assert.Equal(t, "fallback answer", res.Reply)
}

func TestSendMessageCompletionFailureIsChatError(t *testing.T) {
	repo := newMemConversationRepo()
	svc := newTestChatService(repo, agent.IntentNormalChat, nil, &stubLLM{err: errors.New("connection refused")})

	res, err := svc.SendMessage(context.Background(), &dto.SendMessageRequest{
		VaultId:       "vault-1",
		Message:       "hello",
		RetrievalMode: "NONE",
	})

	assert.Nil(t, res)
	var chatErr *ChatError
	require.ErrorAs(t, err, &chatErr)
	assert.Equal(t, "ollama", chatErr.Provider)
	assert.Equal(t, "llama3", chatErr.Model)

	// failed turns leave no partial history behind
	for _, msgs := range repo.messages {
		assert.Empty(t, msgs)
	}
}

func TestSendMessageUnknownConversation(t *testing.T) {
	repo := newMemConversationRepo()
	svc := newTestChatService(repo, agent.IntentNormalChat, nil, &stubLLM{response: "x"})

	missing := uuid.New()
	_, err := svc.SendMessage(context.Background(), &dto.SendMessageRequest{
		VaultId:        "vault-1",
		ConversationId: &missing,
		Message:        "hello",
	})

	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestSendMessageReusesConversation(t *testing.T) {
	repo := newMemConversationRepo()
	svc := newTestChatService(repo, agent.IntentNormalChat, nil, &stubLLM{response: "reply"})

	first, err := svc.SendMessage(context.Background(), &dto.SendMessageRequest{
		VaultId:       "vault-1",
		Message:       "first message",
		RetrievalMode: "NONE",
	})
	require.NoError(t, err)

	second, err := svc.SendMessage(context.Background(), &dto.SendMessageRequest{
		VaultId:        "vault-1",
		ConversationId: &first.ConversationId,
		Message:        "second message",
		RetrievalMode:  "NONE",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ConversationId, second.ConversationId)
	assert.Len(t, repo.messages[first.ConversationId], 4)
}

func TestSendMessageCancelledContextPersistsNothing(t *testing.T) {
	repo := newMemConversationRepo()
	svc := newTestChatService(repo, agent.IntentNormalChat, nil, &stubLLM{response: "reply"})

	ctx, cancel := context.WithCancel(context.Background())
	conversation := &model.Conversation{Id: uuid.New(), VaultId: "vault-1", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, conversation))
	cancel()

	_, err := svc.SendMessage(ctx, &dto.SendMessageRequest{
		VaultId:        "vault-1",
		ConversationId: &conversation.Id,
		Message:        "hello",
		RetrievalMode:  "NONE",
	})

	assert.Error(t, err)
	assert.Empty(t, repo.messages[conversation.Id])
}
