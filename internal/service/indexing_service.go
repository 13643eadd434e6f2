package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"vault-copilot-be/internal/dto"
	"vault-copilot-be/internal/pkg/logger"
	"vault-copilot-be/pkg/embedding"
	"vault-copilot-be/pkg/events"
	"vault-copilot-be/pkg/utils"
	"vault-copilot-be/pkg/vaultfs"
	"vault-copilot-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	chunkSize    = 1200
	chunkOverlap = 200
)

type IIndexingService interface {
	Consume(ctx context.Context) error
	IndexNote(ctx context.Context, vaultId, notePath string) error
	RemoveNote(ctx context.Context, vaultId, notePath string) error
}

// indexingService keeps the vector index in sync with the vault. It consumes
// note-saved messages, re-chunks the file, embeds every chunk and replaces
// the file's rows in the store.
type indexingService struct {
	pubSub            *gochannel.GoChannel
	fs                vaultfs.FileSystem
	embeddingProvider embedding.Provider
	store             vectorstore.Store
	log               logger.ILogger
}

func NewIndexingService(
	pubSub *gochannel.GoChannel,
	fs vaultfs.FileSystem,
	embeddingProvider embedding.Provider,
	store vectorstore.Store,
	log logger.ILogger,
) IIndexingService {
	return &indexingService{
		pubSub:            pubSub,
		fs:                fs,
		embeddingProvider: embeddingProvider,
		store:             store,
		log:               log,
	}
}

func (s *indexingService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, events.TopicNoteSaved)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *indexingService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.NoteSavedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.log.Error("indexing", "failed to unmarshal message, dropping", map[string]interface{}{"error": err.Error()})
		msg.Ack() // invalid payloads are never going to parse, don't retry
		return
	}

	if payload.Deleted {
		if err := s.RemoveNote(ctx, payload.VaultId, payload.Path); err != nil {
			s.log.Error("indexing", "failed to remove note from index", map[string]interface{}{
				"path":  payload.Path,
				"error": err.Error(),
			})
			msg.Nack()
			return
		}
		msg.Ack()
		return
	}

	if err := s.IndexNote(ctx, payload.VaultId, payload.Path); err != nil {
		s.log.Error("indexing", "failed to index note", map[string]interface{}{
			"path":  payload.Path,
			"error": err.Error(),
		})
		msg.Nack()
		return
	}
	msg.Ack()
}

func (s *indexingService) IndexNote(ctx context.Context, vaultId, notePath string) error {
	exists, err := s.fs.IsFile(ctx, notePath)
	if err != nil {
		return fmt.Errorf("stat note: %w", err)
	}
	if !exists {
		// File vanished between save and consume. Treat as a delete.
		return s.RemoveNote(ctx, vaultId, notePath)
	}

	content, err := s.fs.Read(ctx, notePath)
	if err != nil {
		return fmt.Errorf("read note: %w", err)
	}

	pieces := utils.SplitText(content, chunkSize, chunkOverlap)
	chunks := make([]vectorstore.Chunk, 0, len(pieces))
	for i, text := range pieces {
		if strings.TrimSpace(text) == "" {
			continue
		}
		vec, err := s.embeddingProvider.Generate(ctx, text, embedding.TaskRetrievalDocument)
		if err != nil {
			return fmt.Errorf("embed chunk %d of %s: %w", i, notePath, err)
		}
		chunks = append(chunks, vectorstore.Chunk{
			Text: text,
			Metadata: map[string]any{
				"vault_id":               vaultId,
				vectorstore.MetaFilePath: notePath,
				"title":                  noteTitleFromPath(notePath),
				"chunk_index":            i,
			},
			Embedding: vec,
		})
	}

	// Replace, not merge: stale chunks from the previous revision must go.
	if err := s.store.DeleteByFilePath(ctx, vaultId, notePath); err != nil {
		return fmt.Errorf("clear stale chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}
	if err := s.store.Upsert(ctx, chunks); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}

	s.log.Info("indexing", "note indexed", map[string]interface{}{
		"path":   notePath,
		"chunks": len(chunks),
	})
	return nil
}

func (s *indexingService) RemoveNote(ctx context.Context, vaultId, notePath string) error {
	return s.store.DeleteByFilePath(ctx, vaultId, notePath)
}

func noteTitleFromPath(notePath string) string {
	base := path.Base(notePath)
	return strings.TrimSuffix(base, path.Ext(base))
}
