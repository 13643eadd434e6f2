package service

import (
	"context"
	"encoding/json"

	"vault-copilot-be/internal/dto"
	"vault-copilot-be/internal/pkg/logger"
	"vault-copilot-be/pkg/events"
	pktNats "vault-copilot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IPublisherService interface {
	NoteSaved(ctx context.Context, vaultId, path string)
	NoteDeleted(ctx context.Context, vaultId, path string)
	FlashcardsGenerated(ctx context.Context, vaultId, path string, count int)
	PublishEvent(ctx context.Context, event events.Event)
}

// publisherService fans a note-save out to the in-process indexing topic and,
// best effort, to the NATS event stream. It never fails the caller: a note
// already written to disk must not be reported as an error because its
// indexing could not be scheduled.
type publisherService struct {
	pubSub  message.Publisher
	natsPub *pktNats.Publisher // nil when NATS is unavailable
	log     logger.ILogger
}

func NewPublisherService(pubSub message.Publisher, natsPub *pktNats.Publisher, log logger.ILogger) IPublisherService {
	return &publisherService{
		pubSub:  pubSub,
		natsPub: natsPub,
		log:     log,
	}
}

func (s *publisherService) NoteSaved(ctx context.Context, vaultId, path string) {
	s.publishIndexing(dto.NoteSavedMessage{VaultId: vaultId, Path: path})
	s.PublishEvent(ctx, events.NewNoteCreated(vaultId, path, ""))
}

func (s *publisherService) NoteDeleted(ctx context.Context, vaultId, path string) {
	s.publishIndexing(dto.NoteSavedMessage{VaultId: vaultId, Path: path, Deleted: true})
}

func (s *publisherService) FlashcardsGenerated(ctx context.Context, vaultId, path string, count int) {
	s.PublishEvent(ctx, events.NewFlashcardsGenerated(vaultId, path, count))
}

func (s *publisherService) publishIndexing(payload dto.NoteSavedMessage) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("publisher", "failed to marshal indexing payload", map[string]interface{}{"error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := s.pubSub.Publish(events.TopicNoteSaved, msg); err != nil {
		s.log.Error("publisher", "failed to publish indexing message", map[string]interface{}{
			"path":  payload.Path,
			"error": err.Error(),
		})
	}
}

func (s *publisherService) PublishEvent(ctx context.Context, event events.Event) {
	if s.natsPub == nil {
		return
	}
	if err := s.natsPub.Publish(ctx, event); err != nil {
		s.log.Warn("publisher", "failed to publish domain event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}
