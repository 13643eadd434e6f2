package service

import (
	"context"
	"testing"

	"vault-copilot-be/internal/dto"
	"vault-copilot-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisherService struct {
	saved   []string
	deleted []string
	events  []events.Event
}

func (p *recordingPublisherService) NoteSaved(ctx context.Context, vaultId, path string) {
	p.saved = append(p.saved, path)
}

func (p *recordingPublisherService) NoteDeleted(ctx context.Context, vaultId, path string) {
	p.deleted = append(p.deleted, path)
}

func (p *recordingPublisherService) FlashcardsGenerated(ctx context.Context, vaultId, path string, count int) {
	p.events = append(p.events, events.NewFlashcardsGenerated(vaultId, path, count))
}

func (p *recordingPublisherService) PublishEvent(ctx context.Context, event events.Event) {
	p.events = append(p.events, event)
}

func TestDeleteNoteRemovesFileAndAnnounces(t *testing.T) {
	fs := &memVaultFS{files: map[string]string{
		"projects/raft.md": "# Raft",
	}}
	pub := &recordingPublisherService{}
	svc := NewToolsService(testConfig(), nil, nil, nil, nil, nil, fs, pub)

	err := svc.DeleteNote(context.Background(), &dto.DeleteNoteToolRequest{
		VaultId: "vault-1",
		Path:    "projects/raft.md",
	})

	require.NoError(t, err)
	exists, _ := fs.Exists(context.Background(), "projects/raft.md")
	assert.False(t, exists)
	assert.Equal(t, []string{"projects/raft.md"}, pub.deleted)
}

func TestDeleteNoteMissingFile(t *testing.T) {
	fs := &memVaultFS{files: map[string]string{}}
	pub := &recordingPublisherService{}
	svc := NewToolsService(testConfig(), nil, nil, nil, nil, nil, fs, pub)

	err := svc.DeleteNote(context.Background(), &dto.DeleteNoteToolRequest{
		VaultId: "vault-1",
		Path:    "gone.md",
	})

	require.ErrorIs(t, err, ErrNoteNotFound)
	assert.Empty(t, pub.deleted)
}
