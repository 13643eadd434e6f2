package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"vault-copilot-be/internal/pkg/logger"
	"vault-copilot-be/pkg/events"
	"vault-copilot-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memVaultFS struct {
	mu    sync.Mutex
	files map[string]string
}

func (f *memVaultFS) Read(ctx context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[path], nil
}

func (f *memVaultFS) Write(ctx context.Context, path, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = content
	return nil
}

func (f *memVaultFS) Remove(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[path]; !ok {
		return fmt.Errorf("remove %s: %w", path, os.ErrNotExist)
	}
	delete(f.files, path)
	return nil
}

func (f *memVaultFS) List(ctx context.Context, dir string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var paths []string
	for p := range f.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

func (f *memVaultFS) IsFile(ctx context.Context, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[path]
	return ok, nil
}

func (f *memVaultFS) IsDirectory(ctx context.Context, path string) (bool, error) { return false, nil }

func (f *memVaultFS) Exists(ctx context.Context, path string) (bool, error) {
	return f.IsFile(ctx, path)
}

type recordingStore struct {
	mu       sync.Mutex
	upserted []vectorstore.Chunk
	deleted  []string
	notify   chan struct{}
}

func newRecordingStore() *recordingStore {
	return &recordingStore{notify: make(chan struct{}, 16)}
}

func (s *recordingStore) Search(ctx context.Context, embedding []float32, topK int, filters map[string]string) ([]vectorstore.ScoredChunk, error) {
	return nil, nil
}

func (s *recordingStore) Upsert(ctx context.Context, chunks []vectorstore.Chunk) error {
	s.mu.Lock()
	s.upserted = append(s.upserted, chunks...)
	s.mu.Unlock()
	s.notify <- struct{}{}
	return nil
}

func (s *recordingStore) DeleteByFilePath(ctx context.Context, vaultID, filePath string) error {
	s.mu.Lock()
	s.deleted = append(s.deleted, filePath)
	s.mu.Unlock()
	s.notify <- struct{}{}
	return nil
}

func (s *recordingStore) Clear(ctx context.Context, vaultID string) error { return nil }

func (s *recordingStore) wait(t *testing.T) {
	t.Helper()
	select {
	case <-s.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for store operation")
	}
}

func TestIndexNoteChunksEmbedsAndUpserts(t *testing.T) {
	fs := &memVaultFS{files: map[string]string{
		"notes/raft.md": "Leader election. Log replication. Safety.",
	}}
	store := newRecordingStore()
	svc := NewIndexingService(nil, fs, nilEmbedder{}, store, logger.NewNop())

	err := svc.IndexNote(context.Background(), "vault-1", "notes/raft.md")

	require.NoError(t, err)
	require.Len(t, store.upserted, 1)
	chunk := store.upserted[0]
	assert.Equal(t, "Leader election. Log replication. Safety.", chunk.Text)
	assert.Equal(t, "notes/raft.md", chunk.FilePath())
	assert.Equal(t, "vault-1", chunk.Metadata["vault_id"])
	assert.NotEmpty(t, chunk.Embedding)
	// previous revision rows are cleared first
	assert.Equal(t, []string{"notes/raft.md"}, store.deleted)
}

func TestIndexNoteMissingFileRemovesFromIndex(t *testing.T) {
	fs := &memVaultFS{files: map[string]string{}}
	store := newRecordingStore()
	svc := NewIndexingService(nil, fs, nilEmbedder{}, store, logger.NewNop())

	err := svc.IndexNote(context.Background(), "vault-1", "gone.md")

	require.NoError(t, err)
	assert.Empty(t, store.upserted)
	assert.Equal(t, []string{"gone.md"}, store.deleted)
}

func TestConsumeProcessesSavedAndDeletedMessages(t *testing.T) {
	fs := &memVaultFS{files: map[string]string{
		"a.md": "alpha content",
	}}
	store := newRecordingStore()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	svc := NewIndexingService(pubSub, fs, nilEmbedder{}, store, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, svc.Consume(ctx))

	publish := func(payload string) {
		msg := message.NewMessage(watermill.NewUUID(), []byte(payload))
		require.NoError(t, pubSub.Publish(events.TopicNoteSaved, msg))
	}

	publish(`{"vault_id":"vault-1","path":"a.md"}`)
	store.wait(t) // delete of stale rows
	store.wait(t) // upsert of fresh chunks

	store.mu.Lock()
	upserts := len(store.upserted)
	store.mu.Unlock()
	assert.Equal(t, 1, upserts)

	publish(`{"vault_id":"vault-1","path":"a.md","deleted":true}`)
	store.wait(t)

	store.mu.Lock()
	deletes := len(store.deleted)
	store.mu.Unlock()
	assert.Equal(t, 2, deletes)
}
