package vectorstore

import (
	"context"
	"errors"
)

// MetaFilePath is the metadata key every chunk must carry: the vault-relative
// path of the note the chunk was cut from.
const MetaFilePath = "file_path"

// ErrDimensionMismatch is returned when the store's column dimension does not
// match the embeddings being written, and none of the probed candidate
// dimensions fit either.
var ErrDimensionMismatch = errors.New("vectorstore: embedding dimension does not match collection")

// Chunk is a segment of a note, indexed with an embedding vector and
// source metadata.
type Chunk struct {
	ID        string
	Text      string
	Metadata  map[string]any
	Embedding []float32
}

// FilePath returns the source file path from the chunk metadata, if any.
func (c Chunk) FilePath() string {
	if c.Metadata == nil {
		return ""
	}
	if p, ok := c.Metadata[MetaFilePath].(string); ok {
		return p
	}
	return ""
}

// ScoredChunk pairs a chunk with a similarity normalized to [0.0, 1.0].
type ScoredChunk struct {
	Chunk
	Similarity float64
}

// Store is the vector index collaborator contract.
type Store interface {
	Search(ctx context.Context, embedding []float32, topK int, filters map[string]string) ([]ScoredChunk, error)
	Upsert(ctx context.Context, chunks []Chunk) error
	DeleteByFilePath(ctx context.Context, vaultID, filePath string) error
	Clear(ctx context.Context, vaultID string) error
}
