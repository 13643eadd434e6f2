package pgvector

import (
	"testing"

	"vault-copilot-be/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
)

func TestChunkIndexOf(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
		fallback int
		want     int
	}{
		{
			name:     "producer index wins over slice position",
			metadata: map[string]any{"chunk_index": 4},
			fallback: 1,
			want:     4,
		},
		{
			name:     "json roundtrip float",
			metadata: map[string]any{"chunk_index": float64(7)},
			fallback: 0,
			want:     7,
		},
		{
			name:     "missing index falls back to position",
			metadata: map[string]any{"vault_id": "vault-1"},
			fallback: 2,
			want:     2,
		},
		{
			name:     "nil metadata",
			metadata: nil,
			fallback: 0,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := vectorstore.Chunk{Metadata: tt.metadata}
			assert.Equal(t, tt.want, chunkIndexOf(c, tt.fallback))
		})
	}
}
