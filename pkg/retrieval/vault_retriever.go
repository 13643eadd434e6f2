package retrieval

import (
	"context"
	"fmt"

	"vault-copilot-be/pkg/embedding"
	"vault-copilot-be/pkg/vectorstore"
)

// VaultRetriever is the narrow notes-only lookup handed to agents. Unlike
// Service it never touches the web and applies no similarity threshold; the
// caller decides how much of the ranking to trust.
type VaultRetriever struct {
	embedder embedding.Provider
	store    vectorstore.Store
}

func NewVaultRetriever(embedder embedding.Provider, store vectorstore.Store) *VaultRetriever {
	return &VaultRetriever{
		embedder: embedder,
		store:    store,
	}
}

// RetrieveChunks embeds the query and returns the topK nearest chunks,
// best first.
func (r *VaultRetriever) RetrieveChunks(ctx context.Context, vaultID, query string, topK int) ([]vectorstore.ScoredChunk, error) {
	vec, err := r.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	filters := map[string]string{}
	if vaultID != "" {
		filters["vault_id"] = vaultID
	}
	return r.store.Search(ctx, vec, topK, filters)
}

// RetrieveNotes returns the file paths behind the nearest chunks, deduplicated
// in rank order. Rank is all callers get; raw similarity stays internal.
func (r *VaultRetriever) RetrieveNotes(ctx context.Context, vaultID, query string, topK int) ([]string, error) {
	chunks, err := r.RetrieveChunks(ctx, vaultID, query, topK)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(chunks))
	paths := make([]string, 0, len(chunks))
	for _, c := range chunks {
		path := c.FilePath()
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		paths = append(paths, path)
	}
	return paths, nil
}
