package retrieval

import (
	"context"
	"errors"
	"fmt"

	"vault-copilot-be/internal/pkg/logger"
	"vault-copilot-be/pkg/embedding"
	"vault-copilot-be/pkg/vectorstore"
	"vault-copilot-be/pkg/websearch"

	"golang.org/x/sync/errgroup"
)

// Mode selects which sources feed the retrieval context.
type Mode string

const (
	ModeNone   Mode = "NONE"
	ModeRAG    Mode = "RAG"
	ModeWeb    Mode = "WEB"
	ModeHybrid Mode = "HYBRID"
)

// ParseMode maps a wire value onto a Mode, defaulting to RAG.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeNone, ModeRAG, ModeWeb, ModeHybrid:
		return Mode(s)
	default:
		return ModeRAG
	}
}

// ErrAllSourcesFailed is returned from HYBRID retrieval only when both legs
// fail; a single failed leg degrades to the surviving source.
var ErrAllSourcesFailed = errors.New("retrieval: all sources failed")

// Context is the unified retrieval result: ordered note chunks with
// similarity scores plus ordered web snippets.
type Context struct {
	Chunks []vectorstore.ScoredChunk
	Web    []websearch.Snippet
}

// IsEmpty reports whether retrieval produced nothing usable.
func (c *Context) IsEmpty() bool {
	return c == nil || (len(c.Chunks) == 0 && len(c.Web) == 0)
}

// Reranker reorders retrieved chunks by relevance to the query.
type Reranker interface {
	Rerank(ctx context.Context, query string, chunks []vectorstore.ScoredChunk) ([]vectorstore.ScoredChunk, error)
}

// Config encapsulates retrieval parameters.
type Config struct {
	SimilarityThreshold float64
	TopK                int
	WebMaxResults       int
}

// DefaultConfig returns default retrieval configuration.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.35,
		TopK:                10,
		WebMaxResults:       5,
	}
}

// Service fetches notes-context and/or web-context for a query. In HYBRID
// mode both legs run concurrently and are joined before returning, so total
// latency approximates the slower leg, not the sum.
type Service struct {
	embedder embedding.Provider
	store    vectorstore.Store
	reranker Reranker // optional
	web      websearch.Client
	cfg      Config
	log      logger.ILogger
}

func NewService(
	embedder embedding.Provider,
	store vectorstore.Store,
	reranker Reranker,
	web websearch.Client,
	cfg Config,
	log logger.ILogger,
) *Service {
	return &Service{
		embedder: embedder,
		store:    store,
		reranker: reranker,
		web:      web,
		cfg:      cfg,
		log:      log,
	}
}

// Retrieve builds a retrieval context for one query, scoped to a vault.
func (s *Service) Retrieve(ctx context.Context, vaultID, query string, mode Mode) (*Context, error) {
	switch mode {
	case ModeNone:
		return &Context{}, nil

	case ModeRAG:
		chunks, err := s.retrieveNotes(ctx, vaultID, query)
		if err != nil {
			return nil, err
		}
		return &Context{Chunks: chunks}, nil

	case ModeWeb:
		snippets, err := s.retrieveWeb(ctx, query)
		if err != nil {
			return nil, err
		}
		return &Context{Web: snippets}, nil

	case ModeHybrid:
		return s.retrieveHybrid(ctx, vaultID, query)

	default:
		return nil, fmt.Errorf("retrieval: unknown mode %q", mode)
	}
}

// retrieveHybrid fans out the RAG and WEB legs as independent tasks and
// joins both. Legs record their own error instead of cancelling each other;
// only both failing propagates.
func (s *Service) retrieveHybrid(ctx context.Context, vaultID, query string) (*Context, error) {
	var (
		chunks   []vectorstore.ScoredChunk
		snippets []websearch.Snippet
		ragErr   error
		webErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		chunks, ragErr = s.retrieveNotes(gctx, vaultID, query)
		return nil
	})
	g.Go(func() error {
		snippets, webErr = s.retrieveWeb(gctx, query)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ragErr != nil && webErr != nil {
		return nil, fmt.Errorf("%w: rag: %v; web: %v", ErrAllSourcesFailed, ragErr, webErr)
	}
	if ragErr != nil {
		s.log.Warn("retrieval", "hybrid RAG leg failed, degrading to web-only", map[string]interface{}{"error": ragErr.Error()})
		chunks = nil
	}
	if webErr != nil {
		s.log.Warn("retrieval", "hybrid WEB leg failed, degrading to notes-only", map[string]interface{}{"error": webErr.Error()})
		snippets = nil
	}

	return &Context{Chunks: chunks, Web: snippets}, nil
}

// retrieveNotes runs the RAG path: embed, vector search, optional rerank,
// threshold filter, keep top-K.
func (s *Service) retrieveNotes(ctx context.Context, vaultID, query string) ([]vectorstore.ScoredChunk, error) {
	vec, err := s.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	filters := map[string]string{}
	if vaultID != "" {
		filters["vault_id"] = vaultID
	}
	chunks, err := s.store.Search(ctx, vec, s.cfg.TopK, filters)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	if s.reranker != nil && len(chunks) > 1 {
		reranked, err := s.reranker.Rerank(ctx, query, chunks)
		if err != nil {
			s.log.Warn("retrieval", "rerank failed, keeping vector order", map[string]interface{}{"error": err.Error()})
		} else {
			chunks = reranked
		}
	}

	kept := make([]vectorstore.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Similarity >= s.cfg.SimilarityThreshold {
			kept = append(kept, c)
		}
	}
	if len(kept) > s.cfg.TopK {
		kept = kept[:s.cfg.TopK]
	}
	return kept, nil
}

func (s *Service) retrieveWeb(ctx context.Context, query string) ([]websearch.Snippet, error) {
	if s.web == nil {
		return nil, errors.New("retrieval: no web search client configured")
	}
	snippets, err := s.web.Search(ctx, query, s.cfg.WebMaxResults)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	if len(snippets) > s.cfg.WebMaxResults {
		snippets = snippets[:s.cfg.WebMaxResults]
	}
	return snippets, nil
}
