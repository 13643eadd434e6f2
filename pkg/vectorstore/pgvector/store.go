package pgvector

import (
	"context"
	"fmt"
	"time"

	"vault-copilot-be/pkg/vectorstore"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	pgv "github.com/pgvector/pgvector-go"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// candidateDims are probed when the collection dimension cannot be read from
// the catalog. Models outside this set fail with ErrDimensionMismatch.
var candidateDims = []int{768, 1024, 1536, 3072}

const dimCacheKey = "collection_dim"

type chunkRow struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VaultID    string            `gorm:"type:text;not null;index"`
	FilePath   string            `gorm:"type:text;not null;index"`
	ChunkIndex int               `gorm:"default:0"`
	Content    string            `gorm:"type:text"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	Embedding  pgv.Vector        `gorm:"type:vector(768)"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"autoUpdateTime"`
}

func (chunkRow) TableName() string {
	return "vault_chunks"
}

// Store is a pgvector-backed vectorstore.Store. The collection is created
// lazily on first use; concurrent first-use is collapsed via singleflight so
// the table is never initialized twice.
type Store struct {
	db    *gorm.DB
	memo  *gocache.Cache
	group singleflight.Group
}

var _ vectorstore.Store = &Store{}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:   db,
		memo: gocache.New(24*time.Hour, 1*time.Hour),
	}
}

func (s *Store) Search(ctx context.Context, embedding []float32, topK int, filters map[string]string) ([]vectorstore.ScoredChunk, error) {
	if topK <= 0 {
		topK = 5
	}
	if err := s.ensureReady(ctx, len(embedding)); err != nil {
		return nil, err
	}

	type scoredRow struct {
		chunkRow
		Distance float64
	}

	query := s.db.WithContext(ctx).
		Model(&chunkRow{}).
		Select("*, embedding <=> ? AS distance", pgv.NewVector(embedding))
	if vaultID, ok := filters["vault_id"]; ok {
		query = query.Where("vault_id = ?", vaultID)
	}
	if filePath, ok := filters["file_path"]; ok {
		query = query.Where("file_path = ?", filePath)
	}

	var rows []scoredRow
	if err := query.Order("distance ASC").Limit(topK).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]vectorstore.ScoredChunk, 0, len(rows))
	for _, row := range rows {
		meta := map[string]any(row.Metadata)
		if meta == nil {
			meta = map[string]any{}
		}
		meta[vectorstore.MetaFilePath] = row.FilePath

		// Cosine distance is in [0, 2]; similarity is normalized to [0, 1]
		sim := 1.0 - row.Distance
		if sim < 0 {
			sim = 0
		}
		if sim > 1 {
			sim = 1
		}

		results = append(results, vectorstore.ScoredChunk{
			Chunk: vectorstore.Chunk{
				ID:        row.ID.String(),
				Text:      row.Content,
				Metadata:  meta,
				Embedding: row.Embedding.Slice(),
			},
			Similarity: sim,
		})
	}

	return results, nil
}

func (s *Store) Upsert(ctx context.Context, chunks []vectorstore.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := s.ensureReady(ctx, len(chunks[0].Embedding)); err != nil {
		return err
	}

	rows := make([]chunkRow, 0, len(chunks))
	for i, c := range chunks {
		id := uuid.New()
		if c.ID != "" {
			if parsed, err := uuid.Parse(c.ID); err == nil {
				id = parsed
			}
		}
		vaultID, _ := c.Metadata["vault_id"].(string)
		rows = append(rows, chunkRow{
			ID:         id,
			VaultID:    vaultID,
			FilePath:   c.FilePath(),
			ChunkIndex: chunkIndexOf(c, i),
			Content:    c.Text,
			Metadata:   datatypes.JSONMap(c.Metadata),
			Embedding:  pgv.NewVector(c.Embedding),
		})
	}

	return s.db.WithContext(ctx).Save(&rows).Error
}

// chunkIndexOf prefers the index the producer recorded in metadata; callers
// may filter chunks before upserting, so slice position can drift from it.
func chunkIndexOf(c vectorstore.Chunk, fallback int) int {
	switch v := c.Metadata["chunk_index"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}

func (s *Store) DeleteByFilePath(ctx context.Context, vaultID, filePath string) error {
	return s.db.WithContext(ctx).
		Where("vault_id = ? AND file_path = ?", vaultID, filePath).
		Delete(&chunkRow{}).Error
}

func (s *Store) Clear(ctx context.Context, vaultID string) error {
	return s.db.WithContext(ctx).
		Where("vault_id = ?", vaultID).
		Delete(&chunkRow{}).Error
}

// ensureReady creates the collection on first use and verifies the column
// dimension matches the embeddings in play.
func (s *Store) ensureReady(ctx context.Context, dim int) error {
	if cached, found := s.memo.Get(dimCacheKey); found {
		if cached.(int) != dim {
			return vectorstore.ErrDimensionMismatch
		}
		return nil
	}

	_, err, _ := s.group.Do(dimCacheKey, func() (interface{}, error) {
		existing, err := s.detectDimension(ctx)
		if err != nil {
			return nil, err
		}
		if existing == 0 {
			if err := s.createCollection(ctx, dim); err != nil {
				return nil, err
			}
			existing = dim
		}
		if existing != dim {
			return nil, vectorstore.ErrDimensionMismatch
		}
		s.memo.Set(dimCacheKey, existing, gocache.NoExpiration)
		return existing, nil
	})
	return err
}

// detectDimension reads the vector column dimension from the catalog.
// Returns 0 when the table does not exist yet. Falls back to probing a small
// set of candidate dimensions when the catalog gives nothing usable.
func (s *Store) detectDimension(ctx context.Context) (int, error) {
	var exists bool
	if err := s.db.WithContext(ctx).
		Raw("SELECT to_regclass('vault_chunks') IS NOT NULL").
		Scan(&exists).Error; err != nil {
		return 0, fmt.Errorf("check collection: %w", err)
	}
	if !exists {
		return 0, nil
	}

	var dim int
	err := s.db.WithContext(ctx).
		Raw("SELECT atttypmod FROM pg_attribute WHERE attrelid = 'vault_chunks'::regclass AND attname = 'embedding'").
		Scan(&dim).Error
	if err == nil && dim > 0 {
		return dim, nil
	}

	// Catalog probe failed, try the candidate set. Correctness is not
	// guaranteed for models outside this set.
	for _, candidate := range candidateDims {
		zero := make([]float32, candidate)
		probe := s.db.WithContext(ctx).
			Raw("SELECT count(*) FROM vault_chunks WHERE embedding <=> ? < -1", pgv.NewVector(zero))
		var n int
		if probe.Scan(&n).Error == nil {
			return candidate, nil
		}
	}
	return 0, vectorstore.ErrDimensionMismatch
}

func (s *Store) createCollection(ctx context.Context, dim int) error {
	if err := s.db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("enable pgvector: %w", err)
	}
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS vault_chunks (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		vault_id text NOT NULL,
		file_path text NOT NULL,
		chunk_index int DEFAULT 0,
		content text,
		metadata jsonb,
		embedding vector(%d),
		created_at timestamptz DEFAULT now(),
		updated_at timestamptz DEFAULT now()
	)`, dim)
	if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Exec("CREATE INDEX IF NOT EXISTS idx_vault_chunks_path ON vault_chunks (vault_id, file_path)").Error; err != nil {
		return fmt.Errorf("index collection: %w", err)
	}
	return nil
}
