// Package agent implements the message-to-action pipeline: a single intent
// classification followed by dispatch to exactly one concrete agent. Agents
// assume intent has already been decided; self-detection is not a thing here.
package agent

import (
	"context"
	"errors"

	"vault-copilot-be/pkg/memory"
	"vault-copilot-be/pkg/vectorstore"
)

// Precondition and execution errors agents raise. The master swallows all of
// them; they exist so tool endpoints and tests can tell modes of failure apart.
var (
	ErrNoVault             = errors.New("agent: no vault is open")
	ErrNoOpenNote          = errors.New("agent: no note is open")
	ErrNoResults           = errors.New("agent: no matching notes")
	ErrMissingCollaborator = errors.New("agent: required collaborator not configured")
)

// Settings is the per-request settings snapshot. Copied out of the live
// configuration when the request starts; never shared, never mutated.
type Settings struct {
	ChatModel           string
	ClassifierModel     string
	SimilarityThreshold float64
	TopK                int
	WebMaxResults       int
	MemoryPolicy        memory.Policy
}

// Context is the immutable per-request snapshot handed to every agent.
// Owned solely by the call that created it.
type Context struct {
	VaultID         string
	VaultRoot       string // empty when no vault is open
	CurrentNotePath string // empty when no note is open
	Settings        Settings
}

// HasVault reports whether a vault is open for this request.
func (c *Context) HasVault() bool {
	return c != nil && c.VaultRoot != ""
}

// Agent is the shared contract of every concrete agent. Execute may return a
// descriptive error; the master treats any error as "no result".
type Agent interface {
	Execute(ctx context.Context, message string, history []memory.Turn, actx *Context) (*Result, error)
}

// ChunkRetriever fetches scored note chunks for a free-text query.
type ChunkRetriever interface {
	RetrieveChunks(ctx context.Context, vaultID, query string, topK int) ([]vectorstore.ScoredChunk, error)
}

// NoteRetriever returns ranked note file paths for a query. Raw similarity
// scores are not exposed at this layer.
type NoteRetriever interface {
	RetrieveNotes(ctx context.Context, vaultID, query string, topK int) ([]string, error)
}

// NotePublisher announces vault writes so the index stays current, plus the
// domain events agents raise after a write. Implementations must be
// best-effort; agents ignore publish failures.
type NotePublisher interface {
	NoteSaved(ctx context.Context, vaultID, path string)
	FlashcardsGenerated(ctx context.Context, vaultID, path string, count int)
}
