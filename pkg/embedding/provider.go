package embedding

import "context"

// Task types hint the model about intended use of the vector.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// Provider defines the interface for generating text embeddings
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
}
