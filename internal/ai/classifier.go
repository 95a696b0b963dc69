package ai

import "context"

// Classifier answers a single bounded question from a prompt. Implementations
// retry transient failures internally; an error means the retry budget is
// exhausted and the caller must treat the evaluation as failed.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}
