package knowledge

import "context"

// Answer is the result of one knowledge lookup. Sources holds the unique
// citation filenames in first-seen order.
type Answer struct {
	Text    string
	Sources []string
}

// Retriever answers a free-text query against the knowledge backend.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (Answer, error)
}
