package ai

import "context"

// Classification is the two-field result of a classification call. It is
// transient: produced per request, never retained except via the ticket row.
type Classification struct {
	Category  string `json:"category"`
	Sentiment string `json:"sentiment"`
}

// Classifier — the external intelligence; knows nothing about tickets
// persistence or HTTP. Every error crossing this boundary is *LLMError.
type Classifier interface {
	Classify(ctx context.Context, description string) (Classification, error)
	Ping(ctx context.Context) error
}
