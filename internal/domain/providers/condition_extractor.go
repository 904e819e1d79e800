package providers

import "context"

// ConditionExtractor infers candidate condition names from a free-text symptom description.
// Implementations return at most 15 trimmed, non-empty names, most likely first.
type ConditionExtractor interface {
	ExtractConditions(ctx context.Context, query string) ([]string, error)
}
