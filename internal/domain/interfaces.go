package domain

import "context"

// GenerationOptions bounds a text-generation request.
type GenerationOptions struct {
	MaxTokens   int
	Temperature float64
}

// TextGenerator is the swappable external text-generation capability.
// Any implementation that accepts a prompt plus generation parameters and
// returns generated text, or fails, is acceptable. The engine must function
// fully with this capability entirely absent.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error)
}

// ExplanationCache stores explanation bundles keyed by verdict shape so that
// identical verdicts across runs do not trigger redundant generation calls.
type ExplanationCache interface {
	Get(ctx context.Context, key string) (ExplanationBundle, bool)
	Set(ctx context.Context, key string, bundle ExplanationBundle) error
}

// ReportStore persists validated reports and retrieves them by patient ID.
type ReportStore interface {
	Save(ctx context.Context, report *Report) error
	ListByPatient(ctx context.Context, patientID string) ([]Report, error)
	Close() error
}
