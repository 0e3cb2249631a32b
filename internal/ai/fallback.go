package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoProvider is returned by a chain with no configured narrators.
var ErrNoProvider = errors.New("ai: no narrative provider configured")

// fallbackNarrator walks an ordered list of providers. Each provider is tried
// at most once; a failure moves straight to the next one without re-attempts.
// The provider order is chosen in main.go.
type fallbackNarrator struct {
	providers []Narrator
	logger    *slog.Logger
}

// NewFallbackNarrator returns a Narrator that calls each non-nil provider in
// order until one succeeds. If all fail, the errors are joined. With no
// providers it always returns ErrNoProvider.
func NewFallbackNarrator(logger *slog.Logger, providers ...Narrator) Narrator {
	live := make([]Narrator, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			live = append(live, p)
		}
	}
	return &fallbackNarrator{providers: live, logger: logger}
}

// GenerateNarrative tries each provider in turn. A cancelled context stops the
// chain immediately.
func (f *fallbackNarrator) GenerateNarrative(ctx context.Context, req NarrativeRequest) (NarrativeResult, error) {
	if len(f.providers) == 0 {
		return NarrativeResult{}, ErrNoProvider
	}

	var errs []error
	for i, p := range f.providers {
		result, err := p.GenerateNarrative(ctx, req)
		if err == nil {
			return result, nil
		}
		errs = append(errs, err)

		if ctx.Err() != nil {
			break
		}
		if i < len(f.providers)-1 {
			f.logger.Warn("ai: narrative provider failed, trying next",
				"error", err,
				"provider_index", i,
				"dimensions", len(req.Dimensions),
			)
		}
	}
	return NarrativeResult{}, fmt.Errorf("ai: all narrative providers failed: %w", errors.Join(errs...))
}
