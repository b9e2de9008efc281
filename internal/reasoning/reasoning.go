// Package reasoning optionally enriches the planner's deterministic
// assignment_reasoning text with a short
// AI-generated note. The deterministic template in
// internal/planner/singleweek.go is always produced first and is never
// replaced wholesale — Enrich only appends a sentence, and any
// failure (no provider configured, request error, timeout) leaves the
// deterministic text untouched. Nothing in the planning algorithm,
// rotation state, or projections depends on this package being wired.
package reasoning

import "context"

// Generator produces a short free-text addendum for a main-course
// assignment. Implementations must be safe to call with no configured
// credentials — NoopGenerator is the always-available fallback.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NoopGenerator never enriches; used when no provider is configured.
type NoopGenerator struct{}

func (NoopGenerator) Generate(ctx context.Context, prompt string) (string, error) { return "", nil }

// Enrich appends generator's output to base, separated by a space, when
// the generator succeeds with non-empty text. Any error or empty result
// returns base unchanged — enrichment is strictly additive; the
// deterministic template text always stands on its own.
func Enrich(ctx context.Context, gen Generator, base, prompt string) string {
	if gen == nil {
		return base
	}
	extra, err := gen.Generate(ctx, prompt)
	if err != nil || extra == "" {
		return base
	}
	return base + " " + extra
}
