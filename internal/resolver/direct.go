package resolver

import (
	"context"

	"gavel/internal/meeting"
)

// directStrategy expands a configured URL template with the meeting's date
// and committee tokens. Cheapest strategy, so it runs first; archives with a
// predictable layout never need a page fetch.
type directStrategy struct {
	template string
}

func (s *directStrategy) Name() string { return "direct" }

func (s *directStrategy) Resolve(_ context.Context, ref meeting.Ref) ([]Candidate, error) {
	expanded := ref.ExpandTemplate(s.template)
	if expanded == "" {
		return nil, nil
	}
	return []Candidate{{URL: expanded, Strategy: s.Name()}}, nil
}
