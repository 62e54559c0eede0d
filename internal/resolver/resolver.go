// Package resolver maps user-supplied, possibly imprecise database names to
// canonical RDS instance identifiers. Two strategies implement the same
// interface: an inference-backed resolver and a deterministic string
// matcher. The strategies are selected explicitly, never chained.
package resolver

import (
	"context"
	"errors"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// ErrNoMatch is the typed no-match outcome. It is not a fault: the input
// simply could not be mapped to any known instance identifier.
var ErrNoMatch = errors.New("no matching RDS instance found")

// Resolver maps a raw database name to a canonical instance identifier.
type Resolver interface {
	Resolve(ctx context.Context, rawName string) (string, error)
}

// CandidateSource supplies the current instance identifiers to match against.
type CandidateSource interface {
	Identifiers(ctx context.Context) ([]string, error)
}

// BestMatch finds the best candidate for a target name without any network
// or inference call. Exact case-insensitive match wins immediately;
// otherwise candidates where either string contains the other are
// collected and the shortest wins, ties broken by original order.
func BestMatch(target string, candidates []string) (string, bool) {
	if target == "" || len(candidates) == 0 {
		return "", false
	}

	fold := cases.Fold()
	want := fold.String(target)

	for _, c := range candidates {
		if fold.String(c) == want {
			return c, true
		}
	}

	var partial []string
	for _, c := range candidates {
		folded := fold.String(c)
		if strings.Contains(folded, want) || strings.Contains(want, folded) {
			partial = append(partial, c)
		}
	}
	if len(partial) == 0 {
		return "", false
	}

	sort.SliceStable(partial, func(i, j int) bool {
		return len(partial[i]) < len(partial[j])
	})
	return partial[0], true
}

// Static is the deterministic resolver built on BestMatch. Used when the
// inference service is disabled.
type Static struct {
	source CandidateSource
}

// NewStatic creates a deterministic resolver over the given candidate source.
func NewStatic(source CandidateSource) *Static {
	return &Static{source: source}
}

// Resolve matches the raw name against the current candidate set.
func (s *Static) Resolve(ctx context.Context, rawName string) (string, error) {
	candidates, err := s.source.Identifiers(ctx)
	if err != nil {
		return "", err
	}
	match, ok := BestMatch(rawName, candidates)
	if !ok {
		return "", ErrNoMatch
	}
	return match, nil
}
