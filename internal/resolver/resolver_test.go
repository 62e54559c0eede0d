package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticSource struct {
	ids   []string
	calls int
	err   error
}

func (s *staticSource) Identifiers(_ context.Context) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.ids, nil
}

type fakeCompleter struct {
	calls   int
	content string
	err     error
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func completion(instance interface{}) string {
	raw, _ := json.Marshal(map[string]interface{}{"rds_instance": instance})
	return string(raw)
}

func TestBestMatch(t *testing.T) {
	candidates := []string{"payments-prod-1", "payments-staging", "orders-prod"}

	tests := []struct {
		name   string
		target string
		want   string
		found  bool
	}{
		{"exact match", "payments-prod-1", "payments-prod-1", true},
		{"exact match ignores case", "PAYMENTS-PROD-1", "payments-prod-1", true},
		{"substring prefers shortest candidate", "payments", "payments-prod-1", true},
		{"candidate contained in target", "orders-prod-replica-2", "orders-prod", true},
		{"no match", "inventory", "", false},
		{"empty target", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := BestMatch(tt.target, candidates)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBestMatch_ShortestPartialWins(t *testing.T) {
	got, found := BestMatch("db", []string{"prod-db-long-name", "db-1", "db-22"})
	require.True(t, found)
	assert.Equal(t, "db-1", got)
}

func TestStatic_Resolve(t *testing.T) {
	source := &staticSource{ids: []string{"test-db-1", "prod-db-1"}}
	r := NewStatic(source)

	got, err := r.Resolve(context.Background(), "prod")
	require.NoError(t, err)
	assert.Equal(t, "prod-db-1", got)

	_, err = r.Resolve(context.Background(), "inventory")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestLLM_ResolveAndMemoize(t *testing.T) {
	source := &staticSource{ids: []string{"test-db-1", "prod-db-1"}}
	completer := &fakeCompleter{content: completion("prod-db-1")}
	r := NewLLM(completer, source, "gpt-4o-mini", 16, nil, zap.NewNop())

	got, err := r.Resolve(context.Background(), "production database")
	require.NoError(t, err)
	assert.Equal(t, "prod-db-1", got)
	assert.Equal(t, 1, completer.calls)
	assert.Equal(t, 1, source.calls)

	// Cached hit must not touch the candidate source or the model.
	got, err = r.Resolve(context.Background(), "production database")
	require.NoError(t, err)
	assert.Equal(t, "prod-db-1", got)
	assert.Equal(t, 1, completer.calls)
	assert.Equal(t, 1, source.calls)
}

func TestLLM_RejectsHallucinatedIdentifier(t *testing.T) {
	source := &staticSource{ids: []string{"test-db-1"}}
	completer := &fakeCompleter{content: completion("made-up-db")}
	r := NewLLM(completer, source, "gpt-4o-mini", 16, nil, zap.NewNop())

	_, err := r.Resolve(context.Background(), "whatever")
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Equal(t, 0, r.cache.size(), "a rejected answer must not be cached")
}

func TestLLM_NullAnswerIsNoMatch(t *testing.T) {
	source := &staticSource{ids: []string{"test-db-1"}}
	completer := &fakeCompleter{content: completion(nil)}
	r := NewLLM(completer, source, "gpt-4o-mini", 16, nil, zap.NewNop())

	_, err := r.Resolve(context.Background(), "inventory")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestLLM_MalformedOutputIsNoMatchAndNotCached(t *testing.T) {
	source := &staticSource{ids: []string{"test-db-1"}}
	completer := &fakeCompleter{content: "not json at all"}
	r := NewLLM(completer, source, "gpt-4o-mini", 16, nil, zap.NewNop())

	_, err := r.Resolve(context.Background(), "test")
	assert.ErrorIs(t, err, ErrNoMatch)

	// A later well-formed answer for the same name is recomputed, not
	// served from a poisoned cache entry.
	completer.content = completion("test-db-1")
	got, err := r.Resolve(context.Background(), "test")
	require.NoError(t, err)
	assert.Equal(t, "test-db-1", got)
	assert.Equal(t, 2, completer.calls)
}

func TestLLM_CompletionErrorIsNoMatch(t *testing.T) {
	source := &staticSource{ids: []string{"test-db-1"}}
	completer := &fakeCompleter{err: errors.New("rate limited")}
	r := NewLLM(completer, source, "gpt-4o-mini", 16, nil, zap.NewNop())

	_, err := r.Resolve(context.Background(), "test")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestLLM_CandidateSourceErrorPropagates(t *testing.T) {
	source := &staticSource{err: fmt.Errorf("throttled")}
	completer := &fakeCompleter{content: completion("test-db-1")}
	r := NewLLM(completer, source, "gpt-4o-mini", 16, nil, zap.NewNop())

	_, err := r.Resolve(context.Background(), "test")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMatch)
	assert.Equal(t, 0, completer.calls)
}

func TestLLM_EmptyCandidateSetIsNoMatch(t *testing.T) {
	source := &staticSource{}
	completer := &fakeCompleter{content: completion("test-db-1")}
	r := NewLLM(completer, source, "gpt-4o-mini", 16, nil, zap.NewNop())

	_, err := r.Resolve(context.Background(), "test")
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Equal(t, 0, completer.calls)
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt("payments", []string{"a", "b"})
	assert.Contains(t, prompt, "Given the database name: payments")
	assert.Contains(t, prompt, "[a, b]")
	assert.Contains(t, prompt, `"rds_instance"`)
}
