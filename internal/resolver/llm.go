package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = "You are a helpful assistant that finds the best matching RDS instance name. Always respond with valid JSON."

// ChatCompleter is the slice of the OpenAI client the resolver needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Observer receives resolution outcomes for metrics. May be nil.
type Observer interface {
	RecordInference(success bool)
	RecordCacheAccess(cache string, hit bool)
}

// LLM resolves names through a chat-completion call, memoizing successful
// resolutions per verbatim input string. A malformed or null response is a
// no-match for that call and is recomputed next time, never cached.
type LLM struct {
	client   ChatCompleter
	source   CandidateSource
	model    string
	cache    *memoCache
	observer Observer
	logger   *zap.Logger
}

// NewLLM creates an inference-backed resolver. The observer may be nil.
func NewLLM(client ChatCompleter, source CandidateSource, model string, cacheSize int, observer Observer, logger *zap.Logger) *LLM {
	return &LLM{
		client:   client,
		source:   source,
		model:    model,
		cache:    newMemoCache(cacheSize),
		observer: observer,
		logger:   logger,
	}
}

// NewOpenAIClient builds the underlying OpenAI client, honoring an optional
// custom base URL for OpenAI-compatible providers.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	if baseURL == "" {
		return openai.NewClient(apiKey)
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return openai.NewClientWithConfig(cfg)
}

// matchResponse is the JSON object shape requested from the model.
type matchResponse struct {
	RDSInstance *string `json:"rds_instance"`
}

// Resolve maps a raw name to an instance identifier. Cached resolutions
// return immediately with no upstream call.
func (l *LLM) Resolve(ctx context.Context, rawName string) (string, error) {
	if identifier, ok := l.cache.get(rawName); ok {
		l.recordCache(true)
		l.logger.Debug("Using cached name resolution",
			zap.String("raw_name", rawName),
			zap.String("identifier", identifier),
		)
		return identifier, nil
	}
	l.recordCache(false)

	candidates, err := l.source.Identifiers(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list candidate instances: %w", err)
	}
	if len(candidates) == 0 {
		return "", ErrNoMatch
	}

	content, err := l.complete(ctx, buildPrompt(rawName, candidates))
	if err != nil {
		l.recordInference(false)
		l.logger.Error("Inference call failed", zap.Error(err))
		return "", ErrNoMatch
	}
	l.recordInference(true)

	var parsed matchResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		l.logger.Error("Malformed inference output",
			zap.Error(err),
			zap.String("content", content),
		)
		return "", ErrNoMatch
	}
	if parsed.RDSInstance == nil || *parsed.RDSInstance == "" {
		return "", ErrNoMatch
	}

	identifier := *parsed.RDSInstance

	// The model answer is only trusted if it names a real candidate; a
	// hallucinated identifier would otherwise propagate into control-plane
	// calls and fail much later with a confusing not-found.
	if !contains(candidates, identifier) {
		l.logger.Warn("Inference returned an identifier outside the candidate set",
			zap.String("raw_name", rawName),
			zap.String("identifier", identifier),
		)
		return "", ErrNoMatch
	}

	l.cache.set(rawName, identifier)
	return identifier, nil
}

func (l *LLM) recordCache(hit bool) {
	if l.observer != nil {
		l.observer.RecordCacheAccess("resolver", hit)
	}
}

func (l *LLM) recordInference(success bool) {
	if l.observer != nil {
		l.observer.RecordInference(success)
	}
}

func (l *LLM) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: l.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   500,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildPrompt(rawName string, candidates []string) string {
	return fmt.Sprintf(`Given the database name: %s, please find the most likely RDS instance name from the following list: [%s]
Format your response as a JSON object with:
{
    "rds_instance": "best matching rds instance name or null"
}`, rawName, strings.Join(candidates, ", "))
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
