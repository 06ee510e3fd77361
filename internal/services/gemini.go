package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GenerateOptions carries the per-call knobs for a model invocation.
type GenerateOptions struct {
	Temperature     float32
	MaxOutputTokens int32
	// JSONResponse asks the provider for a JSON object response. The hint is
	// not honored under all conditions, so parsers never rely on it.
	JSONResponse bool
}

// TextGenerator is the single suspension point of every pipeline: one prompt
// in, one raw response out. Pipelines depend on this rather than on the
// concrete Gemini client so tests can inject fakes.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

type GeminiService struct {
	client    *genai.Client
	modelName string
	rateChan  chan struct{} // Token bucket
}

func NewGeminiService(apiKey, modelName string, concurrentReqs int) (*GeminiService, error) {
	if apiKey == "" {
		return nil, &UpstreamError{Kind: UpstreamAuthInvalid, Message: "Invalid or missing Gemini API key"}
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:    client,
		modelName: modelName,
		rateChan:  rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return classifyUpstreamError(ctx.Err())
	case <-time.After(5 * time.Minute):
		return &UpstreamError{Kind: UpstreamUnavailable, Message: "timeout waiting for Gemini rate slot"}
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

func (s *GeminiService) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(opts.Temperature)
	model.SetTopP(0.95)
	if opts.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxOutputTokens)
	}
	if opts.JSONResponse {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyUpstreamError(err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Printf("WARNING: Gemini candidate %d stopped due to %s", i, cand.FinishReason)
		}
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", &UpstreamError{Kind: UpstreamUnknown, Message: "Gemini returned an empty response"}
	}

	return text, nil
}

// classifyUpstreamError maps a provider failure to one of the documented
// error kinds. Auth and rate-limit must short-circuit at callers, so they
// get distinct kinds; an exceeded wall-clock budget counts as the upstream
// being unavailable.
func classifyUpstreamError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamError{Kind: UpstreamUnavailable, Message: "Gemini request timed out", Err: err}
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == 401 || gerr.Code == 403:
			return &UpstreamError{Kind: UpstreamAuthInvalid, Message: "Invalid or missing Gemini API key", Err: err}
		case gerr.Code == 400 && strings.Contains(strings.ToUpper(gerr.Message), "API KEY"):
			// The API reports a malformed key as a 400.
			return &UpstreamError{Kind: UpstreamAuthInvalid, Message: "Invalid or missing Gemini API key", Err: err}
		case gerr.Code == 429:
			return &UpstreamError{Kind: UpstreamRateLimited, Message: "Gemini rate limit exceeded", Err: err}
		case gerr.Code >= 500:
			return &UpstreamError{Kind: UpstreamUnavailable, Message: "Gemini service unavailable", Err: err}
		}
	}

	return &UpstreamError{Kind: UpstreamUnknown, Message: fmt.Sprintf("Gemini API error: %v", err), Err: err}
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

// stripCodeFences removes a ```json ... ``` wrapper the model sometimes adds
// despite being told not to.
func stripCodeFences(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}
