package summarize

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/wibisana/skimcache/internal/metadata"
	"github.com/wibisana/skimcache/pkg/failure"
	"github.com/wibisana/skimcache/pkg/retry"
)

const (
	defaultModel           = "gemini-3-pro"
	generationTemperature  = 0.3
	generationMaxOutTokens = 8192
)

/*
GeminiSummarizer produces summaries through the Gemini API.

Responsibilities:
- Build the summarization prompt and call the model.
- Retry transient generation failures with exponential backoff.
- Extract the tagged summary from the raw model response.
- Report call shape (content size, summary size, duration) to the metadata sink.

Semantics:
- A response without summary tags is degraded, not failed: the raw text
  is kept behind a visible marker so the artifact stays inspectable.
- An empty candidate list is a retryable failure.
*/
type GeminiSummarizer struct {
	client       *genai.Client
	model        string
	retryParam   retry.RetryParam
	metadataSink metadata.MetadataSink
}

func NewGeminiSummarizer(
	ctx context.Context,
	apiKey string,
	model string,
	retryParam retry.RetryParam,
	metadataSink metadata.MetadataSink,
) (*GeminiSummarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("summarize: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("summarize: create genai client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &GeminiSummarizer{
		client:       client,
		model:        model,
		retryParam:   retryParam,
		metadataSink: metadataSink,
	}, nil
}

func (s *GeminiSummarizer) Model() string {
	return s.model
}

func (s *GeminiSummarizer) Summarize(ctx context.Context, content string) (string, failure.ClassifiedError) {
	startTime := time.Now()
	prompt := buildPrompt(content)

	response, err := retry.Retry(ctx, s.retryParam, func() (string, failure.ClassifiedError) {
		return s.generate(ctx, prompt)
	})
	if err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"summarize",
			"Summarize",
			metadata.CauseModelFailure,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrMessage, fmt.Sprintf("model: %s", s.model)),
			},
		)
		return "", err
	}

	summary := extractSummary(response)
	s.metadataSink.RecordSummarize(s.model, len(content), len(summary), time.Since(startTime))
	return summary, nil
}

func (s *GeminiSummarizer) generate(ctx context.Context, prompt string) (string, failure.ClassifiedError) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](generationTemperature),
		MaxOutputTokens: generationMaxOutTokens,
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), config)
	if err != nil {
		return "", &SummarizeError{
			Message:   fmt.Sprintf("generate content: %v", err),
			Retryable: ctx.Err() == nil,
			Cause:     ErrCauseModelFailure,
		}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &SummarizeError{
			Message:   "generate content: response carried no candidates",
			Retryable: true,
			Cause:     ErrCauseEmptyResponse,
		}
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			text += part.Text
		}
	}
	if text == "" {
		return "", &SummarizeError{
			Message:   "generate content: candidate carried no text parts",
			Retryable: true,
			Cause:     ErrCauseEmptyResponse,
		}
	}
	return text, nil
}
