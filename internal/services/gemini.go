package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"

	"prdflow/internal/config"
	"prdflow/internal/logging"
	"prdflow/internal/normalizer"
	"prdflow/pkg/models"
)

// GeminiClient is the production AIClient on Google's Gemini API. Calls
// retry with exponential backoff on transient upstream failures and widen
// the attempt timeout on every retry.
type GeminiClient struct {
	client     *genai.Client
	model      string
	maxRetries int
	baseDelay  time.Duration
	timeout    time.Duration
	retries    metric.Int64Counter
}

// NewGeminiClient builds a client from configuration. The API key is
// required, everything else carries config defaults.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.Gemini.APIKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	maxRetries := cfg.Gemini.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	meter := otel.Meter("prdflow/services")
	retries, err := meter.Int64Counter("prdflow_gemini_retries_total",
		metric.WithDescription("Gemini calls retried after a transient failure"))
	if err != nil {
		retries = nil
	}

	return &GeminiClient{
		client:     client,
		model:      cfg.Gemini.Model,
		maxRetries: maxRetries,
		baseDelay:  cfg.Gemini.BaseDelay,
		timeout:    cfg.Gemini.Timeout,
		retries:    retries,
	}, nil
}

// Close is a no-op; the genai SDK client holds no resources that need
// explicit release.
func (g *GeminiClient) Close() error {
	return nil
}

// AnalyzeDocument runs one analysis prompt over the document and returns the
// structured result the model produced.
func (g *GeminiClient) AnalyzeDocument(ctx context.Context, document string, analysisType models.AnalysisType) (map[string]any, error) {
	prompt, ok := analysisPrompts[analysisType]
	if !ok {
		prompt = analysisPrompts[models.AnalysisTypeGapAnalysis]
	}

	text, err := g.generate(ctx, buildPrompt(prompt, document), analysisConfig())
	if err != nil {
		return nil, err
	}
	return decodeAnalysis(text), nil
}

// GenerateWorkflow runs one workflow prompt over the document and returns
// the candidate node records the model produced, still unvalidated.
func (g *GeminiClient) GenerateWorkflow(ctx context.Context, document string, workflowType models.WorkflowType) ([]normalizer.RawNode, error) {
	prompt, ok := workflowPrompts[workflowType]
	if !ok {
		prompt = workflowPrompts[models.WorkflowTypeUserJourney]
	}

	text, err := g.generate(ctx, buildPrompt(prompt, document), workflowConfig())
	if err != nil {
		return nil, err
	}
	return decodeWorkflowNodes(text)
}

// analysisConfig tunes generation for analytical judgement calls.
func analysisConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.3),
		TopK:            genai.Ptr[float32](40),
		TopP:            genai.Ptr[float32](0.95),
		MaxOutputTokens: 2048,
	}
}

// workflowConfig tunes generation colder than analysis; graph extraction
// needs precision, not creativity.
func workflowConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.1),
		TopK:            genai.Ptr[float32](20),
		TopP:            genai.Ptr[float32](0.8),
		MaxOutputTokens: 2048,
	}
}

// generate performs one prompt round trip with retries. Later attempts get
// more headroom; Gemini latency grows when the service is under load.
func (g *GeminiClient) generate(ctx context.Context, prompt string, genCfg *genai.GenerateContentConfig) (string, error) {
	log := logging.FromContext(ctx)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	backoff := retry.WithMaxRetries(uint64(g.maxRetries-1), retry.NewExponential(g.baseDelay))

	var text string
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, g.timeout+time.Duration(attempt-1)*15*time.Second)
		defer cancel()

		resp, err := g.client.Models.GenerateContent(attemptCtx, g.model, contents, genCfg)
		if err != nil {
			if retryableUpstream(err) {
				log.Warn("gemini call failed, retrying",
					"attempt", attempt,
					"max_attempts", g.maxRetries,
					"error", err)
				if g.retries != nil {
					g.retries.Add(ctx, 1)
				}
				return retry.RetryableError(err)
			}
			return err
		}

		text = resp.Text()
		if text == "" {
			return errNoContent
		}
		return nil
	})
	if err != nil {
		return "", classifyUpstream(err)
	}
	return text, nil
}

// retryableUpstream reports whether err is transient: overload, rate
// limiting, an attempt timeout, or a transport failure. API errors with any
// other status fail fast.
func retryableUpstream(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusServiceUnavailable || apiErr.Code == http.StatusTooManyRequests
	}
	return true
}

// classifyUpstream converts a failed generate into the UpstreamError the
// HTTP layer relays, keeping the original user-facing wording per failure
// class. Caller cancellation passes through untouched.
func classifyUpstream(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, errNoContent):
		return &UpstreamError{
			Status:  http.StatusInternalServerError,
			Message: "No content generated by the AI service.",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &UpstreamError{
			Status:  http.StatusGatewayTimeout,
			Message: "Request timeout. The AI service is taking longer than expected. Please try again.",
		}
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusServiceUnavailable:
			return &UpstreamError{
				Status:  http.StatusServiceUnavailable,
				Message: "The AI service is currently overloaded. This is a temporary issue with high demand. Please try again in a few minutes.",
			}
		case http.StatusTooManyRequests:
			return &UpstreamError{
				Status:  http.StatusTooManyRequests,
				Message: "Rate limit exceeded. Please wait a moment before trying again.",
			}
		default:
			return &UpstreamError{
				Status:  apiErr.Code,
				Message: fmt.Sprintf("AI service error: %s", apiErr.Message),
			}
		}
	}

	return &UpstreamError{
		Status:  http.StatusServiceUnavailable,
		Message: "Unable to connect to the AI service. Please try again.",
	}
}
