package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second
)

// ErrNoChoices is returned when the API response has no choices.
var ErrNoChoices = errors.New("no choices in response")

// OpenAIClassifier implements Classifier using OpenAI's chat completions API.
type OpenAIClassifier struct {
	client    openai.Client
	model     string
	rubric    Rubric
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIClassifier creates a classifier against the OpenAI API.
func NewOpenAIClassifier(apiKey, baseURL, model string, rubric Rubric, logger *zap.Logger, debugMode bool) *OpenAIClassifier {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIClassifier{
		client:    client,
		model:     model,
		rubric:    rubric,
		logger:    logger,
		debugMode: debugMode,
	}
}

// Classify submits the text batch and parses the model's task proposals.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) ([]TaskProposal, error) {
	prompt := buildClassificationPrompt(c.rubric, text)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You classify free-form Japanese text into task records. Respond with a JSON array only."),
		openai.UserMessage(prompt),
	}

	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: messages,
	}

	if c.logger != nil && c.debugMode {
		c.logger.Debug("llm_api_request",
			zap.String("operation", "classify"),
			zap.String("model", c.model),
			zap.Int("prompt_length", len(prompt)),
		)
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if c.logger != nil && c.debugMode {
			c.logger.Debug("llm_api_error",
				zap.String("operation", "classify"),
				zap.String("model", c.model),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		return nil, fmt.Errorf("failed to classify text: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	content := resp.Choices[0].Message.Content
	if c.logger != nil && c.debugMode {
		c.logger.Debug("llm_api_response",
			zap.String("operation", "classify"),
			zap.String("model", c.model),
			zap.Int("response_length", len(content)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return ParseProposals(content)
}

// ParseProposals extracts task proposals from model output. The model
// sometimes wraps the JSON array in prose; in that case the first bracketed
// array substring is extracted before decoding. Proposals with empty titles
// are dropped.
func ParseProposals(content string) ([]TaskProposal, error) {
	raw := strings.TrimSpace(content)

	var proposals []TaskProposal
	if err := json.Unmarshal([]byte(raw), &proposals); err != nil {
		start := strings.Index(raw, "[")
		end := strings.LastIndex(raw, "]")
		if start == -1 || end <= start {
			return nil, fmt.Errorf("no JSON array in classification response")
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &proposals); err != nil {
			return nil, fmt.Errorf("failed to parse classification response: %w", err)
		}
	}

	valid := proposals[:0]
	for _, p := range proposals {
		p.Title = strings.TrimSpace(p.Title)
		if p.Title == "" {
			continue
		}
		valid = append(valid, p)
	}

	return valid, nil
}

// Disabled is a Classifier used when no API key is configured. Every call
// fails, which triggers the callers' fallback paths.
type Disabled struct{}

// ErrClassifierDisabled is returned by the Disabled classifier.
var ErrClassifierDisabled = errors.New("classifier is not configured")

// Classify always fails.
func (Disabled) Classify(context.Context, string) ([]TaskProposal, error) {
	return nil, ErrClassifierDisabled
}
