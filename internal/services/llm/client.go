package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"lingosort/internal/langdetect"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultBaseURL     = "https://api.openai.com/v1"
	probeText          = "The quick brown fox jumps over the lazy dog."
)

// LanguagePrompt instructs the model to answer with a single JSON object.
const LanguagePrompt = `You identify the natural language of text excerpts.
Reply with one JSON object and nothing else:
{"language": "<ISO 639-1 code, or \"und\" if undeterminable>", "confidence": <number between 0 and 1>}`

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client asks an OpenAI-compatible chat completion endpoint to identify
// languages. It implements langdetect.Model, langdetect.Seeder and
// langdetect.Preparer.
type Client struct {
	api   *openai.Client
	model string
	seed  atomic.Int64
}

// Option customizes the client.
type Option func(*openai.ClientConfig)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *openai.ClientConfig) {
		if client != nil {
			cfg.HTTPClient = client
		}
	}
}

// NewClient constructs an LLM client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	clientCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	clientCfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if clientCfg.BaseURL == "" {
		clientCfg.BaseURL = defaultBaseURL
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	for _, opt := range opts {
		opt(&clientCfg)
	}
	c := &Client{
		api:   openai.NewClientWithConfig(clientCfg),
		model: strings.TrimSpace(cfg.Model),
	}
	c.seed.Store(langdetect.DefaultSeed)
	return c
}

// Seed fixes the sampling seed sent with every request.
func (c *Client) Seed(seed int64) error {
	if seed < math.MinInt32 || seed > math.MaxInt32 {
		return fmt.Errorf("llm seed %d out of range", seed)
	}
	c.seed.Store(seed)
	return nil
}

// Prepare verifies the endpoint answers a probe request.
func (c *Client) Prepare(ctx context.Context) error {
	if c.model == "" {
		return errors.New("llm model required")
	}
	if _, err := c.Detect(ctx, probeText); err != nil {
		return fmt.Errorf("llm probe: %w", err)
	}
	return nil
}

type languagePayload struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// Detect implements langdetect.Model.
func (c *Client) Detect(ctx context.Context, text string) (langdetect.Detection, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return langdetect.Detection{}, errors.New("llm detect: text required")
	}
	seed := int(c.seed.Load())
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: LanguagePrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		// omitempty drops a literal zero.
		Temperature:    math.SmallestNonzeroFloat32,
		Seed:           &seed,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return langdetect.Detection{}, fmt.Errorf("llm detect: %w", err)
	}
	if len(resp.Choices) == 0 {
		return langdetect.Detection{}, errors.New("llm detect: no choices in response")
	}
	content := resp.Choices[0].Message.Content
	var payload languagePayload
	if err := DecodeLLMJSON(content, &payload); err != nil {
		return langdetect.Detection{}, fmt.Errorf("llm detect: parse payload: %w", err)
	}
	code := strings.ToLower(strings.TrimSpace(payload.Language))
	if code == "" || code == "und" {
		return langdetect.Detection{}, errors.New("llm detect: language undetermined")
	}
	return langdetect.Detection{Code: code, Confidence: clamp01(payload.Confidence)}, nil
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
