package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.0-flash"

// Config holds the Vertex AI connection settings, typically sourced from
// GOOGLE_* environment variables.
type Config struct {
	ProjectID       string
	Location        string
	CredentialsFile string
	Model           string
}

// Configured reports whether enough settings are present to attempt a call.
func (c Config) Configured() bool {
	return c.ProjectID != "" && c.Location != ""
}

// GeminiClient implements Client against Vertex AI's Gemini models. The
// underlying connection is established lazily on first use so the service
// starts (and degrades to fallback verdicts) even when unconfigured.
type GeminiClient struct {
	cfg Config

	mu     sync.Mutex
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a client; no connection is made until first call.
func NewGeminiClient(cfg Config) *GeminiClient {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &GeminiClient{cfg: cfg}
}

func (g *GeminiClient) ensureModel(ctx context.Context) (*genai.GenerativeModel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.model != nil {
		return g.model, nil
	}
	if !g.cfg.Configured() {
		return nil, fmt.Errorf("analysis gateway not configured: project id and location required")
	}

	var opts []option.ClientOption
	if g.cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(g.cfg.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, g.cfg.ProjectID, g.cfg.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vertex client: %w", err)
	}

	g.client = client
	g.model = client.GenerativeModel(g.cfg.Model)
	return g.model, nil
}

// Close releases the underlying connection, if one was ever established.
func (g *GeminiClient) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	g.model = nil
	return err
}

func (g *GeminiClient) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	model, err := g.ensureModel(ctx)
	if err != nil {
		return "", err
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty model response")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// stripFences removes a Markdown code fence the model sometimes wraps its
// JSON payload in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func (g *GeminiClient) AnalyzeImage(ctx context.Context, image []byte) (json.RawMessage, error) {
	text, err := g.generate(ctx, genai.ImageData("image/jpeg", image), genai.Text(imagePrompt))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(stripFences(text)), nil
}

func (g *GeminiClient) AnalyzeText(ctx context.Context, input string) (json.RawMessage, error) {
	text, err := g.generate(ctx, genai.Text(fmt.Sprintf(textPrompt, input)))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(stripFences(text)), nil
}

func (g *GeminiClient) VerifyLogo(ctx context.Context, image []byte) (json.RawMessage, error) {
	text, err := g.generate(ctx, genai.ImageData("image/jpeg", image), genai.Text(logoPrompt))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(stripFences(text)), nil
}

func (g *GeminiClient) AskScholar(ctx context.Context, question, analysisContext string) (string, error) {
	text, err := g.generate(ctx, genai.Text(fmt.Sprintf(scholarPrompt, analysisContext, question)))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
