package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	replyTemperature   = 0.6
	replyMaxTokens     = 512
)

var (
	errNoCandidates = errors.New("conversation: gemini returned no candidates")
	errEmptyContent = errors.New("conversation: gemini returned empty content")
)

// GeminiTextGenerator implements TextGenerator using Google's Gemini API.
type GeminiTextGenerator struct {
	client  *genai.Client
	modelID string
}

// NewGeminiTextGenerator creates a Gemini client. Extra options (an HTTP
// client, an endpoint) are passed through to genai.NewClient.
func NewGeminiTextGenerator(ctx context.Context, apiKey, modelID string, opts ...option.ClientOption) (*GeminiTextGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("conversation: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to create gemini client: %w", err)
	}

	return &GeminiTextGenerator{
		client:  client,
		modelID: modelID,
	}, nil
}

// Generate sends a single-turn prompt and returns the first candidate's text.
func (g *GeminiTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.modelID)
	model.SetTemperature(replyTemperature)
	model.SetMaxOutputTokens(replyMaxTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("conversation: gemini completion failed: %w", err)
	}
	return firstCandidateText(resp)
}

// Close releases resources held by the Gemini client.
func (g *GeminiTextGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func firstCandidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errNoCandidates
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errEmptyContent
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", errEmptyContent
	}
	return out, nil
}
