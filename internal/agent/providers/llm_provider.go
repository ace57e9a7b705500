package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.5-flash"

var (
	// ErrModelNotFound means the configured model does not exist upstream.
	ErrModelNotFound = errors.New("model not found")
	// ErrInvalidAPIKey means the upstream rejected the credentials.
	ErrInvalidAPIKey = errors.New("invalid or missing api key")
	ErrEmptyResponse = errors.New("no text content in response")
	// ErrInvalidJSON means a JSON-mode answer could not be decoded.
	ErrInvalidJSON = errors.New("response is not valid JSON")
)

// LLMProvider abstracts a text generation backend.
type LLMProvider interface {
	GenerateText(ctx context.Context, prompt string) (string, error)

	// GenerateStructured asks for a JSON answer and decodes it into output.
	GenerateStructured(ctx context.Context, prompt string, output any) error

	Close()
}

// GeminiProvider implements LLMProvider on Google Gemini.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = DefaultModel
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.6)
	model.SystemInstruction = genai.NewUserContent(genai.Text(
		"You are an instructional designer helping course creators craft concise, outcome-focused course drafts. " +
			"When asked for JSON, respond with valid JSON only, no markdown formatting.",
	))

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

func (g *GeminiProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classify(err)
	}
	return firstText(resp)
}

func (g *GeminiProvider) GenerateStructured(ctx context.Context, prompt string, output any) error {
	// The model is shared, so work on a copy instead of toggling the MIME type in place.
	model := *g.model
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return classify(err)
	}

	txt, err := firstText(resp)
	if err != nil {
		return err
	}
	return decodeJSON(txt, output)
}

func (g *GeminiProvider) Close() {
	g.client.Close()
}

func decodeJSON(txt string, output any) error {
	if err := json.Unmarshal([]byte(txt), output); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// classify tags upstream failures with ErrModelNotFound or ErrInvalidAPIKey when it can tell.
func classify(err error) error {
	if err == nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 404:
			return fmt.Errorf("%w: %w", ErrModelNotFound, err)
		case 401, 403:
			return fmt.Errorf("%w: %w", ErrInvalidAPIKey, err)
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "404"), strings.Contains(strings.ToLower(msg), "not found"):
		return fmt.Errorf("%w: %w", ErrModelNotFound, err)
	case strings.Contains(msg, "API key"), strings.Contains(msg, "401"), strings.Contains(msg, "403"):
		return fmt.Errorf("%w: %w", ErrInvalidAPIKey, err)
	}
	return err
}
