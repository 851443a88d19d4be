package caption

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.5-flash"

	prompt = "Caption this image."

	systemInstruction = `You are an expert in generating captions for images.
You generate a single line caption for the image.
Your caption should be short and concise.
You use hashtags and emojis in the caption.`
)

var errEmptyCaption = errors.New("model returned an empty caption")

// contentGenerator is the part of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// newGenaiClient is a seam for testing genai.NewClient.
var newGenaiClient = func(ctx context.Context, cfg *genai.ClientConfig) (contentGenerator, error) {
	c, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return c.Models, nil
}

type GeminiCaptioner struct {
	models contentGenerator
	model  string
}

// NewGeminiCaptioner builds a client for the Gemini API. The client is
// safe for concurrent use and is meant to be created once per process.
func NewGeminiCaptioner(ctx context.Context, apiKey, model string) (*GeminiCaptioner, error) {
	if model == "" {
		model = DefaultModel
	}
	m, err := newGenaiClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %w", err)
	}
	return &GeminiCaptioner{models: m, model: model}, nil
}

func (g *GeminiCaptioner) Caption(ctx context.Context, image []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errEmptyCaption
	}
	return text, nil
}
