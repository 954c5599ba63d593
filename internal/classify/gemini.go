package classify

import (
	"context"
	"fmt"
	"log"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-1.5-flash"

const prompt = "Analyze the waste item in the image. Respond in JSON format with two keys: " +
	"'category' (classify as plastic, metal, glass, paper, or wood) and " +
	"'item_name' (a specific name for the item, e.g., 'plastic bottle', 'aluminum can', 'cardboard box')."

// GeminiClassifier classifies waste images with the Gemini multimodal API.
type GeminiClassifier struct {
	client *genai.Client
}

// NewGeminiClassifier dials the Gemini API with the given key.
func NewGeminiClassifier(ctx context.Context, apiKey string) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("error initializing Gemini client: %w", err)
	}
	return &GeminiClassifier{client: client}, nil
}

// ClassifyImage sends the JPEG to the model and maps its reply onto the
// category/credit taxonomy.
func (c *GeminiClassifier) ClassifyImage(ctx context.Context, jpeg []byte) (Result, error) {
	model := c.client.GenerativeModel(geminiModel)

	resp, err := model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.ImageData("jpeg", jpeg),
	)
	if err != nil {
		return Result{}, fmt.Errorf("gemini generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return Result{}, fmt.Errorf("gemini returned no text candidates")
	}
	log.Printf("🤖 Gemini raw response: %s", text)

	category, item := ParseModelResponse(text)
	return Result{
		Category:     category,
		SpecificItem: item,
		CreditsValue: CreditsFor(category),
	}, nil
}

// Close releases the underlying API client.
func (c *GeminiClassifier) Close() error {
	return c.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				return string(text)
			}
		}
	}
	return ""
}
