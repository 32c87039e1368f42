package core

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"recipepic.dev/recipe-pic-gen/internal/config"
	"recipepic.dev/recipe-pic-gen/internal/store"
)

const defaultImageModelName = "gemini-2.0-flash-preview-image-generation"

// GeneratedImage is the successful outcome of one generation call. The
// image is a self-describing data URL; FinalPrompt is the prompt the
// service actually used, echoed back so the record can be updated.
type GeneratedImage struct {
	ImageDataURL string
	FinalPrompt  string
}

// ImageGenerator is the external generation collaborator consumed by the
// submission flow.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, recipeText, defaultPrompt string) (*GeneratedImage, error)
}

type ImageService struct {
	client    *genai.Client
	modelName string
}

func NewImageService() *ImageService {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.AppConfig.GeminiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create GenAI client: %v", err)
	}

	return &ImageService{
		client:    client,
		modelName: defaultImageModelName,
	}
}

func (s *ImageService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		} else {
			log.Println("GenAI client closed.")
		}
	}
}

func (s *ImageService) GenerateImage(ctx context.Context, recipeText, defaultPrompt string) (*GeneratedImage, error) {
	finalPrompt := store.FinalPrompt(defaultPrompt, recipeText)
	if finalPrompt == "" {
		return nil, fmt.Errorf("missing recipe text")
	}

	model := s.client.GenerativeModel(s.modelName)

	resp, err := model.GenerateContent(ctx, genai.Text(finalPrompt))
	if err != nil {
		return nil, fmt.Errorf("gemini image generation request failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no candidates received from gemini")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		blob, ok := part.(genai.Blob)
		if !ok {
			continue
		}
		if len(blob.Data) == 0 {
			continue
		}
		imageDataURL := fmt.Sprintf("data:%s;base64,%s", blob.MIMEType, base64.StdEncoding.EncodeToString(blob.Data))
		return &GeneratedImage{
			ImageDataURL: imageDataURL,
			FinalPrompt:  finalPrompt,
		}, nil
	}

	return nil, fmt.Errorf("no image data received from gemini")
}
