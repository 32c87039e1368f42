package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type GenerationStatus string

const (
	StatusLoading GenerationStatus = "loading"
	StatusDone    GenerationStatus = "done"
	StatusError   GenerationStatus = "error"
)

// GenerationRecord is one user submission and its outcome. The image is
// carried as a data URL so the blob tier never needs to know the format.
type GenerationRecord struct {
	ID            string           `json:"id"` // UUID
	CreatedAt     time.Time        `json:"created_at"`
	RecipeText    string           `json:"recipe_text"`
	DefaultPrompt string           `json:"default_prompt"` // snapshot at submission time
	FinalPrompt   string           `json:"final_prompt"`
	Status        GenerationStatus `json:"status"`
	ImageDataURL  string           `json:"image_data_url,omitempty"` // only when status = done
	ErrorMessage  string           `json:"error_message,omitempty"`  // only when status = error
}

// NewGenerationRecord builds the optimistic record inserted before the
// generation result is known.
func NewGenerationRecord(recipeText, defaultPrompt string) GenerationRecord {
	recipeText = strings.TrimSpace(recipeText)
	defaultPrompt = strings.TrimSpace(defaultPrompt)

	return GenerationRecord{
		ID:            uuid.NewString(),
		CreatedAt:     time.Now(),
		RecipeText:    recipeText,
		DefaultPrompt: defaultPrompt,
		FinalPrompt:   FinalPrompt(defaultPrompt, recipeText),
		Status:        StatusLoading,
	}
}

// FinalPrompt joins the default prompt and the recipe text, dropping empty
// parts. "Soft light." + "Lasagna" => "Soft light.\n\nLasagna".
func FinalPrompt(defaultPrompt, recipeText string) string {
	var parts []string
	for _, p := range []string{strings.TrimSpace(defaultPrompt), strings.TrimSpace(recipeText)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}
