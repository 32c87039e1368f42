package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"recipepic.dev/recipe-pic-gen/internal/store"
)

var (
	ErrEmptyRecipe    = errors.New("recipe text cannot be empty")
	ErrCooldownActive = errors.New("cooldown window is active")
)

// GenerationService orchestrates one generation request: it builds the
// optimistic record, enforces the cooldown policy, dispatches to the image
// generator, and reconciles the result back into the history.
//
// The cooldown only rate-limits submission frequency; it is not an
// admission lock. Any number of requests may be in flight at once, each
// patching only its own record.
type GenerationService struct {
	history  *History
	images   ImageGenerator
	cooldown *Cooldown
	wg       sync.WaitGroup
}

func NewGenerationService(history *History, images ImageGenerator, cooldown *Cooldown) *GenerationService {
	return &GenerationService{
		history:  history,
		images:   images,
		cooldown: cooldown,
	}
}

// Submit validates the input, checks the cooldown, inserts the optimistic
// record and starts the generation in the background. The returned record
// is in the loading state.
func (s *GenerationService) Submit(recipeText, defaultPrompt string) (*store.GenerationRecord, error) {
	if strings.TrimSpace(recipeText) == "" {
		return nil, ErrEmptyRecipe
	}
	if s.cooldown.Active() {
		return nil, ErrCooldownActive
	}

	rec := store.NewGenerationRecord(recipeText, defaultPrompt)
	s.history.Prepend(rec)
	s.cooldown.Arm()

	s.wg.Add(1)
	go s.generate(rec.ID, rec.RecipeText, rec.DefaultPrompt)

	return &rec, nil
}

func (s *GenerationService) generate(id, recipeText, defaultPrompt string) {
	defer s.wg.Done()
	defer func() {
		// A panicking generator must not take other in-flight records down.
		if r := recover(); r != nil {
			log.Printf("Recovered panic while generating record %s: %v", id, r)
			s.failRecord(id, fmt.Sprintf("generation panicked: %v", r))
		}
	}()

	img, err := s.images.GenerateImage(context.Background(), recipeText, defaultPrompt)
	if err != nil {
		log.Printf("Generation failed for record %s: %v", id, err)
		s.failRecord(id, err.Error())
		return
	}
	if img == nil || img.ImageDataURL == "" {
		s.failRecord(id, "generation returned no image")
		return
	}

	s.history.Patch(id, RecordPatch{
		Status:       store.StatusDone,
		ImageDataURL: img.ImageDataURL,
		FinalPrompt:  img.FinalPrompt,
	})
}

func (s *GenerationService) failRecord(id, message string) {
	if message == "" {
		message = "Generation failed"
	}
	s.history.Patch(id, RecordPatch{
		Status:       store.StatusError,
		ErrorMessage: message,
	})
}

// Wait blocks until all in-flight generations have settled. Used on
// shutdown so terminal patches reach the store.
func (s *GenerationService) Wait() {
	s.wg.Wait()
}

func (s *GenerationService) Records() []store.GenerationRecord {
	return s.history.Records()
}

func (s *GenerationService) Record(id string) (store.GenerationRecord, bool) {
	return s.history.Get(id)
}

func (s *GenerationService) ClearHistory() {
	s.history.Clear()
}

// CooldownRemaining reports the time left in the current pacing window.
func (s *GenerationService) CooldownRemaining() time.Duration {
	return s.cooldown.Remaining()
}
