package store_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"recipepic.dev/recipe-pic-gen/internal/store"
)

func setupStore(t *testing.T) (*store.DualTierStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := store.NewDualTierStore(dir)
	gt.NoError(t, err)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Logf("failed to close store: %v", err)
		}
	})
	return s, dir
}

func testRecord(n int, status store.GenerationStatus) store.GenerationRecord {
	rec := store.GenerationRecord{
		ID:            fmt.Sprintf("rec-%04d", n),
		CreatedAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Minute),
		RecipeText:    fmt.Sprintf("Recipe %d", n),
		DefaultPrompt: "Soft light.",
		FinalPrompt:   fmt.Sprintf("Soft light.\n\nRecipe %d", n),
		Status:        status,
	}
	switch status {
	case store.StatusDone:
		rec.ImageDataURL = fmt.Sprintf("data:image/png;base64,aW1nLTAwJTA%d", n)
	case store.StatusError:
		rec.ErrorMessage = "Generation failed"
	}
	return rec
}

func TestDualTierRoundTrip(t *testing.T) {
	s, _ := setupStore(t)

	records := []store.GenerationRecord{
		testRecord(3, store.StatusLoading),
		testRecord(2, store.StatusError),
		testRecord(1, store.StatusDone),
	}

	s.Save(records)
	s.Flush()

	loaded := s.Load()
	gt.A(t, loaded).Length(3)
	gt.Equal(t, loaded, records)
}

func TestDualTierLoadEmpty(t *testing.T) {
	s, _ := setupStore(t)
	gt.A(t, s.Load()).Length(0)
}

func TestDualTierLoadCorruptMetadata(t *testing.T) {
	s, dir := setupStore(t)

	err := os.WriteFile(filepath.Join(dir, "history_v1.json"), []byte("not json{{{"), 0600)
	gt.NoError(t, err)

	gt.A(t, s.Load()).Length(0)
}

func TestDualTierMissingBlobDegrades(t *testing.T) {
	s, dir := setupStore(t)

	// Metadata says an image exists, but the blob tier has no entry for it.
	meta := `[{"id":"rec-x","created_at":"2026-08-01T12:00:00Z","recipe_text":"Lasagna",` +
		`"default_prompt":"Soft light.","final_prompt":"Soft light.\n\nLasagna",` +
		`"status":"done","has_image":true}]`
	err := os.WriteFile(filepath.Join(dir, "history_v1.json"), []byte(meta), 0600)
	gt.NoError(t, err)

	loaded := s.Load()
	gt.A(t, loaded).Length(1)
	gt.Equal(t, loaded[0].ID, "rec-x")
	gt.Equal(t, loaded[0].Status, store.StatusDone)
	gt.Equal(t, loaded[0].ImageDataURL, "")
}

func TestDualTierCapKeepsNewest(t *testing.T) {
	s, _ := setupStore(t)

	// Newest first: rec-0059 down to rec-0000.
	var records []store.GenerationRecord
	for n := 59; n >= 0; n-- {
		records = append(records, testRecord(n, store.StatusDone))
	}

	s.Save(records)
	s.Flush()

	loaded := s.Load()
	gt.A(t, loaded).Length(50)
	gt.Equal(t, loaded[0].ID, "rec-0059")
	gt.Equal(t, loaded[49].ID, "rec-0010")
}

func TestDualTierClear(t *testing.T) {
	s, dir := setupStore(t)

	s.Save([]store.GenerationRecord{testRecord(1, store.StatusDone)})
	s.Flush()
	gt.A(t, s.Load()).Length(1)

	s.Clear()
	gt.A(t, s.Load()).Length(0)

	// The blob tier is gone too: metadata pointing at the old record id
	// must hydrate without an image.
	meta := `[{"id":"rec-0001","created_at":"2026-08-01T12:01:00Z","recipe_text":"Recipe 1",` +
		`"default_prompt":"Soft light.","final_prompt":"Soft light.\n\nRecipe 1",` +
		`"status":"done","has_image":true}]`
	err := os.WriteFile(filepath.Join(dir, "history_v1.json"), []byte(meta), 0600)
	gt.NoError(t, err)

	loaded := s.Load()
	gt.A(t, loaded).Length(1)
	gt.Equal(t, loaded[0].ImageDataURL, "")
}

func TestDualTierSaveOverwrites(t *testing.T) {
	s, _ := setupStore(t)

	first := testRecord(1, store.StatusLoading)
	s.Save([]store.GenerationRecord{first})
	s.Flush()

	done := first
	done.Status = store.StatusDone
	done.ImageDataURL = "data:image/png;base64,bGF0ZXI="
	s.Save([]store.GenerationRecord{done})
	s.Flush()

	loaded := s.Load()
	gt.A(t, loaded).Length(1)
	gt.Equal(t, loaded[0].Status, store.StatusDone)
	gt.Equal(t, loaded[0].ImageDataURL, done.ImageDataURL)
}
