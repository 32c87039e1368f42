package core

import (
	"sync"

	"recipepic.dev/recipe-pic-gen/internal/store"
)

// RecordPatch carries the terminal fields applied to a loading record.
// FinalPrompt is only replaced when non-empty (the generation service may
// echo back the prompt it actually used).
type RecordPatch struct {
	Status       store.GenerationStatus
	ImageDataURL string
	ErrorMessage string
	FinalPrompt  string
}

// History holds the canonical in-memory sequence of generation records,
// newest first. Every mutation is reflected to the dual-tier store; the
// store swallows its own failures, so history keeps working even when
// persistence is broken.
type History struct {
	mu      sync.Mutex
	records []store.GenerationRecord
	store   *store.DualTierStore
}

func NewHistory(dbStore *store.DualTierStore) *History {
	return &History{store: dbStore}
}

// Seed replaces the in-memory records without writing back to the store.
// Used once at startup to hydrate from disk.
func (h *History) Seed(records []store.GenerationRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append([]store.GenerationRecord(nil), records...)
}

// Prepend inserts a record at the front, keeping the list newest-first.
func (h *History) Prepend(rec store.GenerationRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append([]store.GenerationRecord{rec}, h.records...)
	h.persistLocked()
}

// Patch applies the terminal fields to the record matching id. A no-op
// when the id is unknown (e.g. the history was cleared while the request
// was in flight).
func (h *History) Patch(id string, patch RecordPatch) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.records {
		if h.records[i].ID != id {
			continue
		}
		h.records[i].Status = patch.Status
		h.records[i].ImageDataURL = patch.ImageDataURL
		h.records[i].ErrorMessage = patch.ErrorMessage
		if patch.FinalPrompt != "" {
			h.records[i].FinalPrompt = patch.FinalPrompt
		}
		h.persistLocked()
		return true
	}
	return false
}

// Clear empties the history and both storage tiers. Individual records are
// never removed; whole-collection clear is the only deletion.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = nil
	if h.store != nil {
		h.store.Clear()
	}
}

// Records returns a copy of the current history, newest first.
func (h *History) Records() []store.GenerationRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]store.GenerationRecord(nil), h.records...)
}

func (h *History) Get(id string) (store.GenerationRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, rec := range h.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return store.GenerationRecord{}, false
}

// persistLocked hands a snapshot to the store while holding the lock, so
// snapshots reach the metadata tier in mutation order. The store's image
// writes are detached and never block here.
func (h *History) persistLocked() {
	if h.store == nil {
		return
	}
	h.store.Save(append([]store.GenerationRecord(nil), h.records...))
}
