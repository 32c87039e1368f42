package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	metadataFileName = "history_v1.json"

	// The metadata file stays small: keep at most this many records, and
	// fall back to an even smaller cap if the write still fails.
	maxStoredRecords      = 50
	fallbackStoredRecords = 10
)

// storedRecord is the fast-tier shape of a GenerationRecord: all fields
// except the image bytes, plus a flag marking that a blob exists for it.
type storedRecord struct {
	ID            string           `json:"id"`
	CreatedAt     time.Time        `json:"created_at"`
	RecipeText    string           `json:"recipe_text"`
	DefaultPrompt string           `json:"default_prompt"`
	FinalPrompt   string           `json:"final_prompt"`
	Status        GenerationStatus `json:"status"`
	ErrorMessage  string           `json:"error_message,omitempty"`
	HasImage      bool             `json:"has_image,omitempty"`
}

// DualTierStore persists generation history across two tiers: a small JSON
// metadata file and a SQLite table holding the image payloads keyed by
// record id. Persistence is best-effort; no method ever propagates a
// storage failure to the caller, and the in-memory history stays
// authoritative even if both tiers are broken.
type DualTierStore struct {
	metaPath string
	db       *sql.DB
	wg       sync.WaitGroup
}

func NewDualTierStore(dataDir string) (*DualTierStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataDir, "images.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open image database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping image database: %w", err)
	}

	store := &DualTierStore{
		metaPath: filepath.Join(dataDir, metadataFileName),
		db:       db,
	}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *DualTierStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS images (
        id TEXT PRIMARY KEY, -- generation record UUID
        image_data_url TEXT NOT NULL,
        updated_at DATETIME NOT NULL
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// Flush waits for any detached image writes to settle.
func (s *DualTierStore) Flush() {
	s.wg.Wait()
}

func (s *DualTierStore) Close() error {
	s.wg.Wait()
	return s.db.Close()
}

// Load reads the metadata file and hydrates image payloads from the blob
// tier. Missing or corrupt metadata yields an empty history; a record whose
// blob is missing or unreadable surfaces without its image. Load never
// fails.
func (s *DualTierStore) Load() []GenerationRecord {
	raw, err := os.ReadFile(s.metaPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: failed to read history metadata: %v", err)
		}
		return nil
	}

	var stored []storedRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		log.Printf("Warning: corrupt history metadata, starting fresh: %v", err)
		return nil
	}

	records := make([]GenerationRecord, 0, len(stored))
	for _, sr := range stored {
		rec := GenerationRecord{
			ID:            sr.ID,
			CreatedAt:     sr.CreatedAt,
			RecipeText:    sr.RecipeText,
			DefaultPrompt: sr.DefaultPrompt,
			FinalPrompt:   sr.FinalPrompt,
			Status:        sr.Status,
			ErrorMessage:  sr.ErrorMessage,
		}
		if sr.HasImage {
			imageDataURL, err := s.getImage(sr.ID)
			if err != nil {
				log.Printf("Warning: failed to load image for record %s: %v", sr.ID, err)
			} else {
				rec.ImageDataURL = imageDataURL
			}
		}
		records = append(records, rec)
	}
	return records
}

// Save writes record metadata to the fast tier and, fire-and-forget,
// upserts each completed record's image into the blob tier. Records are
// newest-first; when over the cap the oldest are dropped from the fast
// tier.
func (s *DualTierStore) Save(records []GenerationRecord) {
	clipped := records
	if len(clipped) > maxStoredRecords {
		clipped = clipped[:maxStoredRecords]
	}

	payload := make([]storedRecord, 0, len(clipped))
	for _, rec := range clipped {
		payload = append(payload, storedRecord{
			ID:            rec.ID,
			CreatedAt:     rec.CreatedAt,
			RecipeText:    rec.RecipeText,
			DefaultPrompt: rec.DefaultPrompt,
			FinalPrompt:   rec.FinalPrompt,
			Status:        rec.Status,
			ErrorMessage:  rec.ErrorMessage,
			HasImage:      rec.ImageDataURL != "",
		})
	}

	if err := s.writeMetadata(payload); err != nil {
		log.Printf("Warning: failed to save history metadata, retrying with fewer records: %v", err)
		if len(payload) > fallbackStoredRecords {
			payload = payload[:fallbackStoredRecords]
		}
		if err := s.writeMetadata(payload); err != nil {
			// Give up silently; the in-memory history still works.
			log.Printf("Warning: failed to save reduced history metadata: %v", err)
		}
	}

	s.wg.Add(1)
	go func(records []GenerationRecord) {
		defer s.wg.Done()
		for _, rec := range records {
			if rec.Status != StatusDone || rec.ImageDataURL == "" {
				continue
			}
			if err := s.putImage(rec.ID, rec.ImageDataURL); err != nil {
				log.Printf("Warning: failed to store image for record %s: %v", rec.ID, err)
			}
		}
	}(append([]GenerationRecord(nil), records...))
}

// Clear removes all metadata and all stored images. Best-effort.
func (s *DualTierStore) Clear() {
	if err := os.Remove(s.metaPath); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to remove history metadata: %v", err)
	}

	s.wg.Wait() // let in-flight image writes settle before wiping
	if _, err := s.db.Exec("DELETE FROM images"); err != nil {
		log.Printf("Warning: failed to clear stored images: %v", err)
	}
}

func (s *DualTierStore) writeMetadata(payload []storedRecord) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal history metadata: %w", err)
	}

	tempPath := s.metaPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp metadata file: %w", err)
	}
	if err := os.Rename(tempPath, s.metaPath); err != nil {
		return fmt.Errorf("failed to rename temp metadata file: %w", err)
	}
	return nil
}

func (s *DualTierStore) putImage(id, imageDataURL string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO images (id, image_data_url, updated_at) VALUES (?, ?, ?)",
		id, imageDataURL, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert image: %w", err)
	}
	return nil
}

func (s *DualTierStore) getImage(id string) (string, error) {
	var imageDataURL string
	err := s.db.QueryRow("SELECT image_data_url FROM images WHERE id = ?", id).Scan(&imageDataURL)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("no image stored for record %s", id)
		}
		return "", fmt.Errorf("failed to query image: %w", err)
	}
	return imageDataURL, nil
}
