package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"recipepic.dev/recipe-pic-gen/internal/auth"
	"recipepic.dev/recipe-pic-gen/internal/config"
	"recipepic.dev/recipe-pic-gen/internal/core"
)

const vaultCookieName = "vault_access"

type APIHandler struct {
	generationService *core.GenerationService
}

func NewAPIHandler(gs *core.GenerationService) *APIHandler {
	return &APIHandler{generationService: gs}
}

// VaultAuthMiddleware protects everything behind the password gate except
// the credential-entry surface itself. API requests without a valid cookie
// get a 401; page requests are redirected to the login page.
func (h *APIHandler) VaultAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Always allow the login page, the login endpoint and liveness.
		if path == "/vault" || strings.HasPrefix(path, "/api/vault/login") ||
			path == "/api/health" || path == "/favicon.ico" || path == "/robots.txt" {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(vaultCookieName)
		if err == nil {
			if err := auth.ValidateAccessToken(cookie.Value); err == nil {
				next.ServeHTTP(w, r)
				return
			}
		}

		if strings.HasPrefix(path, "/api/") {
			writeJSONError(w, http.StatusUnauthorized, "Vault access required")
			return
		}
		http.Redirect(w, r, "/vault?next="+url.QueryEscape(path), http.StatusFound)
	})
}

type VaultLoginRequest struct {
	Password string `json:"password"`
}

func (h *APIHandler) VaultLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req VaultLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expected := config.AppConfig.VaultPassword
	if expected == "" {
		writeJSONError(w, http.StatusInternalServerError, "Server misconfigured: VAULT_PASSWORD missing")
		return
	}

	if req.Password != expected {
		writeJSONError(w, http.StatusUnauthorized, "Wrong password")
		return
	}

	token, err := auth.GenerateAccessToken()
	if err != nil {
		log.Printf("Error generating vault access token: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to generate access token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     vaultCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.VaultAccessTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

type CreateGenerationRequest struct {
	Recipe        string `json:"recipe"`
	DefaultPrompt string `json:"default_prompt"`
}

func (h *APIHandler) CreateGenerationHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateGenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	defaultPrompt := req.DefaultPrompt
	if strings.TrimSpace(defaultPrompt) == "" {
		defaultPrompt = config.AppConfig.DefaultPrompt
	}

	rec, err := h.generationService.Submit(req.Recipe, defaultPrompt)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyRecipe):
			writeJSONError(w, http.StatusBadRequest, "Recipe text is required")
		case errors.Is(err, core.ErrCooldownActive):
			w.Header().Set("Retry-After", strconv.Itoa(int(h.generationService.CooldownRemaining().Seconds())+1))
			writeJSONError(w, http.StatusTooManyRequests, "Cooldown active, try again shortly")
		default:
			log.Printf("Error submitting generation: %v", err)
			writeJSONError(w, http.StatusInternalServerError, "Failed to submit generation")
		}
		return
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(rec)
}

func (h *APIHandler) ListGenerationsHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.generationService.Records())
}

func (h *APIHandler) GetGenerationHandler(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordID")

	rec, ok := h.generationService.Record(recordID)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Generation not found")
		return
	}
	json.NewEncoder(w).Encode(rec)
}

func (h *APIHandler) ClearGenerationsHandler(w http.ResponseWriter, r *http.Request) {
	h.generationService.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

type CooldownResponse struct {
	Active      bool  `json:"active"`
	RemainingMS int64 `json:"remaining_ms"`
}

// CooldownHandler lets the UI poll the pacing window to render progress.
func (h *APIHandler) CooldownHandler(w http.ResponseWriter, r *http.Request) {
	remaining := h.generationService.CooldownRemaining()
	json.NewEncoder(w).Encode(CooldownResponse{
		Active:      remaining > 0,
		RemainingMS: remaining.Milliseconds(),
	})
}

func (h *APIHandler) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"default_prompt": config.AppConfig.DefaultPrompt,
	})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":    false,
		"error": message,
	})
}
