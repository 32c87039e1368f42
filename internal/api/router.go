package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const vaultPageHTML = `<!DOCTYPE html>
<html>
<head><title>Recipe Pic Gen</title></head>
<body>
  <form method="post" onsubmit="login(event)">
    <label>Password <input id="password" type="password" autofocus></label>
    <button type="submit">Enter</button>
    <p id="status"></p>
  </form>
  <script>
    async function login(ev) {
      ev.preventDefault();
      const res = await fetch('/api/vault/login', {
        method: 'POST',
        headers: {'Content-Type': 'application/json'},
        body: JSON.stringify({password: document.getElementById('password').value}),
      });
      const data = await res.json().catch(() => null);
      if (res.ok && data && data.ok) {
        const next = new URLSearchParams(location.search).get('next') || '/';
        location.href = next;
      } else {
        document.getElementById('status').textContent = (data && data.error) || 'Login failed';
      }
    }
  </script>
</body>
</html>`

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// The vault gate wraps everything: it allowlists its own surface and
	// protects every other path, matched or not.
	r.Use(apiHandler.VaultAuthMiddleware)

	r.Get("/vault", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(vaultPageHTML))
	})
	r.Post("/api/vault/login", apiHandler.VaultLoginHandler)
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Generation routes
	r.Post("/api/generations", apiHandler.CreateGenerationHandler)
	r.Get("/api/generations", apiHandler.ListGenerationsHandler)
	r.Get("/api/generations/{recordID}", apiHandler.GetGenerationHandler)
	r.Delete("/api/generations", apiHandler.ClearGenerationsHandler)

	// Cooldown polling + settings seed for the UI
	r.Get("/api/cooldown", apiHandler.CooldownHandler)
	r.Get("/api/settings", apiHandler.SettingsHandler)

	return r
}
