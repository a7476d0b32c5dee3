package login

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// GatewayUserHeader carries the user id the gateway established for the
// current session, if any. Only consulted on the GET completion probe.
const GatewayUserHeader = "X-User-Id"

// Handle provides HTTP handlers for the login endpoint
type Handle struct {
	service       *Service
	externalURL   string
	completionURL string
	metadata      PluginMetadata
}

// NewHandle creates a new login handler. redirectURL is the configured
// completion target, resolved against externalURL once at startup.
func NewHandle(service *Service, externalURL, redirectURL string, metadata PluginMetadata) Handle {
	return Handle{
		service:       service,
		externalURL:   externalURL,
		completionURL: AbsoluteURL(redirectURL, externalURL),
		metadata:      metadata,
	}
}

// Routes mounts the login endpoints
func Routes(h Handle) http.Handler {
	r := chi.NewRouter()
	r.Get("/config", h.GetConfig)
	r.Get("/", h.GetCompletion)
	r.Post("/", h.PostLogin)
	return r
}

// returnURL resolves the completion target for a request, honoring the
// optional redirect query parameter when it stays on the external origin.
func (h Handle) returnURL(r *http.Request) string {
	return ResolveReturnURL(r.URL.Query().Get("redirect"), h.externalURL, h.completionURL)
}

// PostLogin handles a login attempt
// (POST /)
func (h Handle) PostLogin(w http.ResponseWriter, r *http.Request) {
	target := h.returnURL(r)

	if err := r.ParseForm(); err != nil {
		slog.Info("Failed to parse login form", "err", err)
		http.Redirect(w, r, FailureURL(target, ErrBadRequest), http.StatusFound)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	userID, err := h.service.VerifyCredentials(r.Context(), username, password)
	if err != nil {
		http.Redirect(w, r, FailureURL(target, err), http.StatusFound)
		return
	}

	slog.Info("User authenticated", "userId", userID)
	http.Redirect(w, r, SuccessURL(target), http.StatusFound)
}

// GetCompletion handles the completion probe: the gateway sends the browser
// here after establishing (or failing to establish) a session.
// (GET /)
func (h Handle) GetCompletion(w http.ResponseWriter, r *http.Request) {
	target := h.returnURL(r)

	if r.Header.Get(GatewayUserHeader) != "" {
		http.Redirect(w, r, SuccessURL(target), http.StatusFound)
		return
	}
	http.Redirect(w, r, FailureURL(target, ErrUnauthorized), http.StatusFound)
}

// GetConfig serves the static plugin metadata
// (GET /config)
func (h Handle) GetConfig(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.metadata)
}
