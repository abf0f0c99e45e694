// Package httptransport exposes the interaction webhook, health, and
// metrics endpoints.
package httptransport

import (
	"crypto/ed25519"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ticketdesk/internal/gateway"
)

// Handler is the thin HTTP layer; it decodes interaction payloads and
// delegates to the dispatcher.
type Handler struct {
	dispatcher Dispatcher
	api        gateway.InteractionAPI
	appID      string
	publicKey  ed25519.PublicKey
	logger     *slog.Logger
}

func NewHandler(dispatcher Dispatcher, api gateway.InteractionAPI, appID, publicKeyHex string, logger *slog.Logger) (*Handler, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if api == nil {
		return nil, fmt.Errorf("interaction api is required")
	}
	if appID == "" {
		return nil, fmt.Errorf("app id is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	key, err := ParsePublicKey(publicKeyHex)
	if err != nil {
		return nil, err
	}
	return &Handler{
		dispatcher: dispatcher,
		api:        api,
		appID:      appID,
		publicKey:  key,
		logger:     logger,
	}, nil
}

// NewRouter mounts the webhook and operational endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(verifySignature(h.publicKey))
		r.Post("/interactions", h.handleInteraction)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
