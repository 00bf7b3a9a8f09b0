// Package router sets up HTTP routes for the UI server.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/difftable/internal/ui/features/storescreen"
	"github.com/leapstack-labs/difftable/internal/ui/resources"
	"github.com/starfederation/datastar-go/datastar"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(
	router chi.Router,
	screen *storescreen.Screen,
	sessionStore *sessions.CookieStore,
	isDev bool,
) error {
	// Reload endpoint for dev mode
	if isDev {
		setupReload(router, screen)
	}

	router.Handle("/static/*", resources.Handler())

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return storescreen.SetupRoutes(router, screen, sessionStore)
}

// setupReload serves /reload, which reloads connected pages whenever the
// list is reloaded on the server.
func setupReload(router chi.Router, screen *storescreen.Screen) {
	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)

		updates := screen.Notifier().Subscribe()
		defer screen.Notifier().Unsubscribe(updates)

		for {
			select {
			case ev, ok := <-updates:
				if !ok {
					return
				}
				if ev.Reload {
					_ = sse.ExecuteScript("window.location.reload()")
				}
			case <-r.Context().Done():
				return
			}
		}
	})
}
