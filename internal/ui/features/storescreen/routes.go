package storescreen

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

// SetupRoutes configures routes for the store screen.
func SetupRoutes(router chi.Router, screen *Screen, sessionStore sessions.Store) error {
	handlers := NewHandlers(screen, sessionStore)

	router.Get("/", handlers.HandlePage)
	router.Get("/updates", handlers.HandleUpdates)
	router.Post("/rows/add", handlers.HandleAdd)
	router.Post("/rows/remove", handlers.HandleRemove)
	router.Post("/rows/{section}/{row}/select", handlers.HandleSelect)

	return nil
}
