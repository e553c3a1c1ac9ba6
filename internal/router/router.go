// Package router wires all HTTP routes and their middleware chains.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storepress/internal/handlers"
	"storepress/internal/middleware"
	"storepress/internal/session"
)

// Handlers groups the handler sets the router mounts.
type Handlers struct {
	Public    *handlers.Public
	Subscribe *handlers.Subscribe
	Auth      *handlers.Auth
	Admin     *handlers.Admin
	Health    *handlers.Health
}

// New builds the complete route tree. The storefront surface (published
// reads, the event stream, health) is anonymous; everything under /admin
// requires a session, and all mutations except login sit behind CSRF and
// completed two-factor verification.
func New(h Handlers, sessions *session.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health.Check)
	r.Get("/events", h.Subscribe.Events)
	r.Get("/storefront/pages/{pageType}", h.Public.ReadPublished)
	r.Get("/storefront/pages/{pageType}/{slug}", h.Public.ReadPublished)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.LoadSession(sessions))
		r.Use(middleware.CSRF)

		r.Post("/login", h.Auth.Login)

		// Logged in, 2FA possibly pending: only enrollment and identity.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/logout", h.Auth.Logout)
			r.Get("/me", h.Auth.Me)
			r.Post("/2fa/setup", h.Auth.Setup2FA)
			r.Get("/2fa/setup/qr", h.Auth.QRCode2FA)
			r.Post("/2fa/verify", h.Auth.Verify2FA)
		})

		// Fully verified operators.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/themes", h.Admin.ListThemes)
			r.Get("/themes/{id}/templates", h.Admin.ListTemplates)

			r.Post("/templates", h.Admin.CreateTemplate)
			r.Get("/templates/{id}", h.Admin.GetTemplate)
			r.Put("/templates/{id}/draft", h.Admin.SaveDraft)
			r.Post("/templates/{id}/publish", h.Admin.Publish)
			r.Post("/templates/{id}/rollback", h.Admin.Rollback)
			r.Get("/templates/{id}/versions", h.Admin.ListVersions)

			r.Get("/preview/pages/{pageType}", h.Public.ReadDraft)
			r.Get("/preview/pages/{pageType}/{slug}", h.Public.ReadDraft)

			// Admin role only.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/themes", h.Admin.CreateTheme)
				r.Post("/themes/{id}/activate", h.Admin.ActivateTheme)
				r.Get("/users", h.Admin.ListUsers)
				r.Post("/users", h.Admin.CreateUser)
				r.Post("/users/{id}/reset-2fa", h.Admin.ResetUser2FA)
			})
		})
	})

	return r
}
