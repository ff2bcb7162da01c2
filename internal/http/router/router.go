package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	_ "github.com/rogerio-castellano/pixel-canvas/docs"
	"github.com/rogerio-castellano/pixel-canvas/internal/http/handlers"
	mw "github.com/rogerio-castellano/pixel-canvas/internal/http/middleware"
	"github.com/rogerio-castellano/pixel-canvas/internal/http/web"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(chimw.Recoverer)
	r.NotFound(handlers.NotFoundHandler)

	r.Handle("/static/*", http.StripPrefix("/static/", web.Static()))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Group(func(r chi.Router) {
		r.Use(mw.Session)

		r.Get("/", handlers.IndexHandler)
		r.Get("/public", handlers.PublicHandler)
		r.Get("/canvas/{id}", handlers.ViewCanvasHandler)

		r.Get("/login", handlers.LoginPageHandler)
		r.Post("/login", handlers.LoginHandler)
		r.Get("/register", handlers.RegisterPageHandler)
		r.Post("/register", handlers.RegisterHandler)
		r.Get("/reset_password_request", handlers.ResetPasswordRequestPageHandler)
		r.Post("/reset_password_request", handlers.ResetPasswordRequestHandler)
		r.Get("/reset_password/{token}", handlers.ResetPasswordPageHandler)
		r.Post("/reset_password/{token}", handlers.ResetPasswordHandler)

		r.Get("/api/canvas/{id}", handlers.GetCanvasHandler)
		r.Get("/api/stats", handlers.GetStatsHandler)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireLogin)

			r.Get("/logout", handlers.LogoutHandler)
			r.Get("/profile", handlers.ProfilePageHandler)
			r.Post("/profile", handlers.ProfileHandler)
			r.Get("/change_password", handlers.ChangePasswordPageHandler)
			r.Post("/change_password", handlers.ChangePasswordHandler)

			r.Get("/create", handlers.CreateCanvasPageHandler)
			r.Post("/create", handlers.CreateCanvasHandler)
			r.Get("/canvas/{id}/edit", handlers.EditCanvasHandler)
			r.Get("/canvas/{id}/delete", handlers.DeleteCanvasHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAPIAuth)

			r.Post("/api/canvas/{id}/update", handlers.UpdateCanvasHandler)
		})
	})

	return r
}
