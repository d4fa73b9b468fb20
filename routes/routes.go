package routes

import (
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"

	"github.com/formdesk/formdesk/app"
	"github.com/formdesk/formdesk/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	root.
		With(middlewares.CookieAuth(app.BearerServer), middlewares.Authenticated(app.TokenSecret)).
		Mount("/builder", servePrivateFiles("/builder"))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	// respondent-facing
	api.Get("/forms/{id}", PublicGetForm(app))
	api.Post("/forms/{id}/responses", SubmitResponse(app))

	// owner-facing, always scoped to the authenticated user
	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Authenticated(app.TokenSecret))

		r.Post("/forms", CreateForm(app))
		r.Get("/forms", ListForms(app))
		r.Get("/forms/{id}", GetForm(app))
		r.Put("/forms/{id}", UpdateForm(app))
		r.Post("/forms/{id}/publish", PublishForm(app))
		r.Get("/forms/{id}/responses", GetFormResponses(app))

		// builder session operations
		r.Post("/forms/{id}/edits", EditForm(app))
		r.Delete("/forms/{id}/edits", CloseEditSession(app))
	})

	api.Post("/signup", Signup(app))
	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}

func servePrivateFiles(path string) http.Handler {
	return http.StripPrefix(path, http.FileServer(http.Dir("private")))
}
