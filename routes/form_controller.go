package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/formdesk/formdesk/app"
	"github.com/formdesk/formdesk/builder"
	"github.com/formdesk/formdesk/httpx"
	"github.com/formdesk/formdesk/log"
	"github.com/formdesk/formdesk/model"
	"github.com/formdesk/formdesk/routes/middlewares"
	"github.com/formdesk/formdesk/store"
)

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := app.Store.CreateForm(r.Context(), middlewares.User(r))
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, form)
	}
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := app.Store.ListForms(r.Context(), middlewares.User(r))
		if err != nil {
			httpx.LogInternalError(w, "db.get_forms", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}

func GetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form, err := app.Store.OwnedForm(r.Context(), formId, middlewares.User(r))
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "get_form", formId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		render.JSON(w, r, form)
	}
}

// UpdateForm is the explicit full-replace save: title, description,
// settings and the whole question list, every time.
func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form := model.Form{}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		form.ID = formId
		form.Owner = middlewares.User(r)

		if err := form.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "update_form.validate", "%s", err)
			return
		}

		err = app.Store.SaveForm(r.Context(), form)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "update_form", formId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.update_form", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func PublishForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		var body struct {
			Published *bool `json:"published"`
		}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		published := true
		if body.Published != nil {
			published = *body.Published
		}

		err = app.Store.SetPublished(r.Context(), formId, middlewares.User(r), published)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "publish_form", formId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.publish_form", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetFormResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		// ownership gate before touching responses
		_, err := app.Store.OwnedForm(r.Context(), formId, middlewares.User(r))
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "get_responses", formId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		responses, err := app.Store.ListResponses(r.Context(), formId)
		if err != nil {
			httpx.LogInternalError(w, "db.get_responses", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"responses": responses,
		})
	}
}

// EditForm applies one builder operation (add/update/remove/duplicate/
// move/select/form) to the server-side editing session. Each edit
// schedules a debounced save; bursts collapse into one persist.
func EditForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		op := builder.Op{}
		err := render.DecodeJSON(r.Body, &op)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		session, err := app.Sessions.Open(r.Context(), formId, middlewares.User(r))
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "edit_form", formId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "builder.open_session", err)
			return
		}

		state, err := session.Apply(op)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "edit_form.validate", "%s", err)
			return
		}

		render.JSON(w, r, state)
	}
}

// CloseEditSession ends the builder session for the form, flushing any
// pending debounced save before the user navigates away.
func CloseEditSession(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		app.Sessions.Close(formId, middlewares.User(r))
		w.WriteHeader(http.StatusNoContent)
	}
}
