package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/formdesk/formdesk/app"
	"github.com/formdesk/formdesk/httpx"
	"github.com/formdesk/formdesk/log"
	"github.com/formdesk/formdesk/model"
	"github.com/formdesk/formdesk/routes/middlewares"
	"github.com/formdesk/formdesk/store"
	"github.com/formdesk/formdesk/validate"
)

// PublicGetForm serves a published form to respondents. Unpublished
// forms are not distinguishable from missing ones.
func PublicGetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form, err := app.Store.Form(r.Context(), formId)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "get_form", formId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}
		if !form.Published {
			httpx.LogNotFound(w, "get_form.unpublished", formId)
			return
		}

		form.Owner = ""
		render.JSON(w, r, form)
	}
}

// SubmitResponse validates and stores one respondent's answers. Every
// referenced question must exist in the form, and every answer must
// pass the per-question validation the viewer applies when advancing;
// required questions with no answer are rejected the same way.
func SubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		resp := model.FormResponse{}
		err := render.DecodeJSON(r.Body, &resp)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		resp.FormID = formId
		resp.Respondent = middlewares.User(r)

		form, err := app.Store.Form(r.Context(), formId)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "get_form", formId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}
		if !form.Published {
			httpx.LogNotFound(w, "get_form.unpublished", formId)
			return
		}

		answered := make(map[string]any, len(resp.Answers))
		for _, a := range resp.Answers {
			q, ok := form.Question(a.QuestionID)
			if !ok {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "submit.unknown_question",
					"unknown question id %s", a.QuestionID)
				return
			}
			if verr := validate.Answer(q, a.Value); verr != nil {
				httpx.ValidationFailed(w, r, "submit.validate", verr.(*validate.Error))
				return
			}
			answered[a.QuestionID] = a.Value
		}

		// answers may omit optional questions, never required ones
		for _, q := range form.Questions {
			if _, ok := answered[q.ID]; ok {
				continue
			}
			if verr := validate.Answer(q, nil); verr != nil {
				httpx.ValidationFailed(w, r, "submit.validate.missing", verr.(*validate.Error))
				return
			}
		}

		resp, err = app.Store.InsertResponse(r.Context(), resp)
		if errors.Is(err, store.ErrUnknownQuestion) {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "submit.unknown_question", "%s", err)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, resp)
	}
}
