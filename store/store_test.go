package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/formdesk/formdesk/config"
	"github.com/formdesk/formdesk/database"
	"github.com/formdesk/formdesk/model"
	"github.com/formdesk/formdesk/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	cfg := config.Config{DBUrl: filepath.Join(t.TempDir(), "test.sqlite")}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := store.New(db)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	for _, user := range []string{"alice", "bob"} {
		if err := s.CreateUser(context.Background(), user, hash); err != nil {
			t.Fatalf("create user %s: %v", user, err)
		}
	}
	return s
}

func TestCreateAndGetForm(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	form, err := s.CreateForm(ctx, "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if form.Title != model.DefaultFormTitle {
		t.Fatalf("title = %q", form.Title)
	}

	got, err := s.OwnedForm(ctx, form.ID, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != form.ID || got.Owner != "alice" {
		t.Fatalf("got %+v", got)
	}
	if len(got.Questions) != 0 {
		t.Fatalf("questions = %v, want empty", got.Questions)
	}
	if !got.Settings.ShowProgressBar || got.Settings.Theme != "system" {
		t.Fatalf("settings = %+v, want defaults", got.Settings)
	}
}

func TestOwnershipEnforced(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	form, err := s.CreateForm(ctx, "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.OwnedForm(ctx, form.ID, "bob"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("foreign owner got %v, want not found", err)
	}

	form.Owner = "bob"
	form.Title = "stolen"
	if err := s.SaveForm(ctx, form); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("foreign save got %v, want not found", err)
	}
}

func TestSaveFormFullReplace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	form, err := s.CreateForm(ctx, "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	q := model.NewQuestion(model.Rating)
	q.Title = "Rate us"
	form.Title = "Feedback"
	form.Questions = []model.Question{q}
	form.Settings.Theme = "dark"

	if err := s.SaveForm(ctx, form); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.OwnedForm(ctx, form.ID, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Feedback" || got.Settings.Theme != "dark" {
		t.Fatalf("got %+v", got)
	}
	if len(got.Questions) != 1 || got.Questions[0].ID != q.ID {
		t.Fatalf("questions = %+v", got.Questions)
	}
	min, max := got.Questions[0].Settings.RatingBounds()
	if min != 1 || max != 5 {
		t.Fatalf("bounds after reload = %d..%d", min, max)
	}

	// saving a shorter list replaces, never merges
	form.Questions = []model.Question{}
	if err := s.SaveForm(ctx, form); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	got, _ = s.OwnedForm(ctx, form.ID, "alice")
	if len(got.Questions) != 0 {
		t.Fatalf("questions after empty save = %+v", got.Questions)
	}
}

func TestListFormsOrderAndCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateForm(ctx, "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := s.CreateForm(ctx, "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateForm(ctx, "bob"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.SetPublished(ctx, first.ID, "alice", true); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := s.InsertResponse(ctx, model.FormResponse{FormID: first.ID}); err != nil {
		t.Fatalf("insert response: %v", err)
	}

	forms, err := s.ListForms(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("listed %d forms, want 2 (owner scoped)", len(forms))
	}
	if forms[0].CreatedAt.Before(forms[1].CreatedAt) {
		t.Fatal("forms not in creation order, newest first")
	}
	for _, f := range forms {
		switch f.ID {
		case first.ID:
			if f.ResponsesCount != 1 || !f.Published {
				t.Fatalf("first form = %+v", f)
			}
		case second.ID:
			if f.ResponsesCount != 0 {
				t.Fatalf("second form = %+v", f)
			}
		}
	}
}

func TestResponsesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	form, err := s.CreateForm(ctx, "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	email := model.NewQuestion(model.Email)
	rating := model.NewQuestion(model.Rating)
	form.Questions = []model.Question{email, rating}
	if err := s.SaveForm(ctx, form); err != nil {
		t.Fatalf("save: %v", err)
	}

	resp := model.FormResponse{
		FormID: form.ID,
		Answers: []model.Answer{
			{QuestionID: email.ID, Value: "a@b.com"},
			{QuestionID: rating.ID, Value: float64(4)},
		},
		Respondent: "bob",
	}
	inserted, err := s.InsertResponse(ctx, resp)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if inserted.ID == "" || inserted.SubmittedAt.IsZero() {
		t.Fatalf("inserted = %+v", inserted)
	}

	responses, err := s.ListResponses(ctx, form.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(responses) != 1 {
		t.Fatalf("listed %d responses", len(responses))
	}
	got := responses[0]
	if got.Respondent != "bob" || len(got.Answers) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Answers[0].QuestionID != email.ID || got.Answers[0].Value != "a@b.com" {
		t.Fatalf("first answer = %+v", got.Answers[0])
	}
	if got.Answers[1].Value != float64(4) {
		t.Fatalf("second answer = %+v", got.Answers[1])
	}
}

func TestInsertResponseRejectsUnknownQuestion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	form, err := s.CreateForm(ctx, "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resp := model.FormResponse{
		FormID:  form.ID,
		Answers: []model.Answer{{QuestionID: "nope", Value: "x"}},
	}
	if _, err := s.InsertResponse(ctx, resp); !errors.Is(err, store.ErrUnknownQuestion) {
		t.Fatalf("got %v, want unknown question", err)
	}

	if _, err := s.InsertResponse(ctx, model.FormResponse{FormID: "missing"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing form got %v, want not found", err)
	}

	responses, err := s.ListResponses(ctx, form.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(responses) != 0 {
		t.Fatalf("rejected submission was stored: %+v", responses)
	}
}

func TestInsertResponseStampsSubmissionTime(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	form, err := s.CreateForm(ctx, "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	forged := time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC)
	before := time.Now()
	inserted, err := s.InsertResponse(ctx, model.FormResponse{FormID: form.ID, SubmittedAt: forged})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if inserted.SubmittedAt.Before(before) {
		t.Fatalf("submitted_at = %v, want stamped server-side", inserted.SubmittedAt)
	}
}
