// Package store is the persistence layer for forms and responses.
// Questions and settings live in serialized JSON text columns and are
// decoded on every read, with defaults substituted when absent.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/formdesk/formdesk/model"
)

// ErrNotFound covers both an absent id and a form not owned by the
// caller: ownership is always enforced server-side, and an unowned
// form is indistinguishable from a missing one.
var ErrNotFound = errors.New("not found")

// ErrUnknownQuestion marks a submission answering a question id the
// target form does not contain.
var ErrUnknownQuestion = errors.New("unknown question")

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateForm inserts a fresh form for the owner, stamped server-side,
// with a default title and an empty question list.
func (s *Store) CreateForm(ctx context.Context, owner string) (model.Form, error) {
	form := model.NewForm(owner)
	now := time.Now()
	form.CreatedAt = now
	form.UpdatedAt = now

	questions, err := model.EncodeQuestions(form.Questions)
	if err != nil {
		return model.Form{}, err
	}
	settings, err := model.EncodeFormSettings(form.Settings)
	if err != nil {
		return model.Form{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO form (id, owner, title, description, questions, settings, published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		form.ID, form.Owner, form.Title, form.Description,
		questions, settings, form.Published, form.CreatedAt, form.UpdatedAt,
	)
	if err != nil {
		return model.Form{}, errors.Wrap(err, "insert form")
	}
	return form, nil
}

// Form fetches a form by id regardless of owner.
func (s *Store) Form(ctx context.Context, id string) (model.Form, error) {
	return s.form(ctx, `
		SELECT id, owner, title, description, questions, settings, published, created_at, updated_at
		FROM form WHERE id = ?`, id)
}

// OwnedForm fetches a form by id, scoped to the requesting owner.
func (s *Store) OwnedForm(ctx context.Context, id, owner string) (model.Form, error) {
	return s.form(ctx, `
		SELECT id, owner, title, description, questions, settings, published, created_at, updated_at
		FROM form WHERE id = ? AND owner = ?`, id, owner)
}

func (s *Store) form(ctx context.Context, query string, args ...any) (model.Form, error) {
	var form model.Form
	var questions, settings string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&form.ID, &form.Owner, &form.Title, &form.Description,
		&questions, &settings, &form.Published, &form.CreatedAt, &form.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Form{}, ErrNotFound
	}
	if err != nil {
		return model.Form{}, errors.Wrap(err, "select form")
	}

	form.Questions, err = model.DecodeQuestions(questions)
	if err != nil {
		return model.Form{}, err
	}
	form.Settings, err = model.DecodeFormSettings(settings)
	if err != nil {
		return model.Form{}, err
	}
	return form, nil
}

// ListForms returns the owner's forms, newest first, with response
// counts. Question lists are decoded along for the builder's overview.
func (s *Store) ListForms(ctx context.Context, owner string) ([]model.Form, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			f.id, f.owner, f.title, f.description, f.questions, f.settings,
			f.published, f.created_at, f.updated_at,
			COUNT(r.id)
		FROM form f
		LEFT OUTER JOIN form_response r ON (f.id = r.form_id)
		WHERE f.owner = ?
		GROUP BY f.id
		ORDER BY f.created_at DESC`,
		owner,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select forms")
	}
	defer rows.Close()

	forms := []model.Form{}
	for rows.Next() {
		var form model.Form
		var questions, settings string
		err = rows.Scan(
			&form.ID, &form.Owner, &form.Title, &form.Description,
			&questions, &settings, &form.Published, &form.CreatedAt, &form.UpdatedAt,
			&form.ResponsesCount,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan form")
		}

		form.Questions, err = model.DecodeQuestions(questions)
		if err != nil {
			return nil, err
		}
		form.Settings, err = model.DecodeFormSettings(settings)
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, rows.Err()
}

// SaveForm replaces title, description, questions and settings for the
// form id. The whole question list is transmitted on every save; the
// last writer wins, there is no concurrency check.
func (s *Store) SaveForm(ctx context.Context, form model.Form) error {
	questions, err := model.EncodeQuestions(form.Questions)
	if err != nil {
		return err
	}
	settings, err := model.EncodeFormSettings(form.Settings)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE form
		SET title = ?, description = ?, questions = ?, settings = ?, updated_at = ?
		WHERE id = ? AND owner = ?`,
		form.Title, form.Description, questions, settings, time.Now(),
		form.ID, form.Owner,
	)
	if err != nil {
		return errors.Wrap(err, "update form")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update form: rows affected")
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetPublished(ctx context.Context, id, owner string, published bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE form SET published = ?, updated_at = ? WHERE id = ? AND owner = ?`,
		published, time.Now(), id, owner,
	)
	if err != nil {
		return errors.Wrap(err, "publish form")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "publish form: rows affected")
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

// InsertResponse stores one submission. Responses are insert-only: the
// id and submission time are stamped here, never taken from the caller,
// and every answered question id must exist in the target form.
func (s *Store) InsertResponse(ctx context.Context, resp model.FormResponse) (model.FormResponse, error) {
	form, err := s.Form(ctx, resp.FormID)
	if err != nil {
		return model.FormResponse{}, err
	}
	for _, a := range resp.Answers {
		if _, ok := form.Question(a.QuestionID); !ok {
			return model.FormResponse{}, errors.Wrapf(ErrUnknownQuestion, "question %s", a.QuestionID)
		}
	}

	resp.ID = model.NewID()
	resp.SubmittedAt = time.Now()

	answers, err := model.EncodeAnswers(resp.Answers)
	if err != nil {
		return model.FormResponse{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO form_response (id, form_id, respondent, answers, submitted_at)
		VALUES (?, ?, ?, ?, ?)`,
		resp.ID, resp.FormID, resp.Respondent, answers, resp.SubmittedAt,
	)
	if err != nil {
		return model.FormResponse{}, errors.Wrap(err, "insert response")
	}
	return resp, nil
}

func (s *Store) ListResponses(ctx context.Context, formID string) ([]model.FormResponse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, respondent, answers, submitted_at
		FROM form_response
		WHERE form_id = ?
		ORDER BY submitted_at`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select responses")
	}
	defer rows.Close()

	responses := []model.FormResponse{}
	for rows.Next() {
		var resp model.FormResponse
		var answers string
		err = rows.Scan(&resp.ID, &resp.FormID, &resp.Respondent, &answers, &resp.SubmittedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scan response")
		}

		resp.Answers, err = model.DecodeAnswers(answers)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// CreateUser registers a user with a bcrypt password hash.
func (s *Store) CreateUser(ctx context.Context, username string, passwordHash []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user (username, password_hash) VALUES (?, ?)`,
		username, string(passwordHash),
	)
	return errors.Wrap(err, "insert user")
}
