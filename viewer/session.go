// Package viewer walks a form's question sequence one question at a
// time, gating each advance on answer validation. The session is
// constructed per respondent; there is no process-wide answer state.
package viewer

import (
	"time"

	"github.com/formdesk/formdesk/model"
	"github.com/formdesk/formdesk/validate"
)

type Session struct {
	form    model.Form
	index   int
	answers map[string]any
	done    bool
}

func NewSession(form model.Form) *Session {
	return &Session{
		form:    form,
		answers: map[string]any{},
	}
}

// Current returns the question the respondent is looking at.
func (s *Session) Current() (model.Question, bool) {
	if s.index < 0 || s.index >= len(s.form.Questions) {
		return model.Question{}, false
	}
	return s.form.Questions[s.index], true
}

func (s *Session) Index() int {
	return s.index
}

func (s *Session) Done() bool {
	return s.done
}

// Set records the candidate answer for the current question without
// validating or advancing.
func (s *Session) Set(value any) {
	q, ok := s.Current()
	if !ok {
		return
	}
	s.answers[q.ID] = value
}

// Answer returns the recorded answer for a question id.
func (s *Session) Answer(questionID string) (any, bool) {
	v, ok := s.answers[questionID]
	return v, ok
}

// Next validates the current question's recorded answer and advances
// past it, or returns the validation error and stays put. Advancing
// past the last question completes the session. Validation failure
// never clears other recorded answers.
func (s *Session) Next() error {
	q, ok := s.Current()
	if !ok {
		s.done = true
		return nil
	}

	if err := validate.Answer(q, s.answers[q.ID]); err != nil {
		return err
	}

	if s.index < len(s.form.Questions)-1 {
		s.index++
	} else {
		s.done = true
	}
	return nil
}

// Prev moves back one question. Going back never validates.
func (s *Session) Prev() {
	if s.index > 0 {
		s.index--
	}
}

// Response assembles the submission: one {question_id, value} pair per
// answered question, in question order. Screens and unanswered
// questions are omitted.
func (s *Session) Response(respondent string) model.FormResponse {
	answers := []model.Answer{}
	for _, q := range s.form.Questions {
		if q.Type.IsScreen() {
			continue
		}
		if v, ok := s.answers[q.ID]; ok {
			answers = append(answers, model.Answer{QuestionID: q.ID, Value: v})
		}
	}

	return model.FormResponse{
		FormID:      s.form.ID,
		Answers:     answers,
		SubmittedAt: time.Now(),
		Respondent:  respondent,
	}
}
