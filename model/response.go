package model

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// FormResponse is one respondent's submission. It references the form
// and its questions by id only; unanswered optional questions are
// simply absent from Answers.
type FormResponse struct {
	ID          string    `json:"id,omitempty"`
	FormID      string    `json:"form_id"`
	Answers     []Answer  `json:"answers"`
	SubmittedAt time.Time `json:"submitted_at,omitempty"`
	Respondent  string    `json:"user_id,omitempty"`
}

type Answer struct {
	QuestionID string `json:"question_id"`
	Value      any    `json:"value"`
}

func EncodeAnswers(answers []Answer) (string, error) {
	if answers == nil {
		answers = []Answer{}
	}
	b, err := json.Marshal(answers)
	if err != nil {
		return "", errors.Wrap(err, "encode answers")
	}
	return string(b), nil
}

func DecodeAnswers(raw string) ([]Answer, error) {
	if raw == "" {
		return []Answer{}, nil
	}
	answers := []Answer{}
	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		return nil, errors.Wrap(err, "decode answers")
	}
	return answers, nil
}
