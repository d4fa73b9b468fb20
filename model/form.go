package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

const DefaultFormTitle = "Untitled form"

type Form struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Owner       string       `json:"user_id,omitempty"`
	Questions   []Question   `json:"questions"`
	Settings    FormSettings `json:"settings"`
	Published   bool         `json:"published"`
	CreatedAt   time.Time    `json:"created_at,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at,omitempty"`

	// Filled by list queries only.
	ResponsesCount int `json:"responses_count,omitempty"`
}

type FormSettings struct {
	ShowProgressBar     bool   `json:"showProgressBar"`
	ShowQuestionNumbers bool   `json:"showQuestionNumbers"`
	Theme               string `json:"theme"`
}

func DefaultFormSettings() FormSettings {
	return FormSettings{
		ShowProgressBar:     true,
		ShowQuestionNumbers: true,
		Theme:               "system",
	}
}

func NewForm(owner string) Form {
	return Form{
		ID:        NewID(),
		Title:     DefaultFormTitle,
		Owner:     owner,
		Questions: []Question{},
		Settings:  DefaultFormSettings(),
	}
}

// Validate checks the aggregate invariants: every question is valid on
// its own and question ids are unique within the form.
func (f Form) Validate() error {
	seen := make(map[string]bool, len(f.Questions))
	for _, q := range f.Questions {
		if err := q.Validate(); err != nil {
			return err
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %s", q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}

// Question returns the question with the given id, if present.
func (f Form) Question(id string) (Question, bool) {
	for _, q := range f.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Questions and settings are persisted as serialized JSON text and
// decoded back on every read, substituting defaults when absent.

func EncodeQuestions(questions []Question) (string, error) {
	if questions == nil {
		questions = []Question{}
	}
	b, err := json.Marshal(questions)
	if err != nil {
		return "", errors.Wrap(err, "encode questions")
	}
	return string(b), nil
}

func DecodeQuestions(raw string) ([]Question, error) {
	if raw == "" {
		return []Question{}, nil
	}
	questions := []Question{}
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, errors.Wrap(err, "decode questions")
	}
	return questions, nil
}

func EncodeFormSettings(settings FormSettings) (string, error) {
	b, err := json.Marshal(settings)
	if err != nil {
		return "", errors.Wrap(err, "encode settings")
	}
	return string(b), nil
}

func DecodeFormSettings(raw string) (FormSettings, error) {
	settings := DefaultFormSettings()
	if raw == "" {
		return settings, nil
	}

	var partial struct {
		ShowProgressBar     *bool   `json:"showProgressBar"`
		ShowQuestionNumbers *bool   `json:"showQuestionNumbers"`
		Theme               *string `json:"theme"`
	}
	if err := json.Unmarshal([]byte(raw), &partial); err != nil {
		return settings, errors.Wrap(err, "decode settings")
	}

	if partial.ShowProgressBar != nil {
		settings.ShowProgressBar = *partial.ShowProgressBar
	}
	if partial.ShowQuestionNumbers != nil {
		settings.ShowQuestionNumbers = *partial.ShowQuestionNumbers
	}
	if partial.Theme != nil && *partial.Theme != "" {
		settings.Theme = *partial.Theme
	}
	return settings, nil
}
