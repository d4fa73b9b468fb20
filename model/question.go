package model

import (
	"fmt"

	"github.com/gofrs/uuid"
)

type QuestionType string

const (
	ShortText      QuestionType = "short_text"
	LongText       QuestionType = "long_text"
	Email          QuestionType = "email"
	Phone          QuestionType = "phone"
	Website        QuestionType = "website"
	Number         QuestionType = "number"
	Date           QuestionType = "date"
	Time           QuestionType = "time"
	Rating         QuestionType = "rating"
	YesNo          QuestionType = "yes_no"
	MultipleChoice QuestionType = "multiple_choice"
	Dropdown       QuestionType = "dropdown"
	PictureChoice  QuestionType = "picture_choice"
	Ranking        QuestionType = "ranking"
	WelcomeScreen  QuestionType = "welcome_screen"
	EndScreen      QuestionType = "end_screen"
	Statement      QuestionType = "statement"
)

var questionTypes = map[QuestionType]bool{
	ShortText: true, LongText: true, Email: true, Phone: true,
	Website: true, Number: true, Date: true, Time: true,
	Rating: true, YesNo: true, MultipleChoice: true, Dropdown: true,
	PictureChoice: true, Ranking: true, WelcomeScreen: true,
	EndScreen: true, Statement: true,
}

func (t QuestionType) Valid() bool {
	return questionTypes[t]
}

// IsChoice reports whether the variant carries an options list.
func (t QuestionType) IsChoice() bool {
	switch t {
	case MultipleChoice, Dropdown, PictureChoice, Ranking:
		return true
	}
	return false
}

// IsScreen reports whether the variant is a layout screen rather than
// an answerable question. Screens never enforce required.
func (t QuestionType) IsScreen() bool {
	switch t {
	case WelcomeScreen, EndScreen, Statement:
		return true
	}
	return false
}

// Settings is the variant-dependent bag. Fields are pointers so an
// unset field is distinguishable from a zero one, which is what makes
// field-wise patch merging possible.
type Settings struct {
	Multiple      *bool   `json:"multiple,omitempty"`
	Randomize     *bool   `json:"randomize,omitempty"`
	AllowOther    *bool   `json:"allowOther,omitempty"`
	VerticalAlign *bool   `json:"verticalAlign,omitempty"`
	ButtonText    *string `json:"buttonText,omitempty"`
	RedirectUrl   *string `json:"redirectUrl,omitempty"`
	ImageUrl      *string `json:"imageUrl,omitempty"`
	Min           *int    `json:"min,omitempty"`
	Max           *int    `json:"max,omitempty"`
}

// RatingBounds returns the rating range, substituting the 1..5 defaults
// for absent fields.
func (s Settings) RatingBounds() (min, max int) {
	min, max = 1, 5
	if s.Min != nil {
		min = *s.Min
	}
	if s.Max != nil {
		max = *s.Max
	}
	return
}

func (s Settings) merge(patch Settings) Settings {
	if patch.Multiple != nil {
		s.Multiple = patch.Multiple
	}
	if patch.Randomize != nil {
		s.Randomize = patch.Randomize
	}
	if patch.AllowOther != nil {
		s.AllowOther = patch.AllowOther
	}
	if patch.VerticalAlign != nil {
		s.VerticalAlign = patch.VerticalAlign
	}
	if patch.ButtonText != nil {
		s.ButtonText = patch.ButtonText
	}
	if patch.RedirectUrl != nil {
		s.RedirectUrl = patch.RedirectUrl
	}
	if patch.ImageUrl != nil {
		s.ImageUrl = patch.ImageUrl
	}
	if patch.Min != nil {
		s.Min = patch.Min
	}
	if patch.Max != nil {
		s.Max = patch.Max
	}
	return s
}

func (s Settings) clone() Settings {
	c := s
	if s.Multiple != nil {
		c.Multiple = ptr(*s.Multiple)
	}
	if s.Randomize != nil {
		c.Randomize = ptr(*s.Randomize)
	}
	if s.AllowOther != nil {
		c.AllowOther = ptr(*s.AllowOther)
	}
	if s.VerticalAlign != nil {
		c.VerticalAlign = ptr(*s.VerticalAlign)
	}
	if s.ButtonText != nil {
		c.ButtonText = ptr(*s.ButtonText)
	}
	if s.RedirectUrl != nil {
		c.RedirectUrl = ptr(*s.RedirectUrl)
	}
	if s.ImageUrl != nil {
		c.ImageUrl = ptr(*s.ImageUrl)
	}
	if s.Min != nil {
		c.Min = ptr(*s.Min)
	}
	if s.Max != nil {
		c.Max = ptr(*s.Max)
	}
	return c
}

func ptr[T any](v T) *T {
	return &v
}

type Question struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Required    bool         `json:"required,omitempty"`
	Options     []string     `json:"options,omitempty"`
	Settings    Settings     `json:"settings,omitempty"`
}

// NewQuestion builds a question of the given variant with its defaults
// applied. Questions start out not required; welcome and end screens
// get the button labels the viewer falls back to anyway.
func NewQuestion(t QuestionType) Question {
	q := Question{
		ID:   NewID(),
		Type: t,
	}

	switch t {
	case MultipleChoice, Dropdown:
		q.Options = []string{"Option 1", "Option 2"}
	case Rating:
		q.Settings.Min = ptr(1)
		q.Settings.Max = ptr(5)
	case WelcomeScreen:
		q.Settings.ButtonText = ptr("Start")
	case EndScreen:
		q.Settings.ButtonText = ptr("Submit")
	}

	return q
}

func NewID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// QuestionPatch is a partial update: nil fields are left alone.
// Options replaces the whole list; Settings merges field by field.
type QuestionPatch struct {
	Type        *QuestionType `json:"type,omitempty"`
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Required    *bool         `json:"required,omitempty"`
	Options     *[]string     `json:"options,omitempty"`
	Settings    *Settings     `json:"settings,omitempty"`
}

// Apply merges the patch over the question and returns the result.
// Top-level fields are replaced, the settings bag is merged so that
// setting one settings field never erases its siblings.
func (q Question) Apply(patch QuestionPatch) Question {
	if patch.Type != nil {
		q.Type = *patch.Type
	}
	if patch.Title != nil {
		q.Title = *patch.Title
	}
	if patch.Description != nil {
		q.Description = *patch.Description
	}
	if patch.Required != nil {
		q.Required = *patch.Required
	}
	if patch.Options != nil {
		q.Options = append([]string(nil), (*patch.Options)...)
	}
	if patch.Settings != nil {
		q.Settings = q.Settings.merge(*patch.Settings)
	}
	return q
}

// Clone returns a deep copy carrying a fresh id, with the title marked
// as a copy. Used by the builder's duplicate operation.
func (q Question) Clone() Question {
	c := q
	c.ID = NewID()
	if q.Title != "" {
		c.Title = q.Title + " (copy)"
	}
	c.Options = append([]string(nil), q.Options...)
	c.Settings = q.Settings.clone()
	return c
}

func (q Question) Validate() error {
	if !q.Type.Valid() {
		return fmt.Errorf("question %s: unknown type %q", q.ID, q.Type)
	}
	if q.Options != nil {
		if !q.Type.IsChoice() {
			return fmt.Errorf("question %s: options not allowed for type %q", q.ID, q.Type)
		}
		if len(q.Options) == 0 {
			return fmt.Errorf("question %s: options must not be empty", q.ID)
		}
	}
	if q.Type == Rating {
		min, max := q.Settings.RatingBounds()
		if min > max {
			return fmt.Errorf("question %s: rating min %d exceeds max %d", q.ID, min, max)
		}
	}
	return nil
}
