// Package editor maintains the ordered question list and the selection
// cursor that the form builder mutates. All operations work on the
// in-memory list only; persisting the result is the caller's business.
package editor

import "github.com/formdesk/formdesk/model"

// NoSelection is the cursor value when no question is selected.
const NoSelection = -1

type Editor struct {
	questions []model.Question
	selected  int
}

func New(questions []model.Question) *Editor {
	return &Editor{
		questions: append([]model.Question(nil), questions...),
		selected:  NoSelection,
	}
}

// Add appends a newly defaulted question of the given variant and
// selects it.
func (e *Editor) Add(t model.QuestionType) model.Question {
	q := model.NewQuestion(t)
	e.questions = append(e.questions, q)
	e.selected = len(e.questions) - 1
	return q
}

// Update merges the patch into the question at i. Out-of-range indices
// are a silent no-op: the builder UI never produces them, so this is
// not an error surface. Selection is unchanged.
func (e *Editor) Update(i int, patch model.QuestionPatch) {
	if i < 0 || i >= len(e.questions) {
		return
	}
	e.questions[i] = e.questions[i].Apply(patch)
}

// Remove deletes the question at i, shifting later entries left. If the
// removed question was selected, the selection becomes none; a later
// selection shifts down with its question.
func (e *Editor) Remove(i int) {
	if i < 0 || i >= len(e.questions) {
		return
	}
	e.questions = append(e.questions[:i], e.questions[i+1:]...)

	switch {
	case e.selected == i:
		e.selected = NoSelection
	case e.selected > i:
		e.selected--
	}
}

// Duplicate inserts a copy of the question at i right after it and
// selects the copy. The copy gets a fresh id and a marked title.
func (e *Editor) Duplicate(i int) (model.Question, bool) {
	if i < 0 || i >= len(e.questions) {
		return model.Question{}, false
	}
	dup := e.questions[i].Clone()
	tail := append([]model.Question{dup}, e.questions[i+1:]...)
	e.questions = append(e.questions[:i+1], tail...)

	e.selected = i + 1
	return dup, true
}

// Move removes the question at from and re-inserts it at to. Selection
// follows the moved question; any other selection keeps pointing at the
// same question.
func (e *Editor) Move(from, to int) {
	n := len(e.questions)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return
	}

	q := e.questions[from]
	rest := append(e.questions[:from], e.questions[from+1:]...)
	e.questions = append(rest[:to], append([]model.Question{q}, rest[to:]...)...)

	switch {
	case e.selected == from:
		e.selected = to
	case from < e.selected && e.selected <= to:
		e.selected--
	case to <= e.selected && e.selected < from:
		e.selected++
	}
}

func (e *Editor) Select(i int) {
	if i < 0 || i >= len(e.questions) {
		e.selected = NoSelection
		return
	}
	e.selected = i
}

func (e *Editor) Selected() int {
	return e.selected
}

// Question returns the question at i, if the index is in range.
func (e *Editor) Question(i int) (model.Question, bool) {
	if i < 0 || i >= len(e.questions) {
		return model.Question{}, false
	}
	return e.questions[i], true
}

func (e *Editor) Len() int {
	return len(e.questions)
}

// Questions returns a copy of the list, safe to hand out.
func (e *Editor) Questions() []model.Question {
	return append([]model.Question(nil), e.questions...)
}
