package editor

import (
	"reflect"
	"testing"

	"github.com/formdesk/formdesk/model"
)

func newEditorWith(n int) *Editor {
	e := New(nil)
	for i := 0; i < n; i++ {
		e.Add(model.ShortText)
	}
	return e
}

func ids(e *Editor) []string {
	qs := e.Questions()
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestAddSelectsNewQuestion(t *testing.T) {
	e := New(nil)
	q := e.Add(model.MultipleChoice)

	if e.Len() != 1 {
		t.Fatalf("len = %d, want 1", e.Len())
	}
	if e.Selected() != 0 {
		t.Fatalf("selected = %d, want 0", e.Selected())
	}
	if !reflect.DeepEqual(q.Options, []string{"Option 1", "Option 2"}) {
		t.Fatalf("options = %v", q.Options)
	}
}

func TestUpdateOutOfRangeIsNoop(t *testing.T) {
	e := newEditorWith(2)
	before := ids(e)

	e.Update(5, model.QuestionPatch{Title: strPtr("x")})
	e.Update(-1, model.QuestionPatch{Title: strPtr("x")})

	if !reflect.DeepEqual(ids(e), before) {
		t.Fatal("out-of-range update changed the list")
	}
	for _, q := range e.Questions() {
		if q.Title == "x" {
			t.Fatal("out-of-range update touched a question")
		}
	}
}

func TestRemoveSelection(t *testing.T) {
	t.Run("removing the selected question clears selection", func(t *testing.T) {
		e := newEditorWith(3)
		e.Select(1)
		e.Remove(1)
		if e.Selected() != NoSelection {
			t.Fatalf("selected = %d, want none", e.Selected())
		}
		if e.Len() != 2 {
			t.Fatalf("len = %d, want 2", e.Len())
		}
	})

	t.Run("a later selection shifts down", func(t *testing.T) {
		e := newEditorWith(3)
		e.Select(2)
		selected := e.Questions()[2].ID
		e.Remove(0)
		if e.Selected() != 1 {
			t.Fatalf("selected = %d, want 1", e.Selected())
		}
		if got := e.Questions()[e.Selected()].ID; got != selected {
			t.Fatalf("selection moved to a different question: %s", got)
		}
	})

	t.Run("an earlier selection is untouched", func(t *testing.T) {
		e := newEditorWith(3)
		e.Select(0)
		e.Remove(2)
		if e.Selected() != 0 {
			t.Fatalf("selected = %d, want 0", e.Selected())
		}
	})
}

func TestDuplicate(t *testing.T) {
	e := newEditorWith(3)
	e.Update(1, model.QuestionPatch{Title: strPtr("Original")})
	original := e.Questions()[1]

	dup, ok := e.Duplicate(1)
	if !ok {
		t.Fatal("duplicate failed")
	}
	if e.Len() != 4 {
		t.Fatalf("len = %d, want 4", e.Len())
	}

	got := e.Questions()[2]
	if got.ID != dup.ID {
		t.Fatal("copy not inserted right after the original")
	}
	if got.ID == original.ID {
		t.Fatal("copy kept the original id")
	}
	if got.Title != "Original (copy)" {
		t.Fatalf("copy title = %q", got.Title)
	}
	if got.Type != original.Type || got.Required != original.Required {
		t.Fatalf("copy differs beyond id/title: %+v", got)
	}
	if e.Selected() != 2 {
		t.Fatalf("selected = %d, want 2 (the copy)", e.Selected())
	}
}

func TestMoveRoundTrip(t *testing.T) {
	for _, pair := range [][2]int{{0, 3}, {3, 0}, {1, 2}, {2, 2}} {
		from, to := pair[0], pair[1]
		e := newEditorWith(4)
		before := ids(e)

		e.Move(from, to)
		e.Move(to, from)

		if !reflect.DeepEqual(ids(e), before) {
			t.Fatalf("move(%d,%d) then back did not restore order: %v != %v",
				from, to, ids(e), before)
		}
	}
}

func TestMoveSelectionFollows(t *testing.T) {
	e := newEditorWith(4)
	e.Select(0)
	moved := e.Questions()[0].ID

	e.Move(0, 2)

	if e.Selected() != 2 {
		t.Fatalf("selected = %d, want 2", e.Selected())
	}
	if got := e.Questions()[2].ID; got != moved {
		t.Fatalf("question at 2 is %s, want the moved one", got)
	}
}

func TestMoveOtherSelectionTracksItsQuestion(t *testing.T) {
	e := newEditorWith(4)
	e.Select(1)
	selected := e.Questions()[1].ID

	e.Move(0, 3)

	if got := e.Questions()[e.Selected()].ID; got != selected {
		t.Fatalf("selection points at %s, want %s", got, selected)
	}
}

// The end-to-end builder scenario: add, edit, remove.
func TestBuilderScenario(t *testing.T) {
	e := New(nil)

	q := e.Add(model.MultipleChoice)
	if !reflect.DeepEqual(q.Options, []string{"Option 1", "Option 2"}) {
		t.Fatalf("options = %v", q.Options)
	}
	if q.Required {
		t.Fatal("new question should default to optional")
	}

	e.Update(0, model.QuestionPatch{Title: strPtr("Pick one")})
	got := e.Questions()[0]
	if got.Title != "Pick one" {
		t.Fatalf("title = %q", got.Title)
	}
	if !reflect.DeepEqual(got.Options, []string{"Option 1", "Option 2"}) {
		t.Fatalf("options changed by title update: %v", got.Options)
	}

	e.Remove(0)
	if e.Len() != 0 {
		t.Fatalf("len = %d, want 0", e.Len())
	}
}

func strPtr(s string) *string { return &s }
