package builder

import (
	"context"
	"fmt"
	"sync"

	"github.com/formdesk/formdesk/editor"
	"github.com/formdesk/formdesk/model"
)

// Session is the server-side editing state for one form: the question
// list editor plus the aggregate fields a save transmits. Every applied
// change schedules a debounced full-replace save of the whole form.
type Session struct {
	mu     sync.Mutex
	form   model.Form
	editor *editor.Editor
	saver  *Saver
}

func newSession(form model.Form, saver *Saver) *Session {
	return &Session{
		form:   form,
		editor: editor.New(form.Questions),
		saver:  saver,
	}
}

// Op is one builder operation. Exactly the fields the op needs are
// looked at; the rest are ignored.
type Op struct {
	Op       string              `json:"op"`
	Type     model.QuestionType  `json:"type,omitempty"`
	Index    int                 `json:"index"`
	From     int                 `json:"from"`
	To       int                 `json:"to"`
	Question model.QuestionPatch `json:"question"`

	Title       *string             `json:"title,omitempty"`
	Description *string             `json:"description,omitempty"`
	Settings    *model.FormSettings `json:"settings,omitempty"`
}

const (
	OpAdd       = "add"
	OpUpdate    = "update"
	OpRemove    = "remove"
	OpDuplicate = "duplicate"
	OpMove      = "move"
	OpSelect    = "select"
	OpForm      = "form"
)

// State is what the builder UI renders after each operation.
type State struct {
	Questions []model.Question `json:"questions"`
	Selected  int              `json:"selected"`
}

// Apply runs one operation against the session and schedules the
// debounced save. Out-of-range indices leave the session unchanged;
// unknown ops and patches that would break the question invariants are
// rejected, also leaving the session unchanged, so an invalid question
// can never reach the persisted aggregate through the edits path.
func (s *Session) Apply(op Op) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch op.Op {
	case OpAdd:
		if !op.Type.Valid() {
			return s.stateLocked(), fmt.Errorf("unknown question type %q", op.Type)
		}
		s.editor.Add(op.Type)
	case OpUpdate:
		if q, ok := s.editor.Question(op.Index); ok {
			if err := q.Apply(op.Question).Validate(); err != nil {
				return s.stateLocked(), err
			}
		}
		s.editor.Update(op.Index, op.Question)
	case OpRemove:
		s.editor.Remove(op.Index)
	case OpDuplicate:
		s.editor.Duplicate(op.Index)
	case OpMove:
		s.editor.Move(op.From, op.To)
	case OpSelect:
		s.editor.Select(op.Index)
		return s.stateLocked(), nil
	case OpForm:
		if op.Title != nil {
			s.form.Title = *op.Title
		}
		if op.Description != nil {
			s.form.Description = *op.Description
		}
		if op.Settings != nil {
			s.form.Settings = *op.Settings
		}
	default:
		return s.stateLocked(), fmt.Errorf("unknown op %q", op.Op)
	}

	s.form.Questions = s.editor.Questions()
	s.saver.Schedule(s.form)
	return s.stateLocked(), nil
}

func (s *Session) stateLocked() State {
	return State{
		Questions: s.editor.Questions(),
		Selected:  s.editor.Selected(),
	}
}

// Form returns the current aggregate snapshot.
func (s *Session) Form() model.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Questions = s.editor.Questions()
	return s.form
}

// FormLoader fetches a form scoped to its owner.
type FormLoader interface {
	OwnedForm(ctx context.Context, id, owner string) (model.Form, error)
}

// Registry hands out one shared session per (form, owner) pair, loading
// the aggregate on first use.
type Registry struct {
	loader FormLoader
	saver  *Saver

	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

type sessionKey struct {
	formID string
	owner  string
}

func NewRegistry(loader FormLoader, saver *Saver) *Registry {
	return &Registry{
		loader:   loader,
		saver:    saver,
		sessions: map[sessionKey]*Session{},
	}
}

func (r *Registry) Open(ctx context.Context, formID, owner string) (*Session, error) {
	key := sessionKey{formID, owner}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[key]; ok {
		return s, nil
	}

	form, err := r.loader.OwnedForm(ctx, formID, owner)
	if err != nil {
		return nil, err
	}

	s := newSession(form, r.saver)
	r.sessions[key] = s
	return s, nil
}

// Close drops the session and flushes its pending save.
func (r *Registry) Close(formID, owner string) {
	r.mu.Lock()
	delete(r.sessions, sessionKey{formID, owner})
	r.mu.Unlock()

	r.saver.Flush(formID)
}

// CloseAll flushes everything; used at shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	r.sessions = map[sessionKey]*Session{}
	r.mu.Unlock()

	r.saver.Close()
}
