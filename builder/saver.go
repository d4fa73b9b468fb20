// Package builder holds the server side of the form builder: per-form
// editing sessions and the debounced auto-save that collapses bursts of
// edits into a single full-replace persist.
package builder

import (
	"context"
	"sync"
	"time"

	"github.com/formdesk/formdesk/log"
	"github.com/formdesk/formdesk/model"
)

type PersistFunc func(ctx context.Context, form model.Form) error

// Saver schedules "persist this snapshot after delay of inactivity".
// A superseding Schedule for the same form cancels and reschedules the
// pending save with the newer snapshot. A failed persist is logged and
// the snapshot kept, so Flush or the next edit retries it.
type Saver struct {
	delay   time.Duration
	persist PersistFunc

	mu      sync.Mutex
	pending map[string]*pendingSave
}

type pendingSave struct {
	timer    *time.Timer
	snapshot model.Form
}

func NewSaver(delay time.Duration, persist PersistFunc) *Saver {
	return &Saver{
		delay:   delay,
		persist: persist,
		pending: map[string]*pendingSave{},
	}
}

func (s *Saver) Schedule(form model.Form) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[form.ID]; ok {
		p.timer.Stop()
	}

	id := form.ID
	s.pending[id] = &pendingSave{
		snapshot: form,
		timer: time.AfterFunc(s.delay, func() {
			s.fire(id)
		}),
	}
}

// Flush persists a pending save for the form immediately, if any.
func (s *Saver) Flush(formID string) {
	s.mu.Lock()
	p, ok := s.pending[formID]
	if ok {
		p.timer.Stop()
	}
	s.mu.Unlock()

	if ok {
		s.fire(formID)
	}
}

// Close flushes every pending save. Shutdown lets in-flight edits reach
// the database instead of abandoning them.
func (s *Saver) Close() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.pending))
	for id, p := range s.pending {
		p.timer.Stop()
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.fire(id)
	}
}

// Pending reports whether a save is scheduled for the form.
func (s *Saver) Pending(formID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[formID]
	return ok
}

func (s *Saver) fire(formID string) {
	s.mu.Lock()
	p, ok := s.pending[formID]
	if ok {
		delete(s.pending, formID)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	err := s.persist(context.Background(), p.snapshot)
	if err != nil {
		// keep the snapshot so the next Schedule or Flush retries
		log.Errorf("builder.save(%s): %s", formID, err)
		s.mu.Lock()
		if _, superseded := s.pending[formID]; !superseded {
			p.timer.Stop()
			s.pending[formID] = p
		}
		s.mu.Unlock()
		return
	}

	log.Debugf("builder.save(%s): persisted", formID)
}
