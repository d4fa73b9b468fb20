package builder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/formdesk/formdesk/model"
)

type persistRecorder struct {
	mu    sync.Mutex
	saves []model.Form
	fail  bool
}

func (p *persistRecorder) persist(ctx context.Context, form model.Form) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("db down")
	}
	p.saves = append(p.saves, form)
	return nil
}

func (p *persistRecorder) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.saves)
}

func (p *persistRecorder) last() model.Form {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves[len(p.saves)-1]
}

func TestSaverCollapsesBursts(t *testing.T) {
	rec := &persistRecorder{}
	saver := NewSaver(20*time.Millisecond, rec.persist)

	form := model.NewForm("alice")
	for i := 0; i < 5; i++ {
		form.Title = "rev"
		saver.Schedule(form)
	}

	waitFor(t, func() bool { return rec.count() > 0 })

	if rec.count() != 1 {
		t.Fatalf("persisted %d times, want 1", rec.count())
	}
}

func TestSaverKeepsLatestSnapshot(t *testing.T) {
	rec := &persistRecorder{}
	saver := NewSaver(20*time.Millisecond, rec.persist)

	form := model.NewForm("alice")
	form.Title = "first"
	saver.Schedule(form)
	form.Title = "second"
	saver.Schedule(form)

	waitFor(t, func() bool { return rec.count() > 0 })

	if got := rec.last().Title; got != "second" {
		t.Fatalf("persisted title = %q, want the superseding edit", got)
	}
}

func TestSaverFlush(t *testing.T) {
	rec := &persistRecorder{}
	saver := NewSaver(time.Hour, rec.persist)

	form := model.NewForm("alice")
	saver.Schedule(form)
	if rec.count() != 0 {
		t.Fatal("persisted before the delay elapsed")
	}

	saver.Flush(form.ID)
	if rec.count() != 1 {
		t.Fatalf("persisted %d times after flush, want 1", rec.count())
	}
	if saver.Pending(form.ID) {
		t.Fatal("still pending after flush")
	}

	// nothing left to flush
	saver.Flush(form.ID)
	if rec.count() != 1 {
		t.Fatalf("second flush persisted again: %d", rec.count())
	}
}

func TestSaverCloseFlushesEverything(t *testing.T) {
	rec := &persistRecorder{}
	saver := NewSaver(time.Hour, rec.persist)

	a, b := model.NewForm("alice"), model.NewForm("alice")
	saver.Schedule(a)
	saver.Schedule(b)

	saver.Close()
	if rec.count() != 2 {
		t.Fatalf("persisted %d forms on close, want 2", rec.count())
	}
}

func TestSaverRetainsSnapshotOnFailure(t *testing.T) {
	rec := &persistRecorder{fail: true}
	saver := NewSaver(time.Hour, rec.persist)

	form := model.NewForm("alice")
	saver.Schedule(form)
	saver.Flush(form.ID)

	if !saver.Pending(form.ID) {
		t.Fatal("failed save discarded the snapshot")
	}

	rec.mu.Lock()
	rec.fail = false
	rec.mu.Unlock()

	saver.Flush(form.ID)
	if rec.count() != 1 {
		t.Fatalf("retry persisted %d times, want 1", rec.count())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
