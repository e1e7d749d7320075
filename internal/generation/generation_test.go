package generation

import (
	"context"
	"errors"
	"testing"
)

func TestLateResponseIsDiscarded(t *testing.T) {
	var tr Tracker
	first, firstCtx := tr.Begin(context.Background())
	second, _ := tr.Begin(context.Background())

	if firstCtx.Err() == nil {
		t.Fatalf("first context should be cancelled by the second Begin")
	}
	if first.Current() {
		t.Fatalf("first ticket still current")
	}

	var applied []string
	if err := second.Commit(func() { applied = append(applied, "second") }); err != nil {
		t.Fatalf("commit second: %v", err)
	}
	err := first.Commit(func() { applied = append(applied, "first") })
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("err = %v, want ErrSuperseded", err)
	}
	if len(applied) != 1 || applied[0] != "second" {
		t.Fatalf("applied = %v", applied)
	}
}

func TestStopInvalidatesRunning(t *testing.T) {
	var tr Tracker
	k, ctx := tr.Begin(context.Background())
	tr.Stop()
	if ctx.Err() == nil || k.Current() {
		t.Fatalf("stop did not invalidate the running ticket")
	}
	var zero Ticket
	if zero.Commit(func() {}) == nil {
		t.Fatalf("zero ticket must not commit")
	}
}
