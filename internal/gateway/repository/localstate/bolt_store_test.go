package localstate

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBoltStoreRoundTrip(t *testing.T) {
	st, err := NewBoltStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	defer st.Close()
	ctx := context.Background()

	got, err := st.Load(ctx, "client-1")
	if err != nil {
		t.Fatalf("Load unknown: %v", err)
	}
	if diff := cmp.Diff(State{}, got); diff != "" {
		t.Fatalf("unknown client should load zero state (-want +got):\n%s", diff)
	}

	want := State{
		Workspace: "ws1",
		FileID:    "main.cpp",
		Search:    Search{Text: "foo", Type: "text"},
		Center:    "text",
		Theme:     "dark",
	}
	if err := st.Save(ctx, " client-1 ", want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err = st.Load(ctx, "client-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}

	if err := st.Save(ctx, "", want); !errors.Is(err, ErrClientRequired) {
		t.Fatalf("empty client id: %v", err)
	}
}
