package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"codecompass/internal/backend"
)

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	bus := New()
	var got []string
	bus.Subscribe(TopicOpenFile, func(_ context.Context, e Event) { got = append(got, "a:"+e.(OpenFile).FileID) })
	On(bus, func(_ context.Context, e OpenFile) { got = append(got, "b:"+e.FileID) })
	bus.Subscribe(TopicRunSearch, func(context.Context, Event) { got = append(got, "search") })

	bus.Publish(context.Background(), OpenFile{FileID: "main.cpp"})

	if diff := cmp.Diff([]string{"a:main.cpp", "b:main.cpp"}, got); diff != "" {
		t.Fatalf("delivery mismatch (-want +got):\n%s", diff)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := New()
	calls := 0
	off := On(bus, func(context.Context, SetTheme) { calls++ })
	bus.Publish(context.Background(), SetTheme{Theme: "dark"})
	off()
	off()
	bus.Publish(context.Background(), SetTheme{Theme: "light"})

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if n := bus.Subscribers(TopicSetTheme); n != 0 {
		t.Fatalf("subscribers = %d, want 0", n)
	}
}

func TestSubscribeDuringPublishTakesEffectNextTime(t *testing.T) {
	bus := New()
	late := 0
	On(bus, func(context.Context, SelectCenter) {
		On(bus, func(context.Context, SelectCenter) { late++ })
	})
	bus.Publish(context.Background(), SelectCenter{ModuleID: "text"})
	if late != 0 {
		t.Fatalf("late subscriber ran during the publish that added it")
	}
	bus.Publish(context.Background(), SelectCenter{ModuleID: "text"})
	if late != 1 {
		t.Fatalf("late = %d, want 1", late)
	}
}

func TestDecodeTypedPayload(t *testing.T) {
	raw := json.RawMessage(`{"fileId":"42","selection":{"startpos":{"line":3,"column":1},"endpos":{"line":3,"column":9}}}`)
	e, err := Decode("openFile", raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := OpenFile{FileID: "42", Selection: &backend.Range{
		StartPos: backend.Position{Line: 3, Column: 1},
		EndPos:   backend.Position{Line: 3, Column: 9},
	}}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Fatalf("event mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeWarnsOnUnexpectedKeys(t *testing.T) {
	var warnings []string
	prev := Warnf
	Warnf = func(format string, args ...any) { warnings = append(warnings, fmt.Sprintf(format, args...)) }
	defer func() { Warnf = prev }()

	e, err := Decode("showDiagram", json.RawMessage(`{"handler":"cpp.diagram","nodeId":"7","diagramType":"call","zoom":2}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if e.(ShowDiagram).NodeID != "7" {
		t.Fatalf("unexpected event %+v", e)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want one", warnings)
	}
}

func TestDecodeUnknownTopic(t *testing.T) {
	if _, err := Decode("explode", nil); err == nil {
		t.Fatalf("expected error for unknown topic")
	}
}
