package urlstate

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetStateValueMergesKeys(t *testing.T) {
	loc := NewMemoryLocation("", nil)
	s := New(loc, QueryCodec{})

	s.SetStateValue(map[string]string{"a": "1"})
	s.SetStateValue(map[string]string{"b": "2"})
	assert.Equal(t, State{"a": "1", "b": "2"}, s.State())

	changed := s.UnsetStateValue("a")
	assert.Equal(t, []string{"a"}, changed)
	assert.Equal(t, State{"b": "2"}, s.State())
	assert.Equal(t, []string{"a=1", "a=1&b=2", "b=2"}, loc.Pushes())
}

func TestUnchangedWriteDoesNotPush(t *testing.T) {
	loc := NewMemoryLocation("fid=1", nil)
	s := New(loc, QueryCodec{})
	assert.Nil(t, s.SetStateValue(map[string]string{"fid": "1"}))
	assert.Empty(t, loc.Pushes())
}

func TestSetStateReplacesMap(t *testing.T) {
	s := New(NewMemoryLocation("a=1&b=2", nil), QueryCodec{})
	changed := s.SetState(State{"c": "3"})
	assert.Equal(t, []string{"a", "b", "c"}, changed)
	assert.Equal(t, State{"c": "3"}, s.State())
}

func TestHashChangedSuppressesOwnEcho(t *testing.T) {
	s := New(NewMemoryLocation("", nil), QueryCodec{})
	var changes []Change
	s.OnChange(func(c Change) { changes = append(changes, c) })

	s.SetStateValue(map[string]string{"fid": "main.cpp"})
	require.Len(t, changes, 1)

	_, ok := s.HashChanged("#fid=main.cpp")
	assert.False(t, ok, "echo of our own push must be ignored")
	require.Len(t, changes, 1)

	c, ok := s.HashChanged("#fid=other.cpp")
	require.True(t, ok)
	assert.True(t, c.FromBrowser)
	assert.Equal(t, []string{"fid"}, c.Keys)
	assert.Equal(t, "other.cpp", s.Value("fid"))
}

func TestHashChangedFlagIsOneShot(t *testing.T) {
	s := New(NewMemoryLocation("", nil), QueryCodec{})
	s.SetStateValue(map[string]string{"fid": "a"})

	// A back navigation arriving before the echo clears the flag.
	_, ok := s.HashChanged("")
	assert.True(t, ok)
	_, ok = s.HashChanged("fid=a")
	assert.True(t, ok, "second event is no longer treated as an echo")
}

func TestDependentRefetchesOnlyWhenKeyChanges(t *testing.T) {
	s := New(NewMemoryLocation("fid=1", nil), QueryCodec{})
	var fetched []string
	d := NewDependent(s, KeyFile, func(_ context.Context, v string) (string, error) {
		fetched = append(fetched, v)
		return "info-" + v, nil
	})

	v, ok, err := d.Get(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "info-1", v)

	s.SetStateValue(map[string]string{"center": "text"})
	_, _, _ = d.Get(context.Background())
	assert.Equal(t, []string{"1"}, fetched, "unrelated key must not invalidate")

	s.HashChanged("fid=2&center=text")
	v, _, _ = d.Get(context.Background())
	assert.Equal(t, "info-2", v)
	assert.Equal(t, []string{"1", "2"}, fetched)
	assert.Equal(t, 2, d.Fetches())

	s.UnsetStateValue(KeyFile)
	_, ok, _ = d.Get(context.Background())
	assert.False(t, ok)
}

func TestQueryCodecRoundTrip(t *testing.T) {
	c := QueryCodec{}
	st := State{"fid": "main.cpp", "searchText": "foo bar&baz", "select": "3|1|3|9"}
	got := c.Decode("#" + c.Encode(st))
	if diff := cmp.Diff(st, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "fid=main.cpp", c.Encode(State{"fid": "main.cpp", "empty": ""}))
}

func TestModuleCodecEscaping(t *testing.T) {
	c := ModuleCodec{}
	st := State{
		"wsid":             "ws1",
		"diagram.node":     `a|b;c:d\e"f{g}=h`,
		"cpp.diagram.type": "call",
	}
	enc := c.Encode(st)
	assert.Equal(t, `id:_;wsid:ws1|id:cpp.diagram;type:call|id:diagram;node:a\|b\;c\:d\\e\"f\{g\}\=h`, enc)
	if diff := cmp.Diff(st, c.Decode(enc)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSelection(t *testing.T) {
	r, ok := ParseSelection("3|1|4|10")
	require.True(t, ok)
	assert.Equal(t, int32(3), r.StartPos.Line)
	assert.Equal(t, int32(10), r.EndPos.Column)

	r2, ok := ParseSelection("3/1/4/10")
	require.True(t, ok)
	assert.Equal(t, r, r2)
	assert.Equal(t, "3|1|4|10", FormatSelection(r))

	_, ok = ParseSelection("3|1|4")
	assert.False(t, ok)
	_, ok = ParseSelection("x|1|4|5")
	assert.False(t, ok)
}

func TestLoadDoesNotPush(t *testing.T) {
	loc := NewMemoryLocation("", nil)
	s := New(loc, QueryCodec{})
	s.SetStateValue(map[string]string{"fid": "a"})

	c, ok := s.Load("fid=a&center=text")
	require.True(t, ok)
	assert.Equal(t, []string{"center"}, c.Keys)
	assert.Len(t, loc.Pushes(), 1)
}

func TestHashChangedSuppressesEveryPendingEcho(t *testing.T) {
	s := New(NewMemoryLocation("", nil), QueryCodec{})
	s.SetStateValue(map[string]string{KeySearchText: "foo"})
	h1 := s.Hash()
	s.SetStateValue(map[string]string{KeyFile: "main.cpp"})
	h2 := s.Hash()

	_, ok := s.HashChanged(h1)
	assert.False(t, ok, "echo of the first push")
	_, ok = s.HashChanged(h2)
	assert.False(t, ok, "echo of the second push")
	assert.Equal(t, State{KeySearchText: "foo", KeyFile: "main.cpp"}, s.State())

	// Once both echoes are in, h1 is a real back navigation.
	c, ok := s.HashChanged(h1)
	require.True(t, ok)
	assert.Equal(t, []string{KeyFile}, c.Keys)
}

func TestHashChangedSkipsOlderPendingEchoes(t *testing.T) {
	s := New(NewMemoryLocation("", nil), QueryCodec{})
	s.SetStateValue(map[string]string{KeySearchText: "foo"})
	h1 := s.Hash()
	s.SetStateValue(map[string]string{KeyFile: "main.cpp"})
	h2 := s.Hash()

	// The browser coalesced the two assignments into one event.
	_, ok := s.HashChanged(h2)
	assert.False(t, ok)
	c, ok := s.HashChanged(h1)
	require.True(t, ok, "h1 is no longer pending")
	assert.Equal(t, []string{KeyFile}, c.Keys)
	assert.Equal(t, "", s.Value(KeyFile))
}

func TestModuleCodecEchoThroughBrowserEncoding(t *testing.T) {
	s := New(NewMemoryLocation("", nil), ModuleCodec{})
	s.SetStateValue(map[string]string{KeySearchText: `foo bar "100%"`})
	pushed := s.Hash()

	// location.hash percent-encodes space, quote and the escaped percent.
	browser := strings.NewReplacer(" ", "%20", `"`, "%22").Replace(pushed)
	require.NotEqual(t, pushed, browser)
	_, ok := s.HashChanged(browser)
	assert.False(t, ok, "browser form of our own push is its echo")
	assert.Equal(t, `foo bar "100%"`, s.Value(KeySearchText))

	got := ModuleCodec{}.Decode(browser)
	assert.Equal(t, State{KeySearchText: `foo bar "100%"`}, got)
	assert.Equal(t, `id:_;searchText:foo bar \"100%25\"`, pushed)
}
