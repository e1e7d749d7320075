package render

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codecompass/internal/backend"
	"codecompass/internal/eventbus"
	"codecompass/internal/history"
)

func TestPublishActionAttributes(t *testing.T) {
	a := Publish(eventbus.OpenFile{FileID: `a"b`})
	assert.Equal(t, ActionPublish, a.Type)
	assert.Equal(t, "openFile", a.Topic)

	got := string(attrs(a))
	assert.Contains(t, got, `data-cc-type="publish"`)
	assert.Contains(t, got, `data-cc-payload="{&#34;fileId&#34;:&#34;a\&#34;b&#34;}"`)
	assert.Equal(t, "", string(attrs(Action{})))
}

func TestSourceViewHighlightsSelection(t *testing.T) {
	sel := &backend.Range{StartPos: backend.Position{Line: 2}, EndPos: backend.Position{Line: 3}}
	out, err := SourceView(Source{
		File:      backend.FileInfo{ID: "f1", Type: "CPP"},
		Content:   "int a;\r\nint b;\nint c;\nint d;\n",
		Selection: sel,
	})
	require.NoError(t, err)
	html := string(out)
	assert.Equal(t, 4, strings.Count(html, `<tr class="cc-line`))
	assert.Equal(t, 2, strings.Count(html, `cc-line selected`))
	assert.Contains(t, html, `data-line="3"`)
	assert.NotContains(t, html, "\r")
}

func TestSearchResultsPaging(t *testing.T) {
	res := backend.SearchResult{
		TotalFiles: 25,
		Results: []backend.SearchResultEntry{{
			File:  backend.FileInfo{ID: "f1", Name: "main.cpp", Path: "/src/main.cpp"},
			Lines: []backend.LineMatch{{Text: "int <main>()", Range: backend.Range{StartPos: backend.Position{Line: 7}}}},
		}},
	}
	out, err := SearchResults(Search{Query: eventbus.RunSearch{Text: "main", Page: 1}, Result: res, PageSize: 10})
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "main.cpp")
	assert.Contains(t, html, "int &lt;main&gt;()")
	assert.Contains(t, html, ">Previous<")
	assert.Contains(t, html, ">Next<")
	assert.Contains(t, html, "page 2")

	out, err = SearchResults(Search{Query: eventbus.RunSearch{Text: "zzz"}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "No result")
}

func TestBlameGutter(t *testing.T) {
	hunks := []backend.BlameHunk{
		{StartLine: 1, LineCount: 2, CommitID: "old", Author: "ann", Time: 1000},
		{StartLine: 3, LineCount: 1, CommitID: "new", Author: "bob", Time: 2000},
		{StartLine: 9, LineCount: 5, CommitID: "out", Time: 1500},
	}
	lines := BlameGutter("repo", hunks, 4)
	require.Len(t, lines, 4)
	assert.True(t, lines[0].First)
	assert.False(t, lines[1].First)
	assert.Equal(t, "old", lines[1].CommitID)
	assert.Equal(t, 0, lines[0].Age)
	assert.Equal(t, 9, lines[2].Age)
	assert.Equal(t, "", lines[3].CommitID)
	assert.Equal(t, "showCommit", lines[2].Action.Topic)

	out, err := SourceView(Source{Content: "a\nb\nc\nd", Blame: lines})
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(out), `class="cc-blame`))
}

func TestCommitDiff(t *testing.T) {
	out, err := CommitDiff(backend.Commit{
		ID:      "0123456789abcdef",
		Summary: "fix",
		Diff: []backend.FileDiff{{Path: "a.cpp", Status: "modified", Hunks: []backend.DiffHunk{{
			Header: "@@ -1 +1 @@",
			Lines:  []backend.DiffLine{{Origin: "-", Content: "x", OldLine: 1}, {Origin: "+", Content: "y", NewLine: 1}},
		}}}},
	})
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "0123456789<")
	assert.Contains(t, html, `class="del"`)
	assert.Contains(t, html, `class="add"`)
}

func TestSquarifyClassicExample(t *testing.T) {
	rects := Squarify([]float64{6, 6, 4, 3, 2, 2, 1}, Rect{W: 6, H: 4})
	assert.Equal(t, Rect{X: 0, Y: 0, W: 3, H: 2}, rects[0])
	assert.Equal(t, Rect{X: 0, Y: 2, W: 3, H: 2}, rects[1])

	var area float64
	for _, r := range rects {
		area += r.W * r.H
		assert.True(t, r.X >= -1e-9 && r.Y >= -1e-9 && r.X+r.W <= 6+1e-9 && r.Y+r.H <= 4+1e-9, "rect %v out of bounds", r)
	}
	assert.InDelta(t, 24, area, 1e-9)
}

func TestSquarifySkipsEmptyValues(t *testing.T) {
	rects := Squarify([]float64{0, 5, -1}, Rect{W: 10, H: 10})
	assert.Equal(t, Rect{}, rects[0])
	assert.Equal(t, Rect{}, rects[2])
	assert.InDelta(t, 100, rects[1].W*rects[1].H, 1e-9)
	assert.Len(t, Squarify(nil, Rect{W: 1, H: 1}), 0)
}

func TestMetricsTreemapActions(t *testing.T) {
	root := backend.MetricsNode{Path: "/src", Children: []backend.MetricsNode{
		{Name: "lib", FileID: "d1", Children: []backend.MetricsNode{{Name: "x.cpp", Value: 3}, {Name: "y.cpp", Value: 1}}},
		{Name: "main.cpp", FileID: "f1", Value: 2},
	}}
	assert.True(t, math.Abs(nodeValue(root)-6) < 1e-9)
	out, err := MetricsTreemap(Metrics{Root: root, MetricsType: "LOC"})
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, `data-cc-topic="showMetrics"`)
	assert.Contains(t, html, `data-cc-topic="openFile"`)
	assert.Contains(t, html, "/src: 6.0")
}

func TestTreeStoreExpand(t *testing.T) {
	s := NewTreeStore("files")
	loads := 0
	dir := s.Add("", Record{Label: "src", Loader: func(context.Context) ([]Record, error) {
		loads++
		return []Record{{Label: "main.cpp", Action: Publish(eventbus.OpenFile{FileID: "f1"})}}, nil
	}})
	s.Add("", Record{Label: "broken", Loader: func(context.Context) ([]Record, error) {
		return nil, errors.New("boom")
	}})

	r, ok := s.Get(dir)
	require.True(t, ok)
	assert.Equal(t, ActionExpand, r.Action.Type)
	assert.Equal(t, "files-1", dir)

	out, err := s.Render("empty")
	require.NoError(t, err)
	assert.NotContains(t, string(out), "main.cpp")

	require.NoError(t, s.Expand(context.Background(), dir))
	out, err = s.Render("empty")
	require.NoError(t, err)
	assert.Contains(t, string(out), "main.cpp")
	assert.Equal(t, 1, loads)

	require.NoError(t, s.Expand(context.Background(), dir))
	out, _ = s.Render("empty")
	assert.NotContains(t, string(out), "main.cpp", "second expand collapses")
	assert.Equal(t, 1, loads)

	assert.Error(t, s.Expand(context.Background(), "files-2"))
	assert.Error(t, s.Expand(context.Background(), "nope"))

	s.Reset()
	out, _ = s.Render("Nothing here")
	assert.Contains(t, string(out), "Nothing here")
}

func TestHistoryTreeMarksCurrent(t *testing.T) {
	tr := history.New(0)
	tr.Add("", "fid=a", "a.cpp", false)
	tr.Add("fid=a", "fid=b", "b.cpp", false)
	out, err := HistoryTree(tr)
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, `class="depth-1 current"`)
	assert.Contains(t, html, `data-cc-type="history"`)
}

func TestPageLayoutHasRegions(t *testing.T) {
	out, err := Page(Layout{
		Header:    []Pane{{ID: "searchbox"}},
		Accordion: []Pane{{ID: "filemanager", Title: "File manager", Selected: true}},
		Center:    []Pane{{ID: "text", Title: "Text", Selected: true}, {ID: "diagram", Title: "Diagram"}},
		Theme:     "dark",
	})
	require.NoError(t, err)
	html := string(out)
	for _, id := range []string{"region-searchbox", "region-filemanager", "region-text", "region-diagram", "region-contextmenu"} {
		assert.Contains(t, html, `id="`+id+`"`)
	}
	assert.Contains(t, html, "theme-dark")
}

func TestErrorBoxEscapes(t *testing.T) {
	got := string(ErrorBox("Diagram", errors.New("<b>down</b>")))
	assert.Contains(t, got, "&lt;b&gt;down&lt;/b&gt;")
}
