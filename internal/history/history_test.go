package history

import (
	"testing"
)

func TestAddBuildsBranches(t *testing.T) {
	tr := New(0)
	a := tr.Add("", "fid=a", "a.cpp", false)
	b := tr.Add("fid=a", "fid=b", "b.cpp", false)
	c := tr.Add("fid=b", "fid=c", "c.cpp", true)

	if b.Parent != a {
		t.Fatalf("b should be a child of a")
	}
	if c.Parent != nil {
		t.Fatalf("new session must start a root branch")
	}
	if got := len(tr.Roots()); got != 2 {
		t.Fatalf("roots = %d, want 2", got)
	}
	if tr.Current() != c {
		t.Fatalf("cursor should be on the last added node")
	}
}

func TestNavigateBackMovesToParent(t *testing.T) {
	tr := New(0)
	a := tr.Add("", "fid=a", "a", false)
	b := tr.Add("fid=a", "fid=b", "b", false)

	n, ok := tr.Navigate("#fid=a")
	if !ok || n != a {
		t.Fatalf("back: got %v ok=%v, want node a", n, ok)
	}
	n, ok = tr.Navigate("fid=b")
	if !ok || n != b {
		t.Fatalf("forward: got %v ok=%v, want node b", n, ok)
	}
}

func TestNavigateWithoutMatchLeavesCursor(t *testing.T) {
	tr := New(0)
	tr.Add("", "fid=a", "a", false)
	b := tr.Add("fid=a", "fid=b", "b", false)

	n, ok := tr.Navigate("fid=zzz")
	if ok {
		t.Fatalf("unexpected match")
	}
	if n != b || tr.Current() != b {
		t.Fatalf("cursor moved on an unmatched hash")
	}
}

func TestForwardPrefersSelectedChild(t *testing.T) {
	tr := New(0)
	a := tr.Add("", "fid=a", "a", false)
	tr.Add("fid=a", "fid=b", "b", false)
	tr.Navigate("fid=a")
	c := tr.Add("fid=a", "fid=b", "b again", false)
	tr.Navigate("fid=a")

	if len(a.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(a.Children))
	}
	n, _ := tr.Navigate("fid=b")
	if n != c {
		t.Fatalf("forward should follow the most recently selected branch")
	}
}

func TestSelectAndBranch(t *testing.T) {
	tr := New(0)
	a := tr.Add("", "1", "1", false)
	b := tr.Add("1", "2", "2", false)
	tr.Add("2", "3", "3", false)

	if _, ok := tr.Select(b.ID); !ok {
		t.Fatalf("select failed")
	}
	br := tr.Branch()
	if len(br) != 3 || br[0] != a || br[1] != b {
		t.Fatalf("branch = %v", labels(br))
	}
	if _, ok := tr.Select(999); ok {
		t.Fatalf("unknown id selected")
	}
}

func TestBoundDropsOldestRoot(t *testing.T) {
	tr := New(3)
	tr.Add("", "a", "a", false)
	tr.Add("a", "b", "b", false)
	tr.Add("", "c", "c", true)
	tr.Add("c", "d", "d", false)

	if got := tr.Len(); got != 2 {
		t.Fatalf("len = %d, want 2", got)
	}
	roots := tr.Roots()
	if len(roots) != 1 || roots[0].To != "c" {
		t.Fatalf("roots = %v", labels(roots))
	}
}

func labels(ns []*Node) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Label
	}
	return out
}
