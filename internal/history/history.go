package history

import (
	"strings"
	"sync"
	"time"
)

// DefaultMaxNodes bounds the tree when no limit is given.
const DefaultMaxNodes = 200

// Node is one visited navigation step: the URL state it left (From) and the
// one it arrived at (To).
type Node struct {
	ID       int
	From     string
	To       string
	Label    string
	Time     time.Time
	Parent   *Node
	Children []*Node
}

// Tree is the browsing history. Opening something with the new-session flag
// starts a new root branch, anything else continues below the cursor.
type Tree struct {
	mu       sync.Mutex
	maxNodes int
	nextID   int
	size     int
	roots    []*Node
	byID     map[int]*Node
	cursor   *Node
	// selected child per node, the branch back/forward moves along
	selected map[*Node]*Node
	now      func() time.Time
}

func New(maxNodes int) *Tree {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	return &Tree{
		maxNodes: maxNodes,
		byID:     make(map[int]*Node),
		selected: make(map[*Node]*Node),
		now:      time.Now,
	}
}

// Add records a navigation and moves the cursor to it.
func (t *Tree) Add(from, to, label string, newSession bool) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	n := &Node{
		ID:    t.nextID,
		From:  normalize(from),
		To:    normalize(to),
		Label: strings.TrimSpace(label),
		Time:  t.now(),
	}
	if newSession || t.cursor == nil {
		t.roots = append(t.roots, n)
	} else {
		n.Parent = t.cursor
		t.cursor.Children = append(t.cursor.Children, n)
		t.selected[t.cursor] = n
	}
	t.byID[n.ID] = n
	t.size++
	t.cursor = n
	t.trimLocked()
	return n
}

// Navigate follows a browser back/forward to targetHash. Back is recognised
// when the cursor's From equals the target, forward when a child's To does.
// When neither matches the cursor is left where it is.
func (t *Tree) Navigate(targetHash string) (*Node, bool) {
	target := normalize(targetHash)
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cursor == nil {
		for _, r := range t.roots {
			if r.To == target {
				t.cursor = r
				return r, true
			}
		}
		return nil, false
	}
	if t.cursor.From == target {
		t.cursor = t.cursor.Parent
		return t.cursor, true
	}
	if sel := t.selected[t.cursor]; sel != nil && sel.To == target {
		t.cursor = sel
		return sel, true
	}
	for _, c := range t.cursor.Children {
		if c.To == target {
			t.selected[t.cursor] = c
			t.cursor = c
			return c, true
		}
	}
	return t.cursor, false
}

// Select moves the cursor to a node and makes its branch the selected one.
func (t *Tree) Select(id int) (*Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	for c := n; c.Parent != nil; c = c.Parent {
		t.selected[c.Parent] = c
	}
	t.cursor = n
	return n, true
}

// Current is the cursor node, nil before the first entry or after going back past a root.
func (t *Tree) Current() *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor
}

// Branch returns the selected root-to-leaf path through the cursor.
func (t *Tree) Branch() []*Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cursor == nil {
		return nil
	}
	var up []*Node
	for n := t.cursor; n != nil; n = n.Parent {
		up = append(up, n)
	}
	out := make([]*Node, 0, len(up))
	for i := len(up) - 1; i >= 0; i-- {
		out = append(out, up[i])
	}
	for n := t.selected[t.cursor]; n != nil; n = t.selected[n] {
		out = append(out, n)
	}
	return out
}

func (t *Tree) Roots() []*Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Node(nil), t.roots...)
}

func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}

// Walk visits every node depth-first, root branches in insertion order.
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	t.mu.Lock()
	roots := append([]*Node(nil), t.roots...)
	t.mu.Unlock()
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	for _, r := range roots {
		visit(r, 0)
	}
}

// IsCurrent reports whether n is the cursor node.
func (t *Tree) IsCurrent(n *Node) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return n != nil && n == t.cursor
}

// trimLocked drops the oldest root branches until the tree fits. The branch
// holding the cursor is kept even if it alone exceeds the bound.
func (t *Tree) trimLocked() {
	for t.size > t.maxNodes && len(t.roots) > 1 {
		oldest := t.roots[0]
		if t.contains(oldest, t.cursor) {
			return
		}
		t.roots = t.roots[1:]
		t.forget(oldest)
	}
}

func (t *Tree) contains(root, n *Node) bool {
	for c := n; c != nil; c = c.Parent {
		if c == root {
			return true
		}
	}
	return false
}

func (t *Tree) forget(n *Node) {
	delete(t.byID, n.ID)
	delete(t.selected, n)
	t.size--
	for _, c := range n.Children {
		t.forget(c)
	}
}

func normalize(hash string) string {
	return strings.TrimPrefix(strings.TrimSpace(hash), "#")
}
