package render

import (
	"context"
	"fmt"
	"html/template"
	"sync"
)

// Record is one node of a rendered tree.
type Record struct {
	ID       string
	ParentID string
	Label    string
	Value    string
	Class    string
	Action   Action
	// Loader fetches children on expand. Nil means leaf or already loaded.
	Loader   func(ctx context.Context) ([]Record, error)
	Expanded bool
}

func (r Record) Expandable() bool { return r.Loader != nil || r.Expanded }

// TreeStore maps synthetic ids to records. It is rebuilt on every repopulate,
// ids are only meaningful until the next Reset.
type TreeStore struct {
	region string

	mu       sync.Mutex
	seq      int
	records  map[string]*Record
	children map[string][]string
}

func NewTreeStore(region string) *TreeStore {
	s := &TreeStore{region: region}
	s.Reset()
	return s
}

func (s *TreeStore) Region() string { return s.region }

func (s *TreeStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = 0
	s.records = make(map[string]*Record)
	s.children = make(map[string][]string)
}

// Add stores r under parentID ("" for a root) and returns its new id.
func (s *TreeStore) Add(parentID string, r Record) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(parentID, r)
}

func (s *TreeStore) addLocked(parentID string, r Record) string {
	s.seq++
	r.ID = fmt.Sprintf("%s-%d", s.region, s.seq)
	r.ParentID = parentID
	if r.Loader != nil && r.Action.IsZero() {
		r.Action = Expand(s.region, r.ID)
	}
	s.records[r.ID] = &r
	s.children[parentID] = append(s.children[parentID], r.ID)
	return r.ID
}

func (s *TreeStore) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Expand runs the node's loader once and stores the children. Expanding a
// loaded node toggles it.
func (s *TreeStore) Expand(ctx context.Context, id string) error {
	s.mu.Lock()
	r, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("tree %s: unknown node %s", s.region, id)
	}
	loader := r.Loader
	if loader == nil {
		r.Expanded = !r.Expanded
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	kids, err := loader(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A Reset while loading makes this node stale.
	if cur, ok := s.records[id]; !ok || cur != r {
		return nil
	}
	r.Loader = nil
	r.Expanded = true
	for _, k := range kids {
		s.addLocked(id, k)
	}
	return nil
}

type treeView struct {
	Region string
	Nodes  []treeNode
	Empty  string
}

type treeNode struct {
	Record
	Children []treeNode
}

func (s *TreeStore) build(parentID string) []treeNode {
	ids := s.children[parentID]
	out := make([]treeNode, 0, len(ids))
	for _, id := range ids {
		r := s.records[id]
		n := treeNode{Record: *r}
		if r.Expanded {
			n.Children = s.build(id)
		}
		out = append(out, n)
	}
	return out
}

// Render draws the whole tree. empty is shown when there are no roots.
func (s *TreeStore) Render(empty string) (template.HTML, error) {
	s.mu.Lock()
	v := treeView{Region: s.region, Nodes: s.build(""), Empty: empty}
	s.mu.Unlock()
	return execute("tree", v)
}

const treeTemplates = `
{{define "tree"}}<div class="cc-tree" data-region="{{.Region}}">{{if .Nodes}}<ul>{{template "treenodes" .Nodes}}</ul>{{else}}<p class="cc-empty">{{.Empty}}</p>{{end}}</div>{{end}}
{{define "treenodes"}}{{range .}}<li class="cc-node{{if .Expandable}} expandable{{end}}{{if .Expanded}} expanded{{end}}{{with .Class}} {{.}}{{end}}" id="{{.ID}}"><span class="cc-label" {{action .Action}}>{{.Label}}</span>{{with .Value}} <span class="cc-value">{{.}}</span>{{end}}{{if .Children}}<ul>{{template "treenodes" .Children}}</ul>{{end}}</li>{{end}}{{end}}
`
