package views

import (
	"context"
	"html/template"
	"log"
	"sync"

	"codecompass/internal/backend"
	"codecompass/internal/diagram"
	"codecompass/internal/eventbus"
	"codecompass/internal/generation"
	"codecompass/internal/history"
	"codecompass/internal/module"
	"codecompass/internal/render"
	"codecompass/internal/service"
	"codecompass/internal/urlstate"
)

// Sink receives what the views produce for the browser.
type Sink interface {
	// Region replaces the content of one page region.
	Region(id string, html template.HTML)
	// Select marks pane id as active within group ("center", "accordion", "theme").
	Select(group, id string)
	Notify(kind, message string)
}

// Host is everything a view may use. One Host per session.
type Host struct {
	Services *service.Registry
	Global   *service.Registry
	Modules  *module.Registry
	Bus      *eventbus.Bus
	State    *urlstate.Synchronizer
	History  *history.Tree
	Diagrams *diagram.Viewer
	Exporter *diagram.Exporter
	Sink     Sink
	File     *urlstate.Dependent[backend.FileInfo]
	Theme    func() string
	Themes   []string

	// Async runs view loads on their own goroutines. Publish then returns
	// once the URL state and history moved, before the backend answers.
	Async bool
	loads sync.WaitGroup
}

func (h *Host) run(fn func()) {
	if !h.Async {
		fn()
		return
	}
	h.loads.Add(1)
	go func() {
		defer h.loads.Done()
		fn()
	}()
}

// Wait blocks until the running view loads are done.
func (h *Host) Wait() { h.loads.Wait() }

// Expander is implemented by views whose tree nodes load lazily.
type Expander interface {
	Expand(ctx context.Context, nodeID string) error
}

// Refresher views redraw themselves from session state, e.g. the history.
type Refresher interface {
	Refresh(ctx context.Context)
}

// base holds the pieces every region view shares.
type base struct {
	id    string
	title string
	host  *Host
	gen   generation.Tracker

	mu   sync.Mutex
	html template.HTML
}

func newBase(h *Host, id, title string) base {
	return base{id: id, title: title, host: h}
}

func (b *base) ID() string    { return b.id }
func (b *base) Title() string { return b.title }

// Render returns the last content shown in the region.
func (b *base) Render(context.Context) (template.HTML, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.html, nil
}

// load takes the next ticket in event order and runs fn through the host.
func (b *base) load(ctx context.Context, fn func(ctx context.Context, k generation.Ticket)) {
	k, ctx := b.gen.Begin(ctx)
	b.host.run(func() { fn(ctx, k) })
}

// show writes html when k is still the latest load. Late results are dropped.
func (b *base) show(k generation.Ticket, html template.HTML) bool {
	err := k.Commit(func() {
		b.mu.Lock()
		b.html = html
		b.mu.Unlock()
		b.host.Sink.Region(b.id, html)
	})
	return err == nil
}

// fail shows an error box in the region unless the load was superseded.
func (b *base) fail(k generation.Ticket, title string, err error) {
	log.Printf("views: %s: %s: %v", b.id, title, err)
	b.show(k, render.ErrorBox(title, err))
}

// set replaces the region without a generation, for views driven by one caller.
func (b *base) set(html template.HTML) {
	b.mu.Lock()
	b.html = html
	b.mu.Unlock()
	b.host.Sink.Region(b.id, html)
}
