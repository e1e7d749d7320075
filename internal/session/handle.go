package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"codecompass/internal/backend"
	"codecompass/internal/eventbus"
	"codecompass/internal/module"
	"codecompass/internal/render"
	"codecompass/internal/service"
	"codecompass/internal/views"
)

// Message types sent by the browser bridge.
const (
	MsgPublish     = "publish"
	MsgHashChange  = "hashchange"
	MsgExpand      = "expand"
	MsgContextMenu = "contextmenu"
	MsgDrillDown   = "drilldown"
	MsgHover       = "hover"
	MsgHoverEnd    = "hoverend"
	MsgExport      = "export"
	MsgHistory     = "history"
	MsgSuggest     = "suggest"
)

var ErrUnsupported = errors.New("session: unsupported message")

// Message is one inbound browser message.
type Message struct {
	Type     string            `json:"type"`
	Topic    string            `json:"topic,omitempty"`
	Payload  json.RawMessage   `json:"payload,omitempty"`
	Hash     string            `json:"hash,omitempty"`
	Region   string            `json:"region,omitempty"`
	NodeID   string            `json:"nodeId,omitempty"`
	Handler  string            `json:"handler,omitempty"`
	FileID   string            `json:"fileId,omitempty"`
	Position *backend.Position `json:"position,omitempty"`
}

// Handle dispatches one browser message.
func (s *Session) Handle(ctx context.Context, msg Message) error {
	switch strings.ToLower(strings.TrimSpace(msg.Type)) {
	case MsgPublish:
		e, err := eventbus.Decode(msg.Topic, msg.Payload)
		if err != nil {
			return err
		}
		s.bus.Publish(ctx, e)
		return nil
	case MsgHashChange:
		s.HashChanged(ctx, msg.Hash)
		return nil
	case MsgExpand:
		entry, ok := s.modules.Get(msg.Region)
		if !ok {
			return fmt.Errorf("expand %s: %w", msg.Region, module.ErrNotFound)
		}
		ex, ok := entry.Module.(views.Expander)
		if !ok {
			return fmt.Errorf("expand %s: %w", msg.Region, ErrUnsupported)
		}
		return ex.Expand(ctx, msg.NodeID)
	case MsgContextMenu:
		return s.ContextMenu(ctx, msg)
	case MsgDrillDown:
		return s.views.Diagram.DrillDown(ctx, msg.Handler, msg.NodeID)
	case MsgHover:
		s.views.Diagram.Hover(ctx, msg.NodeID)
		return nil
	case MsgHoverEnd:
		s.diagrams.CancelHover()
		return nil
	case MsgExport:
		url, err := s.views.Diagram.Export(ctx)
		if err != nil {
			return err
		}
		s.deps.Sink.Notify("export", url)
		return nil
	case MsgHistory:
		id, err := strconv.Atoi(msg.NodeID)
		if err != nil {
			return fmt.Errorf("history node %q: %w", msg.NodeID, err)
		}
		return s.GoTo(ctx, id)
	case MsgSuggest:
		if s.views.SearchBox == nil {
			return fmt.Errorf("suggest: %w", ErrUnsupported)
		}
		var q eventbus.RunSearch
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &q); err != nil {
				return fmt.Errorf("suggest payload: %w", err)
			}
		}
		return s.views.SearchBox.Suggest(ctx, q)
	}
	return fmt.Errorf("%w: %q", ErrUnsupported, msg.Type)
}

// ContextMenu collects the menu of a file tree node or of a text position
// and writes it into the context menu region.
func (s *Session) ContextMenu(ctx context.Context, msg Message) error {
	var (
		target module.Target
		filter module.Filter
	)
	if msg.Region == views.FileManagerID {
		t, ok := s.views.FileManager.Target(msg.NodeID)
		if !ok {
			return nil
		}
		target = t
		filter = module.Filter{Type: module.TypeContextMenu, FileType: t.FileType}
	} else {
		target = module.Target{FileID: msg.FileID, Position: msg.Position}
		if target.FileID == "" {
			if info, ok, err := s.host.File.Get(ctx); err == nil && ok {
				target.FileID = info.ID
				target.FileType = info.Type
			}
		} else if info, err := s.fileInfo(ctx, target.FileID); err == nil {
			target.FileType = info.Type
		}
		filter = module.Filter{Type: module.TypeTextContextMenu, FileType: target.FileType}
	}

	var items []render.MenuItem
	for _, e := range s.modules.Modules(filter) {
		c, ok := e.Module.(module.ContextMenuContributor)
		if !ok {
			continue
		}
		got, err := c.ContextMenu(ctx, target)
		if err != nil {
			log.Printf("session: context menu of %s: %v", e.ID(), err)
		}
		for _, it := range got {
			items = append(items, render.MenuItem{Label: it.Label, Action: render.Publish(it.Event)})
		}
	}
	out, err := render.Menu(items)
	if err != nil {
		return err
	}
	s.deps.Sink.Region("contextmenu", out)
	return nil
}

func (s *Session) fileInfo(ctx context.Context, id string) (backend.FileInfo, error) {
	if info, ok, err := s.host.File.Get(ctx); err == nil && ok && info.ID == id {
		return info, nil
	}
	project, err := service.Project(ctx, s.services)
	if err != nil {
		return backend.FileInfo{}, err
	}
	return project.GetFileInfo(ctx, id)
}
