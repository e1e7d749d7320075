package session

import (
	"context"
	"log"

	"codecompass/internal/eventbus"
	localstate "codecompass/internal/gateway/repository/localstate"
)

func (s *Session) loadLocal(ctx context.Context) {
	if s.deps.LocalState == nil || s.deps.ClientID == "" {
		return
	}
	st, err := s.deps.LocalState.Load(ctx, s.deps.ClientID)
	if err != nil {
		log.Printf("session: load local state of %s: %v", s.deps.ClientID, err)
		return
	}
	s.local = st
}

func (s *Session) localState() localstate.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local
}

// updateLocal applies fn to the client state and saves it. Save failures are
// logged; the in-memory copy stays updated.
func (s *Session) updateLocal(ctx context.Context, fn func(*localstate.State)) {
	s.mu.Lock()
	fn(&s.local)
	st := s.local
	s.mu.Unlock()

	if s.deps.LocalState == nil || s.deps.ClientID == "" {
		return
	}
	if err := s.deps.LocalState.Save(ctx, s.deps.ClientID, st); err != nil {
		log.Printf("session: save local state of %s: %v", s.deps.ClientID, err)
	}
}

func (s *Session) subscribeLocal() {
	s.cancel = append(s.cancel,
		eventbus.On(s.bus, func(ctx context.Context, e eventbus.OpenFile) {
			s.updateLocal(ctx, func(st *localstate.State) {
				st.FileID = e.FileID
				st.Center = "text"
			})
		}),
		eventbus.On(s.bus, func(ctx context.Context, e eventbus.RunSearch) {
			s.updateLocal(ctx, func(st *localstate.State) {
				st.Search = localstate.Search{Text: e.Text, Type: e.Type, FileFilter: e.FileFilter, DirFilter: e.DirFilter}
			})
		}),
		eventbus.On(s.bus, func(ctx context.Context, e eventbus.SelectCenter) {
			s.updateLocal(ctx, func(st *localstate.State) { st.Center = e.ModuleID })
		}),
		eventbus.On(s.bus, func(ctx context.Context, e eventbus.SelectAccordion) {
			s.updateLocal(ctx, func(st *localstate.State) { st.Accordion = e.ModuleID })
		}),
		eventbus.On(s.bus, func(ctx context.Context, e eventbus.SetTheme) {
			s.mu.Lock()
			s.theme = e.Theme
			s.mu.Unlock()
			s.updateLocal(ctx, func(st *localstate.State) { st.Theme = e.Theme })
		}),
	)
}
