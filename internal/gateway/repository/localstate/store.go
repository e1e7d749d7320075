package localstate

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// State is the per-client blob the original GUI kept in browser storage.
// It has no schema version; unknown fields are dropped on read.
type State struct {
	Workspace string `json:"workspace,omitempty"`
	FileID    string `json:"fileId,omitempty"`
	Search    Search `json:"search,omitempty"`
	Center    string `json:"center,omitempty"`
	Accordion string `json:"accordion,omitempty"`
	Theme     string `json:"theme,omitempty"`
}

type Search struct {
	Text       string `json:"text,omitempty"`
	Type       string `json:"type,omitempty"`
	FileFilter string `json:"fileFilter,omitempty"`
	DirFilter  string `json:"dirFilter,omitempty"`
}

// Store persists State per client id. Load returns a zero State for unknown clients.
type Store interface {
	Load(ctx context.Context, clientID string) (State, error)
	Save(ctx context.Context, clientID string, st State) error
}

var ErrClientRequired = errors.New("client id is required")

func normalizeClientID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrClientRequired
	}
	return id, nil
}

func encode(st State) ([]byte, error) {
	return json.Marshal(st)
}

func decode(data []byte) (State, error) {
	var st State
	if len(data) == 0 {
		return st, nil
	}
	err := json.Unmarshal(data, &st)
	return st, err
}
