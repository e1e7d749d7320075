package eventbus

import "codecompass/internal/backend"

// Topic names one kind of cross-module notification.
type Topic string

const (
	TopicOpenFile          Topic = "openFile"
	TopicShowDiagram       Topic = "showDiagram"
	TopicRunSearch         Topic = "runSearch"
	TopicShowInfoTree      Topic = "showInfoTree"
	TopicShowDocumentation Topic = "showDocumentation"
	TopicShowBlame         Topic = "showBlame"
	TopicShowCommit        Topic = "showCommit"
	TopicShowMetrics       Topic = "showMetrics"
	TopicSelectCenter      Topic = "selectCenter"
	TopicSelectAccordion   Topic = "selectAccordion"
	TopicSetTheme          Topic = "setTheme"
)

// Event is one variant per topic. The unexported method keeps the set closed.
type Event interface {
	Topic() Topic
	event()
}

// OpenFile asks the center pane to show a file, optionally selecting a range.
type OpenFile struct {
	FileID     string         `json:"fileId"`
	Selection  *backend.Range `json:"selection,omitempty"`
	NewSession bool           `json:"newSession,omitempty"`
}

type ShowDiagram struct {
	Handler     string `json:"handler"`
	DiagramType string `json:"diagramType"`
	NodeID      string `json:"nodeId"`
	FileID      string `json:"fileId,omitempty"`
}

type RunSearch struct {
	Text       string `json:"text"`
	Type       string `json:"type"`
	FileFilter string `json:"fileFilter,omitempty"`
	DirFilter  string `json:"dirFilter,omitempty"`
	Page       int32  `json:"page,omitempty"`
}

type ShowInfoTree struct {
	Handler string `json:"handler"`
	NodeID  string `json:"nodeId"`
	FileID  string `json:"fileId,omitempty"`
}

type ShowDocumentation struct {
	Handler string `json:"handler"`
	NodeID  string `json:"nodeId"`
}

type ShowBlame struct {
	FileID string `json:"fileId"`
	RepoID string `json:"repoId,omitempty"`
}

type ShowCommit struct {
	RepoID   string `json:"repoId"`
	CommitID string `json:"commitId"`
	BranchID string `json:"branchId,omitempty"`
}

type ShowMetrics struct {
	FileID      string `json:"fileId"`
	MetricsType string `json:"metricsType,omitempty"`
}

type SelectCenter struct {
	ModuleID string `json:"moduleId"`
}

type SelectAccordion struct {
	ModuleID string `json:"moduleId"`
}

type SetTheme struct {
	Theme string `json:"theme"`
}

func (OpenFile) Topic() Topic          { return TopicOpenFile }
func (ShowDiagram) Topic() Topic       { return TopicShowDiagram }
func (RunSearch) Topic() Topic         { return TopicRunSearch }
func (ShowInfoTree) Topic() Topic      { return TopicShowInfoTree }
func (ShowDocumentation) Topic() Topic { return TopicShowDocumentation }
func (ShowBlame) Topic() Topic         { return TopicShowBlame }
func (ShowCommit) Topic() Topic        { return TopicShowCommit }
func (ShowMetrics) Topic() Topic       { return TopicShowMetrics }
func (SelectCenter) Topic() Topic      { return TopicSelectCenter }
func (SelectAccordion) Topic() Topic   { return TopicSelectAccordion }
func (SetTheme) Topic() Topic          { return TopicSetTheme }

func (OpenFile) event()          {}
func (ShowDiagram) event()       {}
func (RunSearch) event()         {}
func (ShowInfoTree) event()      {}
func (ShowDocumentation) event() {}
func (ShowBlame) event()         {}
func (ShowCommit) event()        {}
func (ShowMetrics) event()       {}
func (SelectCenter) event()      {}
func (SelectAccordion) event()   {}
func (SetTheme) event()          {}
