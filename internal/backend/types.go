package backend

// Position is a 1-based line/column pair inside a file.
type Position struct {
	Line   int32 `json:"line"`
	Column int32 `json:"column"`
}

// Range is a span between two positions.
type Range struct {
	StartPos Position `json:"startpos"`
	EndPos   Position `json:"endpos"`
}

// Contains reports whether line is covered by the range.
func (r Range) Contains(line int32) bool {
	return line >= r.StartPos.Line && line <= r.EndPos.Line
}

// FileRange is a range bound to a file id.
type FileRange struct {
	File  string `json:"file"`
	Range Range  `json:"range"`
}

// FileInfo describes a file or directory known to the backend.
type FileInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Path        string `json:"path"`
	IsDirectory bool   `json:"isDirectory"`
	ParseStatus int32  `json:"parseStatus"`
}

// AstNodeInfo describes a syntactic element addressable by an opaque id.
type AstNodeInfo struct {
	ID           string    `json:"id"`
	AstNodeValue string    `json:"astNodeValue"`
	SymbolType   string    `json:"symbolType"`
	AstNodeType  string    `json:"astNodeType"`
	Range        FileRange `json:"range"`
	Tags         []string  `json:"tags,omitempty"`
}

type DiagramType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ReferenceType struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int32  `json:"count"`
}

type SearchType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SearchParams mirrors the search box and its filters.
type SearchParams struct {
	Text       string `json:"text"`
	Type       string `json:"type"`
	FileFilter string `json:"fileFilter,omitempty"`
	DirFilter  string `json:"dirFilter,omitempty"`
	PageSize   int32  `json:"pageSize,omitempty"`
	PageNumber int32  `json:"pageNumber,omitempty"`
}

type LineMatch struct {
	Range Range  `json:"range"`
	Text  string `json:"text"`
}

type SearchResultEntry struct {
	File  FileInfo    `json:"finfo"`
	Lines []LineMatch `json:"matchingLines"`
}

type SearchResult struct {
	TotalFiles int64               `json:"totalFiles"`
	Results    []SearchResultEntry `json:"results"`
}

type Repository struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Head string `json:"head"`
}

// RepositoryByPath tells whether a project path lives inside a git repository.
type RepositoryByPath struct {
	IsInRepository bool   `json:"isInRepository"`
	RepoID         string `json:"repoId"`
	RepoPath       string `json:"repoPath"`
	CommitID       string `json:"commitId"`
}

type Reference struct {
	Name   string `json:"name"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
}

type BlameHunk struct {
	StartLine int32  `json:"finalStartLineNumber"`
	LineCount int32  `json:"linesInHunk"`
	CommitID  string `json:"finalCommitId"`
	Author    string `json:"finalSignatureName"`
	Email     string `json:"finalSignatureEmail"`
	Time      int64  `json:"finalCommitTime"`
	Summary   string `json:"finalCommitMessage"`
}

type DiffLine struct {
	Origin  string `json:"origin"`
	Content string `json:"content"`
	OldLine int32  `json:"oldLine"`
	NewLine int32  `json:"newLine"`
}

type DiffHunk struct {
	Header string     `json:"header"`
	Lines  []DiffLine `json:"lines"`
}

type FileDiff struct {
	Path    string     `json:"path"`
	OldPath string     `json:"oldPath,omitempty"`
	Status  string     `json:"status"`
	Hunks   []DiffHunk `json:"hunks"`
}

type Commit struct {
	ID      string     `json:"oid"`
	Message string     `json:"message"`
	Summary string     `json:"summary"`
	Author  string     `json:"author"`
	Time    int64      `json:"time"`
	Parents []string   `json:"parentOids"`
	Diff    []FileDiff `json:"diff"`
}

// MetricsNode is one node of a metrics tree (directory or file).
type MetricsNode struct {
	Name     string        `json:"name"`
	Path     string        `json:"path"`
	FileID   string        `json:"fileId,omitempty"`
	Value    float64       `json:"value"`
	Children []MetricsNode `json:"children,omitempty"`
}

type MetricsTypeName struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type Workspace struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}
