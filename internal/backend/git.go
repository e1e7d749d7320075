package backend

import (
	"context"
	"strings"
)

type RepositoryRequest struct {
	RepoID string `json:"repoId"`
}

type BlameRequest struct {
	RepoID   string `json:"repoId"`
	CommitID string `json:"hexOid"`
	Path     string `json:"path"`
}

type CommitRequest struct {
	RepoID   string `json:"repoId"`
	CommitID string `json:"hexOid"`
}

type GitClient struct {
	getRepositoryList   *unary[Empty, []Repository]
	getRepositoryByPath *unary[PathRequest, RepositoryByPath]
	getBlameInfo        *unary[BlameRequest, []BlameHunk]
	getCommit           *unary[CommitRequest, Commit]
	getReferenceList    *unary[RepositoryRequest, []Reference]
}

func NewGitClient(t Transport) *GitClient {
	return &GitClient{
		getRepositoryList:   newUnary[Empty, []Repository](t, "getRepositoryList"),
		getRepositoryByPath: newUnary[PathRequest, RepositoryByPath](t, "getRepositoryByProjectPath"),
		getBlameInfo:        newUnary[BlameRequest, []BlameHunk](t, "getBlameInfo"),
		getCommit:           newUnary[CommitRequest, Commit](t, "getCommit"),
		getReferenceList:    newUnary[RepositoryRequest, []Reference](t, "getReferenceList"),
	}
}

func (c *GitClient) GetRepositoryList(ctx context.Context) ([]Repository, error) {
	out, err := c.getRepositoryList.call(ctx, &Empty{})
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (c *GitClient) GetRepositoryByProjectPath(ctx context.Context, path string) (RepositoryByPath, error) {
	out, err := c.getRepositoryByPath.call(ctx, &PathRequest{Path: strings.TrimSpace(path)})
	if err != nil {
		return RepositoryByPath{}, err
	}
	return *out, nil
}

func (c *GitClient) GetBlameInfo(ctx context.Context, repoID, commitID, path string) ([]BlameHunk, error) {
	out, err := c.getBlameInfo.call(ctx, &BlameRequest{
		RepoID:   strings.TrimSpace(repoID),
		CommitID: strings.TrimSpace(commitID),
		Path:     strings.TrimSpace(path),
	})
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (c *GitClient) GetCommit(ctx context.Context, repoID, commitID string) (Commit, error) {
	out, err := c.getCommit.call(ctx, &CommitRequest{RepoID: strings.TrimSpace(repoID), CommitID: strings.TrimSpace(commitID)})
	if err != nil {
		return Commit{}, err
	}
	return *out, nil
}

// GetReferenceList returns the branches and tags of a repository.
func (c *GitClient) GetReferenceList(ctx context.Context, repoID string) ([]Reference, error) {
	out, err := c.getReferenceList.call(ctx, &RepositoryRequest{RepoID: strings.TrimSpace(repoID)})
	if err != nil {
		return nil, err
	}
	return *out, nil
}
