package backend

import (
	"context"
	"fmt"
	"strings"
)

type FileIDRequest struct {
	FileID string `json:"fileId"`
}

type PathRequest struct {
	Path string `json:"path"`
}

// ProjectClient reaches the ProjectService of one workspace.
type ProjectClient struct {
	getFileInfo       *unary[FileIDRequest, FileInfo]
	getFileInfoByPath *unary[PathRequest, FileInfo]
	getFileContent    *unary[FileIDRequest, string]
	getRootFiles      *unary[Empty, []FileInfo]
	getChildFiles     *unary[FileIDRequest, []FileInfo]
	getParentFiles    *unary[FileIDRequest, []FileInfo]
}

func NewProjectClient(t Transport) *ProjectClient {
	return &ProjectClient{
		getFileInfo:       newUnary[FileIDRequest, FileInfo](t, "getFileInfo"),
		getFileInfoByPath: newUnary[PathRequest, FileInfo](t, "getFileInfoByPath"),
		getFileContent:    newUnary[FileIDRequest, string](t, "getFileContent"),
		getRootFiles:      newUnary[Empty, []FileInfo](t, "getRootFiles"),
		getChildFiles:     newUnary[FileIDRequest, []FileInfo](t, "getChildFiles"),
		getParentFiles:    newUnary[FileIDRequest, []FileInfo](t, "getParentFiles"),
	}
}

func (c *ProjectClient) GetFileInfo(ctx context.Context, fileID string) (FileInfo, error) {
	id := strings.TrimSpace(fileID)
	if id == "" {
		return FileInfo{}, fmt.Errorf("file_id is required")
	}
	out, err := c.getFileInfo.call(ctx, &FileIDRequest{FileID: id})
	if err != nil {
		return FileInfo{}, err
	}
	return *out, nil
}

func (c *ProjectClient) GetFileInfoByPath(ctx context.Context, path string) (FileInfo, error) {
	out, err := c.getFileInfoByPath.call(ctx, &PathRequest{Path: strings.TrimSpace(path)})
	if err != nil {
		return FileInfo{}, err
	}
	return *out, nil
}

func (c *ProjectClient) GetFileContent(ctx context.Context, fileID string) (string, error) {
	out, err := c.getFileContent.call(ctx, &FileIDRequest{FileID: strings.TrimSpace(fileID)})
	if err != nil {
		return "", err
	}
	return *out, nil
}

func (c *ProjectClient) GetRootFiles(ctx context.Context) ([]FileInfo, error) {
	out, err := c.getRootFiles.call(ctx, &Empty{})
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (c *ProjectClient) GetChildFiles(ctx context.Context, fileID string) ([]FileInfo, error) {
	out, err := c.getChildFiles.call(ctx, &FileIDRequest{FileID: strings.TrimSpace(fileID)})
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// GetParentFiles returns the ancestors of a file ordered from the root down.
func (c *ProjectClient) GetParentFiles(ctx context.Context, fileID string) ([]FileInfo, error) {
	out, err := c.getParentFiles.call(ctx, &FileIDRequest{FileID: strings.TrimSpace(fileID)})
	if err != nil {
		return nil, err
	}
	return *out, nil
}
