package service

import (
	"context"

	"codecompass/internal/backend"
)

func Project(ctx context.Context, r *Registry) (*backend.ProjectClient, error) {
	return Add(ctx, r, backend.ProjectService, backend.ProjectService, Ctor(backend.NewProjectClient))
}

// Language returns the client of a language service such as "CppService".
func Language(ctx context.Context, r *Registry, name string) (*backend.LanguageClient, error) {
	return Add(ctx, r, name, name, Ctor(backend.NewLanguageClient))
}

func Search(ctx context.Context, r *Registry) (*backend.SearchClient, error) {
	return Add(ctx, r, backend.SearchService, backend.SearchService, Ctor(backend.NewSearchClient))
}

func Git(ctx context.Context, r *Registry) (*backend.GitClient, error) {
	return Add(ctx, r, backend.GitService, backend.GitService, Ctor(backend.NewGitClient))
}

func Metrics(ctx context.Context, r *Registry) (*backend.MetricsClient, error) {
	return Add(ctx, r, backend.MetricsService, backend.MetricsService, Ctor(backend.NewMetricsClient))
}

func Plugins(ctx context.Context, r *Registry) (*backend.PluginClient, error) {
	return Add(ctx, r, backend.PluginService, backend.PluginService, Ctor(backend.NewPluginClient))
}

func Workspaces(ctx context.Context, r *Registry) (*backend.WorkspaceClient, error) {
	return Add(ctx, r, backend.WorkspaceService, backend.WorkspaceService, Ctor(backend.NewWorkspaceClient))
}

// LanguageForFile returns the language client serving a file type, if any was registered.
func LanguageForFile(ctx context.Context, r *Registry, fileType string) (*backend.LanguageClient, bool, error) {
	name, ok := r.ServiceForFileType(fileType)
	if !ok {
		return nil, false, nil
	}
	c, err := Language(ctx, r, name)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}
