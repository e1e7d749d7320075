package backend

import "context"

// PluginClient lists the plugins loaded by the backend. Not bound to a workspace.
type PluginClient struct {
	getPlugins *unary[Empty, []string]
}

func NewPluginClient(t Transport) *PluginClient {
	return &PluginClient{getPlugins: newUnary[Empty, []string](t, "getPlugins")}
}

func (c *PluginClient) GetPlugins(ctx context.Context) ([]string, error) {
	out, err := c.getPlugins.call(ctx, &Empty{})
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// WorkspaceClient lists the indexed workspaces. Not bound to a workspace.
type WorkspaceClient struct {
	getWorkspaces *unary[Empty, []Workspace]
}

func NewWorkspaceClient(t Transport) *WorkspaceClient {
	return &WorkspaceClient{getWorkspaces: newUnary[Empty, []Workspace](t, "getWorkspaces")}
}

func (c *WorkspaceClient) GetWorkspaces(ctx context.Context) ([]Workspace, error) {
	out, err := c.getWorkspaces.call(ctx, &Empty{})
	if err != nil {
		return nil, err
	}
	return *out, nil
}
