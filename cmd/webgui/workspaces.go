package main

import (
	"fmt"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"codecompass/internal/service"
)

var workspacesCmd = &cobra.Command{
	Use:   "workspaces",
	Short: "List the workspaces the backend serves",
	RunE:  runWorkspaces,
}

func init() {
	rootCmd.AddCommand(workspacesCmd)
}

func runWorkspaces(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	set := service.NewSet(cfg.BackendURL, &http.Client{Timeout: 10 * time.Second})
	client, err := service.Workspaces(cmd.Context(), set.Global())
	if err != nil {
		return err
	}
	list, err := client.GetWorkspaces(cmd.Context())
	if err != nil {
		return fmt.Errorf("list workspaces from %s: %w", cfg.BackendURL, err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDESCRIPTION")
	for _, ws := range list {
		fmt.Fprintf(w, "%s\t%s\n", ws.ID, ws.Description)
	}
	return w.Flush()
}
