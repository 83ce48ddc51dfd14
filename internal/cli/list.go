package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/agentx-labs/uikit/internal/logging"
	"github.com/agentx-labs/uikit/internal/project"
	"github.com/agentx-labs/uikit/internal/registry"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List components added to the project",
	Long:  `List the components recorded in components.json, with their registry type and description.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// listEntry represents a recorded component for display.
type listEntry struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Available   bool   `json:"available"`
}

func runList(cmd *cobra.Command, args []string) error {
	root, err := projectDir()
	if err != nil {
		return err
	}
	cfg, err := project.Load(root)
	if err != nil {
		return err
	}
	if len(cfg.Components) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No components added yet.")
		return nil
	}

	client, err := newOrchestrator(cmd).Client(cfg)
	if err != nil {
		return err
	}
	log := logging.FromContext(cmd.Context())

	entries := make([]listEntry, 0, len(cfg.Components))
	for _, name := range cfg.Components {
		e := listEntry{Name: name}
		it, err := client.Fetch(cmd.Context(), registry.ParseRef(name, root))
		if err != nil {
			log.Debug("component unavailable", "name", name, "err", err)
		} else {
			e.Type, e.Description, e.Available = it.Kind(), it.Description, true
		}
		entries = append(entries, e)
	}

	if listJSON {
		return printJSON(cmd, entries)
	}
	return printListTable(cmd, entries)
}

func printListTable(cmd *cobra.Command, entries []listEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tDESCRIPTION")
	for _, e := range entries {
		kind, desc := e.Type, truncate(e.Description, 60)
		if !e.Available {
			kind, desc = "-", "(not in registry)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, kind, desc)
	}
	return w.Flush()
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// truncate shortens s to n terminal columns.
func truncate(s string, n int) string {
	return runewidth.Truncate(s, n, "...")
}
