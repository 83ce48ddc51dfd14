package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/uikit/internal/manifest"
	"github.com/agentx-labs/uikit/internal/project"
	"github.com/agentx-labs/uikit/internal/registry"
)

// defaultStyle is used to browse registries outside a project.
const defaultStyle = "new-york-v4"

var viewCmd = &cobra.Command{
	Use:   "view <items...>",
	Short: "Print registry items as JSON",
	Long: `Fetch registry items and print them as JSON, file contents included.
Inside a project the registries from components.json are used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	client, root, err := registryClient(cmd)
	if err != nil {
		return err
	}

	items := make([]*manifest.Item, 0, len(args))
	for _, name := range args {
		it, err := client.Fetch(cmd.Context(), registry.ParseRef(name, root))
		if err != nil {
			return err
		}
		items = append(items, it)
	}

	var v any = items
	if len(items) == 1 {
		v = items[0]
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// registryClient returns a client for the project in --cwd. Without a
// components.json only the default registry is reachable.
func registryClient(cmd *cobra.Command) (*registry.Client, string, error) {
	root, err := projectDir()
	if err != nil {
		return nil, "", err
	}
	cfg, err := project.Load(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = &project.Config{Style: defaultStyle}
	case err != nil:
		return nil, "", err
	}
	client, err := newOrchestrator(cmd).Client(cfg)
	if err != nil {
		return nil, "", err
	}
	return client, root, nil
}
