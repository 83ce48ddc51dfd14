package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove <items...>",
	Aliases: []string{"rm"},
	Short:   "Remove added components from your project",
	Long: `Delete the files of the named components and drop them from components.json.
Registry dependencies and npm packages are left in place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	root, err := projectDir()
	if err != nil {
		return err
	}
	removed, err := newOrchestrator(cmd).Remove(cmd.Context(), root, args)
	out := cmd.OutOrStdout()
	for _, r := range removed {
		printSuccess(out, "Removed %s", styleValue.Render(r.Name))
		for _, path := range r.Deleted {
			fmt.Fprintf(out, "    %s %s\n", styleDim.Render("deleted    "), relPath(root, path))
		}
		for _, path := range r.Absent {
			fmt.Fprintf(out, "    %s %s\n", styleDim.Render("missing    "), relPath(root, path))
		}
	}
	return err
}
