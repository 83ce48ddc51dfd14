package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/uikit/internal/add"
	"github.com/agentx-labs/uikit/internal/config"
	"github.com/agentx-labs/uikit/internal/install"
	"github.com/agentx-labs/uikit/internal/registry"
)

var (
	addYes       bool
	addOverwrite bool
	addNoDeps    bool
	addAll       bool
	addPath      string
)

var addCmd = &cobra.Command{
	Use:   "add [items...]",
	Short: "Add components and their dependencies to your project",
	Long: `Add registry items to the project described by components.json.

Items may be names from the default registry (button), namespaced names
(@acme/button), URLs or local JSON files. Registry dependencies are resolved
and added first unless --no-deps is given.`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().BoolVarP(&addYes, "yes", "y", false, "Skip confirmation; differing files are kept unless --overwrite")
	addCmd.Flags().BoolVarP(&addOverwrite, "overwrite", "o", false, "Overwrite differing files without asking")
	addCmd.Flags().BoolVar(&addNoDeps, "no-deps", false, "Add only the named items, skip registry dependencies")
	addCmd.Flags().BoolVarP(&addAll, "all", "a", false, "Add every item in the default registry")
	addCmd.Flags().StringVarP(&addPath, "path", "p", "", "Directory for files without an explicit target")
	rootCmd.AddCommand(addCmd)
}

// newOrchestrator builds an orchestrator from user settings. Package
// manager output goes to the command's stderr.
func newOrchestrator(cmd *cobra.Command) *add.Orchestrator {
	return &add.Orchestrator{
		RegistryURL: config.RegistryURL(),
		HTTP:        &http.Client{Timeout: config.RegistryTimeout()},
		Concurrency: config.Concurrency(),
		Installer: func(manager string) install.Installer {
			return &install.ManagerInstaller{Manager: manager, Stdout: cmd.ErrOrStderr(), Stderr: cmd.ErrOrStderr()}
		},
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	root, err := projectDir()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())

	o := newOrchestrator(cmd)
	o.Prompt = &install.TerminalPrompter{In: in, Out: out}
	o.Confirm = func(ctx context.Context, set *registry.ResolvedSet) (bool, error) {
		registry.PrintPlan(out, set)
		return confirm(out, in, "Proceed?")
	}

	report, err := o.Run(cmd.Context(), add.Options{
		Names:     args,
		Cwd:       root,
		Yes:       addYes,
		Overwrite: addOverwrite,
		NoDeps:    addNoDeps,
		All:       addAll,
		Path:      addPath,
	})
	if report != nil {
		printAddReport(out, root, report)
	}
	return err
}

// confirm asks a yes/no question that defaults to yes.
func confirm(w io.Writer, r *bufio.Reader, question string) (bool, error) {
	fmt.Fprintf(w, "? %s (Y/n) ", question)
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true, nil
	}
	return false, nil
}

func printAddReport(w io.Writer, root string, r *add.Report) {
	if r.Canceled {
		fmt.Fprintln(w, "Cancelled.")
		return
	}

	added := 0
	for _, it := range r.Items {
		if !it.OK() {
			printFailure(w, "%s: %v", styleValue.Render(it.Name), it.Err)
			continue
		}
		added++
		printSuccess(w, "%s", styleValue.Render(it.Name))
		for _, f := range it.Files {
			fmt.Fprintf(w, "    %s %s\n", styleDim.Render(fmt.Sprintf("%-11s", f.Action)), relPath(root, f.Target))
		}
		for _, warn := range it.Warnings {
			fmt.Fprintf(w, "    %s %s\n", styleIconWarning.Render(iconWarning), warn)
		}
	}
	if len(r.Items) == 0 {
		return
	}

	fmt.Fprintln(w)
	if deps := append(append([]string(nil), r.Dependencies...), r.DevDependencies...); len(deps) > 0 {
		printInfo(w, "Installed %s", strings.Join(deps, ", "))
	}
	if r.CSSFile != "" {
		printInfo(w, "Updated %s", relPath(root, r.CSSFile))
	}
	if r.TailwindConfig != "" {
		printInfo(w, "Updated %s", relPath(root, r.TailwindConfig))
	}
	for _, warn := range r.Warnings {
		printWarning(w, "%s", warn)
	}
	for _, doc := range r.Docs {
		fmt.Fprintf(w, "\n%s\n", doc)
	}
	if added > 0 {
		fmt.Fprintf(w, "\n%s\n", styleTitle.Render(fmt.Sprintf("Added %d of %d items.", added, len(r.Items))))
	}
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
