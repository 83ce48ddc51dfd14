package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/uikit/internal/manifest"
)

var (
	searchTypeFilter     string
	searchCategoryFilter string
	searchJSON           bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the default registry",
	Long: `Search the default registry's index.

The query matches against item names, titles and descriptions (case-insensitive substring).
Use --type to filter by item type and --category to filter by categories.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchTypeFilter, "type", "", "Filter by type (ui, component, block, hook, lib, page, style, theme)")
	searchCmd.Flags().StringVar(&searchCategoryFilter, "category", "", "Filter by categories (comma-separated, matches any)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(searchCmd)
}

// searchEntry represents an index item for display.
type searchEntry struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	client, _, err := registryClient(cmd)
	if err != nil {
		return err
	}
	idx, err := client.Index(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading registry index: %w", err)
	}

	var categories []string
	for _, c := range strings.Split(searchCategoryFilter, ",") {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, strings.ToLower(c))
		}
	}

	var entries []searchEntry
	for i := range idx {
		it := &idx[i]
		if !matchesSearch(it, query, searchTypeFilter, categories) {
			continue
		}
		entries = append(entries, searchEntry{
			Name:        it.Name,
			Type:        it.Kind(),
			Title:       it.Title,
			Description: it.Description,
			Categories:  it.Categories,
		})
	}

	if len(entries) == 0 {
		msg := "No items found"
		if query != "" {
			msg += fmt.Sprintf(" matching %q", query)
		}
		if searchTypeFilter != "" {
			msg += fmt.Sprintf(" with --type=%s", searchTypeFilter)
		}
		if searchCategoryFilter != "" {
			msg += fmt.Sprintf(" with --category=%s", searchCategoryFilter)
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	}

	if searchJSON {
		return printJSON(cmd, entries)
	}
	return printSearchTable(cmd, entries)
}

// matchesSearch returns true if the item matches all provided filters.
// The type filter accepts both "ui" and "registry:ui".
func matchesSearch(it *manifest.Item, query, typeFilter string, categories []string) bool {
	if typeFilter != "" && it.Kind() != manifest.Kind(typeFilter) {
		return false
	}

	if len(categories) > 0 && !matchesAnyCategory(it.Categories, categories) {
		return false
	}

	if query != "" {
		q := strings.ToLower(query)
		if !strings.Contains(strings.ToLower(it.Name), q) &&
			!strings.Contains(strings.ToLower(it.Title), q) &&
			!strings.Contains(strings.ToLower(it.Description), q) {
			return false
		}
	}

	return true
}

// matchesAnyCategory returns true if any of the item's categories match any
// of the filter categories. Comparison is case-insensitive.
func matchesAnyCategory(itemCategories, filter []string) bool {
	for _, f := range filter {
		for _, c := range itemCategories {
			if strings.EqualFold(c, f) {
				return true
			}
		}
	}
	return false
}

func printSearchTable(cmd *cobra.Command, entries []searchEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TYPE\tNAME\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Type, e.Name, truncate(e.Description, 60))
	}
	return w.Flush()
}
