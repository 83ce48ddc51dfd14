package install

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentx-labs/uikit/internal/project"
)

// testSeed resolves a seed for a project with @/ aliases at root; mutate
// adjusts the config first.
func testSeed(t *testing.T, root string, mutate func(cfg *project.Config, info *project.Info)) *project.Seed {
	t.Helper()
	cat, err := project.DefaultCatalog()
	require.NoError(t, err)

	cfg := &project.Config{
		Style:     "new-york",
		TSX:       true,
		BaseColor: "neutral",
		Tailwind:  project.Tailwind{CSSVariables: true},
		Aliases:   project.Aliases{Components: "@/components", Utils: "@/lib/utils"},
	}
	info := &project.Info{
		Root:  root,
		Paths: &project.PathConfig{BaseURL: root, Paths: map[string][]string{}},
	}
	if mutate != nil {
		mutate(cfg, info)
	}
	seed, err := project.Resolve(cfg, info, nil, cat, project.ResolveOptions{})
	require.NoError(t, err)
	return seed
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
