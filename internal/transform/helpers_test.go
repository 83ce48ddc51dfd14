package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentx-labs/uikit/internal/manifest"
	"github.com/agentx-labs/uikit/internal/project"
)

// testSeed resolves a seed for a TypeScript, RSC, CSS variables project
// with @/ aliases; mutate adjusts the config first.
func testSeed(t *testing.T, mutate func(cfg *project.Config, info *project.Info)) *project.Seed {
	t.Helper()
	cat, err := project.DefaultCatalog()
	require.NoError(t, err)

	cfg := &project.Config{
		Style:     "new-york",
		TSX:       true,
		RSC:       true,
		BaseColor: "neutral",
		Tailwind:  project.Tailwind{CSSVariables: true},
		Aliases:   project.Aliases{Components: "@/components", Utils: "@/lib/utils"},
	}
	info := &project.Info{
		Root:          t.TempDir(),
		TailwindMajor: 4,
		Paths:         &project.PathConfig{Paths: map[string][]string{}},
	}
	if mutate != nil {
		mutate(cfg, info)
	}
	seed, err := project.Resolve(cfg, info, nil, cat, project.ResolveOptions{})
	require.NoError(t, err)
	return seed
}

func newContext(seed *project.Seed) *Context {
	return &Context{Item: &manifest.Item{Name: "test", Type: "registry:ui"}, Seed: seed}
}

func run(t *testing.T, seed *project.Seed, path, src string) string {
	t.Helper()
	out, err := NewPipeline().Run(context.Background(), []byte(src), path, newContext(seed))
	require.NoError(t, err)
	return string(out)
}
