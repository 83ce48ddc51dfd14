package install

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentx-labs/uikit/internal/manifest"
	"github.com/agentx-labs/uikit/internal/project"
)

func TestResolveTargetByType(t *testing.T) {
	root := t.TempDir()
	seed := testSeed(t, root, nil)
	it := &manifest.Item{Name: "button", Type: "registry:ui"}

	tests := []struct {
		file manifest.File
		want string
	}{
		{manifest.File{Path: "registry/new-york/ui/button.tsx", Type: "registry:ui"}, "components/ui/button.tsx"},
		{manifest.File{Path: "hooks/use-mobile.ts", Type: "registry:hook"}, "hooks/use-mobile.ts"},
		{manifest.File{Path: "lib/format.ts", Type: "registry:lib"}, "lib/format.ts"},
		{manifest.File{Path: "blocks/login/form.tsx", Type: "registry:block"}, "components/form.tsx"},
		{manifest.File{Path: "example/demo.tsx", Type: "example"}, "components/demo.tsx"},
	}
	for _, tt := range tests {
		t.Run(tt.file.Path, func(t *testing.T) {
			got, err := ResolveTarget(it, tt.file, seed, TargetOptions{})
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.want)), got)
		})
	}
}

func TestResolveTargetSrcDir(t *testing.T) {
	root := t.TempDir()
	seed := testSeed(t, root, func(_ *project.Config, info *project.Info) { info.SrcDir = true })
	it := &manifest.Item{Name: "login", Type: "registry:block"}

	got, err := ResolveTarget(it, manifest.File{Path: "ui/card.tsx", Type: "registry:ui"}, seed, TargetOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src", "components", "ui", "card.tsx"), got)

	got, err = ResolveTarget(it, manifest.File{Path: "page.tsx", Type: "registry:page", Target: "app/login/page.tsx"}, seed, TargetOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src", "app", "login", "page.tsx"), got)
}

func TestResolveTargetExplicit(t *testing.T) {
	root := t.TempDir()
	seed := testSeed(t, root, nil)
	it := &manifest.Item{Name: "x", Type: "registry:item"}

	tests := []struct {
		target string
		want   string
	}{
		{"~/.env.example", ".env.example"},
		{"@/components/ui/fancy/button.tsx", "components/ui/fancy/button.tsx"},
		{"@/lib/auth.ts", "lib/auth.ts"},
		{"app/page.tsx", "app/page.tsx"},
		{"./middleware.ts", "middleware.ts"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := ResolveTarget(it, manifest.File{Path: "f", Type: "registry:file", Target: tt.target}, seed, TargetOptions{})
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.want)), got)
		})
	}
}

func TestResolveTargetPathOverride(t *testing.T) {
	root := t.TempDir()
	seed := testSeed(t, root, nil)
	it := &manifest.Item{Name: "button", Type: "registry:ui"}
	f := manifest.File{Path: "ui/button.tsx", Type: "registry:ui"}

	got, err := ResolveTarget(it, f, seed, TargetOptions{Path: "src/primitives"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src", "primitives", "button.tsx"), got)

	abs := filepath.Join(root, "elsewhere")
	got, err = ResolveTarget(it, f, seed, TargetOptions{Path: abs})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(abs, "button.tsx"), got)
}

func TestResolveTargetJavaScript(t *testing.T) {
	root := t.TempDir()
	seed := testSeed(t, root, func(cfg *project.Config, _ *project.Info) { cfg.TSX = false })
	it := &manifest.Item{Name: "button", Type: "registry:ui"}

	got, err := ResolveTarget(it, manifest.File{Path: "ui/button.tsx", Type: "registry:ui"}, seed, TargetOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "components", "ui", "button.jsx"), got)

	got, err = ResolveTarget(it, manifest.File{Path: "hooks/use-toast.ts", Type: "registry:hook"}, seed, TargetOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "hooks", "use-toast.js"), got)
}

func TestResolveTargetErrors(t *testing.T) {
	root := t.TempDir()
	seed := testSeed(t, root, nil)
	it := &manifest.Item{Name: "dashboard", Type: "registry:block"}

	_, err := ResolveTarget(it, manifest.File{Path: "page.tsx", Type: "registry:page"}, seed, TargetOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvedTarget))
	var te *TargetError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "dashboard", te.Item)
	assert.Equal(t, "page.tsx", te.File)
	assert.Contains(t, te.Hint(), "--path")

	_, err = ResolveTarget(it, manifest.File{Path: "x.ts", Type: "registry:file", Target: "~/../outside.ts"}, seed, TargetOptions{})
	assert.ErrorIs(t, err, ErrUnresolvedTarget)
}

func TestResolveTargetMissingAlias(t *testing.T) {
	root := t.TempDir()
	seed := testSeed(t, root, func(cfg *project.Config, _ *project.Info) {
		cfg.Aliases = project.Aliases{UI: "@/ui"}
	})
	it := &manifest.Item{Name: "use-x", Type: "registry:hook"}

	_, err := ResolveTarget(it, manifest.File{Path: "use-x.ts", Type: "registry:hook"}, seed, TargetOptions{})
	assert.ErrorIs(t, err, ErrUnresolvedTarget)
}
