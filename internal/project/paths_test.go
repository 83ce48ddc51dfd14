package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathConfigResolve(t *testing.T) {
	root := filepath.Join("testdata", "next-src")
	pc, err := LoadPaths(root)
	require.NoError(t, err)

	tests := []struct {
		spec string
		want string
		ok   bool
	}{
		{"@/components", filepath.Join(root, "src", "components"), true},
		{"@/lib/utils", filepath.Join(root, "src", "lib", "utils"), true},
		{"@/kit/button", filepath.Join(root, "packages", "kit", "button"), true},
		{"~/components", "", false},
		{"react", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, ok := pc.Resolve(tt.spec)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadPathsFallsThrough(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tsconfig.json"),
		[]byte(`{"files": [], "references": [{"path": "./tsconfig.app.json"}]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tsconfig.app.json"),
		[]byte("{\n  /* app */\n  \"compilerOptions\": {\"paths\": {\"~/*\": [\"./app/*\"]}},\n}"), 0o644))

	pc, err := LoadPaths(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tsconfig.app.json"), pc.File)

	got, ok := pc.Resolve("~/ui")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "app", "ui"), got)
}

func TestLoadPathsMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tsconfig.json"), []byte(`{"compilerOptions": `), 0o644))
	_, err := LoadPaths(dir)
	require.Error(t, err)
}
