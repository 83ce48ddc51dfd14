package install

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentx-labs/uikit/internal/project"
)

func TestInstallArgs(t *testing.T) {
	specs := []string{"@radix-ui/react-slot", "clsx@^2"}
	tests := []struct {
		manager string
		dev     bool
		want    []string
	}{
		{"npm", false, []string{"npm", "install", "@radix-ui/react-slot", "clsx@^2"}},
		{"npm", true, []string{"npm", "install", "--save-dev", "@radix-ui/react-slot", "clsx@^2"}},
		{"pnpm", true, []string{"pnpm", "add", "-D", "@radix-ui/react-slot", "clsx@^2"}},
		{"yarn", false, []string{"yarn", "add", "@radix-ui/react-slot", "clsx@^2"}},
		{"bun", true, []string{"bun", "add", "-d", "@radix-ui/react-slot", "clsx@^2"}},
		{"deno", true, []string{"deno", "add", "--dev", "npm:@radix-ui/react-slot", "npm:clsx@^2"}},
		{"", false, []string{"npm", "install", "@radix-ui/react-slot", "clsx@^2"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InstallArgs(tt.manager, specs, tt.dev), "%s dev=%v", tt.manager, tt.dev)
	}
}

func TestMissing(t *testing.T) {
	info := &project.Info{Dependencies: map[string]string{"clsx": "^2.1.0", "@radix-ui/react-slot": "^1"}}
	got := Missing(info, []string{"clsx", "@radix-ui/react-slot@1.2.0", "lucide-react", "@radix-ui/react-dialog@^1"})
	assert.Equal(t, []string{"lucide-react", "@radix-ui/react-dialog@^1"}, got)
	assert.Equal(t, []string{"a"}, Missing(nil, []string{"a"}))
}

// fakeManager puts an executable named name on PATH that records its
// arguments to a file and exits with code.
func fakeManager(t *testing.T, name string, code int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts only")
	}
	bin := t.TempDir()
	log := filepath.Join(bin, "args")
	script := "#!/bin/sh\necho \"$@\" > " + log + "\necho failed to resolve >&2\nexit " + strconv.Itoa(code) + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte(script), 0o755))
	t.Setenv("PATH", bin)
	return log
}

func TestManagerInstaller(t *testing.T) {
	log := fakeManager(t, "pnpm", 0)
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	m := &ManagerInstaller{Manager: "pnpm", Stdout: &stdout, Stderr: &stderr}
	require.NoError(t, m.Install(context.Background(), dir, []string{"clsx", "tailwind-merge"}, false))
	assert.Equal(t, "add clsx tailwind-merge\n", readFile(t, log))

	require.NoError(t, m.Install(context.Background(), dir, nil, false), "nothing to install")
}

func TestManagerInstallerFailure(t *testing.T) {
	fakeManager(t, "npm", 1)

	var stderr bytes.Buffer
	m := &ManagerInstaller{Manager: "npm", Stdout: &bytes.Buffer{}, Stderr: &stderr}
	err := m.Install(context.Background(), t.TempDir(), []string{"clsx"}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "npm install --save-dev clsx")
	assert.Contains(t, err.Error(), "failed to resolve")
	assert.True(t, strings.Contains(stderr.String(), "failed to resolve"))
}

func TestManagerInstallerNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	m := &ManagerInstaller{Manager: "bun"}
	err := m.Install(context.Background(), t.TempDir(), []string{"clsx"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bun is not installed")
}
