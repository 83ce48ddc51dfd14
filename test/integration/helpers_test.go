//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/agentx-labs/uikit/internal/add"
	"github.com/agentx-labs/uikit/internal/install"
	"github.com/agentx-labs/uikit/internal/logging"
)

// testEnv holds an isolated project and the registry server it talks to.
type testEnv struct {
	ProjectDir string
	Registry   *registryServer
	Installs   *recorder
}

// registryServer serves items from memory. Items of the default registry
// live under /styles/<style>/<name>.json; namespaced ones under
// /<namespace>/<name>.json.
type registryServer struct {
	*httptest.Server

	mu       sync.Mutex
	items    map[string]any
	requests []*http.Request
}

func newRegistryServer(t *testing.T) *registryServer {
	t.Helper()
	rs := &registryServer{items: make(map[string]any)}
	rs.Server = httptest.NewServer(http.HandlerFunc(rs.serve))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *registryServer) serve(w http.ResponseWriter, r *http.Request) {
	rs.mu.Lock()
	rs.requests = append(rs.requests, r.Clone(context.Background()))
	item, ok := rs.items[strings.TrimPrefix(r.URL.Path, "/")]
	rs.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(item)
}

// put registers an item document at path, e.g. "styles/new-york/button.json".
func (rs *registryServer) put(path string, item any) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.items[path] = item
}

// requestsFor returns the recorded requests whose path has the prefix.
func (rs *registryServer) requestsFor(prefix string) []*http.Request {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	var out []*http.Request
	for _, r := range rs.requests {
		if strings.HasPrefix(r.URL.Path, prefix) {
			out = append(out, r)
		}
	}
	return out
}

type installCall struct {
	Manager string
	Specs   []string
	Dev     bool
}

// recorder stands in for the package manager.
type recorder struct {
	mu    sync.Mutex
	calls []installCall
}

func (rec *recorder) installer(manager string) install.Installer {
	return installFunc(func(_ context.Context, _ string, specs []string, dev bool) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.calls = append(rec.calls, installCall{manager, specs, dev})
		return nil
	})
}

type installFunc func(ctx context.Context, dir string, specs []string, dev bool) error

func (f installFunc) Install(ctx context.Context, dir string, specs []string, dev bool) error {
	return f(ctx, dir, specs, dev)
}

// setupTestEnv creates a Tailwind 4 TypeScript project using npm and a
// registry server seeded with the base components.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		ProjectDir: t.TempDir(),
		Registry:   newRegistryServer(t),
		Installs:   &recorder{},
	}

	writeFile(t, filepath.Join(env.ProjectDir, "package.json"),
		`{"name":"app","dependencies":{"react":"^19.0.0","next":"15.0.0","tailwindcss":"^4.0.0"}}`)
	writeFile(t, filepath.Join(env.ProjectDir, "package-lock.json"), `{"lockfileVersion":3}`)
	writeFile(t, filepath.Join(env.ProjectDir, "tsconfig.json"),
		`{"compilerOptions":{"baseUrl":".","paths":{"@/*":["./src/*"]}}}`)
	writeFile(t, filepath.Join(env.ProjectDir, "src", "app", "globals.css"), "@import \"tailwindcss\";\n")
	writeFile(t, filepath.Join(env.ProjectDir, "components.json"), componentsJSON(env.Registry.URL))

	seedRegistry(env.Registry)
	return env
}

func seedRegistry(rs *registryServer) {
	rs.put("styles/new-york/utils.json", map[string]any{
		"name":         "utils",
		"type":         "registry:lib",
		"dependencies": []string{"clsx", "tailwind-merge"},
		"files": []map[string]any{{
			"path":    "registry/new-york/lib/utils.ts",
			"type":    "registry:lib",
			"content": "import { clsx, type ClassValue } from \"clsx\"\nimport { twMerge } from \"tailwind-merge\"\n\nexport function cn(...inputs: ClassValue[]) {\n  return twMerge(clsx(inputs))\n}\n",
		}},
	})
	rs.put("styles/new-york/button.json", map[string]any{
		"name":                 "button",
		"type":                 "registry:ui",
		"dependencies":         []string{"@radix-ui/react-slot"},
		"registryDependencies": []string{"utils"},
		"files": []map[string]any{{
			"path":    "registry/new-york/ui/button.tsx",
			"type":    "registry:ui",
			"content": "import { Slot } from \"@radix-ui/react-slot\"\n\nimport { cn } from \"@/registry/new-york/lib/utils\"\n\nexport function Button() {\n  return <Slot className={cn(\"inline-flex\")} />\n}\n",
		}},
		"cssVars": map[string]any{
			"light": map[string]string{"primary": "oklch(0.2 0 0)"},
			"dark":  map[string]string{"primary": "oklch(0.9 0 0)"},
		},
	})
	rs.put("styles/new-york/index.json", []map[string]any{
		{"name": "utils", "type": "registry:lib"},
		{"name": "button", "type": "registry:ui"},
	})
}

func newOrchestrator(env *testEnv) *add.Orchestrator {
	return &add.Orchestrator{
		RegistryURL: env.Registry.URL,
		HTTP:        env.Registry.Client(),
		Installer:   env.Installs.installer,
	}
}

func addOptions(env *testEnv, names ...string) add.Options {
	return add.Options{Names: names, Cwd: env.ProjectDir, Yes: true}
}

func testContext() context.Context {
	return logging.WithLogger(context.Background(), logging.Discard())
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
