//go:build integration

package integration_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/agentx-labs/uikit/internal/install"
	"github.com/agentx-labs/uikit/internal/project"
	"github.com/agentx-labs/uikit/internal/registry"
)

func componentsJSON(registryURL string) string {
	return fmt.Sprintf(`{
  "style": "new-york",
  "rsc": true,
  "tsx": true,
  "tailwind": {"config": "", "css": "src/app/globals.css", "baseColor": "neutral", "cssVariables": true},
  "aliases": {"components": "@/components", "utils": "@/lib/utils"},
  "registries": {
    "@acme": {
      "url": "%s/acme/{name}.json",
      "headers": {"Authorization": "Bearer ${ACME_TOKEN}"}
    }
  }
}
`, registryURL)
}

// TestFullFlowAddFromHTTPRegistry adds a component with a registry
// dependency from a remote registry and checks every side effect.
func TestFullFlowAddFromHTTPRegistry(t *testing.T) {
	env := setupTestEnv(t)

	report, err := newOrchestrator(env).Run(testContext(), addOptions(env, "button"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var order []string
	for _, it := range report.Items {
		order = append(order, it.Name)
	}
	if want := []string{"utils", "button"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}

	utils := filepath.Join(env.ProjectDir, "src", "lib", "utils.ts")
	button := filepath.Join(env.ProjectDir, "src", "components", "ui", "button.tsx")
	assertFileContains(t, utils, "export function cn(")
	assertFileContains(t, button, `import { cn } from "@/lib/utils"`)

	want := []installCall{{"npm", []string{"clsx", "tailwind-merge", "@radix-ui/react-slot"}, false}}
	if !reflect.DeepEqual(env.Installs.calls, want) {
		t.Errorf("installs = %v, want %v", env.Installs.calls, want)
	}

	css := filepath.Join(env.ProjectDir, "src", "app", "globals.css")
	assertFileContains(t, css, "--primary: oklch(0.2 0 0);")
	assertFileContains(t, css, ".dark {")

	cfg, err := project.Load(env.ProjectDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := []string{"button", "utils"}; !reflect.DeepEqual(cfg.Components, want) {
		t.Errorf("components = %v, want %v", cfg.Components, want)
	}

	// A second run finds every file up to date.
	again, err := newOrchestrator(env).Run(testContext(), addOptions(env, "button"))
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	for _, it := range again.Items {
		for _, f := range it.Files {
			if f.Action != install.ActionUnchanged {
				t.Errorf("%s: %s on second run", f.Target, f.Action)
			}
		}
	}
	if again.CSSFile != "" {
		t.Errorf("second run rewrote %s", again.CSSFile)
	}
}

// TestNamespacedRegistrySendsHeaders resolves an item from a configured
// namespace whose endpoint needs an auth header from the environment.
func TestNamespacedRegistrySendsHeaders(t *testing.T) {
	t.Setenv("ACME_TOKEN", "secret")
	env := setupTestEnv(t)
	env.Registry.put("acme/fancy.json", map[string]any{
		"name":                 "fancy",
		"type":                 "registry:component",
		"registryDependencies": []string{"button"},
		"files": []map[string]any{{
			"path":    "components/fancy.tsx",
			"type":    "registry:component",
			"content": "import { Button } from \"@/registry/new-york/ui/button\"\n\nexport function Fancy() {\n  return <Button />\n}\n",
		}},
	})

	report, err := newOrchestrator(env).Run(testContext(), addOptions(env, "@acme/fancy"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := len(report.Items); n != 3 {
		t.Errorf("resolved %d items, want 3", n)
	}

	fancy := filepath.Join(env.ProjectDir, "src", "components", "fancy.tsx")
	assertFileContains(t, fancy, `import { Button } from "@/components/ui/button"`)

	reqs := env.Registry.requestsFor("/acme/")
	if len(reqs) == 0 {
		t.Fatal("namespace registry was never queried")
	}
	for _, r := range reqs {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
	}
	for _, r := range env.Registry.requestsFor("/styles/") {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("default registry got Authorization %q", got)
		}
	}

	cfg, err := project.Load(env.ProjectDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !slices.Contains(cfg.Components, "@acme/fancy") {
		t.Errorf("components = %v, want @acme/fancy recorded", cfg.Components)
	}
}

// TestMissingItemWritesNothing checks that resolution failures leave the
// project untouched.
func TestMissingItemWritesNothing(t *testing.T) {
	env := setupTestEnv(t)

	_, err := newOrchestrator(env).Run(testContext(), addOptions(env, "button", "does-not-exist"))
	if !errors.Is(err, registry.ErrItemNotFound) {
		t.Fatalf("err = %v, want ErrItemNotFound", err)
	}
	assertFileNotExists(t, filepath.Join(env.ProjectDir, "src", "components", "ui", "button.tsx"))
	assertFileNotExists(t, filepath.Join(env.ProjectDir, "src", "lib", "utils.ts"))
	if len(env.Installs.calls) != 0 {
		t.Errorf("installed %v", env.Installs.calls)
	}
}

// TestAddThenRemove removes a component and keeps its dependencies.
func TestAddThenRemove(t *testing.T) {
	env := setupTestEnv(t)

	o := newOrchestrator(env)
	if _, err := o.Run(testContext(), addOptions(env, "button")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := o.Remove(testContext(), env.ProjectDir, []string{"button"}); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	assertFileNotExists(t, filepath.Join(env.ProjectDir, "src", "components", "ui", "button.tsx"))
	assertFileExists(t, filepath.Join(env.ProjectDir, "src", "lib", "utils.ts"))

	cfg, err := project.Load(env.ProjectDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := []string{"utils"}; !reflect.DeepEqual(cfg.Components, want) {
		t.Errorf("components = %v, want %v", cfg.Components, want)
	}
}
