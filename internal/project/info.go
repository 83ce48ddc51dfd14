package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/tidwall/gjson"
)

// Framework identifiers.
const (
	FrameworkNextApp     = "next-app"
	FrameworkNextPages   = "next-pages"
	FrameworkVite        = "vite"
	FrameworkAstro       = "astro"
	FrameworkReactRouter = "react-router"
	FrameworkManual      = "manual"
)

// Package manager identifiers.
const (
	ManagerNPM  = "npm"
	ManagerPNPM = "pnpm"
	ManagerYarn = "yarn"
	ManagerBun  = "bun"
	ManagerDeno = "deno"
)

// Info is what the CLI knows about the project on disk, independent of
// components.json.
type Info struct {
	Root           string
	SrcDir         bool   // project keeps sources under src/
	Framework      string // one of the Framework constants
	TypeScript     bool
	TailwindMajor  uint64 // 0 when tailwindcss is not a dependency
	PackageManager string
	ManagerVersion *semver.Version // from the packageManager field, if any
	Dependencies   map[string]string
	Paths          *PathConfig
}

// HasDependency reports whether package.json lists name in any
// dependency section.
func (i *Info) HasDependency(name string) bool {
	_, ok := i.Dependencies[name]
	return ok
}

// Detect inspects root. package.json must exist.
func Detect(root string) (*Info, error) {
	pkgPath := filepath.Join(root, "package.json")
	data, err := os.ReadFile(pkgPath)
	if err != nil {
		return nil, &ConfigError{Path: pkgPath, Reason: "package.json not found", Err: err}
	}
	if !gjson.ValidBytes(data) {
		return nil, &ConfigError{Path: pkgPath, Reason: "malformed JSON"}
	}
	pkg := gjson.ParseBytes(data)

	info := &Info{
		Root:         root,
		SrcDir:       isDir(filepath.Join(root, "src")),
		Dependencies: make(map[string]string),
	}
	for _, section := range []string{"dependencies", "devDependencies", "peerDependencies"} {
		pkg.Get(section).ForEach(func(k, v gjson.Result) bool {
			info.Dependencies[k.String()] = v.String()
			return true
		})
	}

	info.TypeScript = exists(filepath.Join(root, "tsconfig.json")) || info.HasDependency("typescript")
	info.TailwindMajor = majorOf(info.Dependencies["tailwindcss"])
	info.Framework = detectFramework(root, info)
	info.PackageManager, info.ManagerVersion = detectPackageManager(root, pkg.Get("packageManager").String())

	paths, err := LoadPaths(root)
	if err != nil {
		return nil, err
	}
	info.Paths = paths
	return info, nil
}

func detectFramework(root string, info *Info) string {
	switch {
	case globExists(root, "next.config.*"):
		base := root
		if info.SrcDir {
			base = filepath.Join(root, "src")
		}
		if isDir(filepath.Join(base, "app")) {
			return FrameworkNextApp
		}
		return FrameworkNextPages
	case globExists(root, "astro.config.*"):
		return FrameworkAstro
	case globExists(root, "react-router.config.*"):
		return FrameworkReactRouter
	case globExists(root, "vite.config.*"):
		return FrameworkVite
	default:
		return FrameworkManual
	}
}

// lockfiles maps lockfile names to package managers, in detection order.
var lockfiles = []struct {
	file    string
	manager string
}{
	{"bun.lockb", ManagerBun},
	{"bun.lock", ManagerBun},
	{"pnpm-lock.yaml", ManagerPNPM},
	{"yarn.lock", ManagerYarn},
	{"deno.lock", ManagerDeno},
	{"package-lock.json", ManagerNPM},
}

// detectPackageManager prefers the packageManager field ("pnpm@9.1.0"),
// then lockfiles, then npm.
func detectPackageManager(root, field string) (string, *semver.Version) {
	if field != "" {
		name, version, _ := strings.Cut(field, "@")
		// Strip a "+sha512..." integrity suffix.
		version, _, _ = strings.Cut(version, "+")
		v, err := semver.NewVersion(version)
		if err != nil {
			v = nil
		}
		switch name {
		case ManagerNPM, ManagerPNPM, ManagerYarn, ManagerBun, ManagerDeno:
			return name, v
		}
	}
	for _, lf := range lockfiles {
		if exists(filepath.Join(root, lf.file)) {
			return lf.manager, nil
		}
	}
	return ManagerNPM, nil
}

// majorOf extracts the major version from an npm range such as "^4.1.0" or
// "~3.4". Tags like "latest" count as the newest known major.
func majorOf(spec string) uint64 {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0
	}
	if spec == "latest" || spec == "next" {
		return 4
	}
	v, err := semver.NewVersion(strings.TrimLeft(spec, "^~>=<v "))
	if err != nil {
		return 0
	}
	return v.Major()
}

// TailwindV4 reports whether the project uses Tailwind CSS 4 or later. An
// unknown version with no tailwind config file is treated as v4.
func (i *Info) TailwindV4(cfg *Config) bool {
	if i.TailwindMajor != 0 {
		return i.TailwindMajor >= 4
	}
	return cfg == nil || cfg.Tailwind.Config == ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func globExists(root, pattern string) bool {
	matches, _ := filepath.Glob(filepath.Join(root, pattern))
	return len(matches) > 0
}

// String describes the project in one line, for verbose output.
func (i *Info) String() string {
	tw := "none"
	if i.TailwindMajor > 0 {
		tw = fmt.Sprintf("v%d", i.TailwindMajor)
	}
	return fmt.Sprintf("%s (src=%t, typescript=%t, tailwind=%s, %s)",
		i.Framework, i.SrcDir, i.TypeScript, tw, i.PackageManager)
}
