package install

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/agentx-labs/uikit/internal/project"
	"github.com/agentx-labs/uikit/internal/registry"
)

// Installer adds npm packages to the project.
type Installer interface {
	Install(ctx context.Context, dir string, specs []string, dev bool) error
}

// ManagerInstaller runs the project's package manager.
type ManagerInstaller struct {
	Manager string

	// Stdout and Stderr can be set for testing; defaults to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// InstallArgs returns the command line that adds specs with manager.
func InstallArgs(manager string, specs []string, dev bool) []string {
	var args []string
	switch manager {
	case project.ManagerPNPM, project.ManagerYarn:
		args = []string{manager, "add"}
		if dev {
			args = append(args, "-D")
		}
	case project.ManagerBun:
		args = []string{manager, "add"}
		if dev {
			args = append(args, "-d")
		}
	case project.ManagerDeno:
		args = []string{manager, "add"}
		if dev {
			args = append(args, "--dev")
		}
		for _, s := range specs {
			args = append(args, "npm:"+s)
		}
		return args
	default:
		args = []string{project.ManagerNPM, "install"}
		if dev {
			args = append(args, "--save-dev")
		}
	}
	return append(args, specs...)
}

// Install runs the package manager in dir. Output streams to the configured
// writers; the tail of stderr is included in the error on failure.
func (m *ManagerInstaller) Install(ctx context.Context, dir string, specs []string, dev bool) error {
	if len(specs) == 0 {
		return nil
	}
	args := InstallArgs(m.Manager, specs, dev)
	bin, err := exec.LookPath(args[0])
	if err != nil {
		return fmt.Errorf("%s is not installed: %w", args[0], err)
	}

	stdout := m.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := m.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var stderrBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args[1:]...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderrBuf.String())
		if i := strings.LastIndex(msg, "\n"); i >= 0 {
			msg = msg[i+1:]
		}
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", strings.Join(args, " "), err, msg)
		}
		return fmt.Errorf("%s: %w", strings.Join(args, " "), err)
	}
	return nil
}

// Missing returns the specs whose package is not already a dependency of
// the project.
func Missing(info *project.Info, specs []string) []string {
	var out []string
	for _, s := range specs {
		if info != nil && info.HasDependency(registry.PackageName(s)) {
			continue
		}
		out = append(out, s)
	}
	return out
}
