package add

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"

	"github.com/agentx-labs/uikit/internal/branding"
	"github.com/agentx-labs/uikit/internal/install"
	"github.com/agentx-labs/uikit/internal/logging"
	"github.com/agentx-labs/uikit/internal/manifest"
	"github.com/agentx-labs/uikit/internal/project"
	"github.com/agentx-labs/uikit/internal/registry"
	"github.com/agentx-labs/uikit/internal/telemetry"
	"github.com/agentx-labs/uikit/internal/transform"
)

var (
	// ErrNoItems is returned when neither names nor --all were given.
	ErrNoItems = errors.New("no items requested")

	// ErrDependencyFailed marks items skipped because a registry dependency
	// failed earlier in the run.
	ErrDependencyFailed = errors.New("dependency failed")
)

// Options is one add request.
type Options struct {
	Names     []string
	Cwd       string // project root; the working directory when empty
	Yes       bool   // no confirmation; conflicting files are skipped unless Overwrite
	Overwrite bool   // replace differing files without asking
	NoDeps    bool   // install only the requested items
	All       bool   // add every item in the default registry's index
	Path      string // base directory for files without an explicit target
}

// Orchestrator runs add requests. The zero value fetches from the built-in
// registry and installs packages with the project's package manager.
type Orchestrator struct {
	RegistryURL string          // default registry base; branding default when empty
	HTTP        *http.Client    // remote registries; http.DefaultClient when nil
	S3          registry.S3API  // s3:// registries; built from the environment when nil
	Concurrency int             // fetch fan-out limit
	Catalog     *project.Catalog

	// Prompt confirms overwrites of differing files. Ignored with Yes or
	// Overwrite.
	Prompt install.Prompter

	// Confirm is shown the resolved set before anything is written. A false
	// answer ends the run without changes. Skipped with Yes.
	Confirm func(ctx context.Context, set *registry.ResolvedSet) (bool, error)

	// Installer returns the package installer for a manager name.
	Installer func(manager string) install.Installer
}

// ItemResult is the outcome for one resolved item.
type ItemResult struct {
	Name     string
	Item     *manifest.Item
	Root     bool
	Files    []install.FileResult
	Warnings []transform.Warning
	Err      error
}

// OK reports whether the item was written.
func (r *ItemResult) OK() bool { return r.Err == nil }

// Report summarizes a run.
type Report struct {
	Items           []*ItemResult
	Canceled        bool
	Dependencies    []string // npm packages that were installed
	DevDependencies []string
	CSSFile         string // stylesheet that received CSS variables or rules
	TailwindConfig  string // Tailwind CSS 3 config that received fragments
	Components      []string
	Docs            []string
	Warnings        []string // non-fatal post-install problems
	States          []State
}

// Failed returns the items that were not written.
func (r *Report) Failed() []*ItemResult {
	var out []*ItemResult
	for _, it := range r.Items {
		if !it.OK() {
			out = append(out, it)
		}
	}
	return out
}

type session struct {
	opts   Options
	root   string
	cfg    *project.Config
	info   *project.Info
	client *registry.Client
	set    *registry.ResolvedSet
	seed   *project.Seed
	plans  []*itemPlan
	report *Report
}

type itemPlan struct {
	entry   *registry.Entry
	result  *ItemResult
	pending []install.Pending
	tc      *transform.Context
}

// Run adds the requested items to the project. Configuration and
// resolution problems fail the run before anything is written. After that,
// a failing item fails alone and the items depending on it are skipped;
// the returned error then joins every item error.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (report *Report, err error) {
	ctx, span := telemetry.Start(ctx, "add",
		attribute.StringSlice("items", opts.Names),
		attribute.Bool("all", opts.All),
	)
	defer func() { telemetry.End(span, err) }()

	m := newMachine(ctx)
	s := &session{opts: opts, report: &Report{}}
	defer func() {
		if err != nil {
			m.fail(err)
		}
		s.report.States = m.history
	}()

	if len(opts.Names) == 0 && !opts.All {
		return s.report, ErrNoItems
	}

	if err := m.enter(StatePreflighting); err != nil {
		return s.report, err
	}
	if err := s.preflight(ctx); err != nil {
		return s.report, err
	}

	if err := m.enter(StateResolving); err != nil {
		return s.report, err
	}
	if err := o.resolve(ctx, s); err != nil {
		return s.report, err
	}
	if !opts.Yes && o.Confirm != nil {
		ok, err := o.Confirm(ctx, s.set)
		if err != nil {
			return s.report, err
		}
		if !ok {
			s.report.Canceled = true
			return s.report, m.enter(StateDone)
		}
	}

	if err := m.enter(StateTransforming); err != nil {
		return s.report, err
	}
	s.transform(ctx)

	if err := m.enter(StateWriting); err != nil {
		return s.report, err
	}
	if err := o.write(ctx, s); err != nil {
		return s.report, err
	}

	var itemErrs []error
	for _, r := range s.report.Items {
		if r.Err != nil {
			itemErrs = append(itemErrs, r.Err)
		}
	}
	if len(itemErrs) > 0 && len(itemErrs) == len(s.report.Items) {
		return s.report, errors.Join(itemErrs...)
	}

	if err := m.enter(StatePostInstall); err != nil {
		return s.report, err
	}
	if err := o.postInstall(ctx, s); err != nil {
		return s.report, err
	}
	if len(itemErrs) > 0 {
		return s.report, errors.Join(itemErrs...)
	}
	return s.report, m.enter(StateDone)
}

// preflight loads package.json and components.json.
func (s *session) preflight(ctx context.Context) (err error) {
	_, span := telemetry.Start(ctx, "add.preflight")
	defer func() { telemetry.End(span, err) }()

	root := s.opts.Cwd
	if root == "" {
		if root, err = os.Getwd(); err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
	}
	if root, err = filepath.Abs(root); err != nil {
		return fmt.Errorf("resolving %s: %w", s.opts.Cwd, err)
	}
	s.root = root

	if s.info, err = project.Detect(root); err != nil {
		return err
	}
	if s.cfg, err = project.Load(root); err != nil {
		return err
	}
	logging.FromContext(ctx).Debug("project", "root", root, "info", s.info)
	return nil
}

// resolve builds the registry client from components.json, computes the
// closure and the seed.
func (o *Orchestrator) resolve(ctx context.Context, s *session) error {
	client, err := o.Client(s.cfg)
	if err != nil {
		return err
	}
	s.client = client

	names := s.opts.Names
	if s.opts.All {
		idx, err := client.Index(ctx)
		if err != nil {
			return fmt.Errorf("reading registry index: %w", err)
		}
		names = indexNames(idx)
		if len(names) == 0 {
			return ErrNoItems
		}
	}

	s.set, err = registry.Resolve(ctx, client, names, registry.ResolveOptions{
		NoDeps:      s.opts.NoDeps,
		Concurrency: o.Concurrency,
		Cwd:         s.root,
	})
	if err != nil {
		return err
	}
	log := logging.FromContext(ctx)
	log.Debug("resolved items", "items", s.set.Keys())

	cat, err := o.catalog()
	if err != nil {
		return err
	}
	var roots []string
	for _, it := range s.set.Roots() {
		roots = append(roots, it.Name)
	}
	s.seed, err = project.Resolve(s.cfg, s.info, s.set.Items(), cat, project.ResolveOptions{Roots: roots})
	if err != nil {
		return err
	}
	for _, line := range s.seed.Describe() {
		log.Debug("alias " + line)
	}
	return nil
}

// Client builds a registry client for the project: the default registry
// plus the namespaces configured in components.json. A configured
// namespace named after the built-in registry replaces the default.
func (o *Orchestrator) Client(cfg *project.Config) (*registry.Client, error) {
	base := o.RegistryURL
	if base == "" {
		base = branding.RegistryURL()
	}
	sopts := registry.SourceOptions{HTTP: o.HTTP, S3: o.S3}
	def, err := registry.NewSource(registry.DefaultEndpoint(base), cfg.Style, sopts)
	if err != nil {
		return nil, fmt.Errorf("default registry: %w", err)
	}

	namespaces := make(map[string]registry.Source, len(cfg.Registries))
	for ns, ep := range cfg.Registries {
		src, err := registry.NewSource(ep, cfg.Style, sopts)
		if err != nil {
			return nil, &project.ConfigError{Path: cfg.Path(), Field: "registries." + ns, Err: err}
		}
		if ns == branding.RegistryName() {
			def = src
			continue
		}
		namespaces[ns] = src
	}
	return registry.NewClient(registry.ClientOptions{Default: def, Namespaces: namespaces, HTTP: o.HTTP}), nil
}

func (o *Orchestrator) catalog() (*project.Catalog, error) {
	if o.Catalog != nil {
		return o.Catalog, nil
	}
	return project.DefaultCatalog()
}

// indexNames lists what --all installs: everything but base layers.
func indexNames(idx manifest.Index) []string {
	var names []string
	for i := range idx {
		it := &idx[i]
		if it.IsBaseLayer() || it.Kind() == manifest.TypeInternal {
			continue
		}
		names = append(names, it.Name)
	}
	return names
}

// transform rewrites every file of every item in memory. Nothing touches
// the disk yet.
func (s *session) transform(ctx context.Context) {
	pipeline := transform.NewPipeline()
	failed := make(map[string]string)

	for _, e := range s.set.Entries {
		r := &ItemResult{Name: e.Key, Item: e.Item, Root: e.Root}
		p := &itemPlan{entry: e, result: r, tc: &transform.Context{Item: e.Item, Seed: s.seed}}
		s.plans = append(s.plans, p)
		s.report.Items = append(s.report.Items, r)

		if dep, ok := failedDep(e, failed); ok {
			r.Err = fmt.Errorf("skipping %s: %w: %s", e.Key, ErrDependencyFailed, dep)
			failed[e.Key] = dep
			continue
		}

		for _, f := range e.Item.Files {
			target, err := install.ResolveTarget(e.Item, f, s.seed, install.TargetOptions{Path: s.opts.Path})
			if err != nil {
				r.Err = err
				break
			}
			out, err := pipeline.Run(ctx, []byte(f.Content), f.Path, p.tc)
			if err != nil {
				r.Err = err
				break
			}
			p.pending = append(p.pending, install.Pending{Source: f.Path, Target: target, Content: out})
		}
		r.Warnings = p.tc.Warnings()
		if r.Err != nil {
			failed[e.Key] = e.Key
		}
	}
}

// failedDep returns the root cause if any direct dependency of e failed.
func failedDep(e *registry.Entry, failed map[string]string) (string, bool) {
	for _, d := range e.Deps {
		if cause, ok := failed[d]; ok {
			return cause, true
		}
	}
	return "", false
}

// write commits items in dependency order, one item at a time.
func (o *Orchestrator) write(ctx context.Context, s *session) error {
	prompt := o.Prompt
	if s.opts.Yes {
		prompt = nil
	}
	w := install.NewWriter(install.WriterOptions{Root: s.root, Overwrite: s.opts.Overwrite, Prompt: prompt})
	log := logging.FromContext(ctx)

	failed := make(map[string]string)
	for _, p := range s.plans {
		r := p.result
		if r.Err != nil {
			failed[r.Name] = r.Name
			continue
		}
		if dep, ok := failedDep(p.entry, failed); ok {
			r.Err = fmt.Errorf("skipping %s: %w: %s", r.Name, ErrDependencyFailed, dep)
			failed[r.Name] = dep
			continue
		}
		files, err := w.Commit(ctx, r.Name, p.pending)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			r.Err = err
			failed[r.Name] = r.Name
			log.Error("item failed", "item", r.Name, "err", err)
			continue
		}
		r.Files = files
		log.Info("added", "item", r.Name, "files", len(files))
	}
	return nil
}
