// pattern: Imperative Shell

package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"projdex/internal/discovery"
	"projdex/internal/launcher"
	"projdex/internal/logging"
	"projdex/internal/metrics"
	"projdex/internal/project"
	"projdex/internal/stack"
)

// Engine is the only writer of the catalog. Every read-modify-write cycle
// runs under an in-process mutex and the store's cross-process lock, so a
// running server and one-shot CLI commands never interleave.
type Engine struct {
	store   *Store
	mu      sync.Mutex
	logger  *logging.ScopedLogger
	scanLog *logging.ScopedLogger
	metrics *metrics.Metrics
	now     func() time.Time
	workers int

	onUpdate func([]project.Project)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger takes the engine and scanner loggers from provider.
func WithLogger(provider logging.LoggerProvider) Option {
	return func(e *Engine) {
		e.logger = provider.For("inventory")
		e.scanLog = provider.For("scanner")
	}
}

// WithMetrics records engine activity on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithWorkers bounds the scanner and batch classification pools.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// NewEngine creates an engine over store.
func NewEngine(store *Store, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		logger:  logging.NopLogger(),
		scanLog: logging.NopLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetOnUpdate registers fn to receive the catalog after every successful
// write. fn runs after the locks are released and must not block.
func (e *Engine) SetOnUpdate(fn func([]project.Project)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onUpdate = fn
}

// Store returns the underlying store.
func (e *Engine) Store() *Store {
	return e.store
}

// Scan walks the configured workspaces, reconciles the result with the
// stored catalog and persists it. The walk runs without holding the locks;
// edits made meanwhile are merged, not lost.
func (e *Engine) Scan(ctx context.Context, cfg project.ScanConfig) ([]project.Project, error) {
	start := time.Now()
	scanner := discovery.NewScanner(discovery.Options{
		IgnoreDirs: cfg.IgnoreDirs,
		Excluded:   cfg.ExcludedProjects,
		Workers:    e.workers,
		Logger:     e.scanLog,
	})
	fresh := scanner.Scan(ctx, cfg.Workspaces)
	if err := ctx.Err(); err != nil {
		e.metrics.RecordScan(time.Since(start).Seconds(), err)
		return nil, err
	}

	snap, err := e.update(func(snap *project.Snapshot) error {
		snap.Projects = Reconcile(snap.Projects, fresh)
		snap.LastScan = e.now().UTC()
		return nil
	})
	e.metrics.RecordScan(time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}

	e.logger.Info("catalog rescanned", "workspaces", len(cfg.Workspaces), "found", len(fresh), "catalog", len(snap.Projects))
	return snap.Projects, nil
}

// Catalog returns the stored projects. A catalog that was never written is
// empty.
func (e *Engine) Catalog() ([]project.Project, error) {
	snap, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return []project.Project{}, nil
	}
	return snap.Projects, nil
}

// ClassifyOne returns the stack tag for a single directory.
func (e *Engine) ClassifyOne(path string) (string, error) {
	return stack.Detect(path)
}

// ClassifyBatch classifies every stored project and writes the tags back.
// Detection runs outside the locks; tags are merged by path into whatever
// the catalog holds when it finishes.
func (e *Engine) ClassifyBatch(ctx context.Context, progress func(percent int)) ([]project.Project, error) {
	snap, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrNoCatalog
	}

	start := time.Now()
	tagged := stack.Batch(ctx, snap.Projects, e.workers, progress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tags := make(map[string]string, len(tagged))
	var assigned []string
	for _, p := range tagged {
		if p.ProjectType != nil {
			tags[p.Path] = *p.ProjectType
			assigned = append(assigned, *p.ProjectType)
		}
	}

	out, err := e.update(func(cur *project.Snapshot) error {
		for i := range cur.Projects {
			if tag, ok := tags[cur.Projects[i].Path]; ok {
				cur.Projects[i].ProjectType = project.StringPtr(tag)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.metrics.RecordClassified(time.Since(start).Seconds(), assigned)
	e.logger.Info("stack classification complete", "projects", len(tagged), "tagged", len(assigned))
	return out.Projects, nil
}

// AddCustom adds a directory the scanner would not find on its own.
func (e *Engine) AddCustom(path string) (project.Project, error) {
	abs, err := absPath(path)
	if err != nil {
		return project.Project{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return project.Project{}, fmt.Errorf("%w: %s", ErrPathNotExist, abs)
		}
		return project.Project{}, fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return project.Project{}, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	vc, ok := discovery.Classify(abs)
	if !ok {
		vc = project.None
	}
	added := project.New(abs, vc)
	added.IsCustom = true

	_, err = e.update(func(snap *project.Snapshot) error {
		if _, ok := project.Index(snap.Projects)[abs]; ok {
			return fmt.Errorf("%w: %s", ErrAlreadyPresent, abs)
		}
		snap.Projects = append(snap.Projects, added)
		return nil
	})
	if err != nil {
		return project.Project{}, err
	}

	e.metrics.RecordMutation("add")
	e.logger.Info("custom project added", "path", abs, "vcs", vc)
	return added, nil
}

// RemoveCustom removes a custom entry. Scanned entries cannot be removed this
// way; use Forget to exclude them.
func (e *Engine) RemoveCustom(path string) error {
	abs, err := absPath(path)
	if err != nil {
		return err
	}
	_, err = e.update(func(snap *project.Snapshot) error {
		i, ok := project.Index(snap.Projects)[abs]
		if !ok || !snap.Projects[i].IsCustom {
			return fmt.Errorf("%w: %s", ErrNotCustom, abs)
		}
		snap.Projects = slices.Delete(snap.Projects, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}
	e.metrics.RecordMutation("remove")
	e.logger.Info("custom project removed", "path", abs)
	return nil
}

// RecordOpen counts one open of the project and stamps last_opened.
func (e *Engine) RecordOpen(path string) (project.Project, error) {
	return e.edit("open", path, func(p *project.Project) {
		if p.Hits < math.MaxUint32 {
			p.Hits++
		}
		now := e.now().UTC()
		p.LastOpened = &now
	})
}

// SetTop pins or unpins the project.
func (e *Engine) SetTop(path string, top bool) (project.Project, error) {
	return e.edit("top", path, func(p *project.Project) {
		p.Top = top
	})
}

// SetAlias sets the display alias. An empty alias clears it.
func (e *Engine) SetAlias(path, alias string) (project.Project, error) {
	alias = strings.TrimSpace(alias)
	return e.edit("alias", path, func(p *project.Project) {
		if alias == "" {
			p.Alias = nil
			return
		}
		p.Alias = project.StringPtr(alias)
	})
}

// BindLauncher sets the project's launcher. A nil id clears the binding.
// The id is not checked against the registry; dangling ids resolve to
// nothing.
func (e *Engine) BindLauncher(path string, id *launcher.ID) (project.Project, error) {
	return e.edit("launcher", path, func(p *project.Project) {
		if id == nil {
			p.LauncherID = nil
			return
		}
		v := *id
		p.LauncherID = &v
	})
}

// Forget drops the entry at path from the catalog, custom or not. Callers
// exclude the path in the configuration so the next scan does not bring it
// back. A path not in the catalog is not an error.
func (e *Engine) Forget(path string) error {
	abs, err := absPath(path)
	if err != nil {
		return err
	}
	_, err = e.update(func(snap *project.Snapshot) error {
		snap.Projects = slices.DeleteFunc(snap.Projects, func(p project.Project) bool {
			return p.Path == abs
		})
		return nil
	})
	if err != nil {
		return err
	}
	e.metrics.RecordMutation("forget")
	e.logger.Info("project forgotten", "path", abs)
	return nil
}

// IsStale reports whether the catalog should be rescanned.
func (e *Engine) IsStale(maxAge time.Duration) bool {
	return e.store.IsStale(maxAge, e.now())
}

// Clear deletes the stored catalog.
func (e *Engine) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	unlock, err := e.store.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := e.store.Clear(); err != nil {
		return err
	}
	e.metrics.SetCatalogSize(0)
	e.logger.Info("catalog cleared", "path", e.store.Path())
	return nil
}

// edit applies fn to the project at path.
func (e *Engine) edit(op, path string, fn func(*project.Project)) (project.Project, error) {
	abs, err := absPath(path)
	if err != nil {
		return project.Project{}, err
	}
	var edited project.Project
	_, err = e.update(func(snap *project.Snapshot) error {
		i, ok := project.Index(snap.Projects)[abs]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, abs)
		}
		fn(&snap.Projects[i])
		edited = project.Clone(snap.Projects[i : i+1])[0]
		return nil
	})
	if err != nil {
		return project.Project{}, err
	}
	e.metrics.RecordMutation(op)
	e.logger.Debug("project updated", "op", op, "path", abs)
	return edited, nil
}

// update loads the snapshot under both locks, applies fn and saves the
// result. Nothing is written when fn fails. The onUpdate hook runs after the
// locks are released.
func (e *Engine) update(fn func(*project.Snapshot) error) (*project.Snapshot, error) {
	snap, hook, err := e.locked(fn)
	if err != nil {
		return nil, err
	}
	e.metrics.SetCatalogSize(len(snap.Projects))
	if hook != nil {
		hook(project.Clone(snap.Projects))
	}
	return snap, nil
}

func (e *Engine) locked(fn func(*project.Snapshot) error) (*project.Snapshot, func([]project.Project), error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	unlock, err := e.store.Lock()
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	snap, err := e.store.Load()
	if err != nil {
		return nil, nil, err
	}
	if snap == nil {
		snap = &project.Snapshot{Version: project.SnapshotVersion}
	}
	if err := fn(snap); err != nil {
		return nil, nil, err
	}
	if err := e.store.Save(snap); err != nil {
		return nil, nil, err
	}
	return snap, e.onUpdate, nil
}

func absPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", ErrPathNotExist)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}
