// pattern: Imperative Shell

package discovery

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"projdex/internal/logging"
	"projdex/internal/project"
)

// DefaultMaxDepth bounds the walk below each workspace root.
const DefaultMaxDepth = 4

// Options configures a Scanner.
type Options struct {
	IgnoreDirs []string // directory names (or globs) pruned wherever they appear
	Excluded   []string // exact project paths never emitted
	MaxDepth   int      // levels below the root to visit; 0 means DefaultMaxDepth
	Workers    int      // concurrent walk units; 0 means 2*GOMAXPROCS
	Logger     *logging.ScopedLogger
}

// Scanner discovers version-controlled project roots under workspace roots.
type Scanner struct {
	ignore   []string
	excluded map[string]struct{}
	maxDepth int
	workers  int
	logger   *logging.ScopedLogger
}

// NewScanner creates a scanner from opts.
func NewScanner(opts Options) *Scanner {
	s := &Scanner{
		ignore:   opts.IgnoreDirs,
		excluded: make(map[string]struct{}, len(opts.Excluded)),
		maxDepth: opts.MaxDepth,
		workers:  opts.Workers,
		logger:   opts.Logger,
	}
	if s.maxDepth <= 0 {
		s.maxDepth = DefaultMaxDepth
	}
	if s.workers <= 0 {
		s.workers = 2 * runtime.GOMAXPROCS(0)
	}
	if s.logger == nil {
		s.logger = logging.NopLogger()
	}
	for _, p := range opts.Excluded {
		s.excluded[absClean(p)] = struct{}{}
	}
	return s
}

// FromConfig builds a scanner for a ScanConfig.
func FromConfig(cfg project.ScanConfig, logger *logging.ScopedLogger) *Scanner {
	return NewScanner(Options{
		IgnoreDirs: cfg.IgnoreDirs,
		Excluded:   cfg.ExcludedProjects,
		Logger:     logger,
	})
}

// Scan walks every root concurrently and returns the project roots found.
// Each root, and each top-level subtree of a root, is an independent unit
// with its own result slot; slots are concatenated once all units finish.
// Order is not defined. Overlapping roots produce duplicates.
func (s *Scanner) Scan(ctx context.Context, roots []string) []project.Project {
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(s.workers)

	results := make([][]project.Project, len(roots))
	for i, root := range roots {
		g.Go(func() error {
			results[i] = s.scanRoot(ctx, &g, absClean(root))
			return nil
		})
	}
	_ = g.Wait()

	var out []project.Project
	for _, r := range results {
		out = append(out, r...)
	}

	s.logger.Info("scan complete", "roots", len(roots), "found", len(out), "duration_ms", time.Since(start).Milliseconds())
	return out
}

// scanRoot handles the root itself, then fans its child subtrees out onto the
// shared pool. Children that find the pool full run inline, so waiting on
// them can never starve the pool.
func (s *Scanner) scanRoot(ctx context.Context, g *errgroup.Group, root string) []project.Project {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		s.logger.Debug("skipping workspace root", "root", root, "error", err)
		return nil
	}
	if !s.isExcluded(root) {
		if vc, ok := Classify(root); ok {
			return []project.Project{project.New(root, vc)}
		}
	}

	children := s.childDirs(root)
	if len(children) == 0 || s.maxDepth < 1 {
		return nil
	}

	slots := make([][]project.Project, len(children))
	var wg sync.WaitGroup
	for i, child := range children {
		unit := func() {
			if ctx.Err() == nil {
				slots[i] = s.visit(ctx, child, 1)
			}
		}
		wg.Add(1)
		if !g.TryGo(func() error { defer wg.Done(); unit(); return nil }) {
			unit()
			wg.Done()
		}
	}
	wg.Wait()

	var out []project.Project
	for _, slot := range slots {
		out = append(out, slot...)
	}
	return out
}

// visit examines dir (already filtered by its parent) at the given depth.
// A project root is emitted and not descended into. An excluded directory is
// never emitted, but the walk continues below it.
func (s *Scanner) visit(ctx context.Context, dir string, depth int) []project.Project {
	if !s.isExcluded(dir) {
		if vc, ok := Classify(dir); ok {
			return []project.Project{project.New(dir, vc)}
		}
	}
	if depth >= s.maxDepth || ctx.Err() != nil {
		return nil
	}

	var out []project.Project
	for _, child := range s.childDirs(dir) {
		out = append(out, s.visit(ctx, child, depth+1)...)
	}
	return out
}

// childDirs lists the subdirectories of dir that survive the ignore rules.
// Symlinks are not followed. Unreadable directories yield nothing.
func (s *Scanner) childDirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Debug("skipping unreadable directory", "dir", dir, "error", err)
		return nil
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || s.IsIgnored(e.Name()) {
			continue
		}
		dirs = append(dirs, filepath.Join(dir, e.Name()))
	}
	return dirs
}

// IsIgnored reports whether a single path component prunes its subtree:
// hidden names (other than ".") and names matching an ignore rule.
func (s *Scanner) IsIgnored(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." {
		return true
	}
	for _, pattern := range s.ignore {
		if pattern == name {
			return true
		}
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// absClean resolves p against the working directory so emitted paths are
// always absolute.
func absClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func (s *Scanner) isExcluded(path string) bool {
	_, ok := s.excluded[path]
	return ok
}
