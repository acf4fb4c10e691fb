// pattern: Imperative Shell

package stack

import (
	"os"
	"path/filepath"
	"strings"
)

// sourceSearchDepth bounds how far below src the source-file search looks.
const sourceSearchDepth = 2

// probe answers filesystem questions about one candidate directory.
// The top-level listing is read once and shared by every rule.
type probe struct {
	dir     string
	entries []os.DirEntry
}

func newProbe(dir string) (*probe, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	return &probe{dir: dir, entries: entries}, nil
}

func (p *probe) path(elem ...string) string {
	return filepath.Join(append([]string{p.dir}, elem...)...)
}

// exists reports whether any of names is present (file or directory).
func (p *probe) exists(names ...string) bool {
	for _, name := range names {
		if _, err := os.Stat(p.path(name)); err == nil {
			return true
		}
	}
	return false
}

// all reports whether every one of names is present.
func (p *probe) all(names ...string) bool {
	for _, name := range names {
		if !p.exists(name) {
			return false
		}
	}
	return true
}

// hasExt reports whether a top-level entry carries one of exts.
func (p *probe) hasExt(exts ...string) bool {
	return entriesHaveExt(p.entries, exts)
}

func (p *probe) read(name string) ([]byte, bool) {
	data, err := os.ReadFile(p.path(name))
	if err != nil {
		return nil, false
	}
	return data, true
}

// hasSource looks for files with one of exts. When a src directory exists
// only src is searched, sourceSearchDepth levels deep; otherwise only the
// top level is checked.
func (p *probe) hasSource(exts ...string) bool {
	src := p.path("src")
	if info, err := os.Stat(src); err == nil {
		if !info.IsDir() {
			return false
		}
		return searchExt(src, exts, sourceSearchDepth)
	}
	return p.hasExt(exts...)
}

func searchExt(dir string, exts []string, depth int) bool {
	if depth == 0 {
		return false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() {
			if searchExt(filepath.Join(dir, e.Name()), exts, depth-1) {
				return true
			}
			continue
		}
		if e.Type().IsRegular() && matchExt(e.Name(), exts) {
			return true
		}
	}
	return false
}

func entriesHaveExt(entries []os.DirEntry, exts []string) bool {
	for _, e := range entries {
		if matchExt(e.Name(), exts) {
			return true
		}
	}
	return false
}

func matchExt(name string, exts []string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" || ext == strings.TrimPrefix(name, ".") {
		return false
	}
	for _, want := range exts {
		if ext == want {
			return true
		}
	}
	return false
}
