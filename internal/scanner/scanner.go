// Package scanner rebuilds the inventory of API routes, pages and components
// from a project tree.
//
// Every candidate file is inverted with pathspec.FromLocation, the same rule
// table the generator places files with. Files that do not follow the
// convention for their root are skipped, never reported as errors. The
// scanner only reads; an inventory is built fresh on every call.
package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
	"github.com/kleeedolinux/goa-cli/internal/logging"
	"github.com/kleeedolinux/goa-cli/internal/pathspec"
	"github.com/kleeedolinux/goa-cli/internal/project"
	ignore "github.com/sabhiram/go-gitignore"
)

// Inventory is the set of entities found on disk, grouped by kind and
// sorted by their joined segment path.
type Inventory struct {
	APIRoutes  []pathspec.PathSpec
	PageRoutes []pathspec.PathSpec
	Components []pathspec.PathSpec
	// IndexPage reports whether the pages root holds its own index.html,
	// served at "/". It has no segments, so it is not a PathSpec.
	IndexPage bool
}

// Of returns the entries of one kind.
func (inv *Inventory) Of(kind pathspec.Kind) []pathspec.PathSpec {
	switch kind {
	case pathspec.KindAPIRoute:
		return inv.APIRoutes
	case pathspec.KindPageRoute:
		return inv.PageRoutes
	case pathspec.KindComponent:
		return inv.Components
	default:
		return nil
	}
}

// Find looks up an entry by kind and logical path.
func (inv *Inventory) Find(kind pathspec.Kind, raw string) (pathspec.PathSpec, bool) {
	for _, spec := range inv.Of(kind) {
		if spec.Raw() == raw {
			return spec, true
		}
	}
	return pathspec.PathSpec{}, false
}

// Len is the total number of entries, not counting the index page.
func (inv *Inventory) Len() int {
	return len(inv.APIRoutes) + len(inv.PageRoutes) + len(inv.Components)
}

// Scanner walks the roots of one project layout.
type Scanner struct {
	layout *project.Layout
	logger logging.Logger
	// exclude holds doublestar patterns relative to the project root.
	exclude   []string
	gitignore *ignore.GitIgnore
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExclude skips files and directories matching any of the doublestar
// patterns, given relative to the project root with forward slashes.
func WithExclude(patterns ...string) Option {
	return func(s *Scanner) {
		s.exclude = append(s.exclude, patterns...)
	}
}

// WithGitignore honors the project's .gitignore, if there is one.
func WithGitignore(enabled bool) Option {
	return func(s *Scanner) {
		if !enabled {
			s.gitignore = nil
			return
		}
		gi, err := ignore.CompileIgnoreFile(filepath.Join(s.layout.Root, ".gitignore"))
		if err == nil {
			s.gitignore = gi
		}
	}
}

// WithLogger sets the logger used for skipped entries.
func WithLogger(logger logging.Logger) Option {
	return func(s *Scanner) {
		s.logger = logging.OrNop(logger).WithComponent("scanner")
	}
}

// New creates a scanner for layout.
func New(layout *project.Layout, opts ...Option) *Scanner {
	s := &Scanner{
		layout: layout,
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks the API, page and component roots independently and returns
// the sorted inventory. Missing roots yield empty collections.
func (s *Scanner) Scan(ctx context.Context) (*Inventory, error) {
	for _, pattern := range s.exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, goaerrors.NewConfigError(goaerrors.CodeConfigInvalid,
				"invalid exclude pattern "+pattern)
		}
	}

	inv := &Inventory{}
	var err error

	if inv.APIRoutes, err = s.walk(ctx, pathspec.KindAPIRoute, nil); err != nil {
		return nil, err
	}

	skip := []string{s.layout.APIRoot, s.layout.ComponentsRoot}
	if inv.PageRoutes, err = s.walk(ctx, pathspec.KindPageRoute, skip); err != nil {
		return nil, err
	}

	if inv.Components, err = s.walk(ctx, pathspec.KindComponent, nil); err != nil {
		return nil, err
	}

	rule := pathspec.RuleFor(pathspec.KindPageRoute)
	if info, err := os.Stat(filepath.Join(s.layout.PagesRoot, rule.FileName)); err == nil && !info.IsDir() {
		inv.IndexPage = !s.excluded(filepath.Join(s.layout.PagesRoot, rule.FileName))
	}

	s.logger.Debug(ctx, "scan complete",
		"api", len(inv.APIRoutes), "pages", len(inv.PageRoutes), "components", len(inv.Components))

	return inv, nil
}

// walk collects the specs of one kind. Directories in skip are not entered.
func (s *Scanner) walk(ctx context.Context, kind pathspec.Kind, skip []string) ([]pathspec.PathSpec, error) {
	rule := pathspec.RuleFor(kind)
	root := s.layout.RootFor(rule.Root)

	var specs []pathspec.PathSpec

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			s.logger.Warn(ctx, err, "skipping unreadable entry", "path", s.layout.Rel(path))
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || s.excluded(path) {
				return fs.SkipDir
			}
			for _, dir := range skip {
				if path == dir {
					return fs.SkipDir
				}
			}
			return nil
		}

		if !candidate(rule, d.Name()) || s.excluded(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		spec, ok := pathspec.FromLocation(kind, rel)
		if !ok {
			if !(kind == pathspec.KindPageRoute && rel == rule.FileName) {
				s.logger.Debug(ctx, "skipping stray file", "kind", kind.String(), "path", s.layout.Rel(path))
			}
			return nil
		}

		specs = append(specs, spec)
		return nil
	})
	if err != nil {
		return nil, goaerrors.WrapIO(err, goaerrors.CodeScanFailed, "failed to scan "+s.layout.Rel(root))
	}

	sort.Slice(specs, func(i, j int) bool {
		return specs[i].Raw() < specs[j].Raw()
	})

	return specs, nil
}

// candidate reports whether a file name could belong to kind at all.
func candidate(rule pathspec.Rule, name string) bool {
	if rule.Nested {
		return name == rule.FileName
	}
	return strings.HasSuffix(name, rule.Ext) && !strings.HasPrefix(name, ".")
}

func (s *Scanner) excluded(path string) bool {
	rel, err := filepath.Rel(s.layout.Root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range s.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}

	return s.gitignore != nil && s.gitignore.MatchesPath(rel)
}
