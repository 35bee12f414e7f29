// Package scaffolding writes and removes the files that make up API routes,
// pages and components.
//
// Placement comes from pathspec's rule table through project.Layout, so a
// file written here is always found again by the scanner. Create does not
// check for conflicts; callers run the resolver first.
package scaffolding

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
	"github.com/kleeedolinux/goa-cli/internal/logging"
	"github.com/kleeedolinux/goa-cli/internal/pathspec"
	"github.com/kleeedolinux/goa-cli/internal/project"
)

// Options tweak a single Create call.
type Options struct {
	// Title overrides the page heading derived from the last segment.
	Title string
	// SkipRegister leaves main.go untouched for API routes.
	SkipRegister bool
}

// Generator creates and deletes entity files inside one project.
type Generator struct {
	layout *project.Layout
	logger logging.Logger
}

// NewGenerator creates a generator for layout.
func NewGenerator(layout *project.Layout, logger logging.Logger) *Generator {
	return &Generator{
		layout: layout,
		logger: logging.OrNop(logger).WithComponent("scaffolding"),
	}
}

// Create writes the files for spec and returns their absolute paths.
//
// The entity file is written atomically. When a later step fails, the
// returned error is a *errors.PartialWriteError listing what was written;
// nothing is rolled back.
func (g *Generator) Create(ctx context.Context, spec pathspec.PathSpec, opts Options) ([]string, error) {
	tctx := NewTemplateContext(spec, g.layout.ModulePath, g.layout.AppName)
	if opts.Title != "" {
		tctx.Title = opts.Title
	}

	content, err := Render(spec, tctx)
	if err != nil {
		return nil, goaerrors.NewInternalError(goaerrors.CodeWriteFailed, "failed to render "+spec.String(), err)
	}

	if spec.Kind != pathspec.KindAPIRoute {
		if err := CheckMarkup(content); err != nil {
			return nil, goaerrors.NewInternalError(goaerrors.CodeWriteFailed,
				"generated markup for "+spec.String()+" is malformed", err)
		}
	}

	dir := g.layout.Dir(spec)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, goaerrors.WrapIO(err, goaerrors.CodeWriteFailed,
			"failed to create directory "+g.layout.Rel(dir))
	}

	target := g.layout.Abs(spec)
	if err := writeFileAtomic(target, content, 0644); err != nil {
		return nil, goaerrors.WrapIO(err, goaerrors.CodeWriteFailed,
			"failed to write "+g.layout.Rel(target))
	}

	created := []string{target}
	g.logger.Info(ctx, "created file", "kind", spec.Kind.String(), "path", g.layout.Rel(target))

	if g.registers(spec) && !opts.SkipRegister {
		if err := g.register(ctx, spec); err != nil {
			return created, &goaerrors.PartialWriteError{Created: created, Err: err}
		}
	}

	return created, nil
}

// Delete removes the file for spec and prunes directories the removal left
// empty, up to but not including the kind's root. It returns the pruned
// directories, deepest first.
func (g *Generator) Delete(ctx context.Context, spec pathspec.PathSpec) ([]string, error) {
	target := g.layout.Abs(spec)

	if err := os.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goaerrors.NewConflictError(goaerrors.CodeNotFound,
				spec.Kind.String()+" "+spec.Raw()+" does not exist", target)
		}
		return nil, goaerrors.WrapIO(err, goaerrors.CodeRemoveFailed,
			"failed to remove "+g.layout.Rel(target))
	}
	g.logger.Info(ctx, "removed file", "kind", spec.Kind.String(), "path", g.layout.Rel(target))

	root := g.layout.RootFor(pathspec.RuleFor(spec.Kind).Root)
	pruned, err := pruneEmptyDirs(filepath.Dir(target), root)
	for _, dir := range pruned {
		g.logger.Debug(ctx, "pruned empty directory", "path", g.layout.Rel(dir))
	}
	if err != nil {
		return pruned, goaerrors.WrapIO(err, goaerrors.CodeRemoveFailed, "failed to prune directories")
	}

	if g.registers(spec) {
		if err := g.unregister(ctx, spec); err != nil {
			return pruned, err
		}
	}

	return pruned, nil
}

// registers reports whether spec gets a blank import in main.go. Bracketed
// directories are not valid import paths, so dynamic API routes are skipped.
func (g *Generator) registers(spec pathspec.PathSpec) bool {
	return spec.Kind == pathspec.KindAPIRoute && !spec.IsDynamic()
}

// pruneEmptyDirs removes dir and its parents while they are empty, stopping
// before root. Missing directories end the walk.
func pruneEmptyDirs(dir, root string) ([]string, error) {
	var pruned []string

	for dir != root && project.Within(dir, root) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return pruned, nil
			}
			return pruned, err
		}
		if len(entries) > 0 {
			break
		}
		if err := os.Remove(dir); err != nil {
			return pruned, err
		}
		pruned = append(pruned, dir)
		dir = filepath.Dir(dir)
	}

	return pruned, nil
}

// writeFileAtomic writes data to a temporary file beside path and renames it
// into place, so readers never observe a partially written file.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}
