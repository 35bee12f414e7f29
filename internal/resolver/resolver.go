// Package resolver decides whether a create or delete may proceed. It only
// looks at the deterministic target file: a create conflicts iff that file
// exists, a delete fails iff it does not. Static and dynamic siblings at the
// same depth (users/admin next to users/[id]) are left to the router.
package resolver

import (
	"errors"
	"io/fs"
	"os"

	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
	"github.com/kleeedolinux/goa-cli/internal/pathspec"
	"github.com/kleeedolinux/goa-cli/internal/project"
)

// Resolver checks specs against one project layout.
type Resolver struct {
	Layout *project.Layout
}

// New creates a Resolver for layout.
func New(layout *project.Layout) *Resolver {
	return &Resolver{Layout: layout}
}

// CheckCreate returns nil when the spec's target does not exist yet.
func (r *Resolver) CheckCreate(spec pathspec.PathSpec) error {
	if err := r.checkPlacement(spec); err != nil {
		return err
	}

	target := r.Layout.Abs(spec)
	exists, err := exists(target)
	if err != nil {
		return goaerrors.WrapIO(err, goaerrors.CodeWriteFailed, "cannot inspect "+r.Layout.Rel(target))
	}
	if exists {
		return goaerrors.NewConflictError(goaerrors.CodeConflict,
			spec.Kind.String()+" "+spec.Raw()+" already exists at "+r.Layout.Rel(target), target)
	}

	return nil
}

// CheckDelete returns the absolute target path when it exists.
func (r *Resolver) CheckDelete(spec pathspec.PathSpec) (string, error) {
	if err := r.checkPlacement(spec); err != nil {
		return "", err
	}

	target := r.Layout.Abs(spec)
	exists, err := exists(target)
	if err != nil {
		return "", goaerrors.WrapIO(err, goaerrors.CodeRemoveFailed, "cannot inspect "+r.Layout.Rel(target))
	}
	if !exists {
		return "", goaerrors.NewConflictError(goaerrors.CodeNotFound,
			spec.Kind.String()+" "+spec.Raw()+" does not exist at "+r.Layout.Rel(target), target)
	}

	return target, nil
}

// checkPlacement rejects pages that would land inside the API or component
// roots. Both roots usually live under the page root.
func (r *Resolver) checkPlacement(spec pathspec.PathSpec) error {
	if spec.Kind != pathspec.KindPageRoute {
		return nil
	}

	dir := r.Layout.Dir(spec)
	for _, reserved := range []string{r.Layout.APIRoot, r.Layout.ComponentsRoot} {
		if project.Within(dir, reserved) {
			return goaerrors.NewValidationError(goaerrors.CodeReservedSegment,
				"page "+spec.Raw()+" would be placed inside "+r.Layout.Rel(reserved)).
				WithContext("input", spec.Raw())
		}
	}

	return nil
}

func exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
