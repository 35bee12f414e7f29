package scaffolding

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kleeedolinux/goa-cli/internal/pathspec"
	"github.com/kleeedolinux/goa-cli/internal/project"
	"github.com/kleeedolinux/goa-cli/internal/resolver"
	"github.com/kleeedolinux/goa-cli/internal/testutils"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCreateDeleteProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("create then delete restores the tree", prop.ForAll(
		func(kindIdx int, names []string, dynamic []bool) bool {
			kind := pathspec.Kinds[kindIdx]
			parts := make([]string, len(names))
			for i, n := range names {
				parts[i] = n
				if dynamic[i] && kind != pathspec.KindComponent {
					parts[i] = "[" + n + "]"
				}
			}
			raw := strings.Join(parts, "/")
			if kind == pathspec.KindComponent {
				raw = names[0]
			}

			spec, err := pathspec.Parse(kind, raw)
			if err != nil {
				return true
			}

			root := t.TempDir()
			layout := project.NewLayout(root, project.DefaultSettings())
			for _, dir := range []string{layout.APIRoot, layout.PagesRoot, layout.ComponentsRoot} {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return false
				}
			}
			if err := os.WriteFile(layout.MainFile(), []byte(mainSrc), 0644); err != nil {
				return false
			}
			if err := os.WriteFile(filepath.Join(layout.PagesRoot, "index.html"), []byte("home"), 0644); err != nil {
				return false
			}

			res := resolver.New(layout)
			if res.CheckCreate(spec) != nil {
				// pages that would land in a reserved root
				return true
			}

			before, err := testutils.Snapshot(root)
			if err != nil {
				return false
			}
			g := NewGenerator(layout, nil)
			ctx := context.Background()

			if _, err := g.Create(ctx, spec, Options{}); err != nil {
				return false
			}
			if res.CheckCreate(spec) == nil {
				return false
			}
			if _, err := g.Delete(ctx, spec); err != nil {
				return false
			}

			after, err := testutils.Snapshot(root)
			return err == nil && res.CheckCreate(spec) == nil && testutils.EqualSnapshots(before, after)
		},
		gen.IntRange(0, len(pathspec.Kinds)-1),
		gen.SliceOfN(3, gen.RegexMatch(`^[a-z][a-z0-9_-]{0,6}$`)),
		gen.SliceOfN(3, gen.Bool()),
	))

	properties.TestingRun(t)
}
