package scaffolding

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
	"github.com/kleeedolinux/goa-cli/internal/pathspec"
	"github.com/kleeedolinux/goa-cli/internal/project"
	"github.com/kleeedolinux/goa-cli/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mainSrc = `package main

import (
	"log"

	"goonairplanes/core"
)

func main() {
	log.Fatal(core.Run())
}
`

func newTestGenerator(t *testing.T) (*Generator, *project.Layout) {
	t.Helper()
	layout := project.NewLayout(t.TempDir(), project.DefaultSettings())
	return NewGenerator(layout, nil), layout
}

func TestCreateAPIRoute(t *testing.T) {
	g, layout := newTestGenerator(t)
	require.NoError(t, os.WriteFile(layout.MainFile(), []byte(mainSrc), 0644))

	spec := pathspec.MustParse(pathspec.KindAPIRoute, "users/auth/login")
	created, err := g.Create(context.Background(), spec, Options{})
	require.NoError(t, err)

	want := filepath.Join(layout.Root, "app", "api", "users", "auth", "login", "route.go")
	assert.Equal(t, []string{want}, created)

	content, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Contains(t, string(content), "package api")
	assert.Contains(t, string(content), `"goonairplanes/core"`)
	assert.Contains(t, string(content), "func Handler(ctx *core.APIContext)")
	assert.Contains(t, string(content), "/api/users/auth/login")

	mainContent, err := os.ReadFile(layout.MainFile())
	require.NoError(t, err)
	assert.Contains(t, string(mainContent), "\t_ \"goonairplanes/app/api/users/auth/login\"\n)")
}

func TestCreateDynamicAPIRouteSkipsRegistration(t *testing.T) {
	g, layout := newTestGenerator(t)
	require.NoError(t, os.WriteFile(layout.MainFile(), []byte(mainSrc), 0644))

	_, err := g.Create(context.Background(), pathspec.MustParse(pathspec.KindAPIRoute, "users/[id]"), Options{})
	require.NoError(t, err)

	mainContent, err := os.ReadFile(layout.MainFile())
	require.NoError(t, err)
	assert.Equal(t, mainSrc, string(mainContent))
}

func TestCreateWithoutMainFile(t *testing.T) {
	g, layout := newTestGenerator(t)

	created, err := g.Create(context.Background(), pathspec.MustParse(pathspec.KindAPIRoute, "health"), Options{})
	require.NoError(t, err)
	assert.Len(t, created, 1)
	assert.NoFileExists(t, layout.MainFile())
}

func TestCreateRegistrationFailureIsPartialWrite(t *testing.T) {
	g, layout := newTestGenerator(t)
	require.NoError(t, os.WriteFile(layout.MainFile(), []byte("package main\n\nfunc main() {\n"), 0644))

	spec := pathspec.MustParse(pathspec.KindAPIRoute, "health")
	created, err := g.Create(context.Background(), spec, Options{})
	require.Error(t, err)

	assert.Equal(t, []string{layout.Abs(spec)}, created)
	assert.Equal(t, created, goaerrors.CreatedFiles(err))
	assert.Equal(t, 4, goaerrors.ExitCode(err))
	assert.FileExists(t, layout.Abs(spec))
}

func TestCreatePages(t *testing.T) {
	g, layout := newTestGenerator(t)

	static := pathspec.MustParse(pathspec.KindPageRoute, "user-settings")
	_, err := g.Create(context.Background(), static, Options{})
	require.NoError(t, err)

	content, err := os.ReadFile(layout.Abs(static))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), `{{ define "content" }}`))
	assert.Contains(t, string(content), "User Settings")
	require.NoError(t, CheckMarkup(content))

	dynamic := pathspec.MustParse(pathspec.KindPageRoute, "shops/[shop]/items/[item-id]")
	_, err = g.Create(context.Background(), dynamic, Options{Title: "Item"})
	require.NoError(t, err)

	content, err = os.ReadFile(filepath.Join(layout.PagesRoot, "shops", "[shop]", "items", "[item-id]", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `{{ index .Params "shop" }}`)
	assert.Contains(t, string(content), `{{ index .Params "item-id" }}`)
	assert.Contains(t, string(content), ">Item<")
	require.NoError(t, CheckMarkup(content))
}

func TestCreateComponent(t *testing.T) {
	g, layout := newTestGenerator(t)

	spec := pathspec.MustParse(pathspec.KindComponent, "card")
	created, err := g.Create(context.Background(), spec, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(layout.Root, "app", "components", "card.html")}, created)

	content, err := os.ReadFile(created[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), `{{ define "card" }}`))
	require.NoError(t, CheckMarkup(content))
}

func TestCreateLeavesNoTempFiles(t *testing.T) {
	g, layout := newTestGenerator(t)

	spec := pathspec.MustParse(pathspec.KindComponent, "badge")
	_, err := g.Create(context.Background(), spec, Options{})
	require.NoError(t, err)

	entries, err := os.ReadDir(layout.ComponentsRoot)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "badge.html", entries[0].Name())
}

func TestDeletePrunesEmptyDirectories(t *testing.T) {
	g, layout := newTestGenerator(t)
	ctx := context.Background()

	keep := pathspec.MustParse(pathspec.KindAPIRoute, "users/list")
	deep := pathspec.MustParse(pathspec.KindAPIRoute, "users/[id]/posts/[post]")
	_, err := g.Create(ctx, keep, Options{})
	require.NoError(t, err)
	_, err = g.Create(ctx, deep, Options{})
	require.NoError(t, err)

	pruned, err := g.Delete(ctx, deep)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(layout.APIRoot, "users", "[id]", "posts", "[post]"),
		filepath.Join(layout.APIRoot, "users", "[id]", "posts"),
		filepath.Join(layout.APIRoot, "users", "[id]"),
	}, pruned)

	assert.DirExists(t, filepath.Join(layout.APIRoot, "users"))
	assert.FileExists(t, layout.Abs(keep))
}

func TestDeleteNeverRemovesRoot(t *testing.T) {
	g, layout := newTestGenerator(t)
	ctx := context.Background()

	spec := pathspec.MustParse(pathspec.KindComponent, "card")
	_, err := g.Create(ctx, spec, Options{})
	require.NoError(t, err)

	pruned, err := g.Delete(ctx, spec)
	require.NoError(t, err)
	assert.Empty(t, pruned)
	assert.DirExists(t, layout.ComponentsRoot)
}

func TestDeleteMissing(t *testing.T) {
	g, _ := newTestGenerator(t)

	_, err := g.Delete(context.Background(), pathspec.MustParse(pathspec.KindPageRoute, "ghost"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, goaerrors.ErrNotFound))
}

func TestDeleteUnregistersImport(t *testing.T) {
	g, layout := newTestGenerator(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(layout.MainFile(), []byte(mainSrc), 0644))

	spec := pathspec.MustParse(pathspec.KindAPIRoute, "health")
	_, err := g.Create(ctx, spec, Options{})
	require.NoError(t, err)

	_, err = g.Delete(ctx, spec)
	require.NoError(t, err)

	mainContent, err := os.ReadFile(layout.MainFile())
	require.NoError(t, err)
	assert.Equal(t, mainSrc, string(mainContent))
}

func TestAddBlankImport(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		expected string
		changed  bool
	}{
		{
			name:     "appends to block",
			src:      "package main\n\nimport (\n\t\"fmt\"\n)\n",
			expected: "package main\n\nimport (\n\t\"fmt\"\n\t_ \"m/app/api/x\"\n)\n",
			changed:  true,
		},
		{
			name:     "single import",
			src:      "package main\n\nimport \"fmt\"\n",
			expected: "package main\n\nimport (\n\t\"fmt\"\n\t_ \"m/app/api/x\"\n)\n",
			changed:  true,
		},
		{
			name:     "crlf line endings",
			src:      "package main\r\n\r\nimport (\r\n\t\"fmt\"\r\n)\r\n",
			expected: "package main\r\n\r\nimport (\r\n\t\"fmt\"\r\n\t_ \"m/app/api/x\"\r\n)\r\n",
			changed:  true,
		},
		{
			name:     "already present",
			src:      "package main\n\nimport (\n\t_ \"m/app/api/x\"\n)\n",
			expected: "package main\n\nimport (\n\t_ \"m/app/api/x\"\n)\n",
		},
		{
			name:     "imported under another name",
			src:      "package main\n\nimport x \"m/app/api/x\"\n\nvar _ = x.Handler\n",
			expected: "package main\n\nimport x \"m/app/api/x\"\n\nvar _ = x.Handler\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, changed, err := AddBlankImport(tc.src, "m/app/api/x")
			require.NoError(t, err)
			assert.Equal(t, tc.changed, changed)
			assert.Equal(t, tc.expected, out)
		})
	}
}

func TestAddBlankImportWithoutImports(t *testing.T) {
	out, changed, err := AddBlankImport("package main\n\nfunc main() {}\n", "m/app/api/x")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, out, `_ "m/app/api/x"`)
	assert.Contains(t, out, "func main() {}")
}

func TestAddBlankImportInvalidSource(t *testing.T) {
	src := "package main\n\nfunc main() {\n"
	out, changed, err := AddBlankImport(src, "m/app/api/x")
	assert.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, src, out)
}

func TestBlankImportRoundTrip(t *testing.T) {
	sources := map[string]string{
		"grouped":      mainSrc,
		"single":       "package main\n\nimport \"goonairplanes/core\"\n\nfunc main() {\n\tcore.Run()\n}\n",
		"crlf":         strings.ReplaceAll(mainSrc, "\n", "\r\n"),
		"single block": testutils.MainGo,
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			added, changed, err := AddBlankImport(src, "goonairplanes/app/api/users")
			require.NoError(t, err)
			require.True(t, changed)

			removed, changed, err := RemoveBlankImport(added, "goonairplanes/app/api/users")
			require.NoError(t, err)
			assert.True(t, changed)
			if name != "single" {
				assert.Equal(t, src, removed)
			}
			assert.NotContains(t, removed, "app/api/users")
		})
	}
}

func TestRemoveBlankImportIgnoresPrefixMatches(t *testing.T) {
	src := "package main\n\nimport (\n\t_ \"m/app/api/users/list\"\n\t_ \"m/app/api/users\"\n)\n"

	out, changed, err := RemoveBlankImport(src, "m/app/api/users")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "package main\n\nimport (\n\t_ \"m/app/api/users/list\"\n)\n", out)

	_, changed, err = RemoveBlankImport(out, "m/app/api/users")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCreateRegistersWithSingleImportMain(t *testing.T) {
	g, layout := newTestGenerator(t)
	src := "package main\r\n\r\nimport \"goonairplanes/core\"\r\n\r\nfunc main() {\r\n\tcore.Run()\r\n}\r\n"
	require.NoError(t, os.WriteFile(layout.MainFile(), []byte(src), 0644))

	spec := pathspec.MustParse(pathspec.KindAPIRoute, "users")
	_, err := g.Create(context.Background(), spec, Options{})
	require.NoError(t, err)

	content, err := os.ReadFile(layout.MainFile())
	require.NoError(t, err)
	assert.Contains(t, string(content), "\t_ \"goonairplanes/app/api/users\"\r\n")
	assert.NotContains(t, strings.ReplaceAll(string(content), "\r\n", ""), "\n")
}

func TestCheckMarkup(t *testing.T) {
	assert.NoError(t, CheckMarkup([]byte(`<div><p>hi<br></p><img src="x"></div>`)))
	assert.Error(t, CheckMarkup([]byte(`<div><p>hi</div>`)))
	assert.Error(t, CheckMarkup([]byte(`<div>`)))
	assert.Error(t, CheckMarkup([]byte(`</div>`)))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "User Profile", Title("user-profile"))
	assert.Equal(t, "Order Items", Title("order_items"))
	assert.Equal(t, "Dashboard", Title("dashboard"))
}

func TestRoutePath(t *testing.T) {
	assert.Equal(t, "/api/users/[id]", RoutePath(pathspec.MustParse(pathspec.KindAPIRoute, "users/[id]")))
	assert.Equal(t, "/about", RoutePath(pathspec.MustParse(pathspec.KindPageRoute, "about")))
	assert.Equal(t, "", RoutePath(pathspec.MustParse(pathspec.KindComponent, "card")))
}
