package scaffolding

import (
	"bytes"
	"context"
	"errors"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"

	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
	"github.com/kleeedolinux/goa-cli/internal/pathspec"
	"golang.org/x/tools/go/ast/astutil"
)

// ImportPath is the Go import path of an API route package.
func ImportPath(modulePath, appDir string, spec pathspec.PathSpec) string {
	return path.Join(modulePath, appDir, "api", spec.Raw())
}

// register adds a blank import for spec to main.go. A project without a
// main.go is left alone.
func (g *Generator) register(ctx context.Context, spec pathspec.PathSpec) error {
	mainFile := g.layout.MainFile()
	importPath := ImportPath(g.layout.ModulePath, g.layout.AppDir, spec)

	src, err := os.ReadFile(mainFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			g.logger.Warn(ctx, err, "main.go not found, route not registered", "import", importPath)
			return nil
		}
		return goaerrors.WrapIO(err, goaerrors.CodeWriteFailed, "failed to read main.go")
	}

	updated, changed, err := AddBlankImport(string(src), importPath)
	if err != nil {
		return goaerrors.WrapIO(err, goaerrors.CodeWriteFailed, "failed to register "+importPath+" in main.go")
	}
	if !changed {
		g.logger.Debug(ctx, "import already present in main.go", "import", importPath)
		return nil
	}

	if err := writeFileAtomic(mainFile, []byte(updated), 0644); err != nil {
		return goaerrors.WrapIO(err, goaerrors.CodeWriteFailed, "failed to write main.go")
	}

	g.logger.Info(ctx, "registered route in main.go", "import", importPath)
	return nil
}

// unregister removes spec's blank import from main.go, if present.
func (g *Generator) unregister(ctx context.Context, spec pathspec.PathSpec) error {
	mainFile := g.layout.MainFile()
	importPath := ImportPath(g.layout.ModulePath, g.layout.AppDir, spec)

	src, err := os.ReadFile(mainFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return goaerrors.WrapIO(err, goaerrors.CodeRemoveFailed, "failed to read main.go")
	}

	updated, changed, err := RemoveBlankImport(string(src), importPath)
	if err != nil {
		return goaerrors.WrapIO(err, goaerrors.CodeRemoveFailed, "failed to unregister "+importPath+" from main.go")
	}
	if !changed {
		return nil
	}

	if err := writeFileAtomic(mainFile, []byte(updated), 0644); err != nil {
		return goaerrors.WrapIO(err, goaerrors.CodeRemoveFailed, "failed to write main.go")
	}

	g.logger.Info(ctx, "unregistered route from main.go", "import", importPath)
	return nil
}

// AddBlankImport adds `_ "importPath"` to the imports of a Go source file
// and returns the gofmt'd result. It reports false when the path is already
// imported under any name. CRLF line endings are kept.
func AddBlankImport(src, importPath string) (string, bool, error) {
	fset, file, err := parseSource(src)
	if err != nil {
		return src, false, err
	}
	if imported(file, importPath) {
		return src, false, nil
	}
	if !astutil.AddNamedImport(fset, file, "_", importPath) {
		return src, false, nil
	}

	out, err := printSource(fset, file, src)
	if err != nil {
		return src, false, err
	}
	return out, true, nil
}

// RemoveBlankImport deletes the import added by AddBlankImport. Imports of
// the same path under another name are left alone.
func RemoveBlankImport(src, importPath string) (string, bool, error) {
	fset, file, err := parseSource(src)
	if err != nil {
		return src, false, err
	}

	parens := make(map[*ast.GenDecl]token.Pos)
	for _, decl := range file.Decls {
		if gen, ok := decl.(*ast.GenDecl); ok && gen.Tok == token.IMPORT && gen.Lparen.IsValid() {
			parens[gen] = gen.Lparen
		}
	}

	if !astutil.DeleteNamedImport(fset, file, "_", importPath) {
		return src, false, nil
	}

	// astutil collapses a block left with one import; keep the block as written
	for gen, lparen := range parens {
		if !gen.Lparen.IsValid() {
			gen.Lparen = lparen
		}
	}

	out, err := printSource(fset, file, src)
	if err != nil {
		return src, false, err
	}
	return out, true, nil
}

func parseSource(src string) (*token.FileSet, *ast.File, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "main.go", src, parser.ParseComments)
	if err != nil {
		return nil, nil, err
	}
	return fset, file, nil
}

func printSource(fset *token.FileSet, file *ast.File, orig string) (string, error) {
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return "", err
	}

	out := buf.String()
	if strings.Contains(orig, "\r\n") {
		out = strings.ReplaceAll(out, "\n", "\r\n")
	}
	return out, nil
}

func imported(file *ast.File, importPath string) bool {
	for _, spec := range file.Imports {
		if p, err := strconv.Unquote(spec.Path.Value); err == nil && p == importPath {
			return true
		}
	}
	return false
}
