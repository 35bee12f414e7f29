// Package testutils builds throwaway project trees for tests.
package testutils

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// MainGo is a minimal project entry point with one import block.
const MainGo = `package main

import (
	"example.com/shop/core"
)

func main() {
	core.Run()
}
`

// ProjectFiles are the files CreateTempProject writes when called without
// overrides.
func ProjectFiles() map[string]string {
	return map[string]string{
		"config.json": `{"directories":{"appDir":"app","componentDir":"app/components"},"meta":{"appName":"shop"}}`,
		"go.mod":      "module example.com/shop\n\ngo 1.24\n",
		"main.go":     MainGo,
	}
}

// CreateTempProject creates a temporary project with config.json, go.mod,
// main.go and an empty app/api directory. Entries in files replace or extend
// the defaults; an empty value skips the file.
func CreateTempProject(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()

	all := ProjectFiles()
	for name, content := range files {
		all[name] = content
	}
	for name, content := range all {
		if content == "" {
			continue
		}
		WriteFile(t, root, name, content)
	}

	require.NoError(t, os.MkdirAll(filepath.Join(root, "app", "api"), 0755))

	return root
}

// WriteFile writes content to the slash-separated rel path below root,
// creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return path
}

// Touch creates a placeholder file at rel below root.
func Touch(t *testing.T, root, rel string) string {
	t.Helper()
	return WriteFile(t, root, rel, "x")
}

// Snapshot records every file and directory under root. Directories are
// keyed with a trailing "/" and map to "".
func Snapshot(root string) (map[string]string, error) {
	out := make(map[string]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			out[rel+"/"] = ""
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[rel] = string(data)
		return nil
	})

	return out, err
}

// MustSnapshot is Snapshot for tests.
func MustSnapshot(t *testing.T, root string) map[string]string {
	t.Helper()

	snap, err := Snapshot(root)
	require.NoError(t, err)
	return snap
}

// EqualSnapshots reports whether two snapshots hold the same entries.
func EqualSnapshots(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}
