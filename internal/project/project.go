// Package project locates a Go on Airplanes project on disk and derives the
// directory layout the engine places routes and components into.
//
// The project's config.json is consumed, never written. Only the keys that
// decide placement are read; everything else in the file is ignored.
package project

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
	"github.com/kleeedolinux/goa-cli/internal/pathspec"
	"github.com/spf13/viper"
	"golang.org/x/mod/modfile"
)

// ConfigFileName marks the root of a project.
const ConfigFileName = "config.json"

// Settings are the placement-relevant keys of config.json.
type Settings struct {
	AppDir       string
	ComponentDir string
	AppName      string
}

// DefaultSettings mirrors the values a freshly bootstrapped project ships with.
func DefaultSettings() Settings {
	return Settings{
		AppDir:       "app",
		ComponentDir: "app/components",
		AppName:      "goonairplanes",
	}
}

// FindRoot walks up from start until it finds a directory holding config.json.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", goaerrors.WrapConfig(err, goaerrors.CodeProjectNotFound, "cannot resolve "+start)
	}

	for {
		info, err := os.Stat(filepath.Join(dir, ConfigFileName))
		if err == nil && !info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", goaerrors.NewConfigError(goaerrors.CodeProjectNotFound,
		"could not find config.json; are you inside a Go on Airplanes project?").
		WithContext("start", start)
}

// LoadSettings reads config.json from root, applying defaults for missing keys.
func LoadSettings(root string) (Settings, error) {
	defaults := DefaultSettings()

	v := viper.New()
	v.SetConfigFile(filepath.Join(root, ConfigFileName))
	v.SetConfigType("json")
	v.SetDefault("directories.appDir", defaults.AppDir)
	v.SetDefault("directories.componentDir", defaults.ComponentDir)
	v.SetDefault("meta.appName", defaults.AppName)

	if err := v.ReadInConfig(); err != nil {
		return Settings{}, goaerrors.WrapConfig(err, goaerrors.CodeConfigInvalid,
			"failed to read "+ConfigFileName).WithContext("root", root)
	}

	s := Settings{
		AppDir:       v.GetString("directories.appDir"),
		ComponentDir: v.GetString("directories.componentDir"),
		AppName:      v.GetString("meta.appName"),
	}

	if err := s.validate(); err != nil {
		return Settings{}, err
	}

	return s, nil
}

func (s Settings) validate() error {
	for key, dir := range map[string]string{
		"directories.appDir":       s.AppDir,
		"directories.componentDir": s.ComponentDir,
	} {
		if err := validateRelDir(dir); err != nil {
			return goaerrors.NewConfigError(goaerrors.CodeConfigInvalid,
				key+" "+err.Error()).WithContext("value", dir)
		}
	}

	if err := s.validateNesting(); err != nil {
		return err
	}

	if strings.TrimSpace(s.AppName) == "" {
		return goaerrors.NewConfigError(goaerrors.CodeConfigInvalid, "meta.appName cannot be empty")
	}

	return nil
}

// validateNesting keeps the component root out of the way of pages and API
// routes: it may sit inside the app directory, but it may not be the app
// directory, contain it, or live under its api directory.
func (s Settings) validateNesting() error {
	app := cleanRel(s.AppDir)
	comp := cleanRel(s.ComponentDir)
	api := path.Join(app, "api")

	var reason string
	switch {
	case withinRel(app, comp):
		reason = "must not be or contain directories.appDir (" + app + ")"
	case withinRel(comp, api):
		reason = "must not be inside the API directory (" + api + ")"
	default:
		return nil
	}

	return goaerrors.NewConfigError(goaerrors.CodeConfigInvalid,
		"directories.componentDir "+reason).
		WithContext("value", s.ComponentDir)
}

func cleanRel(dir string) string {
	return path.Clean(filepath.ToSlash(strings.TrimSpace(dir)))
}

// withinRel reports whether the slash path p is dir or lies below it.
func withinRel(p, dir string) bool {
	return p == dir || strings.HasPrefix(p, dir+"/")
}

type dirError string

func (e dirError) Error() string { return string(e) }

func validateRelDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return dirError("cannot be empty")
	}
	if filepath.IsAbs(dir) {
		return dirError("must be relative to the project root")
	}
	clean := filepath.ToSlash(filepath.Clean(dir))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return dirError("must stay inside the project root")
	}
	return nil
}

// Layout holds the absolute directories of one project.
type Layout struct {
	Root           string
	AppDir         string
	APIRoot        string
	PagesRoot      string
	ComponentsRoot string
	AppName        string
	// ModulePath is the Go module path used for blank imports in main.go.
	ModulePath string
}

// NewLayout derives a Layout from a project root and its settings.
func NewLayout(root string, s Settings) *Layout {
	appDir := filepath.Join(root, filepath.FromSlash(s.AppDir))

	return &Layout{
		Root:           root,
		AppDir:         filepath.ToSlash(filepath.Clean(s.AppDir)),
		APIRoot:        filepath.Join(appDir, "api"),
		PagesRoot:      appDir,
		ComponentsRoot: filepath.Join(root, filepath.FromSlash(s.ComponentDir)),
		AppName:        s.AppName,
		ModulePath:     s.AppName,
	}
}

// Open finds the project containing start and builds its Layout.
func Open(start string) (*Layout, error) {
	root, err := FindRoot(start)
	if err != nil {
		return nil, err
	}

	settings, err := LoadSettings(root)
	if err != nil {
		return nil, err
	}

	layout := NewLayout(root, settings)
	if mod := readModulePath(filepath.Join(root, "go.mod")); mod != "" {
		layout.ModulePath = mod
	}

	return layout, nil
}

// RootFor returns the absolute directory a placement root maps to.
func (l *Layout) RootFor(r pathspec.Root) string {
	switch r {
	case pathspec.RootAPI:
		return l.APIRoot
	case pathspec.RootPages:
		return l.PagesRoot
	case pathspec.RootComponents:
		return l.ComponentsRoot
	default:
		return ""
	}
}

// Dir returns the absolute directory a spec's file lives in.
func (l *Layout) Dir(spec pathspec.PathSpec) string {
	root := l.RootFor(pathspec.RuleFor(spec.Kind).Root)
	return filepath.Join(root, spec.Location().Dir)
}

// Abs returns the absolute path of a spec's file.
func (l *Layout) Abs(spec pathspec.PathSpec) string {
	root := l.RootFor(pathspec.RuleFor(spec.Kind).Root)
	return filepath.Join(root, spec.Location().Path())
}

// MainFile is the project's entry point, where API packages are registered.
func (l *Layout) MainFile() string {
	return filepath.Join(l.Root, "main.go")
}

// Rel returns path relative to the project root using forward slashes, or
// path unchanged when it lies outside the root.
func (l *Layout) Rel(path string) string {
	rel, err := filepath.Rel(l.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// Within reports whether path is dir itself or lies below it.
func Within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// readModulePath returns the module directive of a go.mod file, or "".
func readModulePath(goMod string) string {
	data, err := os.ReadFile(goMod)
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}
