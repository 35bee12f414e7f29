package pathspec

import (
	"path"
	"path/filepath"
	"strings"
)

// Root names the project directory a kind is placed under. The concrete
// directories are resolved by project.Layout.
type Root int

const (
	RootAPI Root = iota
	RootPages
	RootComponents
)

// String returns the string representation of the Root
func (r Root) String() string {
	switch r {
	case RootAPI:
		return "api"
	case RootPages:
		return "pages"
	case RootComponents:
		return "components"
	default:
		return "unknown"
	}
}

// Rule is the placement convention for one kind. Both Location and
// FromLocation are derived from it so creation and scanning stay symmetric.
type Rule struct {
	Root Root
	// Nested rules place one directory per segment and a fixed FileName in
	// the deepest directory. Flat rules place <segment><Ext> directly in the root.
	Nested   bool
	FileName string
	Ext      string
	// MaxSegments of 0 means unlimited.
	MaxSegments int
	// AllowDynamic reports whether bracketed segments are accepted.
	AllowDynamic bool
	// Reserved first segments that would collide with another kind's root.
	Reserved []string
}

var rules = map[Kind]Rule{
	KindAPIRoute: {
		Root:         RootAPI,
		Nested:       true,
		FileName:     "route.go",
		AllowDynamic: true,
	},
	KindPageRoute: {
		Root:         RootPages,
		Nested:       true,
		FileName:     "index.html",
		AllowDynamic: true,
		Reserved:     []string{"api"},
	},
	KindComponent: {
		Root:        RootComponents,
		Nested:      false,
		Ext:         ".html",
		MaxSegments: 1,
	},
}

// RuleFor returns the placement rule for a kind.
func RuleFor(k Kind) Rule {
	return rules[k]
}

// Location is a kind-relative filesystem placement: Dir is the directory
// relative to the kind's root ("" for the root itself) and File the base name.
type Location struct {
	Dir  string
	File string
}

// Path joins Dir and File using the OS separator.
func (l Location) Path() string {
	return filepath.Join(l.Dir, l.File)
}

// Location maps the spec onto its placement below the kind's root.
func (p PathSpec) Location() Location {
	rule := RuleFor(p.Kind)
	names := p.Names()

	if rule.Nested {
		return Location{
			Dir:  filepath.Join(names...),
			File: rule.FileName,
		}
	}

	return Location{
		Dir:  "",
		File: names[len(names)-1] + rule.Ext,
	}
}

// FromLocation inverts Location. rel is the file path relative to the kind's
// root. Files that do not follow the kind's convention return false.
func FromLocation(kind Kind, rel string) (PathSpec, bool) {
	rule, ok := rules[kind]
	if !ok {
		return PathSpec{}, false
	}

	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
		return PathSpec{}, false
	}

	dir, file := path.Split(rel)
	dir = strings.TrimSuffix(dir, "/")

	var raw string
	if rule.Nested {
		if file != rule.FileName || dir == "" {
			return PathSpec{}, false
		}
		raw = dir
	} else {
		if dir != "" || !strings.HasSuffix(file, rule.Ext) {
			return PathSpec{}, false
		}
		raw = strings.TrimSuffix(file, rule.Ext)
	}

	spec, err := Parse(kind, raw)
	if err != nil {
		return PathSpec{}, false
	}

	// The round trip must land on the same file, otherwise the entry is stray.
	if filepath.ToSlash(spec.Location().Path()) != rel {
		return PathSpec{}, false
	}

	return spec, true
}
