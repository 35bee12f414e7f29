// Package pathspec turns a logical route or component path such as
// "users/[id]/posts" into a validated PathSpec and maps it onto its
// deterministic place in a project tree.
//
// Parsing is pure: no filesystem access happens here. The placement rules
// in placement.go are the single table both the generator (spec -> file)
// and the scanner (file -> spec) derive from.
package pathspec

import (
	"fmt"
	"regexp"
	"strings"

	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
)

// Kind is the type of entity a PathSpec describes.
type Kind int

const (
	KindAPIRoute Kind = iota
	KindPageRoute
	KindComponent
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindAPIRoute, KindPageRoute, KindComponent}

// String returns the string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindAPIRoute:
		return "api"
	case KindPageRoute:
		return "page"
	case KindComponent:
		return "component"
	default:
		return "unknown"
	}
}

// ParseKind converts "api", "page" or "component" into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "api":
		return KindAPIRoute, nil
	case "page":
		return KindPageRoute, nil
	case "component":
		return KindComponent, nil
	default:
		return 0, fmt.Errorf("unknown kind %q (expected api, page or component)", s)
	}
}

var identRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// IsIdentifier reports whether s is a valid static segment or parameter name.
func IsIdentifier(s string) bool {
	return identRe.MatchString(s)
}

// Segment is one element of a PathSpec.
type Segment struct {
	// Name is the bare identifier, without brackets for dynamic segments.
	Name    string
	Dynamic bool
	Index   int
}

// String renders the segment as it appears on disk.
func (s Segment) String() string {
	if s.Dynamic {
		return "[" + s.Name + "]"
	}
	return s.Name
}

// PathSpec is the validated identity of a route or component.
type PathSpec struct {
	Kind     Kind
	Segments []Segment
}

// Raw joins the segments back into the logical path.
func (p PathSpec) Raw() string {
	return strings.Join(p.Names(), "/")
}

// Names returns the on-disk form of every segment.
func (p PathSpec) Names() []string {
	names := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		names[i] = s.String()
	}
	return names
}

// Params returns the parameter names bound by dynamic segments, in order.
func (p PathSpec) Params() []string {
	var params []string
	for _, s := range p.Segments {
		if s.Dynamic {
			params = append(params, s.Name)
		}
	}
	return params
}

// DynamicSegments returns the dynamic segments with their positions.
func (p PathSpec) DynamicSegments() []Segment {
	var out []Segment
	for _, s := range p.Segments {
		if s.Dynamic {
			out = append(out, s)
		}
	}
	return out
}

// IsDynamic reports whether any segment is dynamic.
func (p PathSpec) IsDynamic() bool {
	for _, s := range p.Segments {
		if s.Dynamic {
			return true
		}
	}
	return false
}

// Name returns the last segment's identifier.
func (p PathSpec) Name() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1].Name
}

// Equal reports whether two specs have the same kind and segments.
func (p PathSpec) Equal(o PathSpec) bool {
	if p.Kind != o.Kind || len(p.Segments) != len(o.Segments) {
		return false
	}
	for i := range p.Segments {
		if p.Segments[i] != o.Segments[i] {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer.
func (p PathSpec) String() string {
	return p.Kind.String() + ":" + p.Raw()
}

// Parse validates raw as a path of the given kind.
//
// Surrounding whitespace and slashes are ignored. Each segment must be an
// identifier (letters, digits, '-' and '_') or a bracketed identifier for a
// dynamic segment.
func Parse(kind Kind, raw string) (PathSpec, error) {
	rule, ok := rules[kind]
	if !ok {
		return PathSpec{}, goaerrors.NewValidationError(goaerrors.CodeInvalidSegment,
			fmt.Sprintf("unknown kind %d", int(kind)))
	}

	trimmed := strings.Trim(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return PathSpec{}, goaerrors.NewValidationError(goaerrors.CodeEmptyPath,
			fmt.Sprintf("%s path cannot be empty", kind)).WithContext("input", raw)
	}

	parts := strings.Split(trimmed, "/")
	if rule.MaxSegments > 0 && len(parts) > rule.MaxSegments {
		return PathSpec{}, goaerrors.NewValidationError(goaerrors.CodeUnsupportedNesting,
			fmt.Sprintf("%s names cannot be nested: %q", kind, raw)).WithContext("input", raw)
	}

	segments := make([]Segment, 0, len(parts))
	seen := make(map[string]bool)

	for i, part := range parts {
		seg, err := parseSegment(part, i)
		if err != nil {
			return PathSpec{}, err.WithContext("input", raw)
		}

		if seg.Dynamic {
			if !rule.AllowDynamic {
				return PathSpec{}, goaerrors.NewValidationError(goaerrors.CodeInvalidSegment,
					fmt.Sprintf("%s names cannot be dynamic: %q", kind, part)).
					WithContext("input", raw).WithContext("segment", part)
			}
			if seen[seg.Name] {
				return PathSpec{}, goaerrors.NewValidationError(goaerrors.CodeDuplicateParam,
					fmt.Sprintf("parameter %q is bound more than once in %q", seg.Name, raw)).
					WithContext("input", raw).WithContext("segment", part)
			}
			seen[seg.Name] = true
		}

		if i == 0 {
			for _, reserved := range rule.Reserved {
				if part == reserved {
					return PathSpec{}, goaerrors.NewValidationError(goaerrors.CodeReservedSegment,
						fmt.Sprintf("%s paths cannot start with reserved segment %q", kind, part)).
						WithContext("input", raw).WithContext("segment", part)
				}
			}
		}

		segments = append(segments, seg)
	}

	return PathSpec{Kind: kind, Segments: segments}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// static tables.
func MustParse(kind Kind, raw string) PathSpec {
	spec, err := Parse(kind, raw)
	if err != nil {
		panic(err)
	}
	return spec
}

func parseSegment(part string, index int) (Segment, *goaerrors.GoaError) {
	if strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]") && len(part) >= 2 {
		name := part[1 : len(part)-1]
		if !IsIdentifier(name) {
			return Segment{}, invalidSegment(part)
		}
		return Segment{Name: name, Dynamic: true, Index: index}, nil
	}

	if !IsIdentifier(part) {
		return Segment{}, invalidSegment(part)
	}

	return Segment{Name: part, Index: index}, nil
}

func invalidSegment(part string) *goaerrors.GoaError {
	return goaerrors.NewValidationError(goaerrors.CodeInvalidSegment,
		fmt.Sprintf("invalid segment %q: use letters, digits, '-' or '_', or [name] for a parameter", part)).
		WithContext("segment", part)
}
