// Package update decides whether a newer goa release is published and
// replaces the running binary with it.
//
// The implicit check fails open: any fetch, status or payload problem is
// reported as "up to date" so a flaky network never blocks a command.
package update

import (
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"
	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
)

// VersionTag is a plain major.minor.patch release number.
type VersionTag struct {
	Major int
	Minor int
	Patch int
}

// ParseVersionTag parses "1.2.3" or "v1.2.3". Missing trailing components
// default to zero. Pre-release and build suffixes are rejected.
func ParseVersionTag(s string) (VersionTag, error) {
	raw := strings.TrimSpace(s)
	v, err := goversion.NewVersion(raw)
	if err != nil {
		return VersionTag{}, goaerrors.NewValidationError(goaerrors.CodeBadPayload,
			fmt.Sprintf("invalid version %q", s)).WithContext("input", s)
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return VersionTag{}, goaerrors.NewValidationError(goaerrors.CodeBadPayload,
			fmt.Sprintf("version %q must be a plain major.minor.patch", s)).WithContext("input", s)
	}

	seg := v.Segments()
	if len(seg) > 3 {
		return VersionTag{}, goaerrors.NewValidationError(goaerrors.CodeBadPayload,
			fmt.Sprintf("version %q has more than three components", s)).WithContext("input", s)
	}
	for len(seg) < 3 {
		seg = append(seg, 0)
	}

	return VersionTag{Major: seg[0], Minor: seg[1], Patch: seg[2]}, nil
}

// MustParseVersionTag is like ParseVersionTag but panics on error.
func MustParseVersionTag(s string) VersionTag {
	v, err := ParseVersionTag(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1 comparing major, then minor, then patch.
func (v VersionTag) Compare(o VersionTag) int {
	for _, d := range [3]int{v.Major - o.Major, v.Minor - o.Minor, v.Patch - o.Patch} {
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
	}
	return 0
}

// Less reports whether v orders before o.
func (v VersionTag) Less(o VersionTag) bool {
	return v.Compare(o) < 0
}

// IsZero reports whether v is 0.0.0, the value of an unknown version.
func (v VersionTag) IsZero() bool {
	return v == VersionTag{}
}

// String renders the tag without a "v" prefix.
func (v VersionTag) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// goVersion converts the tag for use with go-version based tooling.
func (v VersionTag) goVersion() *goversion.Version {
	return goversion.Must(goversion.NewVersion(v.String()))
}
