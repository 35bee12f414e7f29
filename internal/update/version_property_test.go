package update

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestVersionOrderingProperties checks that tag comparison is a strict total
// order and agrees with the checker's decision.
func TestVersionOrderingProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	component := gen.IntRange(0, 20)
	tag := gopter.CombineGens(component, component, component).Map(func(v []interface{}) VersionTag {
		return VersionTag{Major: v[0].(int), Minor: v[1].(int), Patch: v[2].(int)}
	})

	properties.Property("compare is antisymmetric", prop.ForAll(
		func(a, b VersionTag) bool {
			return a.Compare(b) == -b.Compare(a)
		},
		tag, tag,
	))

	properties.Property("exactly one of less, equal, greater", prop.ForAll(
		func(a, b VersionTag) bool {
			n := 0
			if a.Less(b) {
				n++
			}
			if b.Less(a) {
				n++
			}
			if a == b {
				n++
			}
			return n == 1
		},
		tag, tag,
	))

	properties.Property("less is transitive", prop.ForAll(
		func(a, b, c VersionTag) bool {
			if a.Less(b) && b.Less(c) {
				return a.Less(c)
			}
			return true
		},
		tag, tag, tag,
	))

	properties.Property("string form parses back", prop.ForAll(
		func(a VersionTag) bool {
			back, err := ParseVersionTag("v" + a.String())
			return err == nil && back == a
		},
		tag,
	))

	properties.Property("update available iff remote is greater", prop.ForAll(
		func(local, remote VersionTag) bool {
			if remote.IsZero() {
				return true
			}
			d, err := NewChecker(staticFetcher(remote.String()), time.Second).Check(context.Background(), local)
			return err == nil && d.Available == local.Less(remote)
		},
		tag, tag,
	))

	properties.TestingRun(t)
}
