package cmd

import (
	"fmt"
	"strings"

	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// enumValue is a string flag restricted to a fixed set of choices. Invalid
// values are rejected while the command line is parsed.
type enumValue struct {
	value   string
	choices []string
}

var _ pflag.Value = (*enumValue)(nil)

func newEnumValue(def string, choices ...string) *enumValue {
	return &enumValue{value: def, choices: choices}
}

func (e *enumValue) String() string { return e.value }

func (e *enumValue) Type() string { return "string" }

func (e *enumValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range e.choices {
		if s == c {
			e.value = s
			return nil
		}
	}

	msg := fmt.Sprintf("must be one of %s", strings.Join(e.choices, ", "))
	if guess := closest(s, e.choices); guess != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", guess)
	}
	return fmt.Errorf("%s", msg)
}

// OutputFlags are the flags shared by commands that print structured results.
type OutputFlags struct {
	Format *enumValue
	Quiet  bool
}

// AddOutputFlags registers --format and --quiet on cmd.
func AddOutputFlags(cmd *cobra.Command, def string, formats ...string) *OutputFlags {
	flags := &OutputFlags{Format: newEnumValue(def, formats...)}

	cmd.Flags().VarP(flags.Format, "format", "f",
		fmt.Sprintf("Output format (%s)", strings.Join(formats, "|")))
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Only print errors")

	return flags
}

// Validate rejects flag combinations that make no sense together.
func (f *OutputFlags) Validate() error {
	if f.Quiet && f.Format.String() != f.Format.choices[0] {
		return goaerrors.NewValidationError("INVALID_FLAGS", "cannot combine --quiet with --format "+f.Format.String())
	}
	return nil
}

// closest returns the choice sharing the longest prefix with s, if any.
func closest(s string, choices []string) string {
	best, bestLen := "", 0
	for _, c := range choices {
		n := 0
		for n < len(s) && n < len(c) && s[n] == c[n] {
			n++
		}
		if n > bestLen {
			best, bestLen = c, n
		}
	}
	return best
}
