package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
	"github.com/kleeedolinux/goa-cli/internal/pathspec"
	"github.com/spf13/cobra"
)

// Prompter asks the user for missing input on a terminal.
type Prompter interface {
	Input(title, placeholder string, validate func(string) error) (string, error)
	Confirm(title string) (bool, error)
}

// errCancelled is returned when the user aborts a prompt.
var errCancelled = errors.New("cancelled")

type huhPrompter struct{}

func (huhPrompter) Input(title, placeholder string, validate func(string) error) (string, error) {
	var value string
	err := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Validate(validate).
		Value(&value).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", errCancelled
	}
	return value, err
}

func (huhPrompter) Confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

var placeholders = map[pathspec.Kind]string{
	pathspec.KindAPIRoute:  "users/[id]",
	pathspec.KindPageRoute: "blog/[slug]",
	pathspec.KindComponent: "card",
}

// pathArgument returns the path given on the command line, prompting for it
// when it was omitted and a terminal is attached.
func pathArgument(cmd *cobra.Command, args []string, kind pathspec.Kind) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	d := GetDeps()
	if d == nil || !d.Interactive || d.Prompter == nil {
		return "", goaerrors.NewValidationError(goaerrors.CodeEmptyPath,
			fmt.Sprintf("missing %s argument (usage: %s)", argName(kind), cmd.UseLine()))
	}

	return d.Prompter.Input(
		fmt.Sprintf("%s %s", kind, argName(kind)),
		placeholders[kind],
		func(s string) error {
			_, err := pathspec.Parse(kind, s)
			return err
		},
	)
}

// confirmDelete asks before removing target unless --yes was passed or no
// terminal is attached.
func confirmDelete(yes bool, rel string) (bool, error) {
	d := GetDeps()
	if yes || d == nil || !d.Interactive || d.Prompter == nil {
		return true, nil
	}
	return d.Prompter.Confirm(fmt.Sprintf("Delete %s?", rel))
}

func argName(kind pathspec.Kind) string {
	if kind == pathspec.KindComponent {
		return "name"
	}
	return "path"
}
