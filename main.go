package main

import (
	"os"

	"github.com/kleeedolinux/goa-cli/cmd"
	"github.com/kleeedolinux/goa-cli/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.ExitCode(err))
	}
}
