package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/redhatinsights/sysconfig-inspector/internal/hostinfo"
	"github.com/redhatinsights/sysconfig-inspector/internal/l10n"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

const (
	exitFailure = 1
	exitDrift   = 2
)

func main() {
	app := newApp(afero.NewOsFs(), hostinfo.Hostname)

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.T("error: %v", err))
		os.Exit(exitFailure)
	}
}
