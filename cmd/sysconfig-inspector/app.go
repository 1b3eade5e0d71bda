package main

import (
	"log/slog"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
	"golang.org/x/sys/unix"

	"github.com/redhatinsights/sysconfig-inspector/internal/conf"
	"github.com/redhatinsights/sysconfig-inspector/internal/hostfile"
	"github.com/redhatinsights/sysconfig-inspector/internal/l10n"
	"github.com/redhatinsights/sysconfig-inspector/internal/logging"
	"github.com/redhatinsights/sysconfig-inspector/internal/policy"
	"github.com/redhatinsights/sysconfig-inspector/internal/report"
)

// application holds the state shared by all commands. It is filled in by
// the Before hook once global flags are known.
type application struct {
	fs       afero.Fs
	hostname func() string

	// configErr is the error from loading conf.Configuration.
	configErr error

	config conf.Config
	format report.Format
	logger *slog.Logger
}

func newApp(fs afero.Fs, hostname func() string) *cli.App {
	a := &application{fs: fs, hostname: hostname, configErr: conf.LoadErr}

	exitCodeFlag := &cli.BoolFlag{
		Name:  "exit-code",
		Usage: l10n.T("exit with status %d when the host differs from the policy", exitDrift),
	}
	targetFlag := &cli.StringFlag{
		Name:      "target",
		Aliases:   []string{"t"},
		Usage:     l10n.T("read the expected configuration from `FILE` (.toml, .yaml or .json)"),
		Required:  true,
		TakesFile: true,
	}
	pathFlag := &cli.StringFlag{
		Name:      "path",
		Usage:     l10n.T("inspect the sshd configuration at `FILE`"),
		TakesFile: true,
	}

	return &cli.App{
		Name:    "sysconfig-inspector",
		Version: Version,
		Usage:   l10n.T("inspect and compare sshd, PAM limits and sysctl configuration"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "config",
				Usage:     l10n.T("read tool settings from `FILE`"),
				Value:     conf.DefaultPath,
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   l10n.T("output `FORMAT`: text, json or yaml"),
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: l10n.T("disable colored output"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: l10n.T("log `LEVEL`: debug, info, warn or error"),
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			{
				Name:  "sshd",
				Usage: l10n.T("inspect the OpenSSH server configuration"),
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  l10n.T("print the parsed configuration"),
						Flags:  []cli.Flag{pathFlag},
						Action: a.sshdShow,
					},
					{
						Name:   "files",
						Usage:  l10n.T("list the configuration files, following Include"),
						Flags:  []cli.Flag{pathFlag},
						Action: a.sshdFiles,
					},
					{
						Name:   "compare",
						Usage:  l10n.T("compare the configuration with a policy"),
						Flags:  []cli.Flag{pathFlag, targetFlag, exitCodeFlag},
						Action: a.sshdCompare,
					},
				},
			},
			{
				Name:  "limits",
				Usage: l10n.T("inspect PAM resource limits"),
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  l10n.T("print the parsed limits"),
						Action: a.limitsShow,
					},
					{
						Name:   "compare",
						Usage:  l10n.T("compare the limits with a policy"),
						Flags:  []cli.Flag{targetFlag, exitCodeFlag},
						Action: a.limitsCompare,
					},
				},
			},
			{
				Name:  "sysctl",
				Usage: l10n.T("inspect kernel parameter settings"),
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  l10n.T("print the parsed settings"),
						Action: a.sysctlShow,
					},
					{
						Name:   "compare",
						Usage:  l10n.T("compare the settings with a policy"),
						Flags:  []cli.Flag{targetFlag, exitCodeFlag},
						Action: a.sysctlCompare,
					},
				},
			},
		},
	}
}

func (a *application) before(c *cli.Context) error {
	a.config = conf.Configuration
	if c.IsSet("config") {
		config, err := conf.NewConfigSource(c.String("config")).Read()
		if err != nil {
			return cli.Exit(l10n.T("cannot load configuration: %v", err), exitFailure)
		}
		a.config = config
	} else if a.configErr != nil {
		return cli.Exit(l10n.T("cannot load configuration: %v", a.configErr), exitFailure)
	}

	level := a.config.LogLevel
	if c.IsSet("log-level") {
		l, err := logging.ParseLevel(c.String("log-level"))
		if err != nil {
			return cli.Exit(err, exitFailure)
		}
		level = l
	}
	a.logger = logging.New(level, c.App.ErrWriter)
	slog.SetDefault(a.logger)

	name := a.config.Format
	if c.IsSet("format") {
		name = c.String("format")
	}
	format, err := report.ParseFormat(name)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	a.format = format

	if c.Bool("no-color") || !logging.IsTerminal(c.App.Writer) {
		color.NoColor = true
	}

	if unix.Geteuid() != 0 {
		a.logger.Warn("not running as root, some configuration files may be unreadable")
	}
	return nil
}

func (a *application) reader() *hostfile.Reader {
	return &hostfile.Reader{Fs: a.fs, Logger: a.logger}
}

// inspect runs fn while a spinner is shown on a terminal.
func (a *application) inspect(c *cli.Context, what string, fn func()) {
	if !logging.IsTerminal(c.App.ErrWriter) {
		fn()
		return
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(c.App.ErrWriter))
	s.Suffix = " " + l10n.T("inspecting %v", what)
	s.Start()
	defer s.Stop()
	fn()
}

func (a *application) loadPolicy(c *cli.Context) (policy.Policy, error) {
	p, err := policy.Load(c.String("target"))
	if err != nil {
		return p, cli.Exit(l10n.T("cannot load policy: %v", err), exitFailure)
	}
	return p, nil
}

func (a *application) newReport(inspector string) report.Report {
	return report.New(inspector, a.hostname())
}

// finish writes r and turns drift into the exit status requested with
// --exit-code.
func (a *application) finish(c *cli.Context, r report.Report, drift bool) error {
	if err := report.Write(c.App.Writer, a.format, r); err != nil {
		return cli.Exit(l10n.T("cannot write report: %v", err), exitFailure)
	}
	if drift {
		a.logger.Info("configuration differs from policy", "inspector", r.Inspector, "report", r.ID)
		if c.Bool("exit-code") {
			return cli.Exit("", exitDrift)
		}
	}
	return nil
}

func missingSection(c *cli.Context, section string) error {
	return cli.Exit(l10n.T("policy %v has no %v section", c.String("target"), section), exitFailure)
}
