package main

import (
	"github.com/urfave/cli/v2"

	"github.com/redhatinsights/sysconfig-inspector/internal/limits"
	"github.com/redhatinsights/sysconfig-inspector/internal/sshd"
	"github.com/redhatinsights/sysconfig-inspector/internal/sysctl"
)

func (a *application) sshdInspector(c *cli.Context) *sshd.Inspector {
	path := a.config.SSHDConfig
	if c.IsSet("path") {
		path = c.String("path")
	}
	var insp *sshd.Inspector
	a.inspect(c, "sshd", func() {
		insp = sshd.NewInspector(a.reader(), path)
	})
	return insp
}

func (a *application) sshdShow(c *cli.Context) error {
	insp := a.sshdInspector(c)

	r := a.newReport("sshd")
	r.Files = insp.ConfigFiles()
	r.Config = insp.Config()
	return a.finish(c, r, false)
}

func (a *application) sshdFiles(c *cli.Context) error {
	insp := a.sshdInspector(c)

	r := a.newReport("sshd")
	r.Files = insp.ConfigFiles()
	return a.finish(c, r, false)
}

func (a *application) sshdCompare(c *cli.Context) error {
	p, err := a.loadPolicy(c)
	if err != nil {
		return err
	}
	if p.SSHD == nil {
		return missingSection(c, "sshd")
	}
	insp := a.sshdInspector(c)
	res := insp.CompareTo(*p.SSHD)

	r := a.newReport("sshd")
	r.Files = insp.ConfigFiles()
	r.Comparison = res
	return a.finish(c, r, res.HasDrift())
}

func (a *application) readLimits(c *cli.Context) (files []string, entries []limits.Entry) {
	a.inspect(c, "limits", func() {
		files = limits.Discover(a.reader(), a.config.LimitsConf, a.config.LimitsD)
		entries = limits.Parse(a.reader(), files)
	})
	return files, entries
}

func (a *application) limitsShow(c *cli.Context) error {
	files, entries := a.readLimits(c)

	r := a.newReport("limits")
	r.Files = files
	r.Config = entries
	return a.finish(c, r, false)
}

func (a *application) limitsCompare(c *cli.Context) error {
	p, err := a.loadPolicy(c)
	if err != nil {
		return err
	}
	if p.Limits == nil {
		return missingSection(c, "limits")
	}
	files, entries := a.readLimits(c)
	res := limits.NewResult(entries, p.Limits)

	r := a.newReport("limits")
	r.Files = files
	r.Comparison = res
	return a.finish(c, r, res.HasDrift())
}

func (a *application) readSysctl(c *cli.Context) (files []string, config sysctl.Config) {
	a.inspect(c, "sysctl", func() {
		files = sysctl.Discover(a.reader(), a.config.SysctlConf, a.config.SysctlD)
		config = sysctl.Parse(a.reader(), files)
	})
	return files, config
}

func (a *application) sysctlShow(c *cli.Context) error {
	files, config := a.readSysctl(c)

	r := a.newReport("sysctl")
	r.Files = files
	r.Config = config
	return a.finish(c, r, false)
}

func (a *application) sysctlCompare(c *cli.Context) error {
	p, err := a.loadPolicy(c)
	if err != nil {
		return err
	}
	if p.Sysctl == nil {
		return missingSection(c, "sysctl")
	}
	files, config := a.readSysctl(c)
	res := sysctl.Compare(config, p.Sysctl)

	r := a.newReport("sysctl")
	r.Files = files
	r.Comparison = res
	return a.finish(c, r, res.HasDrift())
}
