// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// ScriptName is the name used when echoing the resolved command line.
const ScriptName = "cloneextrarepos"

const usageHeader = `Usage: cloneextrarepos [options]

Clones the extra repos listed in a TriBITS ExtraRepositoriesList.cmake file.
Run it from the base project directory:

  $ cd <projectDir>
  $ cloneextrarepos

By default all the 'Nightly' extra repos listed in
<projectDir>/cmake/ExtraRepositoriesList.cmake are cloned. Use
--extra-repos to select a subset and --not-extra-repos to exclude repos.

To see the full list of repos that would be cloned, pass:

  --skip-clone --verbosity=more

Options:
`

func (v *Verbosity) Set(s string) error {
	l, err := ParseVerbosity(s)
	if err != nil {
		return err
	}
	*v = l
	return nil
}

func (v *Verbosity) Type() string { return "level" }

func (t *RepoType) Set(s string) error {
	rt, err := ParseRepoType(s)
	if err != nil {
		return err
	}
	*t = rt
	return nil
}

func (t *RepoType) Type() string { return "type" }

// negatedBool writes the inverse of its argument to a bool shared with
// another flag, so that e.g. --do-clone and --skip-clone resolve last one wins.
type negatedBool struct {
	p *bool
}

func (b negatedBool) String() string {
	if b.p == nil {
		return "false"
	}
	return strconv.FormatBool(!*b.p)
}

func (b negatedBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*b.p = !v
	return nil
}

func (b negatedBool) Type() string { return "bool" }

// ParseOptions parses the command line arguments (without the program name).
// Usage is written to out on -h/--help (pflag.ErrHelp is returned) and on
// usage errors, which wrap ErrUsage.
func ParseOptions(args []string, out io.Writer) (Config, error) {
	cfg := DefaultConfig()

	var extraRepos, notExtraRepos string

	fs := pflag.NewFlagSet(ScriptName, pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.SortFlags = false
	fs.Usage = func() {
		fmt.Fprint(out, usageHeader)
		fs.PrintDefaults()
	}

	fs.StringVar(&extraRepos, "extra-repos", "",
		"comma-separated names of extra repos to clone; must be a subset of the repos of type --extra-repos-type (empty selects all)")
	fs.StringVar(&notExtraRepos, "not-extra-repos", "",
		"comma-separated names of extra repos NOT to clone")
	fs.StringVar(&cfg.ExtraReposFile, "extra-repos-file", cfg.ExtraReposFile,
		"path of the ExtraRepositoriesList.cmake file (absolute or relative to the project dir)")
	fs.Var(&cfg.ExtraReposType, "extra-repos-type",
		"type of extra repos to select: "+strings.Join(repoTypeNames, ", "))
	fs.StringVar(&cfg.GitoliteRoot, "gitolite-root", cfg.GitoliteRoot,
		"gitolite root (e.g. git@<some-url>); repos under it are selected only if 'ssh <root> info' grants R")
	fs.StringVar(&cfg.WithCmake, "with-cmake", cfg.WithCmake,
		"cmake command used to run the extra repos evaluator script")
	fs.StringVar(&cfg.TribitsDir, "tribits-dir", cfg.TribitsDir,
		"TriBITS base dir holding ci_support/ (absolute or relative to the project dir)")
	fs.Var(&cfg.Verbosity, "verbosity",
		"output level (cumulative): none, minimal, more, most")

	fs.BoolVar(&cfg.DoClone, "do-clone", cfg.DoClone, "clone the selected repos")
	fs.VarPF(negatedBool{&cfg.DoClone}, "skip-clone", "",
		"skip the clone and just show what would be done").NoOptDefVal = "true"
	fs.BoolVar(&cfg.DoOp, "do-op", cfg.DoOp, "run the clone commands")
	fs.VarPF(negatedBool{&cfg.DoOp}, "no-op", "",
		"only print the clone commands").NoOptDefVal = "true"

	fs.BoolVar(&cfg.ShowDefaults, "show-defaults", false, "show the resolved option values and do nothing else")

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return cfg, err
		}
		fs.Usage()
		return cfg, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return cfg, fmt.Errorf("%w: unexpected arguments: %s", ErrUsage, strings.Join(fs.Args(), " "))
	}

	cfg.ExtraRepos = cleanNames(strings.Split(extraRepos, ","))
	cfg.NotExtraRepos = cleanNames(strings.Split(notExtraRepos, ","))

	return cfg, nil
}

func cleanNames(names []string) []string {
	var cleaned []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" {
			cleaned = append(cleaned, name)
		}
	}
	return cleaned
}

// CommandLine renders the resolved options so that they can be passed back
// to the tool. Each option is preceded by two spaces and followed by terminator.
func (c Config) CommandLine(terminator string) string {
	var sb strings.Builder
	opt := func(name, value string) {
		fmt.Fprintf(&sb, "  --%s='%s'%s", name, value, terminator)
	}
	opt("extra-repos", strings.Join(c.ExtraRepos, ","))
	opt("not-extra-repos", strings.Join(c.NotExtraRepos, ","))
	opt("extra-repos-file", c.ExtraReposFile)
	opt("extra-repos-type", c.ExtraReposType.String())
	opt("gitolite-root", c.GitoliteRoot)
	opt("with-cmake", c.WithCmake)
	opt("tribits-dir", c.TribitsDir)
	opt("verbosity", c.Verbosity.String())
	if c.DoClone {
		sb.WriteString("  --do-clone" + terminator)
	} else {
		sb.WriteString("  --skip-clone" + terminator)
	}
	if c.DoOp {
		sb.WriteString("  --do-op" + terminator)
	} else {
		sb.WriteString("  --no-op" + terminator)
	}
	return sb.String()
}
