// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

type repoLister interface {
	ListRepos(reposFile string, reposType RepoType, extraRepos []string) (string, []Repo, error)
}

type repoCloner interface {
	CloneCommand(url, dir string) []string
	Clone(url, dir string) error
}

type permissionQuerier interface {
	ReadableRepos(root string) (map[string]bool, error)
}

type Runner struct {
	Cfg Config

	out       io.Writer
	logger    *log.Logger
	lister    repoLister
	cloner    repoCloner
	gitolite  permissionQuerier
	timeSince func(time.Time) time.Duration
}

// Run clones the extra repos selected by cfg, writing progress to stdout
// and diagnostics to stderr.
func Run(cfg Config) error {
	r, err := NewRunner(cfg, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}
	_, err = r.Run()
	return err
}

func NewRunner(cfg Config, out, errOut io.Writer) (*Runner, error) {
	logger := NewLogger(errOut, cfg.Verbosity)
	evaluator, err := NewEvaluator(cfg, logger)
	if err != nil {
		return nil, err
	}
	gitOut := out
	if !cfg.IsVerbosity(VerbosityMinimal) {
		gitOut = io.Discard
	}
	return &Runner{
		Cfg:       cfg,
		out:       out,
		logger:    logger,
		lister:    evaluator,
		cloner:    Git{Dir: cfg.ProjectDir, Out: gitOut},
		gitolite:  Gitolite{Logger: logger},
		timeSince: time.Since,
	}, nil
}

func (r *Runner) log(format string, a ...any) {
	fmt.Fprintf(r.out, format, a...)
}

func (r *Runner) banner(title string) {
	r.log("\n***\n*** %s\n***\n", title)
}

func (r *Runner) Run() (Result, error) {
	var result Result
	cfg := r.Cfg
	minimal := cfg.IsVerbosity(VerbosityMinimal)

	if minimal {
		r.log("\n**************************************************************************\n")
		r.log("Script: %s \\\n%s", ScriptName, cfg.CommandLine(" \\\n"))
	}
	if cfg.ShowDefaults {
		return result, nil
	}

	header, repos, err := r.lister.ListRepos(cfg.ExtraReposFile, cfg.ExtraReposType, cfg.ExtraRepos)
	if err != nil {
		return result, err
	}
	if cfg.IsVerbosity(VerbosityMost) {
		r.log("\n%s\n", header)
	}

	if len(cfg.NotExtraRepos) > 0 {
		if minimal {
			r.banner("Filtering the set of extra repos based on --not-extra-repos:")
			r.log("\n")
		}
		repos = FilterRepos(repos, cfg.NotExtraRepos, func(repo Repo) {
			if minimal {
				r.log("Excluding extra repo '%s'!\n", repo.Name)
			}
		})
	}

	if cfg.GitoliteRoot != "" {
		if minimal {
			r.banner("Filtering the set of extra repos based on --gitolite-root:")
			r.log("\n")
		}
		readable, err := r.gitolite.ReadableRepos(cfg.GitoliteRoot)
		if err != nil {
			return result, err
		}
		repos = FilterGitoliteRepos(repos, cfg.GitoliteRoot, readable, func(repo Repo) {
			if minimal {
				r.log("Excluding extra repo '%s' (no read permission from '%s')!\n", repo.Name, cfg.GitoliteRoot)
			}
		})
	}

	if cfg.IsVerbosity(VerbosityMore) {
		r.banner("List of selected extra repos to clone:")
		r.log("\n%s", RepoTable(repos))
	}

	if !cfg.DoClone {
		return result, nil
	}

	if minimal {
		r.banner("Clone the selected extra repos:")
	}
	for _, repo := range repos {
		if err := r.cloneRepo(repo, &result); err != nil {
			return result, err
		}
	}

	if minimal {
		r.printResult(result)
	}

	return result, nil
}

func (r *Runner) cloneRepo(repo Repo, result *Result) error {
	cfg := r.Cfg
	minimal := cfg.IsVerbosity(VerbosityMinimal)

	if minimal {
		r.log("\nCloning repo %s ...\n", repo.Name)
	}

	path := repo.Dir
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.ProjectDir, path)
	}
	if _, err := os.Lstat(path); err == nil {
		if minimal {
			r.log("\n  ==> Repo dir = '%s' already exists.  Skipping clone!\n", repo.Dir)
		}
		if !isGitRepo(path) {
			r.logger.Warn("existing repo dir is not a git repo", "repo", repo.Name, "dir", repo.Dir)
		}
		result.Skipped = append(result.Skipped, SkippedRepo{Name: repo.Name, Dir: repo.Dir, Reason: "already exists"})
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat repo dir %q: %w", repo.Dir, err)
	}

	if repo.VCType != VCTypeGit {
		r.log("\n  ==> ERROR: Repo type '%s' not supported!\n", repo.VCType)
		return fmt.Errorf("%w: %q (repo %s)", ErrUnsupportedVCType, repo.VCType, repo.Name)
	}

	command := strings.Join(r.cloner.CloneCommand(repo.URL, repo.Dir), " ")
	result.Commands = append(result.Commands, command)

	if !cfg.DoOp {
		if minimal {
			r.log("\nRunning: %s\n", command)
		}
		return nil
	}

	if minimal {
		r.log("\nRunning: %s\n\n", command)
	}
	start := time.Now()
	if err := r.cloner.Clone(repo.URL, repo.Dir); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCloneFailed, command, err)
	}
	if minimal {
		r.log("\n  Runtime for command = %s\n", r.timeSince(start).Round(time.Millisecond))
	}
	result.Cloned = append(result.Cloned, repo.Name)
	return nil
}

func (r *Runner) printResult(res Result) {
	r.log("\n")
	if r.Cfg.DoOp {
		if len(res.Cloned) > 0 {
			r.log("Cloned: %d repos\n", len(res.Cloned))
			for _, name := range res.Cloned {
				r.log("  - %s\n", name)
			}
		}
	} else if len(res.Commands) > 0 {
		r.log("Would clone: %d repos\n", len(res.Commands))
	}

	if len(res.Skipped) > 0 {
		r.log("Skipped (%s): %d repos\n", res.Skipped[0].Reason, len(res.Skipped))
		for _, skip := range res.Skipped {
			r.log("  - %s (%s)\n", skip.Name, skip.Dir)
		}
	}
}
