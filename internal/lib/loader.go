// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

// ReposListDelimiter separates the evaluator's diagnostic output from the
// serialized repo list.
const ReposListDelimiter = "*** Extra Repositories Python Dictionary"

// EvaluatorScript is the cmake -P script, relative to the TriBITS dir.
const EvaluatorScript = "ci_support/TribitsGetExtraReposForCheckinTest.cmake"

// Evaluator runs the cmake script that reads the ExtraRepositoriesList.cmake file.
type Evaluator struct {
	Command    []string
	ProjectDir string
	TribitsDir string
	Logger     *log.Logger
}

// NewEvaluator creates an Evaluator from the --with-cmake, project and TriBITS settings.
func NewEvaluator(cfg Config, logger *log.Logger) (*Evaluator, error) {
	command, err := shlex.Split(cfg.WithCmake)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid --with-cmake %q: %v", ErrUsage, cfg.WithCmake, err)
	}
	if len(command) == 0 {
		return nil, fmt.Errorf("%w: --with-cmake must not be empty", ErrUsage)
	}
	tribitsDir := cfg.TribitsDir
	if !filepath.IsAbs(tribitsDir) {
		tribitsDir = filepath.Join(cfg.ProjectDir, tribitsDir)
	}
	return &Evaluator{
		Command:    command,
		ProjectDir: cfg.ProjectDir,
		TribitsDir: tribitsDir,
		Logger:     logger,
	}, nil
}

// Args returns the full evaluator command line.
func (e *Evaluator) Args(reposFile string, reposType RepoType, extraRepos []string) []string {
	args := append([]string{}, e.Command...)
	return append(args,
		"-DPROJECT_SOURCE_DIR="+e.ProjectDir,
		"-DTRIBITS_BASE_DIR="+e.TribitsDir,
		"-DEXTRA_REPOS_FILE="+reposFile,
		"-DENABLE_KNOWN_EXTERNAL_REPOS_TYPE="+reposType.String(),
		"-DEXTRA_REPOS="+strings.Join(extraRepos, ","),
		"-DNO_CHECK_FOR_MISSING_EXTRA_REPOS=TRUE",
		"-P", filepath.Join(e.TribitsDir, EvaluatorScript),
	)
}

// ListRepos runs the evaluator and decodes its output.
// The returned header is the diagnostic output preceding the repo list.
func (e *Evaluator) ListRepos(reposFile string, reposType RepoType, extraRepos []string) (string, []Repo, error) {
	args := e.Args(reposFile, reposType, extraRepos)
	if e.Logger != nil {
		e.Logger.Debug("running extra repos evaluator", "cmd", strings.Join(args, " "))
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = e.ProjectDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v\n%s", ErrEvaluatorFailed, strings.Join(args, " "), err, out)
	}

	header, repos, err := ParseEvaluatorOutput(string(out))
	if err != nil {
		return header, nil, fmt.Errorf("%w\n%s", err, out)
	}
	return header, repos, nil
}

// ParseEvaluatorOutput splits raw evaluator output at ReposListDelimiter and
// decodes the list that follows it.
func ParseEvaluatorOutput(raw string) (header string, repos []Repo, err error) {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		if strings.TrimRight(line, "\r") != ReposListDelimiter {
			continue
		}
		header = strings.Join(lines[:i], "\n")
		repos, err = DecodeRepos(strings.Join(lines[i+1:], "\n"))
		return header, repos, err
	}
	return raw, nil, fmt.Errorf("%w: missing %q line", ErrMalformedRepoList, ReposListDelimiter)
}

// DecodeRepos decodes a list of repo mappings, e.g.
//
//	[
//	  {
//	    'NAME' : 'ExtraRepo1',
//	    'DIR' : 'ExtraRepo1',
//	    'REPOTYPE' : 'GIT',
//	    'REPOURL' : 'someurl.com:/ExtraRepo1',
//	    'HASPKGS' : 'HASPACKAGES',
//	    'PREPOST' : 'POST',
//	    'CATEGORY' : 'Continuous',
//	    },
//	  ]
//
// The text must be a single list. Every key and value must be a quoted
// string. Unknown keys, missing required keys and duplicate names are rejected.
func DecodeRepos(s string) ([]Repo, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	dec := yaml.NewDecoder(strings.NewReader(s))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRepoList, err)
	}
	if err := dec.Decode(new(yaml.Node)); err == nil {
		return nil, fmt.Errorf("%w: unexpected content after the repo list", ErrMalformedRepoList)
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRepoList, err)
	}
	if err := checkQuoted(&doc); err != nil {
		return nil, err
	}

	strict := yaml.NewDecoder(strings.NewReader(s))
	strict.KnownFields(true)

	var repos []Repo
	if err := strict.Decode(&repos); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRepoList, err)
	}

	seen := make(map[string]bool)
	for i, repo := range repos {
		var missing []string
		for _, f := range []struct{ key, value string }{
			{"NAME", repo.Name},
			{"DIR", repo.Dir},
			{"REPOTYPE", repo.VCType},
			{"REPOURL", repo.URL},
		} {
			if f.value == "" {
				missing = append(missing, f.key)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: entry %d: missing %s", ErrMalformedRepoList, i+1, strings.Join(missing, ", "))
		}
		if seen[repo.Name] {
			return nil, fmt.Errorf("%w: duplicate repo name %q", ErrMalformedRepoList, repo.Name)
		}
		seen[repo.Name] = true
	}

	return repos, nil
}

// checkQuoted rejects scalars that are not quoted strings, e.g. bare words
// and numbers, and aliases.
func checkQuoted(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) == 0 {
			return fmt.Errorf("%w: line %d: unquoted value %q", ErrMalformedRepoList, n.Line, n.Value)
		}
	case yaml.AliasNode:
		return fmt.Errorf("%w: line %d: unexpected alias", ErrMalformedRepoList, n.Line)
	}
	for _, c := range n.Content {
		if err := checkQuoted(c); err != nil {
			return err
		}
	}
	return nil
}
