// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"fmt"
	"strings"
)

// Verbosity levels are cumulative: each level implies all lower ones.
type Verbosity int

const (
	VerbosityNone Verbosity = iota
	VerbosityMinimal
	VerbosityMore
	VerbosityMost
)

var verbosityNames = []string{"none", "minimal", "more", "most"}

func (v Verbosity) String() string {
	if v < VerbosityNone || v > VerbosityMost {
		return fmt.Sprintf("Verbosity(%d)", int(v))
	}
	return verbosityNames[v]
}

// ParseVerbosity parses one of none, minimal, more or most.
func ParseVerbosity(s string) (Verbosity, error) {
	for i, name := range verbosityNames {
		if s == name {
			return Verbosity(i), nil
		}
	}
	return 0, fmt.Errorf("invalid verbosity %q (must be one of %s)", s, strings.Join(verbosityNames, ", "))
}

// RepoType selects which extra repos the evaluator returns.
type RepoType int

const (
	RepoTypeContinuous RepoType = iota
	RepoTypeNightly
	RepoTypeExperimental
)

var repoTypeNames = []string{"Continuous", "Nightly", "Experimental"}

func (t RepoType) String() string {
	if t < RepoTypeContinuous || t > RepoTypeExperimental {
		return fmt.Sprintf("RepoType(%d)", int(t))
	}
	return repoTypeNames[t]
}

// ParseRepoType parses one of Continuous, Nightly or Experimental.
func ParseRepoType(s string) (RepoType, error) {
	for i, name := range repoTypeNames {
		if s == name {
			return RepoType(i), nil
		}
	}
	return 0, fmt.Errorf("invalid extra repos type %q (must be one of %s)", s, strings.Join(repoTypeNames, ", "))
}

const (
	DefaultExtraReposFile = "cmake/ExtraRepositoriesList.cmake"
	DefaultTribitsDir     = "cmake/tribits"
	DefaultWithCmake      = "cmake"
	DefaultRepoType       = RepoTypeNightly
	DefaultVerbosity      = VerbosityMore

	// VCTypeGit is the only supported version control tag.
	VCTypeGit = "GIT"
)

type Config struct {
	ProjectDir string
	TribitsDir string

	ExtraRepos     []string
	NotExtraRepos  []string
	ExtraReposFile string
	ExtraReposType RepoType
	GitoliteRoot   string
	WithCmake      string
	Verbosity      Verbosity

	DoClone      bool
	DoOp         bool
	ShowDefaults bool
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig() Config {
	return Config{
		TribitsDir:     DefaultTribitsDir,
		ExtraReposFile: DefaultExtraReposFile,
		ExtraReposType: DefaultRepoType,
		WithCmake:      DefaultWithCmake,
		Verbosity:      DefaultVerbosity,
		DoClone:        true,
		DoOp:           true,
	}
}

// IsVerbosity reports whether output at level should be shown.
func (c Config) IsVerbosity(level Verbosity) bool {
	return level <= c.Verbosity
}

// Repo is one entry of the extra repositories list.
type Repo struct {
	Name     string `yaml:"NAME"`
	Dir      string `yaml:"DIR"`
	VCType   string `yaml:"REPOTYPE"`
	URL      string `yaml:"REPOURL"`
	Category string `yaml:"CATEGORY"`
	HasPkgs  string `yaml:"HASPKGS"`
	PrePost  string `yaml:"PREPOST"`
}

type Result struct {
	Cloned   []string
	Skipped  []SkippedRepo
	Commands []string
}

type SkippedRepo struct {
	Name   string
	Dir    string
	Reason string
}
