// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// Git runs git commands from Dir.
type Git struct {
	Path string
	Dir  string
	Out  io.Writer
}

func (g Git) gitPath() string {
	if g.Path == "" {
		return "git"
	}
	return g.Path
}

// CloneCommand returns the command line that clones url into dir.
func (g Git) CloneCommand(url, dir string) []string {
	return []string{g.gitPath(), "clone", url, dir}
}

func (g Git) Clone(url, dir string) error {
	args := g.CloneCommand(url, dir)
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = g.Dir
	out := g.Out
	if out == nil {
		out = io.Discard
	}
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}

func isGitRepo(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}
