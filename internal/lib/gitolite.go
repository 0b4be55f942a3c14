// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// Gitolite queries a gitolite server for the repos the user may read.
type Gitolite struct {
	SSH    string
	Logger *log.Logger
}

// ReadableRepos runs 'ssh <root> info' and returns the names of the repos
// with R permission.
func (g Gitolite) ReadableRepos(root string) (map[string]bool, error) {
	ssh := g.SSH
	if ssh == "" {
		ssh = "ssh"
	}
	cmd := exec.Command(ssh, root, "info")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s %s info: %v: %s", ErrGitoliteQuery, ssh, root, err, stderr.String())
	}

	readable := ParseGitoliteInfo(stdout.String())
	if g.Logger != nil {
		names := make([]string, 0, len(readable))
		for name := range readable {
			names = append(names, name)
		}
		sort.Strings(names)
		g.Logger.Debug("gitolite readable repos", "root", root, "repos", strings.Join(names, ","))
	}
	return readable, nil
}

// ParseGitoliteInfo parses the output of 'ssh <root> info', e.g.
//
//	hello jdoe, this is git@example.com running gitolite3 v3.6.6 on git 2.30.2
//
//	 R W	ExtraRepo1
//	 R  	ExtraRepo2
//
// and returns the repo names listed with R permission.
func ParseGitoliteInfo(info string) map[string]bool {
	readable := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(info))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		perms := fields[:len(fields)-1]
		canRead := false
		valid := true
		for _, perm := range perms {
			p := strings.Trim(perm, "@_")
			switch p {
			case "R":
				canRead = true
			case "W", "C":
			default:
				valid = false
			}
		}
		if valid && canRead {
			readable[fields[len(fields)-1]] = true
		}
	}
	return readable
}

// GitoliteRepoName returns the gitolite name of the repo at url, and false
// if url is not under root.
func GitoliteRepoName(root, url string) (string, bool) {
	if root == "" || !strings.HasPrefix(url, root) {
		return "", false
	}
	name := strings.TrimPrefix(url, root)
	if name != "" && name[0] != ':' && name[0] != '/' {
		// e.g. root git@host and url git@hostname:repo.
		return "", false
	}
	name = strings.TrimLeft(name, ":/")
	name = strings.TrimSuffix(name, ".git")
	return name, name != ""
}

// FilterGitoliteRepos drops the repos under root that are not in readable.
// Repos hosted elsewhere are kept.
func FilterGitoliteRepos(repos []Repo, root string, readable map[string]bool, onExclude func(Repo)) []Repo {
	return filterRepos(repos, func(r Repo) bool {
		name, ok := GitoliteRepoName(root, r.URL)
		return !ok || readable[name]
	}, onExclude)
}
