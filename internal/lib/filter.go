// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

// FilterRepos returns the repos whose name is not in exclude, in their
// original order. onExclude, if set, is called for each dropped repo.
// Excluded names not in repos are ignored.
func FilterRepos(repos []Repo, exclude []string, onExclude func(Repo)) []Repo {
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}
	return filterRepos(repos, func(r Repo) bool { return !excluded[r.Name] }, onExclude)
}

func filterRepos(repos []Repo, keep func(Repo) bool, onExclude func(Repo)) []Repo {
	filtered := make([]Repo, 0, len(repos))
	for _, repo := range repos {
		if keep(repo) {
			filtered = append(filtered, repo)
			continue
		}
		if onExclude != nil {
			onExclude(repo)
		}
	}
	return filtered
}
