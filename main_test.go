// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bep/helpers/envhelpers"
	"github.com/rogpeppe/go-internal/testscript"
)

func TestScripts(t *testing.T) {
	params := commonTestScriptsParam
	params.Dir = "testscripts"
	// params.TestWork = true
	// params.UpdateScripts = true
	testscript.Run(t, params)
}

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"cloneextrarepos": main,
		"cmake":           fakeCmake,
		"git":             fakeGit,
		"ssh":             fakeSSH,
	})
}

func testSetupFunc() func(env *testscript.Env) error {
	sourceDir, _ := os.Getwd()
	isGitHubActions := os.Getenv("GITHUB_ACTIONS") != ""
	return func(env *testscript.Env) error {
		var keyVals []string
		// Add some environment variables to the test script.
		keyVals = append(keyVals, "SOURCE", sourceDir)
		keyVals = append(keyVals, "GITHUB_ACTIONS", fmt.Sprintf("%v", isGitHubActions))
		envhelpers.SetEnvVars(&env.Vars, keyVals...)

		return nil
	}
}

var commonTestScriptsParam = testscript.Params{
	Setup: func(env *testscript.Env) error {
		return testSetupFunc()(env)
	},
	Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
		// tree lists a directory recursively to stdout, marking git checkouts.
		// Hidden dirs are skipped.
		"tree": func(ts *testscript.TestScript, neg bool, args []string) {
			dirname := ts.MkAbs(args[0])

			err := filepath.WalkDir(dirname, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() {
					return nil
				}
				rel, err := filepath.Rel(dirname, path)
				if err != nil {
					return err
				}
				if rel == "." {
					return nil
				}
				if strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				nodeType := "dir"
				if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
					nodeType = "git"
				}
				depth := strings.Count(rel, string(os.PathSeparator))
				fmt.Fprintf(ts.Stdout(), "%s└─%s:%s/\n", strings.Repeat("  ", depth), nodeType, d.Name())
				if nodeType == "git" {
					return filepath.SkipDir
				}
				return nil
			})
			if err != nil {
				ts.Fatalf("%v", err)
			}
		},
	},
}

// fakeCmake stands in for 'cmake -P TribitsGetExtraReposForCheckinTest.cmake'.
// It reads the tribits_project_define_extra_repositories() entries
// (name, dir, vc, url, packstat, category) from EXTRA_REPOS_FILE and prints
// the selected repos after the list delimiter.
// If FAKECMAKE_RAW is set, the content of that file is printed instead.
func fakeCmake() {
	defs := make(map[string]string)
	for _, arg := range os.Args[1:] {
		if v, ok := strings.CutPrefix(arg, "-D"); ok {
			if key, value, ok := strings.Cut(v, "="); ok {
				defs[key] = value
			}
		}
	}

	if raw := os.Getenv("FAKECMAKE_RAW"); raw != "" {
		b, err := os.ReadFile(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "CMake Error: %v\n", err)
			os.Exit(1)
		}
		os.Stderr.Write(b)
		return
	}

	file := defs["EXTRA_REPOS_FILE"]
	if !filepath.IsAbs(file) {
		file = filepath.Join(defs["PROJECT_SOURCE_DIR"], file)
	}
	b, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CMake Error: could not read %s\n", file)
		os.Exit(1)
	}

	rank := map[string]int{"Continuous": 0, "Nightly": 1, "Experimental": 2}
	maxRank := rank[defs["ENABLE_KNOWN_EXTERNAL_REPOS_TYPE"]]

	var selected [][6]string
	for _, repo := range parseExtraReposList(string(b)) {
		if rank[repo[5]] <= maxRank {
			selected = append(selected, repo)
		}
	}

	if extra := defs["EXTRA_REPOS"]; extra != "" {
		var whitelisted [][6]string
		for _, name := range strings.Split(extra, ",") {
			found := false
			for _, repo := range selected {
				if repo[0] == name {
					whitelisted = append(whitelisted, repo)
					found = true
				}
			}
			if !found {
				fmt.Fprintf(os.Stderr, "CMake Error: extra repo '%s' is not of type '%s'\n", name, defs["ENABLE_KNOWN_EXTERNAL_REPOS_TYPE"])
				os.Exit(1)
			}
		}
		selected = whitelisted
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "-- Reading extra repos from %s\n", defs["EXTRA_REPOS_FILE"])
	sb.WriteString("*** Extra Repositories Python Dictionary\n[\n")
	for _, repo := range selected {
		sb.WriteString("  {\n")
		for i, key := range []string{"NAME", "DIR", "REPOTYPE", "REPOURL", "HASPKGS"} {
			fmt.Fprintf(&sb, "    '%s' : '%s',\n", key, repo[i])
		}
		sb.WriteString("    'PREPOST' : 'POST',\n")
		fmt.Fprintf(&sb, "    'CATEGORY' : '%s',\n", repo[5])
		sb.WriteString("    },\n")
	}
	sb.WriteString("  ]\n")
	os.Stderr.WriteString(sb.String())
}

func parseExtraReposList(s string) [][6]string {
	start, end := strings.Index(s, "("), strings.LastIndex(s, ")")
	if start < 0 || end < start {
		return nil
	}
	var fields []string
	for _, line := range strings.Split(s[start+1:end], "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		for _, f := range strings.Fields(line) {
			fields = append(fields, strings.Trim(f, `"`))
		}
	}
	var repos [][6]string
	for i := 0; i+6 <= len(fields); i += 6 {
		var repo [6]string
		copy(repo[:], fields[i:i+6])
		if repo[1] == "" {
			repo[1] = repo[0]
		}
		if repo[4] == "" {
			repo[4] = "HASPACKAGES"
		}
		repos = append(repos, repo)
	}
	return repos
}

// fakeGit supports 'git clone <url> <dir>'. URLs starting with fail: are
// rejected.
func fakeGit() {
	args := os.Args[1:]
	if len(args) != 3 || args[0] != "clone" {
		fmt.Fprintf(os.Stderr, "fake git: unsupported arguments %q\n", args)
		os.Exit(2)
	}
	url, dir := args[1], args[2]
	if strings.HasPrefix(url, "fail:") {
		fmt.Fprintf(os.Stderr, "fatal: repository '%s' does not exist\n", url)
		os.Exit(128)
	}
	if _, err := os.Stat(dir); err == nil {
		fmt.Fprintf(os.Stderr, "fatal: destination path '%s' already exists and is not an empty directory.\n", dir)
		os.Exit(128)
	}
	fmt.Fprintf(os.Stderr, "Cloning into '%s'...\n", dir)
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(dir, ".git", "origin"), []byte(url+"\n"), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// fakeSSH supports 'ssh <root> info', printing the file in FAKE_GITOLITE_INFO.
func fakeSSH() {
	args := os.Args[1:]
	info := os.Getenv("FAKE_GITOLITE_INFO")
	if len(args) != 2 || args[1] != "info" || info == "" {
		fmt.Fprintln(os.Stderr, "Permission denied (publickey).")
		os.Exit(255)
	}
	b, err := os.ReadFile(info)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Stdout.Write(b)
}
