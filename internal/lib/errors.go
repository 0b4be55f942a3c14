// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import "errors"

var (
	ErrUsage             = errors.New("usage error")
	ErrEvaluatorFailed   = errors.New("extra repos evaluator failed")
	ErrMalformedRepoList = errors.New("malformed extra repos list")
	ErrUnsupportedVCType = errors.New("unsupported repo type")
	ErrGitoliteQuery     = errors.New("gitolite info query failed")
	ErrCloneFailed       = errors.New("clone failed")
)

// ExitCode maps an error returned from Run or ParseOptions to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage):
		return 2
	default:
		return 1
	}
}
