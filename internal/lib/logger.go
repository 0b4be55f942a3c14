// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"io"
	"math"

	"github.com/charmbracelet/log"
)

// NewLogger returns the diagnostics logger for the given verbosity.
// Warnings are shown from minimal and up, debug details only at most.
func NewLogger(w io.Writer, v Verbosity) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: ScriptName,
	})
	logger.SetLevel(loggerLevel(v))
	return logger
}

func loggerLevel(v Verbosity) log.Level {
	switch {
	case v >= VerbosityMost:
		return log.DebugLevel
	case v >= VerbosityMinimal:
		return log.WarnLevel
	default:
		return log.Level(math.MaxInt32)
	}
}
