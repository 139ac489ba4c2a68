//go:build !debug

package gasserttest

import "github.com/gordian-engine/gmwdg/gassert"

// DefaultEnv returns the empty Env of non-debug builds.
func DefaultEnv() gassert.Env {
	return gassert.Env{}
}

// NopEnv returns the empty Env of non-debug builds.
func NopEnv() gassert.Env {
	return gassert.Env{}
}
