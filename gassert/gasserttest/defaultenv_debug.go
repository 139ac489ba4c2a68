//go:build debug

package gasserttest

import "github.com/gordian-engine/gmwdg/gassert"

// DefaultEnv returns an environment with every assertion enabled.
func DefaultEnv() gassert.Env {
	env, err := gassert.EnvironmentFromString("*")
	if err != nil {
		panic(err)
	}
	return env
}

// NopEnv returns an environment with every assertion disabled.
func NopEnv() gassert.Env {
	env, err := gassert.EnvironmentFromString("")
	if err != nil {
		panic(err)
	}
	return env
}
