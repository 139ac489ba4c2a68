//go:build !debug

package gassert

// Env is the assertion environment.
//
// In non-debug builds Env is an empty struct with no methods,
// so components can hold an Env field at no cost.
// In debug builds Env is an alias for *Environment.
//
// Code that calls methods on an Env must itself be behind the "debug" build tag.
type Env struct{}
