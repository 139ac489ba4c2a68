//go:build debug

package gassert

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Env is an alias to *Environment in debug builds.
type Env = *Environment

// Environment holds the parsed rules deciding which assertions run.
//
// Environment is immutable after construction except through OnlyLogFailures,
// which must be called before concurrent use.
// A nil *Environment has every assertion disabled.
type Environment struct {
	// Wildcard prefixes; an empty slice is the top-level "*".
	prefixes [][]string

	// Exact paths to enable and to exclude.
	exacts   [][]string
	excludes [][]string

	log *slog.Logger
}

// EnvironmentFromString parses a comma-separated list of rules.
// The empty string yields an environment with nothing enabled.
func EnvironmentFromString(in string) (*Environment, error) {
	e := new(Environment)
	if in == "" {
		return e, nil
	}

	var err error
	for _, r := range strings.Split(in, ",") {
		err = errors.Join(err, e.addRule(strings.TrimSpace(r)))
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Environment) addRule(r string) error {
	if r == "" {
		return errors.New("empty assertion rule")
	}

	if ex, ok := strings.CutPrefix(r, "!"); ok {
		if strings.ContainsAny(ex, "*!") {
			return fmt.Errorf("invalid rule %q: exclusions must be exact paths", r)
		}
		e.excludes = append(e.excludes, strings.Split(ex, "."))
		return nil
	}

	switch strings.Count(r, "*") {
	case 0:
		e.exacts = append(e.exacts, strings.Split(r, "."))
		return nil
	case 1:
		if r == "*" {
			e.prefixes = append(e.prefixes, []string{})
			return nil
		}
		p, ok := strings.CutSuffix(r, ".*")
		if !ok {
			return fmt.Errorf("invalid rule %q: * must be the final path segment", r)
		}
		e.prefixes = append(e.prefixes, strings.Split(p, "."))
		return nil
	default:
		return fmt.Errorf("invalid rule %q: at most one * is allowed", r)
	}
}

// OnlyLogFailures makes [*Environment.HandleAssertionFailure]
// log at Error level instead of panicking.
func (e *Environment) OnlyLogFailures(log *slog.Logger) {
	e.log = log
}

// Enabled reports whether the assertion at path should run.
func (e *Environment) Enabled(path string) bool {
	if e == nil || (len(e.prefixes) == 0 && len(e.exacts) == 0) {
		return false
	}

	parts := strings.Split(path, ".")

	for _, ex := range e.excludes {
		if slices.Equal(ex, parts) {
			return false
		}
	}

	for _, p := range e.prefixes {
		if len(p) < len(parts) && slices.Equal(p, parts[:len(p)]) {
			return true
		}
	}

	for _, x := range e.exacts {
		if slices.Equal(x, parts) {
			return true
		}
	}

	return false
}

// HandleAssertionFailure panics with err,
// or logs it if OnlyLogFailures was called.
// A nil err is itself a bug and always panics.
func (e *Environment) HandleAssertionFailure(err error) {
	if err == nil {
		panic(errors.New("BUG: HandleAssertionFailure called with nil error"))
	}

	if e == nil || e.log == nil {
		panic(fmt.Errorf("assertion failure: %w", err))
	}

	e.log.Error("Assertion failure", "err", err)
}
