// Package gassert provides runtime invariant checks that are only compiled
// into debug builds.
//
// Walking a watchdog registry to confirm that it is acyclic and that its
// node count is accurate costs time proportional to the registry size,
// which is too expensive to do on every operation in production.
// If a registry ever misbehaves, though, turning those checks on
// is usually the fastest way to find the cause.
//
// Enabling checks takes two steps.
// First, build with the "debug" tag (go build -tags debug, go test -tags debug).
// Without the tag, [Env] is an empty struct and no checking code is compiled.
// Second, produce an environment with [EnvironmentFromString]
// (only present in debug builds) and hand it to the component being checked,
// e.g. through gwdg.RegistryConfig.AssertEnv.
//
// Rules are dot-separated paths:
//   - "*" enables every check.
//   - "gwdg.registry.*" enables every check whose path starts with "gwdg.registry.".
//     The wildcard is only accepted as the final segment.
//   - "gwdg.registry.count" enables exactly that check.
//   - "!gwdg.registry.count" disables that exact check even when a wildcard matches it.
//     Exclusions may not contain a wildcard.
//
// [EnvironmentFromString] accepts a comma-separated list of rules.
package gassert
