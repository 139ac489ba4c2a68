//go:build debug

package gassert_test

import (
	"testing"

	"github.com/gordian-engine/gmwdg/gassert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentFromString_enabled(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		rules   string
		path    string
		enabled bool
	}{
		{rules: "", path: "gwdg.registry.count", enabled: false},
		{rules: "*", path: "gwdg.registry.count", enabled: true},
		{rules: "gwdg.*", path: "gwdg.registry.count", enabled: true},
		{rules: "gwdg.registry.*", path: "gwdg.registry", enabled: false},
		{rules: "gwdg.registry.count", path: "gwdg.registry.count", enabled: true},
		{rules: "gwdg.registry.count", path: "gwdg.registry.acyclic", enabled: false},
		{rules: "gwdg.*,!gwdg.registry.count", path: "gwdg.registry.count", enabled: false},
		{rules: "gwdg.*,!gwdg.registry.count", path: "gwdg.registry.acyclic", enabled: true},
		{rules: "other.*", path: "gwdg.registry.count", enabled: false},
	} {
		env, err := gassert.EnvironmentFromString(tc.rules)
		require.NoError(t, err)
		require.Equalf(t, tc.enabled, env.Enabled(tc.path), "rules=%q path=%q", tc.rules, tc.path)
	}
}

func TestEnvironmentFromString_invalid(t *testing.T) {
	t.Parallel()

	for _, rules := range []string{
		"gwdg.*.count",
		"*.*",
		"!gwdg.*",
		"gwdg,,other",
	} {
		_, err := gassert.EnvironmentFromString(rules)
		require.Errorf(t, err, "rules=%q", rules)
	}
}

func TestEnvironment_nil(t *testing.T) {
	t.Parallel()

	var env *gassert.Environment
	require.False(t, env.Enabled("gwdg.registry.count"))
}

func TestEnvironment_HandleAssertionFailure(t *testing.T) {
	t.Parallel()

	env, err := gassert.EnvironmentFromString("*")
	require.NoError(t, err)

	require.Panics(t, func() {
		env.HandleAssertionFailure(nil)
	})

	require.Panics(t, func() {
		env.HandleAssertionFailure(errTest)
	})
}

type testError struct{}

func (testError) Error() string { return "test failure" }

var errTest = testError{}
