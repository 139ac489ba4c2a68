//go:build !debug

package gci

import (
	"github.com/gordian-engine/gmwdg/gassert"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// No-op functions to match the debug build.

const assertRuleFlag = "assert-rules"

func addAssertRuleFlag(fs *pflag.FlagSet) {}

func getAssertEnv(v *viper.Viper) (_ gassert.Env, _ error) {
	return
}
