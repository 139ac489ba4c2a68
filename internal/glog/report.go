package glog

import (
	"context"
	"log/slog"

	"github.com/gordian-engine/gmwdg/gwdg"
)

// Report logs the outcome of a registry check.
// A healthy result is logged at debug level,
// an expired one at warn level with the expired IDs.
func Report(log *slog.Logger, res gwdg.CheckResult) {
	if res.Status == gwdg.StatusHealthy {
		log.Debug("Watchdog check healthy", "nodes", res.Nodes, "at", res.At)
		return
	}

	log.LogAttrs(
		context.Background(), slog.LevelWarn,
		"Watchdog nodes expired",
		slog.Int("nodes", res.Nodes),
		slog.Uint64("at", uint64(res.At)),
		slog.Any("expired", IDs(res.ExpiredIDs)),
	)
}
