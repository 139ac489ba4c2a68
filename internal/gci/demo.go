package gci

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/gordian-engine/gmwdg/gassert"
	"github.com/gordian-engine/gmwdg/gwatchdog"
	"github.com/gordian-engine/gmwdg/gwdg"
	"github.com/gordian-engine/gmwdg/internal/ggrpc"
	"github.com/gordian-engine/gmwdg/internal/ghttp"
	"github.com/gordian-engine/gmwdg/internal/gmetrics"
	"github.com/gordian-engine/gmwdg/internal/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewDemoCmd returns a command that runs a set of simulated tasks
// under a supervised registry.
func NewDemoCmd(log *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use: "demo",

		Short: "Run simulated tasks that feed a supervised watchdog registry",

		Long: `Run a number of goroutines that each own one watchdog node and feed it on an interval.

If --demo-stall-task is set, that task stops feeding after --demo-stall-after,
its node expires, and with --supervisor-terminate-on-expiry (the default)
the demo stops with an error naming the expired IDs.
`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}

			cfg, err := LoadConfig(v)
			if err != nil {
				return err
			}

			assertEnv, err := getAssertEnv(v)
			if err != nil {
				return fmt.Errorf("failed to build assertion environment: %w", err)
			}

			log := commandLogger(log, cfg.Log, cmd.ErrOrStderr())
			return runDemo(cmd.Context(), log, cfg, assertEnv, cmd.OutOrStdout())
		},
	}
}

func runDemo(
	ctx context.Context,
	log *slog.Logger,
	cfg Config,
	assertEnv gassert.Env,
	out io.Writer,
) error {
	// Be sure to defer cancel() after other deferred waits,
	// so that everything tied to ctx shuts down before the waits.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Demo.Duration > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, cfg.Demo.Duration)
		defer cancelTimeout()
	}

	reg := gwdg.NewRegistry(gwdg.RegistryConfig{
		SerializeFeed: cfg.Registry.SerializeFeed,
		AssertEnv:     assertEnv,
	})

	pr := prometheus.NewRegistry()
	pr.MustRegister(collectors.NewGoCollector())
	metrics := gmetrics.NewCollectors(pr)

	var hs *ggrpc.HealthServer
	if cfg.GRPC.Addr != "" {
		ln, err := new(net.ListenConfig).Listen(ctx, "tcp", cfg.GRPC.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen for gRPC: %w", err)
		}

		hs = ggrpc.NewHealthServer(ctx, log.With("sys", "grpc"), ggrpc.HealthServerConfig{
			Listener: ln,
			Service:  cfg.GRPC.Service,
		})
		defer hs.Wait()
		defer cancel()

		log.Info("gRPC health server listening", "addr", ln.Addr().String())
	}

	var kicks atomic.Uint64

	// The report that caused a termination, if any.
	// Later reports may see fewer nodes, as tasks unregister on the way out.
	var stopReport atomic.Pointer[gwatchdog.Report]

	sup, sCtx := gwatchdog.NewSupervisor(ctx, log.With("sys", "supervisor"), reg, gwatchdog.SupervisorConfig{
		Name: "demo",

		Interval: cfg.Supervisor.Interval,
		Jitter:   cfg.Supervisor.Jitter,

		Kicker: gwatchdog.KickerFunc(func() {
			kicks.Add(1)
		}),

		TerminateOnExpiry: cfg.Supervisor.TerminateOnExpiry,

		OnReport: func(r gwatchdog.Report) {
			metrics.Observe(r)
			if hs != nil {
				hs.SetReport(r)
			}
			if cfg.Supervisor.TerminateOnExpiry && !r.Healthy() {
				stopReport.CompareAndSwap(nil, &r)
			}
		},
	})
	defer sup.Wait()
	defer cancel()

	if cfg.HTTP.Addr != "" {
		ln, err := new(net.ListenConfig).Listen(ctx, "tcp", cfg.HTTP.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen for HTTP: %w", err)
		}

		h := ghttp.NewHTTPServer(ctx, log.With("sys", "http"), ghttp.HTTPServerConfig{
			Listener:   ln,
			Supervisor: sup,
			Registry:   reg,
			Gatherer:   pr,
		})
		defer h.Wait()
		defer cancel()

		log.Info("HTTP server listening", "addr", ln.Addr().String())
	}

	tasks, err := registerDemoTasks(log, reg, cfg.Demo)
	if err != nil {
		return err
	}

	eg, egCtx := errgroup.WithContext(sCtx)
	for _, t := range tasks {
		eg.Go(func() error {
			return t.run(egCtx)
		})
	}

	log.Info("Demo running", "tasks", cfg.Demo.Tasks, "timeout", cfg.Demo.Timeout)

	<-egCtx.Done()
	taskErr := eg.Wait()

	r, _ := sup.LastReport()
	if sr := stopReport.Load(); sr != nil {
		r = *sr
	}
	fmt.Fprintf(
		out, "checks=%d kicks=%d status=%s expired=%s\n",
		r.Seq, kicks.Load(), r.Status, glog.IDs(r.ExpiredIDs).LogValue(),
	)

	if gwatchdog.IsTermination(sCtx) {
		return fmt.Errorf("demo stopped by watchdog: %w", context.Cause(sCtx))
	}

	return taskErr
}

// registerDemoTasks adds one node per task to reg, with IDs starting at 1.
// On failure, nodes already added are removed again,
// so no task is left registered without a goroutine feeding it.
func registerDemoTasks(log *slog.Logger, reg *gwdg.Registry, cfg DemoConfig) ([]*demoTask, error) {
	timeout := uint32(cfg.Timeout.Milliseconds())

	tasks := make([]*demoTask, 0, cfg.Tasks)
	for i := range cfg.Tasks {
		id := gwdg.ID(i + 1)
		t := &demoTask{
			log: log.With("task", uint32(id)),
			reg: reg,

			feedInterval: cfg.FeedInterval,
		}
		if int(id) == cfg.StallTask {
			t.stallAfter = cfg.StallAfter
		}

		err := reg.AssignID(&t.node, id)
		if err != nil {
			err = fmt.Errorf("failed to assign ID %d: %w", id, err)
		} else if err = reg.Add(&t.node, timeout); err != nil {
			err = fmt.Errorf("failed to register task %d: %w", id, err)
		}
		if err != nil {
			for _, added := range tasks {
				_ = reg.Remove(&added.node)
			}
			return nil, err
		}

		tasks = append(tasks, t)
	}

	return tasks, nil
}

type demoTask struct {
	log  *slog.Logger
	reg  *gwdg.Registry
	node gwdg.Node

	feedInterval time.Duration

	// Zero if the task never stalls.
	stallAfter time.Duration
}

func (t *demoTask) run(ctx context.Context) error {
	defer func() {
		if err := t.reg.Remove(&t.node); err != nil {
			t.log.Warn("Failed to remove node", "err", err)
		}
	}()

	ticker := time.NewTicker(t.feedInterval)
	defer ticker.Stop()

	var stall <-chan time.Time
	if t.stallAfter > 0 {
		stallTimer := time.NewTimer(t.stallAfter)
		defer stallTimer.Stop()
		stall = stallTimer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-stall:
			t.log.Info("Task stalling; no more feeds")
			<-ctx.Done()
			return nil

		case <-ticker.C:
			if err := t.reg.Feed(&t.node); err != nil {
				return fmt.Errorf("task %d failed to feed: %w", t.node.ID(), err)
			}
		}
	}
}
