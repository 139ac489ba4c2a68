package gwatchdog

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gordian-engine/gmwdg/gwdg"
	"github.com/gordian-engine/gmwdg/internal/gchan"
	"github.com/gordian-engine/gmwdg/internal/glog"
)

// Supervisor periodically checks a [gwdg.Registry].
// Every check happens on the supervisor's own goroutine,
// so reports are strictly ordered by [Report.Seq].
type Supervisor struct {
	log *slog.Logger
	reg *gwdg.Registry
	cfg SupervisorConfig

	cancel context.CancelCauseFunc

	// Root context; the kernel stops serving requests once it is done.
	rootCtx context.Context

	checkRequests chan chan Report

	mu   sync.RWMutex
	last Report
	seq  uint64

	wg sync.WaitGroup
}

// NewSupervisor validates cfg, starts the supervisor goroutine,
// and returns the supervisor with a context derived from ctx.
//
// If reg is nil, each check uses whichever registry [gwdg.Default]
// returns at that moment.
//
// The returned context is canceled when [SupervisorConfig.TerminateOnExpiry] is set
// and a check finds expired nodes, or upon [*Supervisor.Terminate].
// The supervisor goroutine itself keeps running until ctx is canceled,
// so [*Supervisor.CheckNow] still works after a termination.
func NewSupervisor(
	ctx context.Context,
	log *slog.Logger,
	reg *gwdg.Registry,
	cfg SupervisorConfig,
) (*Supervisor, context.Context) {
	if err := cfg.validate(); err != nil {
		panic(fmt.Errorf("NewSupervisor: SupervisorConfig is invalid: %w", err))
	}

	sCtx, cancel := context.WithCancelCause(ctx)
	s := &Supervisor{
		log: log,
		reg: reg,
		cfg: cfg,

		cancel:  cancel,
		rootCtx: ctx,

		// Unbuffered since requests are synchronous.
		checkRequests: make(chan chan Report),
	}

	s.wg.Add(1)
	go s.kernel(ctx)

	return s, sCtx
}

// Wait blocks until the supervisor goroutine finishes.
// It is tied to the context passed to [NewSupervisor];
// termination alone does not stop it.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

// Terminate cancels the supervisor context
// with a cause of [ForcedTerminationError].
// Only the first cancellation cause is kept.
func (s *Supervisor) Terminate(reason string) {
	s.cancel(ForcedTerminationError{Reason: reason})
}

// LastReport returns the most recent report
// and false if no check has completed yet.
func (s *Supervisor) LastReport() (Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.last
	r.ExpiredIDs = append([]gwdg.ID(nil), r.ExpiredIDs...)
	return r, s.seq > 0
}

// CheckNow asks the supervisor goroutine for an immediate check
// and waits for its report.
// It reports false if ctx, or the context given to NewSupervisor,
// ends before the report is available.
//
// CheckNow does not reset the periodic schedule.
func (s *Supervisor) CheckNow(ctx context.Context) (Report, bool) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := context.AfterFunc(s.rootCtx, func() {
		cancel(context.Cause(s.rootCtx))
	})
	defer stop()

	resp := make(chan Report, 1)
	return gchan.ReqResp(
		ctx, s.log,
		s.checkRequests, resp,
		resp,
		"on-demand check",
	)
}

func (s *Supervisor) kernel(ctx context.Context) {
	defer s.wg.Done()

	// Each supervisor owns its RNG, so nothing contends on the global source.
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	timer := time.NewTimer(s.cfg.delay(rng))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Stopping due to root context cancellation", "cause", context.Cause(ctx))
			return

		case <-timer.C:
			_ = s.check()
			timer.Reset(s.cfg.delay(rng))

		case resp := <-s.checkRequests:
			// Buffered by CheckNow.
			resp <- s.check()
		}
	}
}

// check runs one check, publishes its report, and acts on it.
func (s *Supervisor) check() Report {
	reg := s.reg
	if reg == nil {
		reg = gwdg.Default()
	}

	start := time.Now()
	status, err := reg.Check()

	res, _ := reg.LastCheck()

	var ids []gwdg.ID
	if err == nil && status != gwdg.StatusHealthy {
		var c gwdg.Cursor
		for {
			id, ok := reg.NextExpired(&c)
			if !ok {
				break
			}
			ids = append(ids, id)
		}
	}

	r := Report{
		Supervisor: s.cfg.Name,
		Time:       start,
		Duration:   time.Since(start),

		At:         res.At,
		Status:     status,
		Nodes:      res.Nodes,
		ExpiredIDs: ids,
	}
	if err != nil {
		r.Err = err
		r.Error = err.Error()
	}

	switch {
	case r.Err != nil:
		s.log.Error("Watchdog check failed", "err", r.Err)
		if s.cfg.TerminateOnExpiry {
			s.cancel(CheckError{Supervisor: s.cfg.Name, Err: r.Err})
		}

	case r.Status != gwdg.StatusHealthy:
		glog.Report(s.log, gwdg.CheckResult{
			At:         r.At,
			Status:     r.Status,
			Nodes:      r.Nodes,
			ExpiredIDs: r.ExpiredIDs,
		})
		if s.cfg.TerminateOnExpiry {
			s.cancel(ExpiredError{Supervisor: s.cfg.Name, IDs: r.ExpiredIDs})
		}

	default:
		glog.Report(s.log, res)
		if s.cfg.Kicker != nil {
			s.cfg.Kicker.Kick()
			r.Kicked = true
		}
	}

	s.mu.Lock()
	s.seq++
	r.Seq = s.seq
	s.last = r
	s.mu.Unlock()

	if s.cfg.OnReport != nil {
		s.cfg.OnReport(r)
	}

	return r
}
