package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentloop/agent"
	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/logging"
)

// TurnAgent executes one turn. *agent.Agent implements it.
type TurnAgent interface {
	Run(ctx context.Context, threadID string, input any) (*agent.Response, error)
}

// Options holds configuration overrides passed to New().
type Options struct {
	// MaxConcurrentTurns limits turns running at once across all threads.
	MaxConcurrentTurns int
	// Logger receives runner events.
	Logger logging.Logger
}

// Outcome is delivered on the channel returned by Submit.
type Outcome struct {
	RunID    string
	Response *agent.Response
	Err      error
}

// Runner coordinates turn execution: it serializes turns per thread, bounds
// global concurrency and tracks asynchronous runs for cancellation. Public
// methods are safe for concurrent use.
type Runner struct {
	agent TurnAgent

	sem     chan struct{}
	threads *threadLocks
	logger  logging.Logger

	activeRuns map[string]context.CancelFunc
	mu         sync.Mutex
}

// New constructs a Runner with optional overrides.
func New(a TurnAgent, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxConcurrentTurns: 10,
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxConcurrentTurns < 1 {
		opts.MaxConcurrentTurns = 1
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Runner{
		agent:      a,
		sem:        make(chan struct{}, opts.MaxConcurrentTurns),
		threads:    newThreadLocks(),
		logger:     opts.Logger,
		activeRuns: make(map[string]context.CancelFunc),
	}
}

// Run executes a turn and waits for it. It blocks while another turn on the
// same thread is in progress or the concurrency bound is reached; ctx
// cancellation while waiting returns ctx.Err() without running the turn.
func (r *Runner) Run(ctx context.Context, threadID string, input any) (*agent.Response, error) {
	release, err := r.threads.acquire(ctx, threadID)
	if err != nil {
		r.logger.Warn("runner.turn.abandoned", "thread", threadID, "stage", "thread_lock", "error", err.Error())
		return nil, err
	}
	defer release()

	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		r.logger.Warn("runner.turn.abandoned", "thread", threadID, "stage", "slot", "error", ctx.Err().Error())
		return nil, ctx.Err()
	}
	defer func() { <-r.sem }()

	r.logger.Debug("runner.turn.start", "thread", threadID, "in_flight", len(r.sem))

	return r.agent.Run(ctx, threadID, input)
}

// Submit starts a turn asynchronously. The returned channel receives exactly
// one Outcome and is then closed. The run can be canceled with Cancel.
func (r *Runner) Submit(ctx context.Context, threadID string, input any) (string, <-chan Outcome) {
	runID := core.NewID()

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	out := make(chan Outcome, 1)

	go func() {
		defer func() {
			cancel()
			r.mu.Lock()
			delete(r.activeRuns, runID)
			r.mu.Unlock()
			close(out)
		}()

		resp, err := r.Run(ctx, threadID, input)
		out <- Outcome{RunID: runID, Response: resp, Err: err}
	}()

	return runID, out
}

// Cancel cancels a submitted run by ID.
func (r *Runner) Cancel(runID string) error {
	r.mu.Lock()
	cancel, exists := r.activeRuns[runID]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}

// ActiveRuns returns the number of submitted runs that have not finished.
func (r *Runner) ActiveRuns() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.activeRuns)
}
