package engine

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/tevino/abool/v2"
)

var ErrWalkRunning = errors.New("a walk is already running")

// Watcher walks a source tree on a fixed interval so that edited host files
// are regenerated without a manual run.
type Watcher struct {
	root, outRoot string
	interval      time.Duration
	opts          Options
	onWalk        func(*Report, error)

	scheduler gocron.Scheduler
	running   *abool.AtomicBool
}

// NewWatcher returns a watcher that calls onWalk with the outcome of every
// walk. onWalk may be nil.
func NewWatcher(root, outRoot string, interval time.Duration, opts Options, onWalk func(*Report, error)) (*Watcher, error) {
	if interval <= 0 {
		return nil, errors.New("watch interval must be positive")
	}
	if onWalk == nil {
		onWalk = func(*Report, error) {}
	}
	if opts.Compiler == nil {
		// keep compiled files cached across walks
		c, err := NewCompiler(nil, DefaultCacheSize)
		if err != nil {
			return nil, err
		}
		opts.Compiler = c
	}
	return &Watcher{
		root:     root,
		outRoot:  outRoot,
		interval: interval,
		opts:     opts,
		onWalk:   onWalk,
		running:  abool.New(),
	}, nil
}

// Start schedules the first walk immediately and then every interval.
// Walks stop when ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(w.tick, ctx),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.Shutdown()
		return err
	}
	w.scheduler = s
	s.Start()
	return nil
}

func (w *Watcher) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	report, err := w.RunOnce(ctx)
	if errors.Is(err, ErrWalkRunning) {
		return
	}
	w.onWalk(report, err)
}

// RunOnce walks the tree now. It fails with ErrWalkRunning while another
// walk of this watcher is in progress.
func (w *Watcher) RunOnce(ctx context.Context) (*Report, error) {
	if !w.running.SetToIf(false, true) {
		return nil, ErrWalkRunning
	}
	defer w.running.UnSet()
	return Walk(ctx, w.root, w.outRoot, w.opts)
}

// Stop shuts the scheduler down, waiting for a running walk to finish.
func (w *Watcher) Stop() error {
	if w.scheduler == nil {
		return nil
	}
	return w.scheduler.Shutdown()
}
