package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/polysched/polysched/internal/config"
	"github.com/polysched/polysched/internal/ctxlog"
	"github.com/polysched/polysched/internal/kernel"
	"github.com/polysched/polysched/internal/schedcache"
	"github.com/polysched/polysched/internal/schedule"
)

// App wires the kernel description loader, the scheduler and its cache into
// a runnable compiler-driver front end.
type App struct {
	out    io.Writer
	cfg    *Config
	loader config.Loader
}

// NewApp creates the application with its collaborators injected.
func NewApp(out io.Writer, cfg *Config, loader config.Loader) *App {
	return &App{out: out, cfg: cfg, loader: loader}
}

// Run loads every kernel from the configured path, schedules each one, and
// prints the finalized schedules. The first kernel that fails aborts the
// run.
func (a *App) Run(ctx context.Context) error {
	logger := newLogger(a.cfg.LogLevel, a.cfg.LogFormat, os.Stderr)
	ctx = ctxlog.WithLogger(ctx, logger)

	model, err := a.loader.Load(ctx, a.cfg.KernelPath)
	if err != nil {
		return err
	}
	if len(model.Kernels) == 0 {
		return fmt.Errorf("no kernels found in %q", a.cfg.KernelPath)
	}

	scheduler := &schedule.Scheduler{}
	if !a.cfg.NoCache {
		scheduler.Cache = schedcache.New()
	}

	for _, mk := range model.Kernels {
		k, err := kernel.Build(mk)
		if err != nil {
			return err
		}

		scheduled, err := scheduler.Schedule(ctx, k)
		if err != nil {
			var noSched *schedule.NoScheduleError
			if errors.As(err, &noSched) && a.cfg.Explain {
				fmt.Fprintf(a.out, "%v\n", noSched)
				fmt.Fprintf(a.out, "replaying the longest dead-end branch:\n")
				dbg := &schedule.Debugger{Out: a.out}
				if replayErr := scheduler.ExplainFailure(ctx, k, noSched, dbg); replayErr != nil {
					return replayErr
				}
			}
			return err
		}

		if scheduled.Ambiguous {
			fmt.Fprintf(a.out, "# kernel %s (ambiguous)\n", k.Name)
		} else {
			fmt.Fprintf(a.out, "# kernel %s\n", k.Name)
		}
		fmt.Fprintln(a.out, schedule.Dump(scheduled.Schedule))
	}

	return nil
}
