// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/research-digest/internal/pipeline"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run produce on a cron schedule until interrupted",
	Long: `Schedule keeps the process running and produces the weekly digest on the
configured cron spec (schedule.cron, default "0 6 * * 1", evaluated in UTC).
A trigger that fires while the previous run is still going is skipped.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().String("cron", "", "cron spec overriding schedule.cron")
	scheduleCmd.Flags().Bool("now", false, "also produce once at startup")

	rootCmd.AddCommand(scheduleCmd)
}

// cronLogger routes cron's own logging through zerolog.
type cronLogger struct{ log zerolog.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	spec, _ := cmd.Flags().GetString("cron")
	if spec == "" {
		spec = cfg.Schedule.Cron
	}
	runNow, _ := cmd.Flags().GetBool("now")

	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	p := pipeline.New(st, logger)
	produce := func() {
		run, err := p.ProduceWeek(ctx, cfg, false)
		switch {
		case errors.Is(err, pipeline.ErrRunInProgress):
			logger.Warn().Msg("previous run still in progress, skipping")
		case err != nil:
			logger.Error().Err(err).Msg("scheduled run failed")
		default:
			logger.Info().Str("week", run.WeekKey).Int("papers", len(run.Papers)).Msg("scheduled run done")
		}
	}

	cl := cronLogger{log: logger.With().Str("component", "cron").Logger()}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	id, err := c.AddFunc(spec, produce)
	if err != nil {
		return fmt.Errorf("scheduling %q: %w", spec, err)
	}
	c.Start()
	logger.Info().Str("cron", spec).Time("next", c.Entry(id).Next).Msg("scheduler started")

	if runNow {
		go c.Entry(id).WrappedJob.Run()
	}

	<-ctx.Done()
	logger.Info().Msg("stopping scheduler")
	stopped := c.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("run still in flight at shutdown")
	}
	return nil
}
