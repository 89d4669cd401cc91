package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-notify/internal/weather"
)

type options struct {
	flags weather.Flags

	configPath string
	dryRun     bool
	every      time.Duration
	cron       string
	listen     string
}

func (o *options) daemon() bool {
	return o.every > 0 || o.cron != "" || o.listen != ""
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "weather-notify",
		Short: "Push QWeather reports to a WeCom webhook",
		Long: `weather-notify fetches forecast, warnings, minutely rain, life indices and
realtime conditions from QWeather, formats them and posts the text to a
WeCom group robot webhook.

Without flags a composite report is sent. --now, --rain, --forecast and
--life send a single section. --check_rain only notifies when rain is
expected within the next two hours.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.every > 0 && opts.cron != "" {
				return fmt.Errorf("--every and --cron are mutually exclusive")
			}
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.flags.Now, "now", false, "Only send realtime weather")
	f.BoolVar(&opts.flags.Rain, "rain", false, "Only send the minutely rain forecast")
	f.BoolVar(&opts.flags.Forecast, "forecast", false, "Only send the 3-day forecast")
	f.BoolVar(&opts.flags.Life, "life", false, "Only send life indices")
	f.BoolVar(&opts.flags.CheckRain, "check_rain", false, "Notify only if rain is expected in the next two hours")

	f.StringVarP(&opts.configPath, "config", "c", "", "Path to a TOML config file")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Print messages to stdout instead of posting them")
	f.DurationVar(&opts.every, "every", 0, "Keep running and repeat at this interval")
	f.StringVar(&opts.cron, "cron", "", "Keep running and repeat on this cron schedule")
	f.StringVar(&opts.listen, "listen", "", "Serve the HTTP API on this address (e.g. :8080)")

	return cmd
}

func run(parent context.Context, opts *options) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if !opts.daemon() {
		// A failed run has already been alerted and logged; the process
		// still exits normally.
		_ = a.service.Execute(ctx, opts.flags)
		return nil
	}

	return a.serve(ctx, opts)
}
