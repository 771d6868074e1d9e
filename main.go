// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command tailcheck drives the browser E2E suites for the TailAdmin
// dashboard. It waits for the Vite dev server, runs each selected suite as a
// go test subprocess bounded by a timeout, and prints a PASS/FAIL summary.
// Exit status 0 means every suite passed.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ttbt-io/tailcheck/runner"
)

func main() {
	cmd, err := newRootCommand()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure command: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() (*cobra.Command, error) {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "tailcheck",
		Short: "Run the TailAdmin browser E2E suites",
		Long: `tailcheck verifies that the Vite dev server is reachable, then runs the
chromedp and playwright suites sequentially, each as a go test subprocess
with its own timeout. Flags can also be set through TAILCHECK_* environment
variables (TAILCHECK_BASE_URL, TAILCHECK_SUITE_TIMEOUT, ...).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
			}
			return run(cmd, v)
		},
	}

	flags := cmd.Flags()
	registerFlags(flags, runner.DefaultOptions())

	v.SetEnvPrefix("TAILCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	return cmd, nil
}

func registerFlags(flags *pflag.FlagSet, defaults runner.Options) {
	flags.String("base-url", defaults.BaseURL, "URL of the dev server under test")
	flags.Duration("server-wait", defaults.ServerWait, "how long to wait for the dev server to come up")
	flags.Duration("suite-timeout", defaults.SuiteTimeout, "timeout per suite subprocess")
	flags.StringSlice("suites", defaults.Suites, "suites to run, in order")
	flags.String("screenshot-dir", defaults.ScreenshotDir, "directory for failure and smoke screenshots")
	flags.String("with-chromedp", "", "remote debugging websocket URL for the chromedp suite")
	flags.Bool("headed", false, "run the playwright suite with a visible browser")
	flags.Bool("hmr-check", defaults.HMRCheck, "verify the Vite HMR websocket after the HTTP probe")
	flags.Bool("verbose", false, "verbose suite output and debug logging")
}

func run(cmd *cobra.Command, v *viper.Viper) error {
	opts := runner.Options{
		BaseURL:       v.GetString("base-url"),
		ServerWait:    v.GetDuration("server-wait"),
		SuiteTimeout:  v.GetDuration("suite-timeout"),
		Suites:        v.GetStringSlice("suites"),
		ScreenshotDir: v.GetString("screenshot-dir"),
		RemoteCDP:     v.GetString("with-chromedp"),
		Headed:        v.GetBool("headed"),
		HMRCheck:      v.GetBool("hmr-check"),
		Verbose:       v.GetBool("verbose"),
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(opts.Verbose)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	runID := uuid.NewString()[:8]
	printer := runner.NewPrinter(cmd.OutOrStdout())
	printer.Header(runID, opts.BaseURL)

	// Suite subprocesses run with their package dir as cwd, so hand them an
	// absolute path.
	if opts.ScreenshotDir, err = filepath.Abs(opts.ScreenshotDir); err != nil {
		return fmt.Errorf("resolving screenshot dir: %w", err)
	}
	if err := os.MkdirAll(opts.ScreenshotDir, 0755); err != nil {
		return fmt.Errorf("creating screenshot dir: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	probe := runner.NewProbe(opts.BaseURL)
	waitCtx, cancel := context.WithTimeout(ctx, opts.ServerWait)
	attempts, err := probe.WaitReachable(waitCtx)
	cancel()
	if err != nil {
		printer.ServerHint(opts.BaseURL)
		logger.Error("dev server probe failed",
			zap.String("run_id", runID),
			zap.Int("attempts", attempts),
			zap.Error(err))
		return fmt.Errorf("dev server not reachable at %s", opts.BaseURL)
	}
	logger.Info("dev server ready",
		zap.String("run_id", runID),
		zap.String("url", opts.BaseURL),
		zap.Int("attempts", attempts))

	if opts.HMRCheck {
		if err := probe.CheckHMR(ctx); err != nil {
			// Static builds serve no HMR socket; the suites still work.
			printer.Warn("HMR websocket not available: %v", err)
			logger.Warn("hmr check failed", zap.Error(err))
		} else {
			logger.Info("hmr websocket ok")
		}
	}

	suites, err := runner.SelectSuites(opts.Suites)
	if err != nil {
		return err
	}

	executor := &runner.Executor{
		Opts:   opts,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
		Log:    logger,
	}

	report := runner.Report{RunID: runID}
	for _, suite := range suites {
		printer.SuiteStart(suite.Name)
		res := executor.RunSuite(ctx, suite)
		report.Results = append(report.Results, res)
		logger.Info("suite finished",
			zap.String("suite", res.Suite),
			zap.String("status", string(res.Status)),
			zap.Duration("duration", res.Duration))
	}

	printer.Summary(report)
	if !report.AllPassed() {
		return fmt.Errorf("%d/%d suites passed", report.Passed(), len(report.Results))
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
