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

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// suiteTimeoutGrace pads the test binary's own -timeout so the runner's
// deadline fires first and a hung suite is reported as TIMEOUT instead of a
// go test panic.
const suiteTimeoutGrace = 30 * time.Second

// Status classifies the outcome of one suite run.
type Status string

const (
	StatusPassed  Status = "PASSED"
	StatusFailed  Status = "FAILED"
	StatusTimeout Status = "TIMEOUT"
)

// Suite describes one runnable test suite.
type Suite struct {
	Name    string
	Package string
	// Args returns the flags handed to the test binary after -args.
	Args func(o Options) []string
	// Env returns extra environment entries for the subprocess.
	Env func(o Options) []string
}

// Result is the outcome of one suite subprocess.
type Result struct {
	Suite    string
	Status   Status
	Duration time.Duration
	Err      error
}

// suiteTable lists the known suites in default execution order.
func suiteTable() []Suite {
	return []Suite{
		{
			Name:    "chromedp",
			Package: "./tests/e2e",
			Args: func(o Options) []string {
				args := []string{"-base-url", o.BaseURL, "-screenshot-dir", o.ScreenshotDir}
				if o.RemoteCDP != "" {
					args = append(args, "-with-chromedp", o.RemoteCDP)
				}
				return args
			},
			Env: func(o Options) []string { return nil },
		},
		{
			Name:    "playwright",
			Package: "./tests/playwright",
			Args:    func(o Options) []string { return nil },
			Env: func(o Options) []string {
				headless := "true"
				if o.Headed {
					headless = "false"
				}
				return []string{
					"E2E_BASE_URL=" + o.BaseURL,
					"E2E_HEADLESS=" + headless,
					"E2E_SCREENSHOT_DIR=" + o.ScreenshotDir,
				}
			},
		},
	}
}

// SuiteNames returns the valid suite names in default order.
func SuiteNames() []string {
	table := suiteTable()
	names := make([]string, 0, len(table))
	for _, s := range table {
		names = append(names, s.Name)
	}
	return names
}

// SelectSuites resolves names to suites, preserving the requested order.
func SelectSuites(names []string) ([]Suite, error) {
	byName := make(map[string]Suite)
	for _, s := range suiteTable() {
		byName[s.Name] = s
	}
	var selected []Suite
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown suite %q (valid: %s)", raw, strings.Join(SuiteNames(), ", "))
		}
		selected = append(selected, s)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no suites selected (valid: %s)", strings.Join(SuiteNames(), ", "))
	}
	return selected, nil
}

// Executor runs suite subprocesses with a per-suite timeout.
type Executor struct {
	Opts   Options
	Stdout io.Writer
	Stderr io.Writer
	Log    *zap.Logger
	// Go overrides the go tool binary. Tests use it to stub the toolchain.
	Go string
}

func (e *Executor) goTool() string {
	if e.Go != "" {
		return e.Go
	}
	return "go"
}

// BuildArgs assembles the go test argument list for a suite.
func (e *Executor) BuildArgs(s Suite) []string {
	args := []string{"test", s.Package, "-count=1", "-timeout", (e.Opts.SuiteTimeout + suiteTimeoutGrace).String()}
	if e.Opts.Verbose {
		args = append(args, "-v")
	}
	if extra := s.Args(e.Opts); len(extra) > 0 {
		args = append(args, "-args")
		args = append(args, extra...)
	}
	return args
}

// RunSuite executes one suite as a go test subprocess. The subprocess is
// killed when SuiteTimeout elapses.
func (e *Executor) RunSuite(ctx context.Context, s Suite) Result {
	runCtx, cancel := context.WithTimeout(ctx, e.Opts.SuiteTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.goTool(), e.BuildArgs(s)...)
	cmd.Env = append(os.Environ(), s.Env(e.Opts)...)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	// A killed suite can leave browser children holding the output pipes.
	// Don't wait forever for them to exit.
	cmd.WaitDelay = 10 * time.Second

	if e.Log != nil {
		e.Log.Debug("starting suite",
			zap.String("suite", s.Name),
			zap.String("package", s.Package),
			zap.Duration("timeout", e.Opts.SuiteTimeout))
	}

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	return Result{
		Suite:    s.Name,
		Status:   classify(err, runCtx.Err()),
		Duration: elapsed,
		Err:      err,
	}
}

// classify maps subprocess and context errors onto a suite status.
func classify(runErr, ctxErr error) Status {
	switch {
	case errors.Is(ctxErr, context.DeadlineExceeded):
		return StatusTimeout
	case runErr != nil:
		return StatusFailed
	default:
		return StatusPassed
	}
}
