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

// Package runner orchestrates the browser E2E suites against a running
// TailAdmin dev server: it probes the server, executes each suite as a
// go test subprocess bounded by a timeout, and prints a styled summary.
package runner

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL       = "http://localhost:5173"
	DefaultServerWait    = 30 * time.Second
	DefaultSuiteTimeout  = 120 * time.Second
	DefaultScreenshotDir = "tests/screenshots"
)

// Options configures a runner invocation.
type Options struct {
	BaseURL       string
	ServerWait    time.Duration
	SuiteTimeout  time.Duration
	Suites        []string
	ScreenshotDir string
	// RemoteCDP points the chromedp suite at the debugging websocket of an
	// already-running browser instead of launching a local one.
	RemoteCDP string
	Headed    bool
	HMRCheck  bool
	Verbose   bool
}

// DefaultOptions returns the defaults backing the CLI flags.
func DefaultOptions() Options {
	return Options{
		BaseURL:       DefaultBaseURL,
		ServerWait:    DefaultServerWait,
		SuiteTimeout:  DefaultSuiteTimeout,
		Suites:        SuiteNames(),
		ScreenshotDir: DefaultScreenshotDir,
		HMRCheck:      true,
	}
}

// Validate checks option consistency before anything is executed.
func (o Options) Validate() error {
	if strings.TrimSpace(o.BaseURL) == "" {
		return fmt.Errorf("base url must not be empty")
	}
	u, err := url.Parse(o.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url %q: %w", o.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base url %q must use http or https", o.BaseURL)
	}
	if o.SuiteTimeout <= 0 {
		return fmt.Errorf("suite timeout must be positive")
	}
	if o.ServerWait <= 0 {
		return fmt.Errorf("server wait must be positive")
	}
	if _, err := SelectSuites(o.Suites); err != nil {
		return err
	}
	return nil
}
