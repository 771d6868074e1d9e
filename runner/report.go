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
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Report aggregates the suite results of one run.
type Report struct {
	RunID   string
	Results []Result
}

// Passed returns the number of suites that passed.
func (r Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusPassed {
			n++
		}
	}
	return n
}

// AllPassed reports whether every suite passed. An empty report counts as
// failed so a typo in --suites can never yield exit 0.
func (r Report) AllPassed() bool {
	return len(r.Results) > 0 && r.Passed() == len(r.Results)
}

// Printer renders runner progress and the final summary.
type Printer struct {
	out io.Writer

	headerStyle lipgloss.Style
	passStyle   lipgloss.Style
	failStyle   lipgloss.Style
	warnStyle   lipgloss.Style
	dimStyle    lipgloss.Style
}

// NewPrinter builds a Printer writing to out. Colors degrade to plain text
// on non-terminal writers.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out: out,
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true),
		passStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#008000", Dark: "#55FF55"}).
			Bold(true),
		failStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D00000", Dark: "#FF5555"}).
			Bold(true),
		warnStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFAA00"}),
		dimStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
	}
}

// Header prints the run banner.
func (p *Printer) Header(runID, baseURL string) {
	fmt.Fprintln(p.out, p.headerStyle.Render("tailcheck run "+runID))
	fmt.Fprintln(p.out, p.dimStyle.Render("target: "+baseURL))
	fmt.Fprintln(p.out)
}

// SuiteStart prints a divider ahead of a suite's output.
func (p *Printer) SuiteStart(name string) {
	fmt.Fprintln(p.out, p.dimStyle.Render(strings.Repeat("─", 60)))
	fmt.Fprintf(p.out, "running suite %s\n", name)
}

// Warn prints a non-fatal notice.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.out, p.warnStyle.Render("warning: "+fmt.Sprintf(format, args...)))
}

// ServerHint prints instructions for starting the dev server.
func (p *Printer) ServerHint(baseURL string) {
	fmt.Fprintln(p.out, p.failStyle.Render(fmt.Sprintf("dev server is not responding at %s", baseURL)))
	fmt.Fprintln(p.out, "start it first:")
	fmt.Fprintln(p.out, "  cd tailadmin-app")
	fmt.Fprintln(p.out, "  npm install")
	fmt.Fprintln(p.out, "  npm run dev")
}

// Summary prints the per-suite table and the overall verdict.
func (p *Printer) Summary(report Report) {
	fmt.Fprintln(p.out, p.dimStyle.Render(strings.Repeat("─", 60)))
	fmt.Fprintln(p.out, p.headerStyle.Render("summary"))
	for _, res := range report.Results {
		fmt.Fprintf(p.out, "  %-12s %-8s %s\n",
			res.Suite, p.renderStatus(res.Status), res.Duration.Round(10*time.Millisecond))
	}
	line := fmt.Sprintf("%d/%d suites passed", report.Passed(), len(report.Results))
	if report.AllPassed() {
		fmt.Fprintln(p.out, p.passStyle.Render(line))
	} else {
		fmt.Fprintln(p.out, p.failStyle.Render(line))
	}
}

func (p *Printer) renderStatus(s Status) string {
	switch s {
	case StatusPassed:
		return p.passStyle.Render(string(s))
	case StatusTimeout:
		return p.warnStyle.Render(string(s))
	default:
		return p.failStyle.Render(string(s))
	}
}
