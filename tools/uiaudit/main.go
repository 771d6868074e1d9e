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

// Command uiaudit walks the dashboard pages and reports whether the selectors
// the test suites depend on are still present. Run it after a template upgrade
// to find breakage before the suites do.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/ttbt-io/tailcheck/tools/e2ehelpers"
)

var (
	baseURL   = flag.String("base-url", "http://localhost:5173", "The base url of the dashboard dev server")
	chromeURL = flag.String("chrome-url", "", "The url of the remote debugging port (empty = local browser)")
	output    = flag.String("output", "tools/uiaudit/audit.json", "Path of the JSON report")
)

// A Check probes one selector. Required selectors fail the audit when absent;
// optional ones are informational (the suites have fallbacks for them).
type Check struct {
	Name     string `json:"name"`
	Selector string `json:"selector"`
	Required bool   `json:"required"`
	Found    bool   `json:"found"`
	Count    int    `json:"count"`
}

type PageReport struct {
	Path   string  `json:"path"`
	Title  string  `json:"title"`
	Checks []Check `json:"checks"`
}

type Report struct {
	ID          string       `json:"id"`
	BaseURL     string       `json:"baseUrl"`
	GeneratedAt time.Time    `json:"generatedAt"`
	Pages       []PageReport `json:"pages"`
}

// pageChecks is the selector inventory, one entry per audited page.
var pageChecks = []struct {
	path   string
	checks []Check
}{
	{
		path: "/",
		checks: []Check{
			{Name: "sidebar", Selector: `nav, aside`, Required: true},
			{Name: "sidebar testid", Selector: `[data-testid="sidebar"]`, Required: false},
			{Name: "metric cards", Selector: `.rounded-2xl.border`, Required: false},
			{Name: "charts", Selector: `.apexcharts-canvas`, Required: true},
		},
	},
	{
		path: "/form-elements",
		checks: []Check{
			{Name: "text input", Selector: `#input`, Required: true},
			{Name: "placeholder input", Selector: `#inputTwo`, Required: true},
			{Name: "select", Selector: `select`, Required: true},
			{Name: "checkboxes", Selector: `input[type="checkbox"]`, Required: true},
			{Name: "radios", Selector: `input[type="radio"]`, Required: true},
			{Name: "file input", Selector: `input[type="file"]`, Required: true},
			{Name: "time input", Selector: `#tm`, Required: true},
			{Name: "date picker input", Selector: `#date-picker`, Required: true},
			{Name: "multi-select trigger", Selector: `[role="combobox"]`, Required: false},
			{Name: "password input", Selector: `input[type="password"]`, Required: false},
		},
	},
	{
		path: "/calendar",
		checks: []Check{
			{Name: "calendar root", Selector: `.fc`, Required: true},
			{Name: "calendar toolbar", Selector: `.fc-header-toolbar, .fc-toolbar`, Required: true},
			{Name: "calendar grid", Selector: `.fc-daygrid-body, .fc-view-harness`, Required: true},
			{Name: "add event button", Selector: `.fc-addEventButton-button`, Required: false},
			{Name: "event chips", Selector: `.fc-event`, Required: false},
			{Name: "week view button", Selector: `.fc-timeGridWeek-button`, Required: false},
		},
	},
}

func main() {
	flag.Parse()

	var (
		ctx    context.Context
		cancel context.CancelFunc
		err    error
	)
	if *chromeURL != "" {
		ctx, cancel = chromedp.NewRemoteAllocator(context.Background(), *chromeURL)
	} else {
		ctx, cancel, err = e2ehelpers.NewLocalAllocator(context.Background())
		if err != nil {
			log.Fatalf("No local browser: %v (set --chrome-url to use a remote one)", err)
		}
	}
	defer cancel()

	ctx, cancel = chromedp.NewContext(ctx, chromedp.WithLogf(log.Printf))
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	report := Report{
		ID:          uuid.New().String(),
		BaseURL:     *baseURL,
		GeneratedAt: time.Now().UTC(),
	}

	var missing []string
	for _, page := range pageChecks {
		log.Printf("Auditing: %s", page.path)
		pr, err := auditPage(ctx, page.path, page.checks)
		if err != nil {
			log.Fatalf("Audit of %s failed: %v", page.path, err)
		}
		for _, c := range pr.Checks {
			if c.Required && !c.Found {
				log.Printf("MISSING (required): %s %q on %s", c.Name, c.Selector, page.path)
				missing = append(missing, fmt.Sprintf("%s %q", c.Name, c.Selector))
			}
		}
		report.Pages = append(report.Pages, pr)
	}

	if err := writeReport(report); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	if len(missing) > 0 {
		log.Fatalf("Audit FAILED: %d required selector(s) missing: %s", len(missing), strings.Join(missing, ", "))
	}
	log.Println("Audit PASSED.")
}

func auditPage(ctx context.Context, path string, checks []Check) (PageReport, error) {
	pr := PageReport{Path: path}

	if err := chromedp.Run(ctx, chromedp.Navigate(strings.TrimRight(*baseURL, "/")+path)); err != nil {
		return pr, err
	}
	if err := e2ehelpers.WaitRootRendered(ctx); err != nil {
		return pr, err
	}
	// Charts and the calendar mount after the first paint.
	if err := chromedp.Run(ctx,
		chromedp.Sleep(2*time.Second),
		chromedp.Title(&pr.Title),
	); err != nil {
		return pr, err
	}

	for _, c := range checks {
		count, err := e2ehelpers.CountMatches(ctx, c.Selector)
		if err != nil {
			return pr, fmt.Errorf("counting %q: %w", c.Selector, err)
		}
		c.Count = count
		c.Found = count > 0
		pr.Checks = append(pr.Checks, c)
	}
	return pr, nil
}

func writeReport(report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(*output), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(*output, data, 0644); err != nil {
		return err
	}
	log.Printf("Generated %s (%d bytes)", *output, len(data))
	return nil
}
