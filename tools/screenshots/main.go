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

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ttbt-io/tailcheck/tools/e2ehelpers"
)

var (
	baseURL   = flag.String("base-url", "http://localhost:5173", "The base url of the dashboard dev server")
	chromeURL = flag.String("chrome-url", "", "The url of the remote debugging port (empty = local browser)")
	outputDir = flag.String("output-dir", "tools/screenshots/output", "Directory to save screenshots")
	mobile    = flag.Bool("mobile", false, "Also capture 768x1024 variants of each page")
)

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

	ctx, cancel = context.WithTimeout(ctx, 180*time.Second) // very generous timeout
	defer cancel()

	// Ensure output dir exists
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	log.Println("Starting screenshot generation...")

	if err := generateScreenshots(ctx); err != nil {
		log.Fatalf("Failed to generate screenshots: %v", err)
	}

	if *mobile {
		if err := generateMobileScreenshots(ctx); err != nil {
			log.Fatalf("Failed to generate mobile screenshots: %v", err)
		}
	}

	log.Println("Screenshots generated successfully.")
}

func debugFailure(ctx context.Context, name string) {
	log.Printf("DEBUG: capturing failure info for %s", name)
	var htmlContent string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &htmlContent)); err != nil {
		log.Printf("DEBUG: Failed to capture HTML: %v", err)
	} else {
		log.Printf("DEBUG: HTML Dump for %s:\n%s", name, htmlContent)
	}

	if err := e2ehelpers.CaptureScreenshot(ctx, filepath.Join(*outputDir, fmt.Sprintf("debug-%s.png", name))); err != nil {
		log.Printf("DEBUG: Failed to capture screenshot: %v", err)
	}
}

// runAction executes a chromedp action with a timeout and debug capture on failure.
func runAction(ctx context.Context, name string, action chromedp.Action, timeout time.Duration) error {
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- chromedp.Run(stepCtx, action)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Printf("Action '%s' failed: %v", name, err)
			debugFailure(ctx, name+"-failed")
			return err
		}
		return nil
	case <-stepCtx.Done():
		log.Printf("Action '%s' timed out", name)
		debugFailure(ctx, name+"-timeout")
		return stepCtx.Err()
	}
}

func openPage(ctx context.Context, path string) error {
	if err := chromedp.Run(ctx, chromedp.Navigate(strings.TrimRight(*baseURL, "/")+path)); err != nil {
		return err
	}
	return e2ehelpers.WaitRootRendered(ctx)
}

func captureScreenshot(ctx context.Context, filename string) error {
	return e2ehelpers.CaptureScreenshot(ctx, filepath.Join(*outputDir, filename))
}

func generateScreenshots(ctx context.Context) error {
	if err := chromedp.Run(ctx, chromedp.EmulateViewport(1920, 1080)); err != nil {
		return err
	}

	if err := captureDashboard(ctx); err != nil {
		return err
	}
	if err := captureForms(ctx); err != nil {
		return err
	}
	if err := captureCalendar(ctx); err != nil {
		return err
	}
	return nil
}

func captureDashboard(ctx context.Context) error {
	log.Println("Capturing: Dashboard")
	var sidebar string
	if err := runAction(ctx, "capture-dashboard", chromedp.Tasks{
		chromedp.ActionFunc(func(c context.Context) error {
			return openPage(c, "/")
		}),
		e2ehelpers.DisableCSSAnimations(),
		e2ehelpers.WaitAnyVisible(`[data-testid="sidebar"], .sidebar, nav, aside`, &sidebar, 10*time.Second),
		// ApexCharts render asynchronously after the first paint.
		chromedp.Sleep(2 * time.Second),
		chromedp.ActionFunc(func(c context.Context) error {
			return captureScreenshot(c, "dashboard.png")
		}),
	}, 30*time.Second); err != nil {
		return err
	}
	return nil
}

func captureForms(ctx context.Context) error {
	log.Println("Capturing: Form Elements")
	if err := runAction(ctx, "capture-forms", chromedp.Tasks{
		chromedp.ActionFunc(func(c context.Context) error {
			return openPage(c, "/form-elements")
		}),
		e2ehelpers.DisableCSSAnimations(),
		chromedp.WaitVisible("#input", chromedp.ByQuery),
		// Fill a few fields so the capture shows populated controls.
		e2ehelpers.SetReactInputValue("#input", "Sample text"),
		e2ehelpers.SetReactInputValue("#inputTwo", "demo@example.com"),
		e2ehelpers.SelectByValue("select", "marketing"),
		e2ehelpers.SetReactInputValue("#tm", "14:30"),
		chromedp.Sleep(200 * time.Millisecond),
		chromedp.ActionFunc(func(c context.Context) error {
			return captureScreenshot(c, "form-elements.png")
		}),
	}, 30*time.Second); err != nil {
		return err
	}
	return nil
}

func captureCalendar(ctx context.Context) error {
	log.Println("Capturing: Calendar")
	if err := runAction(ctx, "capture-calendar", chromedp.Tasks{
		chromedp.ActionFunc(func(c context.Context) error {
			return openPage(c, "/calendar")
		}),
		e2ehelpers.DisableCSSAnimations(),
		chromedp.WaitVisible(".fc", chromedp.ByQuery),
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.ActionFunc(func(c context.Context) error {
			return captureScreenshot(c, "calendar.png")
		}),
	}, 30*time.Second); err != nil {
		return err
	}

	log.Println("Capturing: Add Event Modal")
	// Dates on the 25th of the open month keep the fields plausible in any run.
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 25, 0, 0, 0, 0, time.Local)
	form := e2ehelpers.EventForm{
		Title:     "Design review",
		Level:     "Primary",
		StartDate: start.Format("2006-01-02"),
		EndDate:   start.AddDate(0, 0, 1).Format("2006-01-02"),
	}
	if err := runAction(ctx, "capture-add-event", chromedp.Tasks{
		chromedp.ActionFunc(func(c context.Context) error {
			return e2ehelpers.OpenAddEventModal(c)
		}),
		chromedp.ActionFunc(func(c context.Context) error {
			return e2ehelpers.FillEventForm(c, form)
		}),
		chromedp.Sleep(300 * time.Millisecond),
		chromedp.ActionFunc(func(c context.Context) error {
			return captureScreenshot(c, "calendar-add-event.png")
		}),
		chromedp.ActionFunc(func(c context.Context) error {
			return e2ehelpers.CloseEventModal(c)
		}),
	}, 30*time.Second); err != nil {
		return err
	}

	log.Println("Capturing: Calendar Week View")
	if err := runAction(ctx, "capture-calendar-week", chromedp.Tasks{
		e2ehelpers.JSClick(".fc-timeGridWeek-button"),
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.ActionFunc(func(c context.Context) error {
			return captureScreenshot(c, "calendar-week.png")
		}),
	}, 30*time.Second); err != nil {
		return err
	}
	return nil
}

// generateMobileScreenshots re-captures each page at a tablet viewport.
func generateMobileScreenshots(ctx context.Context) error {
	if err := chromedp.Run(ctx, chromedp.EmulateViewport(768, 1024)); err != nil {
		return err
	}

	pages := []struct {
		path     string
		wait     string
		filename string
	}{
		{"/", "nav, aside", "dashboard-mobile.png"},
		{"/form-elements", "#input", "form-elements-mobile.png"},
		{"/calendar", ".fc", "calendar-mobile.png"},
	}
	for _, p := range pages {
		log.Printf("Capturing: %s (mobile)", p.path)
		var match string
		if err := runAction(ctx, "capture-"+strings.TrimSuffix(p.filename, ".png"), chromedp.Tasks{
			chromedp.ActionFunc(func(c context.Context) error {
				return openPage(c, p.path)
			}),
			e2ehelpers.WaitAnyVisible(p.wait, &match, 10*time.Second),
			chromedp.Sleep(1 * time.Second),
			chromedp.ActionFunc(func(c context.Context) error {
				return captureScreenshot(c, p.filename)
			}),
		}, 30*time.Second); err != nil {
			return err
		}
	}
	return nil
}
