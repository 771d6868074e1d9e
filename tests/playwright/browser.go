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

package playwright

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/playwright-community/playwright-go"
)

// BrowserHelper provides browser setup and teardown for tests.
type BrowserHelper struct {
	Playwright *playwright.Playwright
	Browser    playwright.Browser
	Context    playwright.BrowserContext
	Page       playwright.Page
	Config     *TestConfig

	t        *testing.T
	mu       sync.Mutex
	jsErrors []string
}

// NewBrowserHelper creates a new browser helper instance.
func NewBrowserHelper(t *testing.T) *BrowserHelper {
	return &BrowserHelper{
		Config: GetConfig(),
		t:      t,
	}
}

// Setup initializes playwright, launches chromium and creates a page. JS
// console errors and page errors are collected and reported at teardown.
func (b *BrowserHelper) Setup() error {
	if os.Getenv("PLAYWRIGHT_SKIP_INSTALL") != "1" {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}
	pw, err := playwright.Run()
	if err != nil {
		// The driver may be missing or stale. Install once and retry.
		_ = playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
		pw, err = playwright.Run()
		if err != nil {
			return fmt.Errorf("could not start playwright after retry: %w", err)
		}
	}
	b.Playwright = pw

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.Config.Headless),
		SlowMo:   playwright.Float(float64(b.Config.SlowMo)),
	})
	if err != nil {
		return fmt.Errorf("could not launch browser: %w", err)
	}
	b.Browser = browser

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1920,
			Height: 1080,
		},
	})
	if err != nil {
		return fmt.Errorf("could not create context: %w", err)
	}
	b.Context = context

	page, err := context.NewPage()
	if err != nil {
		return fmt.Errorf("could not create page: %w", err)
	}
	b.Page = page
	page.SetDefaultTimeout(float64(b.Config.Timeout.Milliseconds()))

	page.OnConsole(func(msg playwright.ConsoleMessage) {
		if msg.Type() != "error" {
			return
		}
		b.mu.Lock()
		b.jsErrors = append(b.jsErrors, msg.Text())
		b.mu.Unlock()
		b.t.Logf("JS console error: %s", msg.Text())
	})
	page.OnPageError(func(err error) {
		b.mu.Lock()
		b.jsErrors = append(b.jsErrors, err.Error())
		b.mu.Unlock()
		b.t.Logf("Page error: %v", err)
	})

	return nil
}

// TearDown captures a failure screenshot when the test failed, reports
// collected JS errors, and closes everything.
func (b *BrowserHelper) TearDown() {
	if b.t.Failed() && b.Page != nil {
		name := strings.ReplaceAll(b.t.Name(), "/", "_") + "_failure.png"
		path := filepath.Join(b.Config.ScreenshotDir, name)
		_ = os.MkdirAll(b.Config.ScreenshotDir, 0755)
		b.Page.Screenshot(playwright.PageScreenshotOptions{
			Path: playwright.String(path),
		})
		b.t.Logf("Failure screenshot saved to %s", path)
	}

	if errs := b.JSErrors(); len(errs) > 0 {
		b.t.Logf("Collected %d JS errors during the test:", len(errs))
		for i, e := range errs {
			b.t.Logf("  [%d] %s", i+1, e)
		}
	}

	if b.Page != nil {
		b.Page.Close()
	}
	if b.Context != nil {
		b.Context.Close()
	}
	if b.Browser != nil {
		b.Browser.Close()
	}
	if b.Playwright != nil {
		b.Playwright.Stop()
	}
}

// JSErrors returns a copy of the JS errors collected so far.
func (b *BrowserHelper) JSErrors() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.jsErrors...)
}

// NavigateTo navigates to a path relative to the base URL and waits for the
// network to go idle.
func (b *BrowserHelper) NavigateTo(path string) error {
	u := strings.TrimRight(b.Config.BaseURL, "/") + path
	_, err := b.Page.Goto(u, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	})
	if err != nil {
		return fmt.Errorf("navigating to %s: %w", u, err)
	}
	return nil
}

// WaitForApp waits until the React root has rendered children.
func (b *BrowserHelper) WaitForApp() error {
	_, err := b.Page.WaitForFunction(`document.querySelector("#root").children.length > 0`, nil,
		playwright.PageWaitForFunctionOptions{
			Timeout: playwright.Float(15000),
		})
	return err
}

// Screenshot saves a screenshot under the configured directory.
func (b *BrowserHelper) Screenshot(name string, fullPage bool) error {
	path := filepath.Join(b.Config.ScreenshotDir, name)
	_ = os.MkdirAll(b.Config.ScreenshotDir, 0755)
	_, err := b.Page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(fullPage),
	})
	if err != nil {
		return fmt.Errorf("screenshot %s: %w", name, err)
	}
	b.t.Logf("Screenshot saved to %s", path)
	return nil
}
