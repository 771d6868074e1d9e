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

package e2ehelpers

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/google/uuid"
)

// Logger interface allows passing *testing.T or log.Printf
type Logger interface {
	Logf(format string, args ...any)
}

// CaptureScreenshot captures a screenshot and saves it to the specified filename.
func CaptureScreenshot(ctx context.Context, filename string) error {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory for screenshot: %w", err)
	}

	if err := os.WriteFile(filename, buf, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot to file: %w", err)
	}
	log.Printf("Saved screenshot to %s", filename)
	return nil
}

func DisableCSSAnimations() chromedp.ActionFunc {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return chromedp.Evaluate(`
                        const style = document.createElement('style');
                        style.innerHTML = '*{-webkit-transition-duration:0s!important;transition-duration:0s!important;-webkit-animation-duration:0s!important;animation-duration:0s!important;}';
                        document.head.appendChild(style);
                `, nil).Do(ctx)
	})
}

// WaitRootRendered waits until the React root has mounted children. A blank
// #root means the bundle is still loading (or crashed before the first render).
func WaitRootRendered(ctx context.Context) error {
	return chromedp.Run(ctx, chromedp.Poll(`
		(() => {
			const root = document.querySelector('#root');
			return root !== null && root.children.length > 0;
		})()
	`, nil, chromedp.WithPollingInterval(250*time.Millisecond), chromedp.WithPollingTimeout(15*time.Second)))
}

// WaitAnyVisible waits for the first visible element from a comma-separated
// selector list and reports which one matched through match.
func WaitAnyVisible(sel string, match *string, timeout time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		for {
			select {
			case <-ticker.C:
				err := chromedp.Evaluate(fmt.Sprintf(
					`(function(selectors) {
					const elements = document.querySelectorAll(selectors);
					for (let i = 0; i < elements.length; i++) {
						const el = elements[i];
						const style = window.getComputedStyle(el);
						if (el.offsetHeight !== 0 && style.display !== 'none' && style.visibility !== 'hidden' && style.opacity !== '0') {
							return el.tagName.toLowerCase() + (el.id ? '#' + el.id : '');
						}
					}
					return '';
				})('%s')`, jsEscape(sel)), match).Do(ctx)
				if err == nil && *match != "" {
					return nil
				}
			case <-timeoutCtx.Done():
				return fmt.Errorf("timeout waiting for any of %q to become visible: %w", sel, timeoutCtx.Err())
			}
		}
	})
}

// ClickFirstVisible clicks the first visible element with non-empty text from
// a comma-separated selector list. l is optional (can be nil).
func ClickFirstVisible(l Logger, sel string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var picked string
		err := chromedp.Evaluate(fmt.Sprintf(
			`(function(selectors) {
			const elements = document.querySelectorAll(selectors);
			for (let i = 0; i < elements.length; i++) {
				const el = elements[i];
				const style = window.getComputedStyle(el);
				if (el.offsetHeight !== 0 && style.display !== 'none' && style.visibility !== 'hidden') {
					const text = (el.innerText || '').trim();
					if (!text) continue;
					el.click();
					return el.tagName.toLowerCase() + (el.id ? '#' + el.id : '') + ' "' + text.slice(0, 40) + '"';
				}
			}
			return '';
		})('%s')`, jsEscape(sel)), &picked).Do(ctx)
		if err != nil {
			return err
		}
		if picked == "" {
			return fmt.Errorf("no visible element matching %q", sel)
		}
		if l != nil {
			l.Logf("ClickFirstVisible: clicked %s", picked)
		}
		return nil
	})
}

// WaitTextVisible waits until the page body text contains text.
func WaitTextVisible(text string) chromedp.Action {
	return chromedp.Poll(
		fmt.Sprintf(`document.body.innerText.includes('%s')`, jsEscape(text)), nil,
		chromedp.WithPollingInterval(250*time.Millisecond),
		chromedp.WithPollingTimeout(15*time.Second),
	)
}

// CountMatches returns the number of elements matching selector.
func CountMatches(ctx context.Context, selector string) (int, error) {
	var count int
	err := chromedp.Run(ctx, chromedp.Evaluate(
		fmt.Sprintf(`document.querySelectorAll('%s').length`, jsEscape(selector)), &count))
	return count, err
}

// --- Forms ---

// SetReactInputValue sets an input value through the native setter and
// dispatches input and change events. React wraps the value property with its
// own tracker, so a plain `el.value = x` followed by an input event is ignored
// by controlled components.
func SetReactInputValue(selector, value string) chromedp.Action {
	return chromedp.Evaluate(fmt.Sprintf(`
		(() => {
			const el = document.querySelector('%s');
			if (!el) throw new Error('Element not found: %s');
			const proto = el.tagName === 'TEXTAREA' ? window.HTMLTextAreaElement.prototype : window.HTMLInputElement.prototype;
			const setter = Object.getOwnPropertyDescriptor(proto, 'value').set;
			setter.call(el, '%s');
			el.dispatchEvent(new Event('input', { bubbles: true }));
			el.dispatchEvent(new Event('change', { bubbles: true }));
		})()
	`, jsEscape(selector), jsEscape(selector), jsEscape(value)), nil)
}

// SelectByValue picks an option of a native <select> by its value attribute.
// The value goes through the native setter for the same reason as
// SetReactInputValue.
func SelectByValue(selector, value string) chromedp.Action {
	return chromedp.Evaluate(fmt.Sprintf(`
		(() => {
			const el = document.querySelector('%s');
			if (!el) throw new Error('Select not found: %s');
			const setter = Object.getOwnPropertyDescriptor(window.HTMLSelectElement.prototype, 'value').set;
			setter.call(el, '%s');
			el.dispatchEvent(new Event('input', { bubbles: true }));
			el.dispatchEvent(new Event('change', { bubbles: true }));
		})()
	`, jsEscape(selector), jsEscape(selector), jsEscape(value)), nil)
}

// --- Calendar ---

// EventForm holds the fields of the calendar add/edit event modal. Level must
// be one of Danger, Success, Primary or Warning; empty fields are skipped.
type EventForm struct {
	Title     string
	Level     string
	StartDate string
	EndDate   string
}

// NewEventTitle returns prefix plus a short random suffix so repeated runs
// against the same dev server never collide on the title.
func NewEventTitle(prefix string) string {
	return fmt.Sprintf("%s %s", prefix, uuid.NewString()[:8])
}

// OpenAddEventModal clicks the calendar toolbar's Add Event button and waits
// for the modal form to appear. The button is a FullCalendar custom button;
// older template revisions only carry the text, so fall back to a text scan.
func OpenAddEventModal(ctx context.Context) error {
	var clicked bool
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`
			(() => {
				const byClass = document.querySelector('.fc-addEventButton-button');
				if (byClass) { byClass.click(); return true; }
				const buttons = document.querySelectorAll('button');
				for (let i = 0; i < buttons.length; i++) {
					if ((buttons[i].textContent || '').includes('Add Event')) {
						buttons[i].click();
						return true;
					}
				}
				return false;
			})()
		`, &clicked),
	)
	if err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("add event button not found")
	}
	return chromedp.Run(ctx, chromedp.WaitVisible(`#event-title`, chromedp.ByQuery))
}

// FillEventForm fills the open event modal.
func FillEventForm(ctx context.Context, form EventForm) error {
	if form.Title != "" {
		if err := chromedp.Run(ctx, SetReactInputValue(`#event-title`, form.Title)); err != nil {
			return fmt.Errorf("setting event title: %w", err)
		}
	}
	if form.Level != "" {
		if err := chromedp.Run(ctx, JSClick(fmt.Sprintf(`#modal%s`, form.Level))); err != nil {
			return fmt.Errorf("selecting level %s: %w", form.Level, err)
		}
	}
	if form.StartDate != "" {
		if err := chromedp.Run(ctx, SetReactInputValue(`#event-start-date`, form.StartDate)); err != nil {
			return fmt.Errorf("setting start date: %w", err)
		}
	}
	if form.EndDate != "" {
		if err := chromedp.Run(ctx, SetReactInputValue(`#event-end-date`, form.EndDate)); err != nil {
			return fmt.Errorf("setting end date: %w", err)
		}
	}
	return nil
}

// SubmitEventForm clicks the modal footer button labeled exactly "Add Event"
// (the toolbar button says "Add Event +", so an exact match is required) and
// waits for the modal to close.
func SubmitEventForm(ctx context.Context) error {
	if err := clickButtonByText(ctx, "Add Event"); err != nil {
		return err
	}
	return WaitModalGone(ctx)
}

// CloseEventModal dismisses the modal via its Close button.
func CloseEventModal(ctx context.Context) error {
	if err := clickButtonByText(ctx, "Close"); err != nil {
		return err
	}
	return WaitModalGone(ctx)
}

// WaitModalGone waits until the event modal has been unmounted or hidden.
func WaitModalGone(ctx context.Context) error {
	return chromedp.Run(ctx, chromedp.Poll(`
		(() => {
			const el = document.querySelector('#event-title');
			return el === null || el.offsetParent === null;
		})()
	`, nil, chromedp.WithPollingInterval(100*time.Millisecond), chromedp.WithPollingTimeout(10*time.Second)))
}

// VisibleEventTitles returns the titles of all rendered calendar event chips.
func VisibleEventTitles(ctx context.Context) ([]string, error) {
	titles := []string{}
	err := chromedp.Run(ctx, chromedp.Evaluate(`
		(() => {
			const out = [];
			const chips = document.querySelectorAll('.fc-event');
			for (let i = 0; i < chips.length; i++) {
				const title = chips[i].querySelector('.fc-event-title');
				const text = ((title ? title.textContent : chips[i].textContent) || '').trim();
				if (text) out.push(text);
			}
			return out;
		})()
	`, &titles))
	return titles, err
}

// ClickEventByTitle scrolls the event chip with the given title into view and
// clicks it through a synthetic MouseEvent. FullCalendar stacks chips inside
// day cells where a plain coordinate click can land on the cell instead.
func ClickEventByTitle(ctx context.Context, title string) error {
	var found bool
	err := chromedp.Run(ctx, chromedp.Evaluate(fmt.Sprintf(`
		(() => {
			const chips = document.querySelectorAll('.fc-event');
			for (let i = 0; i < chips.length; i++) {
				const t = chips[i].querySelector('.fc-event-title');
				const text = ((t ? t.textContent : chips[i].textContent) || '').trim();
				if (text === '%s') {
					chips[i].scrollIntoView({ block: 'center' });
					chips[i].dispatchEvent(new MouseEvent('click', { bubbles: true, cancelable: true }));
					return true;
				}
			}
			return false;
		})()
	`, jsEscape(title)), &found))
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no calendar event with title %q", title)
	}
	return nil
}

// SidebarNavLabels returns the top-level sidebar menu labels. The template
// renders them in .menu-item-text spans; fall back to direct list items for
// markup that predates those classes.
func SidebarNavLabels(ctx context.Context) ([]string, error) {
	labels := []string{}
	err := chromedp.Run(ctx, chromedp.Evaluate(`
		(() => {
			const out = [];
			const seen = new Set();
			let nodes = document.querySelectorAll('aside .menu-item-text, [data-testid="sidebar"] .menu-item-text');
			if (nodes.length === 0) {
				nodes = document.querySelectorAll('aside nav > ul > li > a, aside nav > ul > li > button');
			}
			for (let i = 0; i < nodes.length; i++) {
				const text = (nodes[i].textContent || '').trim().replace(/\s+/g, ' ');
				if (text && !seen.has(text)) {
					seen.add(text);
					out.push(text);
				}
			}
			return out;
		})()
	`, &labels))
	return labels, err
}

// ClickSidebarItem clicks the sidebar entry whose label matches exactly.
// Group entries (Forms, Pages, ...) toggle their submenu open.
func ClickSidebarItem(ctx context.Context, label string) error {
	var found bool
	err := chromedp.Run(ctx, chromedp.Evaluate(fmt.Sprintf(`
		(() => {
			const spans = document.querySelectorAll('.menu-item-text');
			for (let i = 0; i < spans.length; i++) {
				if ((spans[i].textContent || '').trim() === '%s') {
					const target = spans[i].closest('a, button') || spans[i].parentElement;
					target.click();
					return true;
				}
			}
			return false;
		})()
	`, jsEscape(label)), &found))
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no sidebar item labeled %q", label)
	}
	return nil
}

// JSClick clicks an element using JavaScript. Useful for SVGs.
func JSClick(selector string) chromedp.Action {
	return chromedp.Evaluate(fmt.Sprintf(`
		(() => {
			const el = document.querySelector('%s');
			if (el) {
				el.dispatchEvent(new MouseEvent('click', {bubbles: true}));
			} else {
				throw new Error("JSClick: Element not found: " + '%s');
			}
		})()
	`, jsEscape(selector), jsEscape(selector)), nil)
}

func clickButtonByText(ctx context.Context, text string) error {
	var clicked bool
	err := chromedp.Run(ctx, chromedp.Evaluate(fmt.Sprintf(`
		(() => {
			const buttons = document.querySelectorAll('button');
			for (let i = 0; i < buttons.length; i++) {
				const el = buttons[i];
				if ((el.textContent || '').trim() === '%s' && el.offsetParent !== null) {
					el.click();
					return true;
				}
			}
			return false;
		})()
	`, jsEscape(text)), &clicked))
	if err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("no visible button with text %q", text)
	}
	return nil
}

// jsEscape escapes a string for embedding in single-quoted JS literals.
func jsEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// --- Browser discovery ---

var browserExecutableNames = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"chrome",
	"headless-shell",
}

// FindBrowserExecutable locates a Chrome or Chromium binary for local runs.
// CHROMEDP_BROWSER and CHROME_PATH take precedence, then PATH is searched.
// When TAILCHECK_DOWNLOAD_BROWSER=1, a managed build is downloaded as a last
// resort so CI hosts without a system browser can still run the suites.
func FindBrowserExecutable() (string, error) {
	for _, name := range []string{"CHROMEDP_BROWSER", "CHROME_PATH"} {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			return value, nil
		}
	}
	for _, name := range browserExecutableNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	if os.Getenv("TAILCHECK_DOWNLOAD_BROWSER") == "1" {
		path, err := launcher.NewBrowser().Get()
		if err != nil {
			return "", fmt.Errorf("browser download failed: %w", err)
		}
		if strings.TrimSpace(path) == "" {
			return "", fmt.Errorf("browser download returned an empty path")
		}
		return path, nil
	}
	return "", fmt.Errorf("no browser executable found; set CHROMEDP_BROWSER, CHROME_PATH, or TAILCHECK_DOWNLOAD_BROWSER=1")
}

// NewLocalAllocator builds a headless exec allocator around the discovered
// browser executable. Callers own both cancel funcs via the returned cancel.
func NewLocalAllocator(ctx context.Context) (context.Context, context.CancelFunc, error) {
	execPath, err := FindBrowserExecutable()
	if err != nil {
		return nil, nil, err
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	return allocCtx, cancel, nil
}
