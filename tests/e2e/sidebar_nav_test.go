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

package e2e

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
)

// TestSidebarNavGolden compares the top-level sidebar labels against the
// checked-in golden file.
func TestSidebarNavGolden(t *testing.T) {
	requireDevServer(t)
	ctx := newBrowserContext(t, 90*time.Second)

	runStep(t, ctx, "Set desktop viewport",
		chromedp.EmulateViewport(1920, 1080),
	)
	if err := openPage(ctx, "/"); err != nil {
		t.Fatalf("Failed to open the dashboard: %v", err)
	}
	runStep(t, ctx, "Disable animations",
		DisableCSSAnimations(),
	)

	VerifySidebarNav(t, ctx, "sidebar_nav.txt")
}

// TestSidebarRouting clicks through the sidebar: a leaf entry must route to
// its page, a group entry must expand its submenu in place.
func TestSidebarRouting(t *testing.T) {
	requireDevServer(t)
	ctx := newBrowserContext(t, 2*time.Minute)

	runStep(t, ctx, "Set desktop viewport",
		chromedp.EmulateViewport(1920, 1080),
	)
	if err := openPage(ctx, "/"); err != nil {
		t.Fatalf("Failed to open the dashboard: %v", err)
	}
	runStep(t, ctx, "Disable animations",
		DisableCSSAnimations(),
	)

	// Submenu links collapse to zero height instead of unmounting, so check
	// the rendered height rather than visible text.
	submenuOpen := func(sel string) bool {
		var height float64
		if err := chromedp.Run(ctx,
			chromedp.Evaluate(fmt.Sprintf(`(document.querySelector('%s')?.getBoundingClientRect().height) || 0`, sel), &height),
		); err != nil {
			return false
		}
		return height > 0
	}

	// Calendar is a leaf entry and navigates.
	if err := ClickSidebarItem(ctx, "Calendar"); err != nil {
		t.Fatalf("Failed to click Calendar: %v", err)
	}
	runStep(t, ctx, "Wait for the calendar page",
		chromedp.WaitVisible(".fc", chromedp.ByQuery),
	)
	var location string
	runStep(t, ctx, "Read the location",
		chromedp.Location(&location),
	)
	if !strings.HasSuffix(strings.TrimRight(location, "/"), "/calendar") {
		t.Errorf("Location = %q, want a /calendar path", location)
	}

	// Back to the dashboard. The Dashboard entry is itself a group, so go by
	// URL.
	if err := openPage(ctx, "/"); err != nil {
		t.Fatalf("Failed to return to the dashboard: %v", err)
	}

	if submenuOpen(`a[href="/form-elements"]`) {
		t.Log("Forms submenu already open")
	}

	// Forms is a group entry and expands in place.
	if err := ClickSidebarItem(ctx, "Forms"); err != nil {
		t.Fatalf("Failed to click Forms: %v", err)
	}
	runStep(t, ctx, "Wait for the submenu transition",
		chromedp.Sleep(500*time.Millisecond),
	)
	if !submenuOpen(`a[href="/form-elements"]`) {
		t.Error("Forms submenu did not expand")
	}

	var location2 string
	runStep(t, ctx, "Location stays on the dashboard",
		chromedp.Location(&location2),
	)
	if strings.Contains(location2, "/form") {
		t.Errorf("Clicking the Forms group navigated to %q, want it to only expand", location2)
	}
}
