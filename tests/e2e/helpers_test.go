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

	"github.com/chromedp/chromedp"
	"github.com/ttbt-io/tailcheck/tools/e2ehelpers"
)

var DisableCSSAnimations = e2ehelpers.DisableCSSAnimations
var WaitAnyVisible = e2ehelpers.WaitAnyVisible
var WaitTextVisible = e2ehelpers.WaitTextVisible
var ClickFirstVisible = e2ehelpers.ClickFirstVisible
var ClickSidebarItem = e2ehelpers.ClickSidebarItem
var JSClick = e2ehelpers.JSClick
var CaptureScreenshot = e2ehelpers.CaptureScreenshot
var SetReactInputValue = e2ehelpers.SetReactInputValue
var SelectByValue = e2ehelpers.SelectByValue
var NewEventTitle = e2ehelpers.NewEventTitle
var OpenAddEventModal = e2ehelpers.OpenAddEventModal
var FillEventForm = e2ehelpers.FillEventForm
var SubmitEventForm = e2ehelpers.SubmitEventForm
var CloseEventModal = e2ehelpers.CloseEventModal
var WaitModalGone = e2ehelpers.WaitModalGone
var VisibleEventTitles = e2ehelpers.VisibleEventTitles
var ClickEventByTitle = e2ehelpers.ClickEventByTitle

type EventForm = e2ehelpers.EventForm

// Wrapper actions for one-line assertions inside runStep.

func countOf(selector string, count *int) chromedp.Action {
	return chromedp.Evaluate(fmt.Sprintf(`document.querySelectorAll('%s').length`, selector), count)
}

func inputValue(selector string, value *string) chromedp.Action {
	return chromedp.Evaluate(fmt.Sprintf(`document.querySelector('%s')?.value || ''`, selector), value)
}
