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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptionsValid(t *testing.T) {
	opts := DefaultOptions()
	require.NoError(t, opts.Validate())
	assert.Equal(t, "http://localhost:5173", opts.BaseURL)
	assert.Equal(t, []string{"chromedp", "playwright"}, opts.Suites)
	assert.True(t, opts.HMRCheck)
}

func TestValidateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"empty base url", func(o *Options) { o.BaseURL = "  " }},
		{"bad scheme", func(o *Options) { o.BaseURL = "ftp://localhost" }},
		{"unparseable url", func(o *Options) { o.BaseURL = "http://[::1" }},
		{"zero server wait", func(o *Options) { o.ServerWait = 0 }},
		{"zero suite timeout", func(o *Options) { o.SuiteTimeout = 0 }},
		{"no suites", func(o *Options) { o.Suites = nil }},
		{"unknown suite", func(o *Options) { o.Suites = []string{"cypress"} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.mutate(&opts)
			assert.Error(t, opts.Validate())
		})
	}
}
