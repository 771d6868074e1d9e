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
	"bufio"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TestConfig holds all configuration for the playwright tests.
type TestConfig struct {
	BaseURL       string
	Headless      bool
	SlowMo        int
	ScreenshotDir string
	Timeout       time.Duration
}

var loadOnce sync.Once

// loadDotEnv loads simple KEY=VALUE lines from .env if present.
// Existing environment variables take precedence and are not overwritten.
func loadDotEnv() {
	f, err := os.Open(".env")
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		i := strings.Index(line, "=")
		if i <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:i])
		val := strings.TrimSpace(line[i+1:])
		if key == "" || val == "" {
			continue
		}
		if (strings.HasPrefix(val, `"`) && strings.HasSuffix(val, `"`)) || (strings.HasPrefix(val, "'") && strings.HasSuffix(val, "'")) {
			val = val[1 : len(val)-1]
		}
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}
}

// GetConfig returns the test configuration from environment variables.
func GetConfig() *TestConfig {
	loadOnce.Do(loadDotEnv)

	baseURL := os.Getenv("E2E_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5173"
	}

	slowMo := 0
	if v := os.Getenv("E2E_SLOW_MO"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			slowMo = n
		}
	}

	timeoutMS := 15000
	if v := os.Getenv("E2E_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeoutMS = n
		}
	}

	screenshotDir := os.Getenv("E2E_SCREENSHOT_DIR")
	if screenshotDir == "" {
		screenshotDir = "screenshots"
	}

	return &TestConfig{
		BaseURL:       baseURL,
		Headless:      os.Getenv("E2E_HEADLESS") != "false",
		SlowMo:        slowMo,
		ScreenshotDir: screenshotDir,
		Timeout:       time.Duration(timeoutMS) * time.Millisecond,
	}
}

// Reachable reports whether the dev server answers at base. A quick TCP dial
// weeds out dead hosts before the HTTP roundtrip.
func Reachable(base string) bool {
	u, err := url.Parse(base)
	if err != nil {
		return false
	}
	host := u.Host
	if !strings.Contains(host, ":") {
		if u.Scheme == "https" {
			host += ":443"
		} else {
			host += ":80"
		}
	}
	d := net.Dialer{Timeout: 250 * time.Millisecond}
	conn, err := d.Dial("tcp", host)
	if err != nil {
		return false
	}
	_ = conn.Close()

	client := &http.Client{Timeout: 800 * time.Millisecond}
	resp, err := client.Get(base)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}
