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
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultClientTimeout = 5 * time.Second
	defaultProbeInterval = 1 * time.Second
	// Vite's HMR websocket completes the handshake only for this subprotocol.
	hmrSubprotocol = "vite-hmr"
)

// Probe checks that the dev server under test is up before suites launch
// browsers against it.
type Probe struct {
	BaseURL       string
	ClientTimeout time.Duration
	Interval      time.Duration
}

// NewProbe returns a Probe with the cadence the suites assume: one attempt
// per second with a 5 second request timeout.
func NewProbe(baseURL string) *Probe {
	return &Probe{
		BaseURL:       baseURL,
		ClientTimeout: defaultClientTimeout,
		Interval:      defaultProbeInterval,
	}
}

// WaitReachable polls the base URL until it answers 200 or ctx expires.
// Non-200 statuses and transport errors both count as not ready. It returns
// the number of attempts made.
func (p *Probe) WaitReachable(ctx context.Context) (int, error) {
	client := &http.Client{
		Timeout: p.ClientTimeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	attempts := 0
	for {
		attempts++
		if p.attempt(ctx, client) {
			return attempts, nil
		}
		select {
		case <-ctx.Done():
			return attempts, fmt.Errorf("server at %s not reachable after %d attempts: %w", p.BaseURL, attempts, ctx.Err())
		case <-time.After(p.Interval):
		}
	}
}

func (p *Probe) attempt(ctx context.Context, client *http.Client) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// CheckHMR dials the Vite HMR websocket derived from the base URL. A
// successful dial means a live dev server is behind the URL rather than a
// static build, so suites can rely on instant rebuilds during debugging.
func (p *Probe) CheckHMR(ctx context.Context) error {
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return fmt.Errorf("unsupported scheme %q for hmr check", u.Scheme)
	}
	u.Path = "/"

	dialer := websocket.Dialer{
		HandshakeTimeout: p.ClientTimeout,
		Subprotocols:     []string{hmrSubprotocol},
		TLSClientConfig:  &tls.Config{InsecureSkipVerify: true},
	}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("hmr websocket dial %s: %w", u.String(), err)
	}
	return conn.Close()
}
