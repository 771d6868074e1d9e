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
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitReachableAfterRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	probe := NewProbe(server.URL)
	probe.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	attempts, err := probe.WaitReachable(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWaitReachableGivesUp(t *testing.T) {
	// Port 1 is never listening on a sane host.
	probe := NewProbe("http://127.0.0.1:1")
	probe.Interval = 10 * time.Millisecond
	probe.ClientTimeout = 100 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	attempts, err := probe.WaitReachable(ctx)
	require.Error(t, err)
	assert.GreaterOrEqual(t, attempts, 1)
}

func TestWaitReachableRejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	probe := NewProbe(server.URL)
	probe.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := probe.WaitReachable(ctx)
	require.Error(t, err)
}

func TestCheckHMR(t *testing.T) {
	upgrader := websocket.Upgrader{Subprotocols: []string{"vite-hmr"}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer server.Close()

	probe := NewProbe(server.URL)
	require.NoError(t, probe.CheckHMR(context.Background()))
}

func TestCheckHMRFailsWithoutWebsocket(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	probe := NewProbe(server.URL)
	require.Error(t, probe.CheckHMR(context.Background()))
}

func TestCheckHMRRejectsOddScheme(t *testing.T) {
	probe := NewProbe("ftp://localhost:5173")
	require.Error(t, probe.CheckHMR(context.Background()))
}
