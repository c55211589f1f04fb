// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package server

import (
	"context"
	"net/http"
	"testing"

	"go.astrophena.name/base/testutil"
)

func healthHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("localhost/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

func TestDetectRunning(t *testing.T) {
	c := &Config{
		Port:       3001,
		HTTPClient: testutil.MockHTTPClient(healthHandler()),
		runCommand: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			testutil.AssertEqual(t, name, "lsof")
			testutil.AssertEqual(t, args, []string{"-ti", ":3001"})
			// lsof reports the listener and its children, one PID per line.
			return []byte("4242\n4243\n"), nil
		},
	}

	s := Detect(t.Context(), c)
	testutil.AssertEqual(t, s.Running, true)
	testutil.AssertEqual(t, s.PID, 4242)
	testutil.AssertEqual(t, s.Port, 3001)
	testutil.AssertEqual(t, s.LocalURL, "http://localhost:3001")
}

func TestDetectNotRunning(t *testing.T) {
	c := &Config{
		Port:       3001,
		HTTPClient: testutil.MockHTTPClient(http.NotFoundHandler()),
		runCommand: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			t.Fatal("runCommand should not be called when the server is down")
			return nil, nil
		},
	}

	s := Detect(t.Context(), c)
	testutil.AssertEqual(t, s.Running, false)
	testutil.AssertEqual(t, s.PID, 0)
	testutil.AssertEqual(t, s.LocalURL, "http://localhost:3001")
	testutil.AssertEqual(t, s.NetworkURL, "")
}

func TestHealth(t *testing.T) {
	up := testutil.MockHTTPClient(healthHandler())
	down := testutil.MockHTTPClient(http.NotFoundHandler())

	testutil.AssertEqual(t, Health(t.Context(), up, 3001), true)
	testutil.AssertEqual(t, Health(t.Context(), down, 3001), false)
}
