// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package server

import (
	"fmt"
	"testing"

	"go.astrophena.name/base/testutil"
)

func TestLogsTrim(t *testing.T) {
	l := new(Logs)
	for i := 0; i < maxLogEntries+10; i++ {
		l.Append(levelInfo, fmt.Sprintf("line %d", i))
	}

	entries := l.Entries()
	testutil.AssertEqual(t, len(entries), maxLogEntries)
	// The oldest entries are dropped.
	testutil.AssertEqual(t, entries[0].Message, "line 10")
	testutil.AssertEqual(t, entries[len(entries)-1].Message, fmt.Sprintf("line %d", maxLogEntries+9))
}

func TestLogsClear(t *testing.T) {
	l := new(Logs)
	l.Append(levelError, "something broke")
	l.Clear()
	testutil.AssertEqual(t, len(l.Entries()), 0)
}

func TestLogsEntriesCopy(t *testing.T) {
	l := new(Logs)
	l.Append(levelInfo, "hello")

	entries := l.Entries()
	entries[0].Message = "mutated"

	testutil.AssertEqual(t, l.Entries()[0].Message, "hello")
}

func TestSniffLevel(t *testing.T) {
	cases := map[string]struct {
		line string
		want string
	}{
		"plain":          {"Server listening on port 3001", levelInfo},
		"error":          {"Error: connect ECONNREFUSED", levelError},
		"uppercase":      {"[ERROR] something broke", levelError},
		"warning":        {"Warning: config file not found, using defaults", levelWarn},
		"warn":           {"warn: deprecated option", levelWarn},
		"error in word":  {"UnhandledPromiseRejectionWarning: error occurred", levelError},
		"empty":          {"", levelInfo},
		"mentions level": {"logging level set to debug", levelInfo},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, sniffLevel(tc.line), tc.want)
		})
	}
}
