// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package logger

import (
	"log"
	"strings"
	"testing"

	"go.astrophena.name/base/testutil"
)

// log.Printf is the default Logf everywhere, so the signatures must not
// drift apart.
var _ Logf = log.Printf

func TestLogf(t *testing.T) {
	var sb strings.Builder

	var logf Logf = log.New(&sb, "", 0).Printf
	logf("Generated %s (%dx%d).", "icon.png", 512, 512)

	testutil.AssertEqual(t, sb.String(), "Generated icon.png (512x512).\n")
}
