// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package devtools contains common functionality for development tools.
package devtools

import (
	"os"
	"path/filepath"

	"go.astrophena.name/base/unwrap"
)

// EnsureRoot checks that the current working directory is at the repository
// root and panics if it doesn't. The root is recognized by the directories
// that are always there: the Git metadata and the app shell.
func EnsureRoot() {
	wd := unwrap.Value(os.Getwd())
	for _, marker := range []string{".git", "src-tauri"} {
		if _, err := os.Stat(filepath.Join(wd, marker)); os.IsNotExist(err) {
			panic("Are you at repo root?")
		} else if err != nil {
			panic(err)
		}
	}
}
