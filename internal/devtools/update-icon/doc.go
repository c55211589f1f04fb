// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Update-icon regenerates the app icon set from a single source image.

# Usage

	$ go tool update-icon <source-image>

The source image is resized to every size the app needs (512, 256, 128
and 32 pixels square) with the sips utility, and the results are written
to the current working directory under the fixed icon names, overwriting
the previous set.

Run it from src-tauri/icons, where the icons live.

It requires sips, which ships with macOS.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
