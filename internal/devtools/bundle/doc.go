// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Bundle prepares the web frontend for embedding into the desktop app.

# Usage

	$ go tool bundle [flags]

Bundle copies the built frontend from the dist directory into the bundle
directory, minifying CSS, JavaScript, JSON and HTML along the way. It
then parses the HTML pages and checks that every local asset they
reference exists in the bundle, so a broken reference fails the build
instead of the app.

Run it from the repository root.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
