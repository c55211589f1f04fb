// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Serve runs the app server for local development.

# Usage:

	$ go tool serve [flags]

Serve starts the Node.js server the desktop app wraps, passing PORT,
AUTH_TOKEN and CONFIG_PATH from the environment through to it, and
captures its output. It then watches for file changes under the server's
"src" directory and automatically restarts the server.

It refuses to start when a server is already listening on the port. Stop
it with Ctrl-C; the server is asked to exit first and killed if it
doesn't.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
