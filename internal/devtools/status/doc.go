// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Status reports whether the app server is running.

# Usage

	$ go tool status [flags]

Status asks the health endpoint of the server on the configured port (the
PORT environment variable or -port) and prints what it found: whether a
server answers, its PID and the URLs it is reachable at, including the
LAN address for testing from other devices.

A stopped server is a normal answer, not an error.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
