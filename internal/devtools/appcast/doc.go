// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Appcast builds the update feed that packaged builds of the app poll.

# Usage

	$ go tool appcast [flags]

Appcast fetches the published releases of the GitHub repository, renders
their notes to HTML and writes an RSS feed where each item points at the
release archive. Draft releases are skipped; the newest release comes
first.

# Environment Variables

  - GITHUB_TOKEN: A token for accessing the GitHub API. Without it only
    public repositories are visible, and the API rate limit is much
    lower.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
