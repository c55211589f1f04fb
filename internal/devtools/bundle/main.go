// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/hostapp/internal/bundle"
	"go.astrophena.name/hostapp/internal/devtools"
)

func main() { cli.Main(new(app)) }

type app struct {
	dist string
	out  string
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.dist, "dist", "dist", "Read the built frontend from `dir`.")
	fs.StringVar(&a.out, "out", "bundle", "Write the bundle to `dir`.")
}

func (a *app) Run(ctx context.Context) error {
	devtools.EnsureRoot()

	return bundle.Build(&bundle.Config{
		Src: a.dist,
		Dst: a.out,
	})
}
