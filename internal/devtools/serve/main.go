// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/hostapp/internal/server"
)

func main() { cli.Main(new(app)) }

type app struct {
	port  int
	dir   string
	watch bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.IntVar(&a.port, "port", 0, "Listen on `port` (overrides PORT, default 3001).")
	fs.StringVar(&a.dir, "dir", "", "Server `directory` (located automatically if empty).")
	fs.BoolVar(&a.watch, "watch", true, "Restart the server when its sources change.")
}

func (a *app) Run(ctx context.Context) error {
	c, err := server.ConfigFromEnv()
	if err != nil {
		return err
	}
	if a.port != 0 {
		c.Port = a.port
	}
	if a.dir != "" {
		c.Dir = a.dir
	}
	c.Watch = a.watch

	return server.Run(ctx, c)
}
