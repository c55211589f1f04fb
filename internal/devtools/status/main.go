// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/hostapp/internal/server"
)

func main() { cli.Main(new(app)) }

type app struct {
	port     int
	jsonDump bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.IntVar(&a.port, "port", 0, "Check `port` (overrides PORT, default 3001).")
	fs.BoolVar(&a.jsonDump, "json", false, "Print the status as JSON.")
}

func (a *app) Run(ctx context.Context) error {
	c, err := server.ConfigFromEnv()
	if err != nil {
		return err
	}
	if a.port != 0 {
		c.Port = a.port
	}

	s := server.Detect(ctx, c)

	if a.jsonDump {
		b, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		b = append(b, '\n')
		_, err = os.Stdout.Write(b)
		return err
	}

	if !s.Running {
		fmt.Printf("No server is running on port %d.\n", s.Port)
		return nil
	}

	fmt.Printf("Server is running on port %d", s.Port)
	if s.PID != 0 {
		fmt.Printf(" (PID %d)", s.PID)
	}
	fmt.Println(".")
	fmt.Printf("Local:   %s\n", s.LocalURL)
	if s.NetworkURL != "" {
		fmt.Printf("Network: %s\n", s.NetworkURL)
	}
	return nil
}
