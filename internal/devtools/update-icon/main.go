// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/hostapp/internal/icons"
	"go.astrophena.name/hostapp/internal/logger"
)

func main() { cli.Main(cli.AppFunc(run)) }

func run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	if len(env.Args) != 1 {
		return fmt.Errorf("%w: want source image path", cli.ErrInvalidArgs)
	}
	return icons.Generate(ctx, &icons.Config{
		Logf: logger.Logf(log.New(os.Stdout, "", 0).Printf),
	}, env.Args[0])
}
