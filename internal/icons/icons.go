// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package icons generates the icon set for the desktop app bundle.

The set of sizes is fixed (see [Sizes]): each icon is produced by resizing a
single source image with the macOS sips utility, one invocation per size.
Icons are written to the current working directory under their fixed names,
overwriting any previous set.

Generation is strictly sequential and stops at the first size that fails.
*/
package icons

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"

	"go.astrophena.name/hostapp/internal/logger"
)

// Possible errors, used in tests.
var (
	errSourceNotFound = errors.New("source file not found")
	errResize         = errors.New("resize failed")
)

// Size describes a single icon of the set.
type Size struct {
	Width, Height int
	Name          string
}

// Sizes is the set of icons required by the app bundle, in generation order.
// Names are unique and dimensions are positive; the order only affects the
// order of progress lines, the entries are independent.
var Sizes = []Size{
	{512, 512, "icon.png"},
	{256, 256, "128x128@2x.png"},
	{128, 128, "128x128.png"},
	{32, 32, "32x32.png"},
}

// Config represents a generation configuration.
type Config struct {
	// Logf specifies a logger to use. If nil, log.Printf is used.
	Logf logger.Logf

	runSips func(ctx context.Context, args ...string) ([]byte, error) // used in tests
}

func (c *Config) setDefaults() {
	if c.Logf == nil {
		c.Logf = logger.Logf(log.Printf)
	}
	if c.runSips == nil {
		c.runSips = runSips
	}
}

// Generate creates every icon of [Sizes] from the source image, writing them
// to the current working directory.
//
// The source must exist; nothing is attempted otherwise. Each size is one
// sips invocation, and the first failing invocation aborts the remaining
// ones. There is no cleanup of icons already written by the time of a
// failure.
func Generate(ctx context.Context, c *Config, source string) error {
	if c == nil {
		c = &Config{}
	}
	c.setDefaults()

	if _, err := os.Stat(source); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", source, errSourceNotFound)
		}
		return err
	}

	c.Logf("Generating icons from %s...", source)

	for _, s := range Sizes {
		// sips takes height before width.
		out, err := c.runSips(ctx,
			"-z", strconv.Itoa(s.Height), strconv.Itoa(s.Width),
			source,
			"--out", s.Name,
		)
		if err != nil {
			if diag := bytes.TrimSpace(out); len(diag) > 0 {
				return fmt.Errorf("%s: %w: %v: %s", s.Name, errResize, err, diag)
			}
			return fmt.Errorf("%s: %w: %v", s.Name, errResize, err)
		}
		c.Logf("Generated %s (%dx%d).", s.Name, s.Width, s.Height)
	}

	return nil
}

func runSips(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "sips", args...).CombinedOutput()
}
