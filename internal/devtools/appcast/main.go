// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/hostapp/internal/appcast"
)

func main() { cli.Main(new(app)) }

type app struct {
	repo  string
	title string
	out   string
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.repo, "repo", "astrophena/hostapp", "Take releases from the GitHub `repository` (owner/name).")
	fs.StringVar(&a.title, "title", "", "Feed `title` (derived from the repository if empty).")
	fs.StringVar(&a.out, "out", "appcast.xml", "Write the feed to `path`.")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)

	return appcast.Build(ctx, &appcast.Config{
		Repo:        a.repo,
		Title:       a.title,
		Out:         a.out,
		GitHubToken: env.Getenv("GITHUB_TOKEN"),
	})
}
