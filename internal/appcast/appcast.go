// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package appcast builds the update feed that packaged builds of the desktop
app poll for new versions.

[Build] fetches the project's GitHub releases, renders their notes to HTML
and writes an RSS feed where each item carries the release archive as an
enclosure.
*/
package appcast

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.astrophena.name/base/request"
	"go.astrophena.name/hostapp/internal/logger"

	"github.com/gorilla/feeds"
	"rsc.io/markdown"
)

// Possible errors, used in tests.
var (
	errNoRepo     = errors.New("repository not specified")
	errNoReleases = errors.New("no published releases")
)

// Config represents an appcast build configuration.
type Config struct {
	// Repo is the GitHub repository in the owner/name form.
	Repo string
	// Title is the feed title. If empty, derived from Repo.
	Title string
	// Out is the path of the written feed. If empty, uses appcast.xml.
	Out string
	// GitHubToken is a token for accessing the GitHub API. Without it only
	// public repositories are visible.
	GitHubToken string
	// Logf is a logger to use. If nil, log.Printf is used.
	Logf logger.Logf
	// HTTPClient is a HTTP client for making requests.
	HTTPClient *http.Client

	feedCreated time.Time // used in tests
}

func (c *Config) setDefaults() {
	if c.Title == "" {
		c.Title = c.Repo + " releases"
	}
	if c.Out == "" {
		c.Out = "appcast.xml"
	}
	if c.Logf == nil {
		c.Logf = logger.Logf(log.Printf)
	}
}

type release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Draft       bool      `json:"draft"`
	HTMLURL     string    `json:"html_url"`
	Body        string    `json:"body"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []asset   `json:"assets"`
}

type asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
	ContentType        string `json:"content_type"`
}

// Build fetches the releases and writes the feed based on the provided
// [Config].
func Build(ctx context.Context, c *Config) error {
	if c == nil {
		c = &Config{}
	}
	if c.Repo == "" {
		return errNoRepo
	}
	c.setDefaults()

	releases, err := makeRequest[[]release](ctx, c, "https://api.github.com/repos/"+c.Repo+"/releases")
	if err != nil {
		return err
	}

	feed := &feeds.Feed{
		Title:   c.Title,
		Link:    &feeds.Link{Href: "https://github.com/" + c.Repo + "/releases"},
		Created: time.Now(),
	}
	if !c.feedCreated.IsZero() {
		feed.Created = c.feedCreated
	}

	md := &markdown.Parser{
		HeadingID:          true,
		Strikethrough:      true,
		TaskList:           true,
		AutoLinkText:       true,
		AutoLinkAssumeHTTP: true,
		Table:              true,
		Emoji:              true,
		SmartDot:           true,
		SmartDash:          true,
		SmartQuote:         true,
		Footnote:           true,
	}

	for _, r := range releases {
		if r.Draft {
			continue
		}

		title := r.Name
		if title == "" {
			title = r.TagName
		}

		item := &feeds.Item{
			Title:   title,
			Link:    &feeds.Link{Href: r.HTMLURL},
			Id:      r.TagName,
			Content: markdown.ToHTML(md.Parse(r.Body)),
			Created: r.PublishedAt,
		}
		if a := archiveAsset(r.Assets); a != nil {
			item.Enclosure = &feeds.Enclosure{
				Url:    a.BrowserDownloadURL,
				Length: strconv.FormatInt(a.Size, 10),
				Type:   a.ContentType,
			}
		}
		feed.Items = append(feed.Items, item)
	}

	// An empty feed would tell every updater there is nothing to run, ever.
	if len(feed.Items) == 0 {
		return errNoReleases
	}

	// Newest first, regardless of the API ordering.
	sort.SliceStable(feed.Items, func(i, j int) bool {
		return feed.Items[j].Created.Before(feed.Items[i].Created)
	})

	rss, err := feed.ToRss()
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Out, []byte(rss), 0o644); err != nil {
		return err
	}

	c.Logf("Wrote %s with %d releases.", c.Out, len(feed.Items))
	return nil
}

// archiveExts are the asset name suffixes that look like something an
// updater can download and install.
var archiveExts = []string{".tar.gz", ".dmg", ".AppImage", ".msi"}

// archiveAsset returns the first asset that looks like a release archive,
// or nil if there is none.
func archiveAsset(assets []asset) *asset {
	for i, a := range assets {
		for _, ext := range archiveExts {
			if strings.HasSuffix(a.Name, ext) {
				return &assets[i]
			}
		}
	}
	return nil
}

func makeRequest[Response any](ctx context.Context, c *Config, url string) (Response, error) {
	params := request.Params{
		Method:     http.MethodGet,
		URL:        url,
		HTTPClient: c.HTTPClient,
	}
	if c.GitHubToken != "" {
		params.Headers = map[string]string{
			"Authorization": "Bearer " + c.GitHubToken,
		}
	}
	return request.Make[Response](ctx, params)
}
