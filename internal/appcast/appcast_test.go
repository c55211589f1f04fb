// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package appcast

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.astrophena.name/base/testutil"
)

const githubToken = "superdupersecret"

var testReleases = []release{
	{
		TagName:     "v1.1.0",
		HTMLURL:     "https://github.com/example/hostapp/releases/tag/v1.1.0",
		Body:        "First public build.",
		PublishedAt: time.Date(2025, time.January, 5, 9, 30, 0, 0, time.UTC),
	},
	{
		TagName: "v1.3.0-draft",
		Draft:   true,
	},
	{
		TagName:     "v1.2.0",
		Name:        "Version 1.2.0",
		HTMLURL:     "https://github.com/example/hostapp/releases/tag/v1.2.0",
		Body:        "Adds **offline** mode.",
		PublishedAt: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC),
		Assets: []asset{
			{
				Name:               "checksums.txt",
				BrowserDownloadURL: "https://example.com/checksums.txt",
				Size:               128,
				ContentType:        "text/plain",
			},
			{
				Name:               "hostapp-1.2.0.dmg",
				BrowserDownloadURL: "https://example.com/hostapp-1.2.0.dmg",
				Size:               123456,
				ContentType:        "application/octet-stream",
			},
		},
	},
}

func testHandler(t *testing.T, releases []release) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("api.github.com/repos/{owner}/{repo}/releases", func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "), githubToken)
		testutil.AssertEqual(t, r.PathValue("owner"), "example")
		testutil.AssertEqual(t, r.PathValue("repo"), "hostapp")
		respondJSON(t, w, releases)
	})
	return mux
}

func respondJSON(t *testing.T, w http.ResponseWriter, data any) {
	j, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(j)
}

func TestBuild(t *testing.T) {
	out := filepath.Join(t.TempDir(), "appcast.xml")
	c := &Config{
		Repo:        "example/hostapp",
		Out:         out,
		GitHubToken: githubToken,
		Logf:        t.Logf,
		HTTPClient:  testutil.MockHTTPClient(testHandler(t, testReleases)),
		feedCreated: time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC),
	}
	if err := Build(t.Context(), c); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	rss := string(b)

	for _, want := range []string{
		"Version 1.2.0",
		"v1.1.0", // the title falls back to the tag
		"https://example.com/hostapp-1.2.0.dmg",
		"<strong>offline</strong>",
	} {
		if !strings.Contains(rss, want) {
			t.Errorf("feed should contain %q, got:\n%s", want, rss)
		}
	}

	if strings.Contains(rss, "v1.3.0-draft") {
		t.Errorf("draft release ended up in the feed:\n%s", rss)
	}

	if strings.Index(rss, "Version 1.2.0") > strings.Index(rss, "v1.1.0") {
		t.Errorf("releases are not sorted newest first:\n%s", rss)
	}
}

func TestBuildNoReleases(t *testing.T) {
	onlyDrafts := []release{{TagName: "v0.0.1", Draft: true}}
	c := &Config{
		Repo:        "example/hostapp",
		Out:         filepath.Join(t.TempDir(), "appcast.xml"),
		GitHubToken: githubToken,
		Logf:        t.Logf,
		HTTPClient:  testutil.MockHTTPClient(testHandler(t, onlyDrafts)),
	}
	if err := Build(t.Context(), c); !errors.Is(err, errNoReleases) {
		t.Fatalf("want %v, got %v", errNoReleases, err)
	}
}

func TestBuildNoRepo(t *testing.T) {
	if err := Build(t.Context(), &Config{}); !errors.Is(err, errNoRepo) {
		t.Fatalf("want %v, got %v", errNoRepo, err)
	}
}

func TestArchiveAsset(t *testing.T) {
	cases := map[string]struct {
		assets []asset
		want   string // asset name, empty means none
	}{
		"skips extras": {
			assets: []asset{{Name: "checksums.txt"}, {Name: "app.dmg"}},
			want:   "app.dmg",
		},
		"tarball":  {assets: []asset{{Name: "app-1.0.0.tar.gz"}}, want: "app-1.0.0.tar.gz"},
		"appimage": {assets: []asset{{Name: "app.AppImage"}}, want: "app.AppImage"},
		"msi":      {assets: []asset{{Name: "app.msi"}}, want: "app.msi"},
		"nothing":  {assets: []asset{{Name: "README.md"}}},
		"empty":    {},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := archiveAsset(tc.assets)
			if tc.want == "" {
				if got != nil {
					t.Fatalf("want no asset, got %+v", got)
				}
				return
			}
			if got == nil || got.Name != tc.want {
				t.Fatalf("want %q, got %+v", tc.want, got)
			}
		})
	}
}
