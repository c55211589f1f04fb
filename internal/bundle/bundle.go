// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package bundle prepares the web frontend for embedding into the desktop
app.

[Build] copies the frontend files into the bundle directory, minifying
CSS, JavaScript, JSON and HTML along the way, and then checks that every
local asset referenced from the HTML pages actually made it into the
bundle. A reference that resolves to a missing file would surface only at
runtime inside the app webview, which is the worst place to find out.
*/
package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go.astrophena.name/hostapp/internal/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	mjson "github.com/tdewolff/minify/v2/json"
)

// Possible errors, used in tests.
var (
	errMissingAssets = errors.New("assets referenced from HTML are missing")
)

// Config represents a bundle configuration.
type Config struct {
	// Src is the directory with the frontend files. If empty, uses dist.
	Src string
	// Dst is the directory where the bundle is written. If empty, uses
	// bundle.
	Dst string
	// Logf is a logger to use. If nil, log.Printf is used.
	Logf logger.Logf
}

func (c *Config) setDefaults() {
	if c.Src == "" {
		c.Src = "dist"
	}
	if c.Dst == "" {
		c.Dst = "bundle"
	}
	if c.Logf == nil {
		c.Logf = logger.Logf(log.Printf)
	}
}

type min struct {
	m *minify.M
}

func newMin() *min {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags:    true,
		KeepDefaultAttrVals: true,
		KeepEndTags:         true,
	})
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("application/json", mjson.Minify)

	return &min{m: m}
}

func (m *min) Bytes(mediaType string, b []byte) ([]byte, error) {
	return m.m.Bytes(mediaType, b)
}

type builder struct {
	c     *Config
	min   *min
	count int
	total int64
}

// Build produces the bundle based on the provided [Config].
func Build(c *Config) error {
	if c == nil {
		c = &Config{}
	}
	c.setDefaults()

	// Clean up after previous build.
	if _, err := os.Stat(c.Dst); err == nil {
		if err := os.RemoveAll(c.Dst); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(c.Dst, 0o755); err != nil {
		return err
	}

	b := &builder{c: c, min: newMin()}
	if err := filepath.WalkDir(c.Src, b.copyFile); err != nil {
		return err
	}

	missing, err := Verify(c.Dst)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", errMissingAssets, strings.Join(missing, ", "))
	}

	c.Logf("Bundled %d files (%s) into %s.", b.count, humanize.IBytes(uint64(b.total)), c.Dst)
	return nil
}

func (b *builder) copyFile(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return err
	}

	if d.IsDir() || isIgnorable(path) {
		return nil
	}

	rel, err := filepath.Rel(b.c.Src, path)
	if err != nil {
		return err
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var mediaType string
	switch filepath.Ext(path) {
	case ".css":
		mediaType = "text/css"
	case ".js":
		mediaType = "application/javascript"
	case ".json":
		mediaType = "application/json"
	case ".html":
		mediaType = "text/html"
	}
	if mediaType != "" {
		minified, err := b.min.Bytes(mediaType, buf)
		if err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}
		buf = minified
	}

	dst := filepath.Join(b.c.Dst, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(dst, buf, 0o644); err != nil {
		return err
	}

	b.count++
	b.total += int64(len(buf))
	return nil
}

func isIgnorable(path string) bool {
	// Ignore files that look like Vim backups.
	if strings.HasSuffix(path, "~") {
		return true
	}

	// Ignore .gitignore files and macOS directory metadata.
	if strings.Contains(path, ".gitignore") || strings.HasSuffix(path, ".DS_Store") {
		return true
	}

	return false
}

// Verify checks that every local asset referenced from the HTML pages
// under dir exists. It returns the missing references, each in the
// "page: ref" form.
func Verify(dir string) ([]string, error) {
	var missing []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".html" {
			return nil
		}

		page, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		refs, err := pageRefs(path)
		if err != nil {
			return fmt.Errorf("%s: %w", page, err)
		}

		for _, ref := range refs {
			// References starting with / resolve from the bundle root, the
			// rest from the page's own directory.
			target := filepath.Join(filepath.Dir(path), filepath.FromSlash(ref))
			if strings.HasPrefix(ref, "/") {
				target = filepath.Join(dir, filepath.FromSlash(ref))
			}
			if _, err := os.Stat(target); err != nil {
				missing = append(missing, page+": "+ref)
			}
		}
		return nil
	})
	return missing, err
}

// assetSelectors describes where HTML pages reference their assets.
var assetSelectors = []struct {
	selector, attr string
}{
	{"script[src]", "src"},
	{"link[href]", "href"},
	{"img[src]", "src"},
	{"source[src]", "src"},
}

func pageRefs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, err
	}

	var refs []string
	for _, as := range assetSelectors {
		doc.Find(as.selector).Each(func(_ int, s *goquery.Selection) {
			ref, exists := s.Attr(as.attr)
			if !exists {
				return
			}
			ref = strings.TrimSpace(ref)
			if ref == "" || !isLocal(ref) {
				return
			}
			// Drop the query string and the fragment, they are not part of
			// the file name.
			if i := strings.IndexAny(ref, "?#"); i != -1 {
				ref = ref[:i]
			}
			if ref != "" {
				refs = append(refs, ref)
			}
		})
	}
	return refs, nil
}

func isLocal(ref string) bool {
	if isFullURL(ref) || strings.HasPrefix(ref, "//") {
		return false
	}
	if strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "mailto:") {
		return false
	}
	return true
}

func isFullURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
