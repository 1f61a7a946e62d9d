package engine

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/zeebo/xxh3"
)

// Extension is the file extension of package documents.
const Extension = ".dtsx"

// Source is one discovered package document.
type Source struct {
	// URL locates the document.
	URL string
	// Dir is the project directory name under the output directory,
	// unique within one discovery.
	Dir string
}

// Discover expands inputs into package documents. A directory input is
// walked recursively, skipping hidden directories; a file input is taken
// as is. Every URL is canonicalized, so a document reached both ways is
// found once. Sources are sorted by URL and each gets a distinct project
// directory.
func (e *Engine) Discover(ctx context.Context, inputs []string) ([]Source, error) {
	seen := make(map[string]bool)
	var urls []string
	add := func(u string) {
		u = CanonicalURL(u)
		if !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}

	for _, input := range inputs {
		obj, err := e.fs.Object(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", input, err)
		}
		if !obj.IsDir() {
			add(input)
			continue
		}

		var visitor storage.OnVisit = func(_ context.Context, baseURL, parent string, info os.FileInfo, _ io.Reader) (bool, error) {
			if info.IsDir() || hidden(parent) || !IsPackageFile(info.Name()) {
				return true, nil
			}
			add(url.Join(baseURL, path.Join(parent, info.Name())))
			return true, nil
		}
		if err := e.fs.Walk(ctx, input, visitor); err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", input, err)
		}
	}

	sort.Strings(urls)
	sources := make([]Source, 0, len(urls))
	dirs := make(map[string]int)
	for _, u := range urls {
		dir := projectDir(u)
		dirs[dir]++
		if n := dirs[dir]; n > 1 {
			dir = fmt.Sprintf("%s_%d", dir, n)
		}
		sources = append(sources, Source{URL: u, Dir: dir})
	}
	e.logger.Debug("discovered packages", "inputs", len(inputs), "packages", len(sources))
	return sources, nil
}

// CanonicalURL returns the absolute URL of a document, so a local path and
// the URL a walk reports for the same file compare equal.
//
//	CanonicalURL("/pkgs/load.dtsx") // "file://localhost/pkgs/load.dtsx"
func CanonicalURL(u string) string {
	return url.Normalize(u, file.Scheme)
}

// IsPackageFile reports whether name is a package document that is not
// hidden.
func IsPackageFile(name string) bool {
	return strings.EqualFold(path.Ext(name), Extension) && !strings.HasPrefix(name, ".")
}

// Fingerprint returns the 64-bit xxh3 content hash, as 16 hex digits, used
// for change detection.
func Fingerprint(data []byte) string {
	h := xxh3.New()
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// hidden reports whether a slash-separated relative directory has a hidden
// segment.
func hidden(parent string) bool {
	for _, seg := range strings.Split(parent, "/") {
		if strings.HasPrefix(seg, ".") && seg != "." && seg != ".." {
			return true
		}
	}
	return false
}

// projectDir derives a directory name from a document's base name.
func projectDir(u string) string {
	name := path.Base(strings.TrimRight(u, "/"))
	name = strings.TrimSuffix(name, path.Ext(name))
	if name == "" {
		return "package"
	}
	return name
}
