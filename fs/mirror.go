// Package fs mirrors ingested pages to a local directory as markdown files.
package fs

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/docsync"
	"gopkg.in/yaml.v3"
)

var _ docsync.PageMirror = (*Mirror)(nil)

// Mirror writes pages under dir.tmp and swaps that tree into dir on Commit,
// so readers never see a half-written mirror.
type Mirror struct {
	dir string

	// Now stamps the crawled date in front matter. Defaults to time.Now.
	Now func() time.Time
}

// NewMirror returns a Mirror that publishes into dir.
func NewMirror(dir string) *Mirror {
	return &Mirror{dir: filepath.Clean(dir)}
}

func (m *Mirror) tempDir() string {
	return m.dir + ".tmp"
}

// Save writes rec to host/path.md inside the pending tree.
func (m *Mirror) Save(ctx context.Context, rec *docsync.PageRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rel, err := URLToPath(rec.URL)
	if err != nil {
		return err
	}
	full := filepath.Join(m.tempDir(), rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	body, err := m.format(rec)
	if err != nil {
		return err
	}
	return os.WriteFile(full, body, 0o644)
}

// Commit replaces the published tree with the pending one. Committing
// without any saved page leaves the published tree untouched.
func (m *Mirror) Commit() error {
	if _, err := os.Stat(m.tempDir()); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return err
	}
	return os.Rename(m.tempDir(), m.dir)
}

// Abort discards the pending tree.
func (m *Mirror) Abort() error {
	return os.RemoveAll(m.tempDir())
}

type frontMatter struct {
	Source      string `yaml:"source"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Crawled     string `yaml:"crawled"`
}

func (m *Mirror) format(rec *docsync.PageRecord) ([]byte, error) {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	fm, err := yaml.Marshal(frontMatter{
		Source:      rec.URL,
		Title:       rec.Title,
		Description: rec.Description,
		Crawled:     now().UTC().Format("2006-01-02"),
	})
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(rec.Content))
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// URLToPath maps a page URL to a relative markdown path rooted at its host.
// Directory URLs become index.md. The query and fragment are ignored.
//
//	https://example.com/docs/api/users → example.com/docs/api/users.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", docsync.Errorf(docsync.EINVALID, "URL has no host: %s", rawURL)
	}

	p := u.Path
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index"
	}
	// Cleaning a rooted path drops any ".." that would climb out of host.
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	return filepath.FromSlash(host + "/" + p + ".md"), nil
}
