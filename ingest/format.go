package ingest

import (
	"fmt"
	"strings"

	"github.com/fwojciec/docsync"
)

// FormatStats renders stats as a short multi-line summary.
func FormatStats(s *docsync.Stats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Added: %d | Updated: %d | Skipped: %d | Failed: %d\n",
		s.Added, s.ContentUpdated, s.Skipped, s.Failed)
	fmt.Fprintf(&sb, "Pages: %d processed, %d with content, %d on site\n",
		s.Processed, s.WithContent, s.MatchedDomain)
	for _, u := range s.URLs {
		fmt.Fprintf(&sb, "  synced %s\n", u)
	}
	return sb.String()
}

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		// Too short for "..." prefix
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}
