package docsync

import (
	"strconv"
	"strings"
)

// FormatResults renders search results as markdown sections headed by the
// title, or the source URL when the title is missing. Chunks are labelled
// with their position. Sections are separated by blank lines.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		header, ok := r.Metadata.String(MetaTitle)
		if !ok {
			header, _ = r.Metadata.String(MetaSource)
		}
		if idx, count, ok := chunkLabel(r.Metadata); ok {
			header += " (part " + strconv.Itoa(idx+1) + "/" + strconv.Itoa(count) + ")"
		}
		parts = append(parts, "## "+header+"\n"+strings.TrimSpace(r.Content))
	}

	return strings.Join(parts, "\n\n")
}

// chunkLabel reads the chunk position from metadata.
func chunkLabel(m Metadata) (int, int, bool) {
	idx, ok := m.Int(MetaChunkIndex)
	if !ok {
		return 0, 0, false
	}
	count, ok := m.Int(MetaChunkCount)
	if !ok {
		return 0, 0, false
	}
	return idx, count, true
}
