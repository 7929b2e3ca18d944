package docsync

import "strings"

// ChunkContent splits content into ordered segments of at most maxLength
// bytes. Content that already fits is returned unmodified as a single
// segment. Longer content is split on whitespace and words are packed
// greedily, joined by single spaces; a word is never split, so a single word
// longer than maxLength becomes its own oversized segment.
//
// A maxLength of zero or less disables splitting.
func ChunkContent(content string, maxLength int) []string {
	if maxLength <= 0 || len(content) <= maxLength {
		return []string{content}
	}

	words := strings.Fields(content)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var sb strings.Builder
	for _, word := range words {
		if sb.Len() > 0 && sb.Len()+1+len(word) > maxLength {
			chunks = append(chunks, sb.String())
			sb.Reset()
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(word)
	}
	if sb.Len() > 0 {
		chunks = append(chunks, sb.String())
	}

	return chunks
}

// Split returns the documents to store for d. When the content yields a
// single chunk, d itself is returned without a chunk position, carrying the
// chunk's content; content that only exceeded maxLength through whitespace
// runs is stored collapsed. Otherwise one document per chunk is returned,
// each carrying d's fields, the chunk's content, and its position.
// The ID of each chunk is produced by id.
func (d *Document) Split(maxLength int, id func(sourceURL string, chunk *ChunkPosition) string) []*Document {
	chunks := ChunkContent(d.Content, maxLength)
	if len(chunks) <= 1 {
		if len(chunks) == 1 {
			d.Content = chunks[0]
		}
		d.Chunk = nil
		d.ID = id(d.SourceURL, nil)
		return []*Document{d}
	}

	docs := make([]*Document, 0, len(chunks))
	for i, content := range chunks {
		chunk := *d
		chunk.Content = content
		chunk.Chunk = &ChunkPosition{Index: i, Count: len(chunks)}
		chunk.ID = id(d.SourceURL, chunk.Chunk)
		docs = append(docs, &chunk)
	}
	return docs
}
