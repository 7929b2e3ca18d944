package docsync

import "encoding/json"

// Stats accumulates the outcome of an ingestion run.
//
// Page counters narrow in order: Processed pages were received from the
// crawl service, WithContent of those carried a body, MatchedDomain of those
// belong to the synchronized site. Each matched page is then either Skipped
// as unchanged or written; Added counts pages whose every chunk was stored,
// and ContentUpdated is the subset of Added that replaced changed content.
//
// Failed counts documents in failed batch uploads plus source URLs whose
// ingestion aborted.
type Stats struct {
	Processed      int
	WithContent    int
	MatchedDomain  int
	Skipped        int
	ContentUpdated int
	Added          int
	Failed         int

	// URLs lists the root URLs ingested without a fatal error.
	URLs []string

	// CrawledURLs lists the page URLs with content on the synchronized site.
	CrawledURLs []string
}

// Merge adds the counters and URL lists of other into s.
func (s *Stats) Merge(other *Stats) {
	if other == nil {
		return
	}
	s.Processed += other.Processed
	s.WithContent += other.WithContent
	s.MatchedDomain += other.MatchedDomain
	s.Skipped += other.Skipped
	s.ContentUpdated += other.ContentUpdated
	s.Added += other.Added
	s.Failed += other.Failed
	s.URLs = append(s.URLs, other.URLs...)
	s.CrawledURLs = append(s.CrawledURLs, other.CrawledURLs...)
}

// statsJSON is the serialized form of Stats.
type statsJSON struct {
	Updated        int      `json:"updated"`
	Failed         int      `json:"failed"`
	Skipped        int      `json:"skipped"`
	ContentUpdated int      `json:"content_updated"`
	URLs           []string `json:"urls"`
	CrawledURLs    []string `json:"crawled_urls"`
	Processed      int      `json:"processed"`
	WithContent    int      `json:"with_content"`
	MatchedDomain  int      `json:"matched_domain"`
}

// MarshalJSON encodes s with "updated" holding the number of added pages.
// URL lists are always encoded as arrays, never null.
func (s *Stats) MarshalJSON() ([]byte, error) {
	out := statsJSON{
		Updated:        s.Added,
		Failed:         s.Failed,
		Skipped:        s.Skipped,
		ContentUpdated: s.ContentUpdated,
		URLs:           s.URLs,
		CrawledURLs:    s.CrawledURLs,
		Processed:      s.Processed,
		WithContent:    s.WithContent,
		MatchedDomain:  s.MatchedDomain,
	}
	if out.URLs == nil {
		out.URLs = []string{}
	}
	if out.CrawledURLs == nil {
		out.CrawledURLs = []string{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var in statsJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = Stats{
		Processed:      in.Processed,
		WithContent:    in.WithContent,
		MatchedDomain:  in.MatchedDomain,
		Skipped:        in.Skipped,
		ContentUpdated: in.ContentUpdated,
		Added:          in.Updated,
		Failed:         in.Failed,
		URLs:           in.URLs,
		CrawledURLs:    in.CrawledURLs,
	}
	return nil
}
