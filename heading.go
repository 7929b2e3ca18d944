package docsync

import (
	"regexp"
	"strings"
)

var (
	fenceRe   = regexp.MustCompile("(?s)```.*?```")
	headingRe = regexp.MustCompile(`(?m)^ {0,3}(#{1,6})[ \t]+(.+?)[ \t#]*$`)
)

// FirstHeading returns the text of the first ATX heading in markdown,
// ignoring fenced code blocks. It returns "" when there is none.
func FirstHeading(markdown string) string {
	if markdown == "" {
		return ""
	}
	m := headingRe.FindStringSubmatch(fenceRe.ReplaceAllString(markdown, ""))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[2])
}
