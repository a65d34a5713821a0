package hashtag

import (
	"regexp"
	"strings"
)

// pattern matches #tags at the start of the text or after whitespace,
// so that URL fragments and markdown headings ("# Title") are skipped.
var pattern = regexp.MustCompile(`(?:^|\s)#([\p{L}\p{N}_][\p{L}\p{N}_-]*)`)

// Extract returns the hashtags found in text, without the leading '#'.
// Returns a deduplicated (case-insensitive) list preserving the order of
// first occurrence.
func Extract(text string) []string {
	matches := pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var result []string
	for _, m := range matches {
		tag := m[1]
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, tag)
	}
	return result
}

// Merge returns existing followed by every tag in extra not already
// present (case-insensitive). Blank tags are dropped. Neither input is
// modified.
func Merge(existing []string, extra []string) []string {
	result := make([]string, 0, len(existing)+len(extra))
	seen := make(map[string]bool, len(existing)+len(extra))
	for _, list := range [][]string{existing, extra} {
		for _, tag := range list {
			tag = strings.TrimSpace(tag)
			key := strings.ToLower(tag)
			if tag == "" || seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, tag)
		}
	}
	return result
}
