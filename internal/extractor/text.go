package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultEmailPattern is a lenient RFC-style address pattern.
const DefaultEmailPattern = `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`

var followerCountRe = regexp.MustCompile(`(?i)(\d[\d,]*)\s*likes?`)

// ExtractEmails returns every match of pattern in text, without exact duplicates,
// in first-seen order. The result is never nil.
func ExtractEmails(text string, pattern *regexp.Regexp) []string {
	emails := []string{}
	if text == "" || pattern == nil {
		return emails
	}

	seen := make(map[string]struct{})
	for _, match := range pattern.FindAllString(text, -1) {
		if match == "" {
			continue
		}
		if _, ok := seen[match]; ok {
			continue
		}
		seen[match] = struct{}{}
		emails = append(emails, match)
	}
	return emails
}

// ParseFollowerCount reads a "N likes" count out of text, where N may contain
// comma grouping separators. ok is false when nothing parseable is found.
func ParseFollowerCount(text string) (count int64, ok bool) {
	m := followerCountRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
