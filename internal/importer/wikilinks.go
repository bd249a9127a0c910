// Package importer reads memo and transcript Markdown files from disk and
// turns them into graph entities, observations, and relations.
package importer

import (
	"regexp"
	"strings"
)

// wikilinkRe matches [[target]] and [[target|alias]] patterns.
var wikilinkRe = regexp.MustCompile(`\[\[([^\[\]|]+?)(?:\|([^\[\]]+?))?\]\]`)

// WikiLink is a single [[wiki-link]] reference found in a note body.
type WikiLink struct {
	// Target is the entity name being linked to.
	Target string

	// Alias is the display text when [[target|alias]] syntax is used.
	Alias string
}

// ExtractWikiLinks returns all [[wiki-link]] targets in content, deduplicated
// case-insensitively and ordered by first appearance.
func ExtractWikiLinks(content string) []WikiLink {
	matches := wikilinkRe.FindAllStringSubmatch(content, -1)

	seen := make(map[string]bool)
	var links []WikiLink
	for _, m := range matches {
		target := strings.TrimSpace(m[1])
		key := strings.ToLower(target)
		if target == "" || seen[key] {
			continue
		}
		seen[key] = true
		links = append(links, WikiLink{
			Target: target,
			Alias:  strings.TrimSpace(m[2]),
		})
	}
	return links
}

// StripWikiLinks replaces [[wiki-links]] with plain text, preferring the
// alias when one is given.
func StripWikiLinks(content string) string {
	return wikilinkRe.ReplaceAllStringFunc(content, func(match string) string {
		parts := wikilinkRe.FindStringSubmatch(match)
		if len(parts) >= 3 && strings.TrimSpace(parts[2]) != "" {
			return strings.TrimSpace(parts[2])
		}
		if len(parts) >= 2 {
			return strings.TrimSpace(parts[1])
		}
		return match
	})
}
