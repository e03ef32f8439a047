package search

import (
	"sort"
	"strings"

	"app/internal/model"
)

// BuildKeywords derives the flat, deduplicated, lowercase keyword set for a
// course. It is pure and deterministic: the same course fields always yield
// the same sorted slice, regardless of tag or hashtag ordering.
//
// Hashtags are expanded into every suffix of length >= 2 so that a flat set
// membership check behaves like a substring match without a trie. This trades
// index size for lookup simplicity and only works because hashtags are short
// and few; it is a scalability ceiling, not a pattern to extend.
func BuildKeywords(c *model.Course) []string {
	set := make(map[string]struct{})
	add := func(tok string) {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			set[tok] = struct{}{}
		}
	}

	if c.Title != "" {
		title := strings.ToLower(c.Title)
		for _, word := range strings.Fields(title) {
			if len([]rune(word)) > 1 {
				add(word)
			}
		}
		// Whole title as a coarse fallback token.
		add(title)
	}

	// Description words carry less signal, so the cutoff is one rune longer
	// than for title words.
	for _, word := range strings.Fields(strings.ToLower(c.Description)) {
		if len([]rune(word)) > 2 {
			add(word)
		}
	}

	for _, hashtag := range c.Hashtags {
		tok := strings.TrimSpace(strings.ToLower(strings.TrimPrefix(hashtag, "#")))
		if tok == "" {
			continue
		}
		add(tok)
		runes := []rune(tok)
		for i := 1; i+2 <= len(runes); i++ {
			add(string(runes[i:]))
		}
	}

	// Legacy tags are added verbatim, without suffix expansion.
	for _, tag := range c.Tags {
		add(strings.ToLower(tag))
	}

	add(strings.ToLower(c.Category))
	add(strings.ToLower(c.Location))

	keywords := make([]string, 0, len(set))
	for k := range set {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return keywords
}
