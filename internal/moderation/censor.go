package moderation

import (
	"log"
	"regexp"
	"strings"
	"unicode/utf8"
)

// BadWordsSeparator separates entries of the bad words setting.
const BadWordsSeparator = ","

// grawlix is cycled to build euphemisms. It contains no letters or digits so a
// euphemism can never re-introduce a bad word made of them.
const grawlix = "%$#@!&*"

// ParseBadWords splits the bad words setting into its entries in configured
// order. Invalid UTF-8 is removed, surrounding whitespace is trimmed and
// empty entries are dropped.
func ParseBadWords(config string) []string {
	if config == "" {
		return nil
	}

	parts := strings.Split(config, BadWordsSeparator)
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if w := strings.TrimSpace(strings.ToValidUTF8(p, "")); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// MakeEuphemism returns a replacement of exactly n characters.
func MakeEuphemism(n int) string {
	if n <= 0 {
		return ""
	}

	g := []rune(grawlix)
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteRune(g[i%len(g)])
	}
	return b.String()
}

type rule struct {
	re        *regexp.Regexp
	euphemism string
}

// Censorer replaces a fixed list of bad words. Patterns are compiled once in
// NewCensorer; a Censorer is safe for concurrent use.
type Censorer struct {
	rules []rule
}

// NewCensorer compiles badWords in order. Empty words and words that do not
// compile are skipped.
func NewCensorer(badWords []string) *Censorer {
	c := &Censorer{rules: make([]rule, 0, len(badWords))}
	for _, w := range badWords {
		w = strings.ToValidUTF8(w, "")
		if w == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(w))
		if err != nil {
			log.Printf("[moderator] skipping bad word %q: %v", w, err)
			continue
		}
		c.rules = append(c.rules, rule{re: re, euphemism: MakeEuphemism(utf8.RuneCountInString(w))})
	}
	return c
}

// Censor replaces every case-insensitive occurrence of each bad word with a
// euphemism of the same length. Words are applied in order, each on the output
// of the previous one. Matching is literal: pattern metacharacters in a bad
// word have no special meaning, and occurrences inside longer words are
// replaced too.
func (c *Censorer) Censor(content string) string {
	for _, r := range c.rules {
		content = r.re.ReplaceAllLiteralString(content, r.euphemism)
	}
	return content
}

// Censor is a one-off NewCensorer(badWords).Censor(content).
func Censor(content string, badWords []string) string {
	return NewCensorer(badWords).Censor(content)
}
