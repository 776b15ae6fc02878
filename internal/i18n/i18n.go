// Package i18n renders localized bot strings from YAML catalogs embedded in
// the binary. Templates use positional placeholders: {0}, {1}, ...
package i18n

import (
	"embed"
	"fmt"
	"log"
	"path"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localesFS embed.FS

// Manager holds the loaded catalogs and the language selected for the bot.
type Manager struct {
	lang     language.Tag
	catalogs map[language.Tag]map[string]string
}

// New loads all embedded catalogs and selects the one closest to lang.
// English is used when lang is empty or unsupported.
func New(lang string) (*Manager, error) {
	entries, err := localesFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("i18n: read locales: %w", err)
	}

	catalogs := make(map[language.Tag]map[string]string, len(entries))
	tags := []language.Tag{language.English}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("i18n: locale file %s: %w", e.Name(), err)
		}

		data, err := localesFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		var cat map[string]string
		if err := yaml.Unmarshal(data, &cat); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}

		catalogs[tag] = cat
		if tag != language.English {
			tags = append(tags, tag)
		}
	}
	if _, ok := catalogs[language.English]; !ok {
		return nil, fmt.Errorf("i18n: missing english catalog")
	}

	selected := language.English
	if lang != "" {
		matcher := language.NewMatcher(tags)
		_, idx, conf := matcher.Match(language.Make(lang))
		if conf != language.No {
			selected = tags[idx]
		}
	}

	return &Manager{lang: selected, catalogs: catalogs}, nil
}

// Language returns the selected language.
func (m *Manager) Language() language.Tag {
	return m.lang
}

// GetString renders the template id in the selected language. Missing
// templates fall back to English and then to the id itself.
func (m *Manager) GetString(id string, args ...any) string {
	tmpl, ok := m.catalogs[m.lang][id]
	if !ok {
		tmpl, ok = m.catalogs[language.English][id]
	}
	if !ok {
		log.Printf("[i18n] missing template %q", id)
		return id
	}
	return format(tmpl, args)
}

func format(tmpl string, args []any) string {
	if len(args) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(args))
	for i, a := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", fmt.Sprint(a))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
