// Package i18n serves the embedded site dictionaries and picks a language
// for a request.
package i18n

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/text/language"
)

const DefaultLanguage = "tr"

//go:embed locales/*.json
var locales embed.FS

// Languages lists the supported codes; the first one is the default.
var Languages = []string{"tr", "en"}

var matcher = language.NewMatcher([]language.Tag{language.Turkish, language.English})

// Match returns "tr" or "en". The explicit lang value wins when it matches a
// supported language, then the Accept-Language header, then the default.
func Match(lang, acceptLanguage string) string {
	_, idx := language.MatchStrings(matcher, lang, acceptLanguage)
	return Languages[idx]
}

// Dictionary returns the raw JSON dictionary for a supported language code.
func Dictionary(lang string) ([]byte, error) {
	data, err := locales.ReadFile("locales/" + lang + ".json")
	if err != nil {
		return nil, fmt.Errorf("no dictionary for %q: %w", lang, err)
	}
	return data, nil
}

// dictionaries parses every embedded dictionary once, keyed by language,
// section and name.
var dictionaries = sync.OnceValue(func() map[string]map[string]map[string]string {
	out := make(map[string]map[string]map[string]string, len(Languages))
	for _, lang := range Languages {
		data, err := Dictionary(lang)
		if err != nil {
			continue
		}
		var dict map[string]map[string]string
		if err := json.Unmarshal(data, &dict); err != nil {
			continue
		}
		out[lang] = dict
	}
	return out
})

// Lookup resolves a dotted key such as "summary.title".
func Lookup(lang, key string) (string, bool) {
	section, name, ok := strings.Cut(key, ".")
	if !ok {
		return "", false
	}
	v, ok := dictionaries()[lang][section][name]
	return v, ok
}
