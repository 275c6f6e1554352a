// Package i18n resolves dotted translation keys against embedded English
// and Arabic tables and remembers the selected language across restarts.
package i18n

import (
	"embed"
	"encoding/json"
	"strings"

	"github.com/marhaba-kitchen/storefront/internal/enum"
	"github.com/marhaba-kitchen/storefront/internal/storage"
)

//go:embed translations/*.json
var translationFS embed.FS

// Translator looks up UI strings for the active language.
type Translator struct {
	st     storage.Store
	lang   string
	tables map[string]map[string]interface{}
}

// New loads the embedded tables and restores the persisted language,
// defaulting to English.
func New(st storage.Store) *Translator {
	t := &Translator{
		st:     st,
		lang:   enum.LanguageEnglish,
		tables: map[string]map[string]interface{}{},
	}
	for _, lang := range []string{enum.LanguageEnglish, enum.LanguageArabic} {
		data, err := translationFS.ReadFile("translations/" + lang + ".json")
		if err != nil {
			continue
		}
		var table map[string]interface{}
		if err := json.Unmarshal(data, &table); err != nil {
			continue
		}
		t.tables[lang] = table
	}

	var saved string
	if st.Get(storage.KeyLanguage, &saved) {
		if _, ok := t.tables[saved]; ok {
			t.lang = saved
		}
	}
	return t
}

// Language returns the active language code.
func (t *Translator) Language() string {
	return t.lang
}

// SetLanguage switches the active language and persists the choice.
// Unknown languages are ignored.
func (t *Translator) SetLanguage(lang string) {
	if _, ok := t.tables[lang]; !ok {
		return
	}
	t.lang = lang
	t.st.Set(storage.KeyLanguage, lang)
}

// Toggle flips between English and Arabic.
func (t *Translator) Toggle() {
	if t.lang == enum.LanguageEnglish {
		t.SetLanguage(enum.LanguageArabic)
	} else {
		t.SetLanguage(enum.LanguageEnglish)
	}
}

// T resolves a dotted key like "tracking.notFound" in the active
// language. An unresolvable key is returned as-is so a missing
// translation is visible rather than blank.
func (t *Translator) T(key string) string {
	table, ok := t.tables[t.lang]
	if !ok {
		return key
	}

	var node interface{} = table
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]interface{})
		if !ok {
			return key
		}
		node, ok = m[part]
		if !ok {
			return key
		}
	}

	s, ok := node.(string)
	if !ok {
		return key
	}
	return s
}
