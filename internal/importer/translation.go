package importer

import (
	"context"
	"log"
	"strings"
)

// TranslationCache memoizes translations for the lifetime of one import
// run. Text the translator cannot handle is kept as is and not cached.
type TranslationCache struct {
	translator Translator
	entries    map[string]string
}

// NewTranslationCache returns a cache pre-filled with known.
func NewTranslationCache(translator Translator, known map[string]string) *TranslationCache {
	entries := make(map[string]string, len(known))
	for k, v := range known {
		entries[k] = v
	}
	return &TranslationCache{translator: translator, entries: entries}
}

// Lookup returns the English rendering of text.
func (c *TranslationCache) Lookup(ctx context.Context, text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", ""))
	if text == "" {
		return ""
	}
	if english, ok := c.entries[text]; ok {
		return english
	}

	english, err := c.translator.Translate(ctx, text)
	if err != nil {
		log.Printf("Importer: failed to translate %q: %v", text, err)
		return text
	}
	english = strings.Trim(english, `". `)
	if english == "" {
		return text
	}
	c.entries[text] = english
	return english
}

// Len reports the number of cached translations.
func (c *TranslationCache) Len() int {
	return len(c.entries)
}
