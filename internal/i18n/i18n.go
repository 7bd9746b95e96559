// Package i18n provides the language preference and the localized
// messages shown by the client.
//
// English messages double as catalog keys; the Japanese catalog is in
// messages.go.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var supportedTags = []language.Tag{
	language.English,
	language.Japanese,
}

var tagMatcher = language.NewMatcher(supportedTags)

var messages = newCatalog()

// Supported returns the list of supported language tags.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// Default returns the default language tag.
func Default() language.Tag {
	return language.English
}

// Parse resolves a stored or user-supplied language to a supported tag.
// Regional variants match their base language ("ja-JP" is Japanese).
func Parse(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Tag{}, false
	}
	parsed, err := language.Parse(value)
	if err != nil {
		return language.Tag{}, false
	}
	_, index, confidence := tagMatcher.Match(parsed)
	if confidence < language.High {
		return language.Tag{}, false
	}
	return supportedTags[index], true
}

// Resolve returns the tag for value, or Default when it is unsupported.
func Resolve(value string) language.Tag {
	if tag, ok := Parse(value); ok {
		return tag
	}
	return Default()
}

// Printer returns a message printer for the supplied tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(messages))
}

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, ja := range japanese {
		if err := b.SetString(language.English, key, key); err != nil {
			panic(err)
		}
		if err := b.SetString(language.Japanese, key, ja); err != nil {
			panic(err)
		}
	}
	return b
}
