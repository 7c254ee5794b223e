// Package lang holds the fixed set of corpus languages and the codes each
// collaborator expects for them.
package lang

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is a two-letter corpus language code as accepted on the command line.
type Language string

const (
	English    Language = "EN"
	Spanish    Language = "ES"
	French     Language = "FR"
	German     Language = "DE"
	Italian    Language = "IT"
	Portuguese Language = "PT"
)

// All lists the supported languages in display order.
var All = []Language{English, Spanish, French, German, Italian, Portuguese}

type info struct {
	name string
	wiki string
	tag  language.Tag
}

var table = map[Language]info{
	English:    {"english", "enwiki", language.English},
	Spanish:    {"spanish", "eswiki", language.Spanish},
	French:     {"french", "frwiki", language.French},
	German:     {"german", "dewiki", language.German},
	Italian:    {"italian", "itwiki", language.Italian},
	Portuguese: {"portuguese", "ptwiki", language.Portuguese},
}

// Parse maps a code to a Language. Unknown or empty codes fall back to English.
func Parse(code string) Language {
	l := Language(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := table[l]; ok {
		return l
	}
	return English
}

// Known reports whether code names a supported language without falling back.
func Known(code string) bool {
	_, ok := table[Language(strings.ToUpper(strings.TrimSpace(code)))]
	return ok
}

func (l Language) String() string { return string(l.normalize()) }

// Name returns the lower-case English name of the language ("german").
func (l Language) Name() string { return table[l.normalize()].name }

// WikiCode returns the Wikipedia dump code the disambiguation service uses.
func (l Language) WikiCode() string { return table[l.normalize()].wiki }

// Tag returns the BCP 47 tag used for case mapping.
func (l Language) Tag() language.Tag { return table[l.normalize()].tag }

func (l Language) normalize() Language {
	if _, ok := table[l]; ok {
		return l
	}
	return English
}
