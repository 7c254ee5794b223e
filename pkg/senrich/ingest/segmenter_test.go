package ingest

import (
	"reflect"
	"testing"

	"github.com/cognicore/senrich/pkg/senrich/lang"
)

func TestSegmenterSplit(t *testing.T) {
	seg := NewSegmenter()

	tests := []struct {
		name string
		lang lang.Language
		in   string
		want []string
	}{
		{"two sentences", lang.English, "Hello world. This is a test.",
			[]string{"Hello world.", "This is a test."}},
		{"title abbreviation", lang.English, "Mr. Smith arrived. He sat down.",
			[]string{"Mr. Smith arrived.", "He sat down."}},
		{"decimal number", lang.English, "It costs 3.50 dollars. Cheap!",
			[]string{"It costs 3.50 dollars.", "Cheap!"}},
		{"question before lower case", lang.English, "Really? yes, really.",
			[]string{"Really?", "yes, really."}},
		{"exclamation before lower case", lang.English, "Stop! then go.",
			[]string{"Stop!", "then go."}},
		{"period before lower case", lang.English, "It rose 5 p.c. over the year.",
			[]string{"It rose 5 p.c. over the year."}},
		{"domain name at end", lang.English, "Visit example.com. Then go.",
			[]string{"Visit example.com.", "Then go."}},
		{"version number at end", lang.English, "Version 2.0. Next.",
			[]string{"Version 2.0.", "Next."}},
		{"dotted name at end", lang.English, "We use Node.js. It works.",
			[]string{"We use Node.js.", "It works."}},
		{"dotted initialism", lang.English, "He moved to the U.S. Later he left.",
			[]string{"He moved to the U.S. Later he left."}},
		{"closing quote", lang.English, `He said "Stop." Then he left.`,
			[]string{`He said "Stop."`, "Then he left."}},
		{"initials", lang.English, "J. R. R. Tolkien wrote books. They sold well.",
			[]string{"J. R. R. Tolkien wrote books.", "They sold well."}},
		{"spanish inverted marks", lang.Spanish, "¿Qué hora es? Son las tres. ¡Vamos!",
			[]string{"¿Qué hora es?", "Son las tres.", "¡Vamos!"}},
		{"spanish abbreviation", lang.Spanish, "La Sra. García llegó. Nadie la vio.",
			[]string{"La Sra. García llegó.", "Nadie la vio."}},
		{"german abbreviation", lang.German, "Das ist z.B. Ein Test. Gut.",
			[]string{"Das ist z.B. Ein Test.", "Gut."}},
		{"french abbreviation", lang.French, "Mme. Dupont est là. Elle attend.",
			[]string{"Mme. Dupont est là.", "Elle attend."}},
		{"no terminator", lang.English, "a headline without a period",
			[]string{"a headline without a period"}},
		{"ellipsis", lang.English, "Wait... What happened?",
			[]string{"Wait...", "What happened?"}},
		{"empty", lang.English, "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := seg.Split(tt.in, tt.lang)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSegmenterLanguageSpecificAbbrev(t *testing.T) {
	seg := NewSegmenter()
	in := "Vgl. Kapitel drei. Danach weiter."

	if got := seg.Split(in, lang.German); len(got) != 2 {
		t.Errorf("German: expected 2 sentences, got %q", got)
	}
	if got := seg.Split(in, lang.English); len(got) != 3 {
		t.Errorf("English: expected 3 sentences, got %q", got)
	}
}
