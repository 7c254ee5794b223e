package ingest

import "github.com/cognicore/senrich/pkg/senrich/lang"

// Abbreviations that do not end a sentence, lower-cased and without the
// trailing period. Single letters are handled as initials separately.
var commonAbbrev = []string{
	"dr", "prof", "st", "jr", "sr", "vs", "no", "nr", "fig", "vol", "ed",
	"eds", "pp", "approx", "dept", "ca", "cf", "tel",
}

var langAbbrev = map[lang.Language][]string{
	lang.English: {
		"mr", "mrs", "ms", "inc", "ltd", "co", "corp", "gen", "gov", "sen",
		"rep", "col", "lt", "sgt", "capt", "mt", "ft", "jan", "feb", "mar",
		"apr", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec",
	},
	lang.Spanish: {
		"sra", "srta", "dra", "ud", "uds", "pág", "av", "avda", "núm",
		"aprox", "ej", "lic", "ing", "arq",
	},
	lang.French: {
		"mm", "mme", "mlle", "pr", "ste", "av", "bd", "env", "éd", "chap",
	},
	lang.German: {
		"bzw", "usw", "str", "vgl", "evtl", "ggf", "inkl", "hr", "fr", "abs",
		"bd", "jh", "jhd",
	},
	lang.Italian: {
		"sig", "sigg", "sigra", "dott", "dottssa", "ing", "avv", "ecc", "pag",
		"es", "geom", "rag",
	},
	lang.Portuguese: {
		"sra", "dra", "pág", "av", "ex", "exmo", "exma", "eng", "lda",
	},
}

func abbreviations(l lang.Language) map[string]struct{} {
	set := make(map[string]struct{}, len(commonAbbrev)+len(langAbbrev[l]))
	for _, a := range commonAbbrev {
		set[a] = struct{}{}
	}
	for _, a := range langAbbrev[l] {
		set[a] = struct{}{}
	}
	return set
}
