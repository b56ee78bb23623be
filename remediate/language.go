package remediate

import (
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/structidx"
)

// LanguageRemediate implements the Language Remediator (spec.md §4.2).
func LanguageRemediate(doc *model.Document, cache *earlyTextCache, opts Options) error {
	if structidx.NormalizeWhitespace(doc.Catalog.Lang) != "" {
		return nil
	}

	text, words := cache.textUpTo(opts.LanguageMaxPages, opts.LanguageMinWordCount)
	if words == 0 {
		doc.Catalog.Lang = opts.DefaultPrimaryLanguage
		return nil
	}

	info := whatlanggo.Detect(text)
	tag := bcp47FromISO6391(info.Lang.Iso6391(), opts)
	if tag == "" || !info.IsReliable() {
		tag = opts.DefaultPrimaryLanguage
	}
	doc.Catalog.Lang = tag
	return nil
}

// bcp47FromISO6391 maps a two-letter ISO 639-1 code to a BCP-47 tag. No
// region is inferred from content; the configured default's region is
// reused when it already names the detected language, otherwise the bare
// language subtag is written.
func bcp47FromISO6391(iso string, opts Options) string {
	if iso == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(opts.DefaultPrimaryLanguage), strings.ToLower(iso)+"-") {
		return opts.DefaultPrimaryLanguage
	}
	return iso
}
