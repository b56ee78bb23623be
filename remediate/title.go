package remediate

import (
	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/structidx"
)

// TitleGenerator is the external title-generation backend boundary
// (spec.md §6's GenerateTitle). Defined here, on the consuming side,
// rather than imported from a services package, so the remediator only
// depends on the method it actually calls.
type TitleGenerator interface {
	GenerateTitle(currentTitle, extractedText string) (string, error)
}

// TitleRemediate implements the Title Remediator (spec.md §4.1).
func TitleRemediate(doc *model.Document, cache *earlyTextCache, gen TitleGenerator, opts Options) error {
	defer ensureDisplayDocTitle(doc)

	if structidx.NormalizeWhitespace(doc.Trailer.Info.Title) != "" {
		return nil
	}

	text, words := cache.textUpTo(opts.TitleMaxPages, opts.TitleMinWordCount)
	if words < opts.TitleMinWordCount || gen == nil {
		doc.Trailer.Info.Title = opts.TitlePlaceholder
		return nil
	}

	title, err := gen.GenerateTitle(doc.Trailer.Info.Title, text)
	title = structidx.NormalizeWhitespace(title)
	title = truncateRunes(title, opts.TitleMaxChars)
	if title == "" {
		title = opts.TitlePlaceholder
	}
	doc.Trailer.Info.Title = title
	return err
}

func ensureDisplayDocTitle(doc *model.Document) {
	if doc.Catalog.ViewerPreferences == nil {
		doc.Catalog.ViewerPreferences = &model.ViewerPreferences{}
	}
	doc.Catalog.ViewerPreferences.DisplayDocTitle = true
}
