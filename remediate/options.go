// Package remediate implements the Title, Language, Tab-Order, Bookmark,
// Table, and Untagged-Annotation remediators that mutate a tagged (or
// untagged) PDF's catalog, pages, and structure tree towards WCAG 2.1 /
// PDF/UA conformance.
package remediate

// Options configures every remediation step. A zero Options is not
// generally useful; callers should start from DefaultOptions.
type Options struct {
	// TitlePlaceholder is written to DocumentInfo/Title when no existing
	// title is usable and early-page text is too sparse to generate one.
	TitlePlaceholder string
	// TitleMinWordCount is the word count early-page text must reach
	// before a title is generated instead of falling back to the
	// placeholder.
	TitleMinWordCount int
	// TitleMaxPages bounds how many leading pages are scanned for title
	// context.
	TitleMaxPages int
	// TitleMaxChars bounds the generated title's length.
	TitleMaxChars int

	// DefaultPrimaryLanguage is written when language detection fails or
	// is unreliable.
	DefaultPrimaryLanguage string
	// LanguageMinWordCount is the word count early-page text must reach
	// before language detection is attempted.
	LanguageMinWordCount int
	// LanguageMaxPages bounds how many leading pages are scanned for
	// language context.
	LanguageMaxPages int

	// LayoutTableMaxRows and LayoutTableMaxCellsPerRow bound what counts
	// as a plausibly-layout (as opposed to data) table: a header-less
	// table at or under either threshold is demoted to Div.
	LayoutTableMaxRows        int
	LayoutTableMaxCellsPerRow int

	// TableSummaryMaxHeaders caps how many distinct column-header labels
	// are folded into a synthesized table summary.
	TableSummaryMaxHeaders int
	// TableSummaryMaxHeaderChars bounds each individual header label.
	TableSummaryMaxHeaderChars int
	// TableSummaryMaxChars bounds the synthesized summary as a whole.
	TableSummaryMaxChars int

	// MaxBookmarks caps the number of outline entries the Bookmark
	// Builder creates.
	MaxBookmarks int
	// BookmarkTitleMaxChars bounds each bookmark's title.
	BookmarkTitleMaxChars int

	// DemoteLayoutTables feature-gates the Layout-Table Demotion step
	// (spec.md §4.5); the orchestrator's caller may disable it while still
	// running the Table-Summary Remediator.
	DemoteLayoutTables bool
}

// DefaultOptions returns the thresholds spec.md's component descriptions
// suggest.
func DefaultOptions() Options {
	return Options{
		TitlePlaceholder:  "Untitled PDF document",
		TitleMinWordCount: 100,
		TitleMaxPages:     5,
		TitleMaxChars:     200,

		DefaultPrimaryLanguage: "en-US",
		LanguageMinWordCount:   20,
		LanguageMaxPages:       5,

		LayoutTableMaxRows:        1,
		LayoutTableMaxCellsPerRow: 2,

		TableSummaryMaxHeaders:     6,
		TableSummaryMaxHeaderChars: 80,
		TableSummaryMaxChars:       300,

		MaxBookmarks:          2000,
		BookmarkTitleMaxChars: 200,

		DemoteLayoutTables: true,
	}
}
