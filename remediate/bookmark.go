package remediate

import (
	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/structidx"
)

// headingRecord is one heading StructElem found during the document-order
// traversal, before its title/destination have been resolved.
type headingRecord struct {
	level         int
	fallbackTitle string
	se            *model.StructureElement
	pg            *model.PageObject
}

// resolvedHeading is a headingRecord with its title and destination
// resolved, ready to be placed in the outline tree.
type resolvedHeading struct {
	level   int
	title   string
	page    *model.PageObject
	topY    Fl
	hasTopY bool
}

// BookmarkBuild implements the Bookmark Builder (spec.md §4.4). It is a
// no-op if the document is untagged or already has an outline with a
// first entry. Any internal failure leaves the document's outline
// unchanged, matching the step's own "any failure ... leaves the document
// unchanged" rule.
func BookmarkBuild(doc *model.Document, opts Options) error {
	tree := doc.Catalog.StructTreeRoot
	if tree == nil {
		return nil
	}
	if doc.Catalog.Outlines != nil && doc.Catalog.Outlines.First != nil {
		return nil
	}

	records := collectHeadings(tree)
	if len(records) == 0 {
		return nil
	}

	cache := newMCIDTextCache()
	resolved := make([]resolvedHeading, 0, len(records))
	for _, h := range records {
		text, page, topY, hasTopY := resolveElementText(h.se, h.pg, cache)
		if text == "" {
			text = structidx.NormalizeWhitespace(h.fallbackTitle)
		}
		text = truncateRunes(text, opts.BookmarkTitleMaxChars)
		if text == "" {
			continue
		}
		if page == nil {
			page = h.pg
		}
		resolved = append(resolved, resolvedHeading{level: h.level, title: text, page: page, topY: topY, hasTopY: hasTopY})
	}
	if len(resolved) == 0 {
		return nil
	}

	doc.Catalog.Outlines = buildOutline(resolved, opts)
	return nil
}

// collectHeadings walks tree in document order (depth-first, left to
// right), recording every StructElem whose resolved role is H or H1..H6.
func collectHeadings(tree *model.StructureTree) []headingRecord {
	var out []headingRecord
	var walk func(se *model.StructureElement, pg *model.PageObject)
	walk = func(se *model.StructureElement, pg *model.PageObject) {
		if se.Pg != nil {
			pg = se.Pg
		}
		role := structidx.ResolveRole(se.S, tree.RoleMap)
		if level, ok := structidx.IsHeading(role); ok {
			fallback := se.T
			if fallback == "" {
				fallback = se.ActualText
			}
			if fallback == "" {
				fallback = se.Alt
			}
			out = append(out, headingRecord{level: level, fallbackTitle: fallback, se: se, pg: pg})
		}
		for _, kid := range se.K {
			if kidSE, ok := kid.(*model.StructureElement); ok {
				walk(kidSE, pg)
			}
		}
	}
	for _, se := range tree.K {
		walk(se, nil)
	}
	return out
}

// buildOutline places resolved headings into a nested outline tree using a
// level stack: each heading becomes a child of the most recently seen
// heading whose level is strictly smaller (spec.md §4.4 step 4's "pop
// while top.level >= current.level" rule). A sentinel root frame at level
// 0 always stays on the stack so top-level headings attach to the Outline
// root.
func buildOutline(records []resolvedHeading, opts Options) *model.Outline {
	root := &model.Outline{}
	lastChild := map[model.OutlineNode]*model.OutlineItem{}

	type frame struct {
		level int
		node  model.OutlineNode
	}
	stack := []frame{{level: 0, node: root}}

	count := 0
	for _, r := range records {
		if count >= opts.MaxBookmarks {
			break
		}

		item := &model.OutlineItem{Title: r.title}
		setDestination(item, r)

		for len(stack) > 1 && stack[len(stack)-1].level >= r.level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		item.Parent = parent

		if prev, ok := lastChild[parent]; ok {
			prev.Next = item
		} else {
			switch p := parent.(type) {
			case *model.Outline:
				p.First = item
			case *model.OutlineItem:
				p.First = item
			}
		}
		lastChild[parent] = item
		stack = append(stack, frame{level: r.level, node: item})
		count++
	}
	return root
}

func setDestination(item *model.OutlineItem, r resolvedHeading) {
	if r.page == nil {
		return
	}
	if r.hasTopY {
		item.Dest = model.DestinationExplicitIntern{
			Page:     r.page,
			Location: model.DestinationLocationFitDim{Name: "FitH", Dim: model.ObjFloat(r.topY)},
		}
		return
	}
	item.Dest = model.DestinationExplicitIntern{
		Page:     r.page,
		Location: model.DestinationLocationFit("Fit"),
	}
}
