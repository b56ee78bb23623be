package remediate

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/structidx"
)

// LayoutTableDemote implements the Layout-Table Demotion remediator
// (spec.md §4.5): a Table StructElem with no descendant TH and a row or
// cell count small enough to plausibly be a layout table is reclassified
// as Div. Ties are broken deterministically by the document-order walk.
func LayoutTableDemote(doc *model.Document, opts Options) {
	tree := doc.Catalog.StructTreeRoot
	if tree == nil {
		return
	}
	var walk func(se *model.StructureElement)
	walk = func(se *model.StructureElement) {
		if structidx.ResolveRole(se.S, tree.RoleMap) == "Table" {
			shape := tableShapeOf(se, tree.RoleMap)
			tooSmall := shape.rows <= opts.LayoutTableMaxRows || shape.maxCellsPerRow <= opts.LayoutTableMaxCellsPerRow
			if !shape.hasHeader && tooSmall {
				se.S = "Div"
			}
		}
		for _, kid := range se.K {
			if kidSE, ok := kid.(*model.StructureElement); ok {
				walk(kidSE)
			}
		}
	}
	for _, se := range tree.K {
		walk(se)
	}
}

// tableShape summarizes a Table StructElem's descendant rows/cells, used
// both by layout-table demotion and by the table-summary synthesis below.
type tableShape struct {
	rows           int
	maxCellsPerRow int
	hasHeader      bool
}

func tableShapeOf(se *model.StructureElement, roleMap map[model.Name]model.Name) tableShape {
	var shape tableShape
	for _, kid := range se.K {
		kidSE, ok := kid.(*model.StructureElement)
		if !ok {
			continue
		}
		switch structidx.ResolveRole(kidSE.S, roleMap) {
		case "TR":
			cells, header := rowShapeOf(kidSE, roleMap)
			shape.rows++
			if cells > shape.maxCellsPerRow {
				shape.maxCellsPerRow = cells
			}
			if header {
				shape.hasHeader = true
			}
		case "THead", "TBody", "TFoot":
			sub := tableShapeOf(kidSE, roleMap)
			shape.rows += sub.rows
			if sub.maxCellsPerRow > shape.maxCellsPerRow {
				shape.maxCellsPerRow = sub.maxCellsPerRow
			}
			if sub.hasHeader {
				shape.hasHeader = true
			}
		}
	}
	return shape
}

func rowShapeOf(tr *model.StructureElement, roleMap map[model.Name]model.Name) (cells int, hasHeader bool) {
	for _, rowKid := range tr.K {
		cellSE, ok := rowKid.(*model.StructureElement)
		if !ok {
			continue
		}
		switch structidx.ResolveRole(cellSE.S, roleMap) {
		case "TH":
			cells++
			hasHeader = true
		case "TD":
			cells++
		}
	}
	return cells, hasHeader
}

// summaryAttrOwner is the attribute owner PDF/UA reserves for table
// summaries.
const summaryAttrOwner = model.Name("Table")

// TableSummaryRemediate implements the Table-Summary Remediator
// (spec.md §4.6).
func TableSummaryRemediate(doc *model.Document, opts Options) {
	tree := doc.Catalog.StructTreeRoot
	if tree == nil {
		return
	}
	cache := newMCIDTextCache()
	var walk func(se *model.StructureElement, pg *model.PageObject)
	walk = func(se *model.StructureElement, pg *model.PageObject) {
		if se.Pg != nil {
			pg = se.Pg
		}
		if structidx.ResolveRole(se.S, tree.RoleMap) == "Table" {
			remediateTableSummary(se, pg, tree.RoleMap, cache, opts)
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
}

func remediateTableSummary(se *model.StructureElement, pg *model.PageObject, roleMap map[model.Name]model.Name, cache *mcidTextCache, opts Options) {
	for _, a := range se.A {
		if a.O == summaryAttrOwner {
			if s, ok := summaryOf(a); ok && s != "" {
				return // step 1: already has a Table-owned summary
			}
		}
	}
	for i, a := range se.A {
		if a.O == summaryAttrOwner {
			continue
		}
		if s, ok := summaryOf(a); ok && s != "" {
			se.A[i].O = summaryAttrOwner // step 2: promote an existing summary
			return
		}
	}

	// step 3: synthesize from shape and header labels.
	shape := tableShapeOf(se, roleMap)
	headers := collectHeaderLabels(se, pg, roleMap, cache, opts)
	summary := fmt.Sprintf("Table with %d row(s) and %d column(s).", shape.rows, shape.maxCellsPerRow)
	if len(headers) > 0 {
		summary += " Column headers: " + strings.Join(headers, ", ") + "."
	}
	summary = truncateRunes(summary, opts.TableSummaryMaxChars)

	se.A = append(se.A, model.AttributeObject{
		O: summaryAttrOwner,
		Attributes: map[model.Name]model.Object{
			"Summary": textStringObject(summary),
		},
	})
}

func summaryOf(a model.AttributeObject) (string, bool) {
	v, ok := a.Attributes["Summary"]
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case textStringObject:
		return string(s), true
	case model.ObjStringLiteral:
		return string(s), true
	case model.ObjHexLiteral:
		return string(s), true
	}
	return "", false
}

// collectHeaderLabels walks se's descendant TH cells in row order,
// resolving each one's MCID text, truncating, and deduping
// case-insensitively (folding halfwidth/fullwidth variants first) up to
// opts.TableSummaryMaxHeaders labels.
func collectHeaderLabels(se *model.StructureElement, pg *model.PageObject, roleMap map[model.Name]model.Name, cache *mcidTextCache, opts Options) []string {
	var headers []string
	seen := map[string]bool{}
	var walk func(se *model.StructureElement, pg *model.PageObject)
	walk = func(se *model.StructureElement, pg *model.PageObject) {
		if se.Pg != nil {
			pg = se.Pg
		}
		for _, kid := range se.K {
			kidSE, ok := kid.(*model.StructureElement)
			if !ok {
				continue
			}
			if len(headers) >= opts.TableSummaryMaxHeaders {
				return
			}
			if structidx.ResolveRole(kidSE.S, roleMap) == "TH" {
				label, _, _, _ := resolveElementText(kidSE, pg, cache)
				label = truncateRunes(label, opts.TableSummaryMaxHeaderChars)
				if label == "" {
					continue
				}
				key := strings.ToLower(width.Fold.String(label))
				if seen[key] {
					continue
				}
				seen[key] = true
				headers = append(headers, label)
				continue
			}
			walk(kidSE, pg)
		}
	}
	walk(se, pg)
	return headers
}
