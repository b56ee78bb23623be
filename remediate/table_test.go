package remediate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/pdfremediate/model"
)

func cellRef(mcid int, page *model.PageObject) []model.ContentItem {
	return []model.ContentItem{model.ContentItemMarkedReference{MCID: mcid, Container: page}}
}

func TestLayoutTableDemoteSmallHeaderlessTable(t *testing.T) {
	page := newTextPage(t, "")
	td1 := &model.StructureElement{S: "TD", K: cellRef(0, page)}
	td2 := &model.StructureElement{S: "TD", K: cellRef(1, page)}
	tr := &model.StructureElement{S: "TR", K: []model.ContentItem{td1, td2}}
	table := &model.StructureElement{S: "Table", Pg: page, K: []model.ContentItem{tr}}

	doc := newTaggedDoc(page)
	doc.Catalog.StructTreeRoot.K = []*model.StructureElement{table}

	LayoutTableDemote(doc, DefaultOptions())

	assert.EqualValues(t, "Div", table.S)
}

func TestLayoutTableDemoteKeepsTableWithHeader(t *testing.T) {
	page := newTextPage(t, "")
	th := &model.StructureElement{S: "TH", K: cellRef(0, page)}
	td := &model.StructureElement{S: "TD", K: cellRef(1, page)}
	tr := &model.StructureElement{S: "TR", K: []model.ContentItem{th, td}}
	table := &model.StructureElement{S: "Table", Pg: page, K: []model.ContentItem{tr}}

	doc := newTaggedDoc(page)
	doc.Catalog.StructTreeRoot.K = []*model.StructureElement{table}

	LayoutTableDemote(doc, DefaultOptions())

	assert.EqualValues(t, "Table", table.S)
}

func TestTableSummarySkipsWhenTableOwnedSummaryPresent(t *testing.T) {
	page := newTextPage(t, "")
	table := &model.StructureElement{
		S: "Table", Pg: page,
		A: []model.AttributeObject{{O: "Table", Attributes: map[model.Name]model.Object{"Summary": textStringObject("Already set")}}},
	}
	doc := newTaggedDoc(page)
	doc.Catalog.StructTreeRoot.K = []*model.StructureElement{table}

	TableSummaryRemediate(doc, DefaultOptions())

	require.Len(t, table.A, 1)
	s, ok := summaryOf(table.A[0])
	require.True(t, ok)
	assert.Equal(t, "Already set", s)
}

func TestTableSummaryPromotesExistingSummary(t *testing.T) {
	page := newTextPage(t, "")
	table := &model.StructureElement{
		S: "Table", Pg: page,
		A: []model.AttributeObject{{O: "Layout", Attributes: map[model.Name]model.Object{"Summary": model.ObjStringLiteral("Layout summary")}}},
	}
	doc := newTaggedDoc(page)
	doc.Catalog.StructTreeRoot.K = []*model.StructureElement{table}

	TableSummaryRemediate(doc, DefaultOptions())

	require.Len(t, table.A, 1)
	assert.EqualValues(t, "Table", table.A[0].O)
	s, ok := summaryOf(table.A[0])
	require.True(t, ok)
	assert.Equal(t, "Layout summary", s)
}

func TestTableSummarySynthesizesFromShapeAndHeaders(t *testing.T) {
	content := tjContent(0, "Name") + tjContent(1, "Amount")
	page := newTextPage(t, content)
	th1 := &model.StructureElement{S: "TH", K: cellRef(0, page)}
	th2 := &model.StructureElement{S: "TH", K: cellRef(1, page)}
	headerRow := &model.StructureElement{S: "TR", K: []model.ContentItem{th1, th2}}
	td1 := &model.StructureElement{S: "TD"}
	td2 := &model.StructureElement{S: "TD"}
	dataRow := &model.StructureElement{S: "TR", K: []model.ContentItem{td1, td2}}
	table := &model.StructureElement{S: "Table", Pg: page, K: []model.ContentItem{headerRow, dataRow}}

	doc := newTaggedDoc(page)
	doc.Catalog.StructTreeRoot.K = []*model.StructureElement{table}

	TableSummaryRemediate(doc, DefaultOptions())

	require.Len(t, table.A, 1)
	s, ok := summaryOf(table.A[0])
	require.True(t, ok)
	assert.Contains(t, s, "Table with 2 row(s) and 2 column(s).")
	assert.Contains(t, s, "Name")
	assert.Contains(t, s, "Amount")
}
