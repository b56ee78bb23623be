package remediate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/pdfremediate/model"
)

func TestBookmarkBuildNestsByLevel(t *testing.T) {
	content := tjContent(0, "Chapter One") + tjContent(1, "Section One A")
	page := newTextPage(t, content)
	doc := newTaggedDoc(page)

	h1 := &model.StructureElement{S: "H1", Pg: page, K: []model.ContentItem{
		model.ContentItemMarkedReference{MCID: 0, Container: page},
	}}
	h2 := &model.StructureElement{S: "H2", Pg: page, K: []model.ContentItem{
		model.ContentItemMarkedReference{MCID: 1, Container: page},
	}}
	doc.Catalog.StructTreeRoot.K = []*model.StructureElement{h1, h2}

	err := BookmarkBuild(doc, DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, doc.Catalog.Outlines)
	require.NotNil(t, doc.Catalog.Outlines.First)

	top := doc.Catalog.Outlines.First
	assert.Equal(t, "Chapter One", top.Title)
	require.NotNil(t, top.First)
	assert.Equal(t, "Section One A", top.First.Title)
	assert.Same(t, top, top.First.Parent)
	assert.Nil(t, top.Next)
}

func TestBookmarkBuildNoOpWhenOutlineExists(t *testing.T) {
	page := newTextPage(t, tjContent(0, "Chapter One"))
	doc := newTaggedDoc(page)
	h1 := &model.StructureElement{S: "H1", Pg: page, K: []model.ContentItem{
		model.ContentItemMarkedReference{MCID: 0, Container: page},
	}}
	doc.Catalog.StructTreeRoot.K = []*model.StructureElement{h1}
	existing := &model.OutlineItem{Title: "Keep Me"}
	doc.Catalog.Outlines = &model.Outline{First: existing}

	err := BookmarkBuild(doc, DefaultOptions())

	require.NoError(t, err)
	assert.Same(t, existing, doc.Catalog.Outlines.First)
}

func TestBookmarkBuildFallsBackToTitleAttribute(t *testing.T) {
	page := newTextPage(t, "")
	doc := newTaggedDoc(page)
	h1 := &model.StructureElement{S: "H1", Pg: page, T: "Fallback Heading"}
	doc.Catalog.StructTreeRoot.K = []*model.StructureElement{h1}

	err := BookmarkBuild(doc, DefaultOptions())

	require.NoError(t, err)
	require.NotNil(t, doc.Catalog.Outlines.First)
	assert.Equal(t, "Fallback Heading", doc.Catalog.Outlines.First.Title)
}
