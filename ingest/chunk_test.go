package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/remediate"
)

func TestChunkRangesSplits7PagesInto3_3_1(t *testing.T) {
	ranges := chunkRanges(7, 3)
	assert.Equal(t, []pageRange{{0, 2}, {3, 5}, {6, 6}}, ranges)
}

func TestChunkRangesSmallDocumentFitsOneChunk(t *testing.T) {
	ranges := chunkRanges(5, 200)
	assert.Equal(t, []pageRange{{0, 4}}, ranges)
}

func TestSanitizeFileIDReplacesUnsafeChars(t *testing.T) {
	assert.Equal(t, "a_b_c.pdf", sanitizeFileID("a/b\\c.pdf"))
	assert.Equal(t, "_", sanitizeFileID(""))
}

func TestIsTriviallyTaggedDetectsSingleDocumentKidWithNoStructure(t *testing.T) {
	tree := &model.StructureTree{K: []*model.StructureElement{{S: "Document"}}}
	assert.True(t, isTriviallyTagged(tree))
	assert.False(t, isMeaningfullyTagged(tree))
}

func TestIsTriviallyTaggedFalseWithNestedStructure(t *testing.T) {
	tree := &model.StructureTree{K: []*model.StructureElement{
		{S: "Document", K: []model.ContentItem{&model.StructureElement{S: "P"}}},
	}}
	assert.False(t, isTriviallyTagged(tree))
	assert.True(t, isMeaningfullyTagged(tree))
}

func TestIsMeaningfullyTaggedFalseWhenNil(t *testing.T) {
	assert.False(t, isMeaningfullyTagged(nil))
}

func TestSplitDocumentPartitionsPagesByRange(t *testing.T) {
	var doc model.Document
	pages := []model.PageNode{&model.PageObject{}, &model.PageObject{}, &model.PageObject{}, &model.PageObject{}}
	doc.Catalog.Pages.Kids = pages

	chunks := splitDocument(&doc, []pageRange{{0, 1}, {2, 3}})
	assert.Len(t, chunks, 2)
	assert.Len(t, chunks[0].Catalog.Pages.Kids, 2)
	assert.Len(t, chunks[1].Catalog.Pages.Kids, 2)
	assert.Same(t, pages[0], chunks[0].Catalog.Pages.Kids[0])
	assert.Same(t, pages[2], chunks[1].Catalog.Pages.Kids[0])
}

func TestMergeTaggedChunksConcatenatesInOrder(t *testing.T) {
	var c1, c2 model.Document
	c1.Catalog.Pages.Kids = []model.PageNode{&model.PageObject{}}
	c1.Catalog.StructTreeRoot = &model.StructureTree{K: []*model.StructureElement{{S: "Document"}}}
	c2.Catalog.Pages.Kids = []model.PageNode{&model.PageObject{}}
	c2.Catalog.StructTreeRoot = &model.StructureTree{K: []*model.StructureElement{{S: "P"}}}

	merged := mergeTaggedChunks([]model.Document{c1, c2})
	assert.Len(t, merged.Catalog.Pages.Kids, 2)
	assert.Len(t, merged.Catalog.StructTreeRoot.K, 2)
	assert.EqualValues(t, "Document", merged.Catalog.StructTreeRoot.K[0].S)
	assert.EqualValues(t, "P", merged.Catalog.StructTreeRoot.K[1].S)
}

// TestMergeTaggedChunksRebuildsParentTree guards against a merged
// document losing its ParentTree: each chunk's own StructParent
// numbering is only valid within that chunk, and
// remediate.UntaggedAnnotationRemediate relies on
// StructTreeRoot.ParentTree.LookupTable() to decide which annotations
// to keep.
func TestMergeTaggedChunksRebuildsParentTree(t *testing.T) {
	annot1 := &model.AnnotationDict{BaseAnnotation: model.BaseAnnotation{StructParent: model.ObjInt(0)}}
	page1 := &model.PageObject{Annots: []*model.AnnotationDict{annot1}}
	se1 := &model.StructureElement{S: "Figure", Pg: page1, K: []model.ContentItem{
		model.ContentItemObjectReference{Pg: page1, Obj: annot1},
	}}

	annot2 := &model.AnnotationDict{BaseAnnotation: model.BaseAnnotation{StructParent: model.ObjInt(0)}}
	page2 := &model.PageObject{Annots: []*model.AnnotationDict{annot2}}
	se2 := &model.StructureElement{S: "Figure", Pg: page2, K: []model.ContentItem{
		model.ContentItemObjectReference{Pg: page2, Obj: annot2},
	}}

	var c1, c2 model.Document
	c1.Catalog.Pages.Kids = []model.PageNode{page1}
	c1.Catalog.StructTreeRoot = &model.StructureTree{K: []*model.StructureElement{se1}}
	c1.Catalog.StructTreeRoot.BuildParentTree()
	c2.Catalog.Pages.Kids = []model.PageNode{page2}
	c2.Catalog.StructTreeRoot = &model.StructureTree{K: []*model.StructureElement{se2}}
	c2.Catalog.StructTreeRoot.BuildParentTree()

	merged := mergeTaggedChunks([]model.Document{c1, c2})

	lookup := merged.Catalog.StructTreeRoot.ParentTree.LookupTable()
	_, firstPresent := lookup[int(annot1.StructParent.(model.ObjInt))]
	assert.True(t, firstPresent, "first chunk's StructParent key must survive the merge")

	remediate.UntaggedAnnotationRemediate(merged)
	assert.Len(t, page1.Annots, 1, "annotation with a valid merged StructParent must be retained")
	assert.Len(t, page2.Annots, 1, "annotation with a valid merged StructParent must be retained")
}
