package remediate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/pdfremediate/model"
)

func TestUntaggedAnnotationRemediateRemovesOrphans(t *testing.T) {
	keep := &model.AnnotationDict{BaseAnnotation: model.BaseAnnotation{StructParent: model.ObjInt(1)}}
	noParent := &model.AnnotationDict{BaseAnnotation: model.BaseAnnotation{}}
	unknownParent := &model.AnnotationDict{BaseAnnotation: model.BaseAnnotation{StructParent: model.ObjInt(99)}}

	page := &model.PageObject{Annots: []*model.AnnotationDict{keep, noParent, unknownParent}}
	doc := newTaggedDoc(page)
	doc.Catalog.StructTreeRoot.ParentTree = model.ParentTree{
		Nums: []model.NumToParent{{Num: 1, Parent: &model.StructureElement{S: "P"}}},
	}

	UntaggedAnnotationRemediate(doc)

	require.Len(t, page.Annots, 1)
	assert.Same(t, keep, page.Annots[0])
}

func TestUntaggedAnnotationRemediateNoOpUntagged(t *testing.T) {
	a := &model.AnnotationDict{}
	page := &model.PageObject{Annots: []*model.AnnotationDict{a}}
	doc := &model.Document{Catalog: model.Catalog{Pages: model.PageTree{Kids: []model.PageNode{page}}}}

	UntaggedAnnotationRemediate(doc)

	require.Len(t, page.Annots, 1)
}
