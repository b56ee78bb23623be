package remediate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/benoitkugler/pdfremediate/model"
)

func newTaggedDoc(pages ...*model.PageObject) *model.Document {
	kids := make([]model.PageNode, len(pages))
	for i, p := range pages {
		kids[i] = p
	}
	return &model.Document{
		Catalog: model.Catalog{
			Pages:          model.PageTree{Kids: kids},
			StructTreeRoot: &model.StructureTree{},
		},
	}
}

func TestTabOrderRemediateSetsS(t *testing.T) {
	p1 := &model.PageObject{Tabs: "R"}
	p2 := &model.PageObject{}
	doc := newTaggedDoc(p1, p2)

	TabOrderRemediate(doc)

	assert.EqualValues(t, "S", p1.Tabs)
	assert.EqualValues(t, "S", p2.Tabs)
}

func TestTabOrderRemediateNoOpUntagged(t *testing.T) {
	p1 := &model.PageObject{Tabs: "R"}
	doc := &model.Document{Catalog: model.Catalog{
		Pages: model.PageTree{Kids: []model.PageNode{p1}},
	}}

	TabOrderRemediate(doc)

	assert.EqualValues(t, "R", p1.Tabs)
}
