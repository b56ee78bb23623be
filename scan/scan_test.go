package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/pdfremediate/model"
)

func newTestPage(content string) *model.PageObject {
	res := model.NewResourcesDict()
	return &model.PageObject{
		Resources: &res,
		Contents:  model.Contents{{Stream: model.Stream{Content: []byte(content)}}},
	}
}

func TestScanTextRun(t *testing.T) {
	page := newTestPage(`
		/P1 <</MCID 0>> BDC
		BT
		/F1 12 Tf
		100 700 Td
		(Hello World) Tj
		ET
		EMC
	`)

	ev, err := Scan(page)
	require.NoError(t, err)
	require.Len(t, ev.TextRuns, 1)

	run := ev.TextRuns[0]
	assert.Equal(t, 0, run.MCID)
	assert.Equal(t, "Hello World", run.ActualOrRaw)
	assert.Equal(t, "Hello World", ev.Text.String())

	bounds := run.Bounds()
	assert.Greater(t, bounds.Urx, bounds.Llx)
	assert.Greater(t, bounds.Ury, bounds.Lly)
}

func TestScanPathSkipsClippingOnly(t *testing.T) {
	page := newTestPage(`
		10 10 100 100 re
		W n
		0 0 50 50 re
		f
	`)

	ev, err := Scan(page)
	require.NoError(t, err)
	require.Len(t, ev.Paths, 1, "the clip-only rectangle must not produce a path event")
	assert.Equal(t, noMCID, ev.Paths[0].MCID)
}

func TestScanCTMAffectsImagePlacement(t *testing.T) {
	res := model.NewResourcesDict()
	img := &model.XObjectImage{Width: 10, Height: 10}
	res.XObject["Im1"] = img

	page := &model.PageObject{
		Resources: &res,
		Contents: model.Contents{{Stream: model.Stream{Content: []byte(`
			q
			2 0 0 2 5 5 cm
			/Im1 Do
			Q
		`)}}},
	}

	ev, err := Scan(page)
	require.NoError(t, err)
	require.Len(t, ev.Images, 1)
	assert.Equal(t, model.Matrix{2, 0, 0, 2, 5, 5}, ev.Images[0].CTM)
	assert.Same(t, img, ev.Images[0].Obj)
}

func TestTextAccumulatorJoinsWithSpace(t *testing.T) {
	acc := NewTextAccumulator()
	s1, e1 := acc.Append("Hello")
	s2, e2 := acc.Append("World")

	assert.Equal(t, "Hello World", acc.String())
	assert.Equal(t, "Hello", acc.Slice(s1, e1))
	assert.Equal(t, "World", acc.Slice(s2, e2))

	before, after := acc.Context(s2, e2, 3)
	assert.Equal(t, "lo ", before)
	assert.Equal(t, "", after)
}
