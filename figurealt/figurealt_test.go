package figurealt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/scan"
	"github.com/benoitkugler/pdfremediate/structidx"
)

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "image/png", detectMIME([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0}))
	assert.Equal(t, "image/jpeg", detectMIME([]byte{0xFF, 0xD8, 0xFF, 0xE0}))
	assert.Equal(t, "image/jp2", detectMIME([]byte{0x00, 0x00, 0x00, 0x0C, 'j', 'P', ' ', ' '}))
	assert.Equal(t, "application/octet-stream", detectMIME([]byte{1, 2, 3}))
}

func TestAltIsMissing(t *testing.T) {
	assert.True(t, altIsMissing("", "alt text for image"))
	assert.True(t, altIsMissing("  Alt   Text For Image ", "alt text for image"))
	assert.False(t, altIsMissing("a real description", "alt text for image"))
}

type fakeImageGen struct {
	calls int
	alt   string
	err   error
}

func (f *fakeImageGen) GenerateAltTextForImage(_ context.Context, _ []byte, _, _, _ string) (string, error) {
	f.calls++
	return f.alt, f.err
}

func TestResolveRasterImageAltsWritesAltFromByObjRef(t *testing.T) {
	pg := &model.PageObject{}
	figure := &model.StructureElement{S: "Figure", Pg: pg}
	img := &model.XObjectImage{Stream: model.Stream{Content: []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}}}

	idx := structidx.Index{
		ByObjRef: map[structidx.PageObjRef]*model.StructureElement{
			{Page: pg, Obj: img}: figure,
		},
		ByMCID: map[structidx.PageMCID]*model.StructureElement{},
	}

	acc := scan.NewTextAccumulator()
	acc.Append("some surrounding words here")
	ev := &scan.Events{
		Images: []scan.Image{{MCID: 0, Obj: img, Ref: img, CharIndex: 5}},
		Text:   acc,
	}

	gen := &fakeImageGen{alt: "a photograph"}
	resolveRasterImageAlts(context.Background(), pg, ev, &idx, gen, DefaultOptions())

	assert.Equal(t, "a photograph", figure.Alt)
	assert.Equal(t, 1, gen.calls)
}

func TestResolveRasterImageAltsSkipsWhenAltAlreadyReal(t *testing.T) {
	pg := &model.PageObject{}
	figure := &model.StructureElement{S: "Figure", Pg: pg, Alt: "already described"}
	img := &model.XObjectImage{Stream: model.Stream{Content: []byte{0xFF, 0xD8, 0xFF}}}

	idx := structidx.Index{
		ByMCID: map[structidx.PageMCID]*model.StructureElement{
			{Page: pg, MCID: 2}: figure,
		},
		ByObjRef: map[structidx.PageObjRef]*model.StructureElement{},
	}
	ev := &scan.Events{
		Images: []scan.Image{{MCID: 2, Obj: img}},
		Text:   scan.NewTextAccumulator(),
	}

	gen := &fakeImageGen{alt: "should not be used"}
	resolveRasterImageAlts(context.Background(), pg, ev, &idx, gen, DefaultOptions())

	assert.Equal(t, "already described", figure.Alt)
	assert.Equal(t, 0, gen.calls)
}

func TestFallbackSweepFillsMissingFigureAndLinkAlt(t *testing.T) {
	fig := &model.StructureElement{S: "Figure"}
	link := &model.StructureElement{S: "Link"}
	already := &model.StructureElement{S: "Figure", Alt: "kept"}
	tree := &model.StructureTree{K: []*model.StructureElement{fig, link, already}}

	opts := DefaultOptions()
	opts.GenerateLinkAltText = true
	fallbackSweep(tree, opts)

	assert.Equal(t, "alt text for image", fig.Alt)
	assert.Equal(t, "alt text for link", link.Alt)
	assert.Equal(t, "kept", already.Alt)
}

func TestFallbackSweepLeavesLinkAloneWhenFeatureDisabled(t *testing.T) {
	link := &model.StructureElement{S: "Link"}
	tree := &model.StructureTree{K: []*model.StructureElement{link}}

	fallbackSweep(tree, DefaultOptions())

	assert.Equal(t, "", link.Alt)
}

func TestLinkTargetPrefersActionURI(t *testing.T) {
	link := model.AnnotationLink{A: model.Action{ActionType: model.ActionURI{URI: "https://example.com"}}}
	target := linkTarget(link)
	require.NotNil(t, target)
	assert.Equal(t, "https://example.com", *target)
}

func TestLinkTargetFallsBackToDestinationText(t *testing.T) {
	pg := &model.PageObject{}
	link := model.AnnotationLink{Dest: model.DestinationExplicitIntern{Page: pg, Location: model.DestinationLocationFit("Fit")}}
	target := linkTarget(link)
	require.NotNil(t, target)
	assert.Contains(t, *target, "Fit")
}

func TestLinkTargetNilWhenNothingResolves(t *testing.T) {
	assert.Nil(t, linkTarget(model.AnnotationLink{}))
}

func TestRectsOverlapWithinTolerance(t *testing.T) {
	a := model.Rectangle{Llx: 0, Lly: 0, Urx: 10, Ury: 10}
	b := model.Rectangle{Llx: 10.5, Lly: 0, Urx: 20, Ury: 10}
	assert.False(t, rectsOverlapWithin(a, b, 0))
	assert.True(t, rectsOverlapWithin(a, b, 1))
}

func TestRunNoOpWithoutStructTree(t *testing.T) {
	doc := &model.Document{}
	err := Run(context.Background(), doc, nil, nil, nil, nil, DefaultOptions())
	require.NoError(t, err)
}

func TestRunRunsFallbackSweepEvenWithoutGenerators(t *testing.T) {
	fig := &model.StructureElement{S: "Figure"}
	doc := &model.Document{}
	doc.Catalog.StructTreeRoot = &model.StructureTree{K: []*model.StructureElement{fig}}

	err := Run(context.Background(), doc, nil, nil, nil, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "alt text for image", fig.Alt)
}

func TestRunPropagatesContextCancellation(t *testing.T) {
	doc := &model.Document{}
	doc.Catalog.StructTreeRoot = &model.StructureTree{K: []*model.StructureElement{{S: "Figure"}}}
	doc.Catalog.Pages.Kids = []model.PageNode{&model.PageObject{}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, doc, nil, nil, nil, nil, DefaultOptions())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
