package ingest

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/reader"
	"github.com/benoitkugler/pdfremediate/services"
)

func nPagePDF(t *testing.T, n int) []byte {
	t.Helper()
	var doc model.Document
	for i := 0; i < n; i++ {
		doc.Catalog.Pages.Kids = append(doc.Catalog.Pages.Kids, &model.PageObject{MediaBox: &model.Rectangle{Urx: 612, Ury: 792}})
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf, nil))
	return buf.Bytes()
}

type countingAutotagger struct {
	pageCounts []int
}

func (c *countingAutotagger) AutotagPdf(ctx context.Context, input []byte) ([]byte, []byte, error) {
	doc, _, err := reader.ParsePDFReader(bytes.NewReader(input), reader.Options{})
	if err != nil {
		return nil, nil, err
	}
	c.pageCounts = append(c.pageCounts, len(doc.Catalog.Pages.Flatten()))
	return services.FakeAutotagger{}.AutotagPdf(ctx, input)
}

func TestOrchestratorRunTagsAndRemediatesUntaggedPDF(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkDirRoot = ""
	o := &Orchestrator{Config: cfg, Autotagger: services.FakeAutotagger{}, Checker: services.FakeChecker{}}

	final, before, after, err := o.Run(context.Background(), nPagePDF(t, 2), "doc-1")
	require.NoError(t, err)
	require.NotEmpty(t, final)
	assert.Contains(t, before, "pageCount")
	assert.Contains(t, after, "pageCount")

	doc, _, err := reader.ParsePDFReader(bytes.NewReader(final), reader.Options{})
	require.NoError(t, err)
	require.NotNil(t, doc.Catalog.StructTreeRoot)
	assert.NotEmpty(t, doc.Catalog.Lang)
	assert.NotEmpty(t, doc.Trailer.Info.Title)
	for _, pg := range doc.Catalog.Pages.Flatten() {
		assert.EqualValues(t, "S", pg.Tabs)
	}
}

func TestOrchestratorSkipsAutotaggingWhenAlreadyMeaningfullyTagged(t *testing.T) {
	var doc model.Document
	pg := &model.PageObject{MediaBox: &model.Rectangle{Urx: 612, Ury: 792}}
	doc.Catalog.Pages.Kids = []model.PageNode{pg}
	doc.Catalog.StructTreeRoot = &model.StructureTree{K: []*model.StructureElement{
		{S: "Document", K: []model.ContentItem{&model.StructureElement{S: "P", Pg: pg}}},
	}}
	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf, nil))

	spy := &countingAutotagger{}
	cfg := DefaultConfig()
	cfg.WorkDirRoot = ""
	o := &Orchestrator{Config: cfg, Autotagger: spy}

	_, _, _, err := o.Run(context.Background(), buf.Bytes(), "doc-2")
	require.NoError(t, err)
	assert.Empty(t, spy.pageCounts)
}

func TestOrchestratorChunks7PagesInto3_3_1(t *testing.T) {
	spy := &countingAutotagger{}
	cfg := DefaultConfig()
	cfg.WorkDirRoot = ""
	cfg.MaxPagesPerChunk = 3
	o := &Orchestrator{Config: cfg, Autotagger: spy}

	final, _, _, err := o.Run(context.Background(), nPagePDF(t, 7), "doc-3")
	require.NoError(t, err)
	require.NotEmpty(t, final)
	assert.Equal(t, []int{3, 3, 1}, spy.pageCounts)

	doc, _, err := reader.ParsePDFReader(bytes.NewReader(final), reader.Options{})
	require.NoError(t, err)
	assert.Len(t, doc.Catalog.Pages.Flatten(), 7)
}

func TestOrchestratorMalformedInputReturnsErrMalformedInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkDirRoot = ""
	o := &Orchestrator{Config: cfg}

	_, _, _, err := o.Run(context.Background(), []byte("not a pdf at all"), "doc-4")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestOrchestratorRetagsTriviallyTaggedPDFEvenWhenAutotagOfTaggedDisabled(t *testing.T) {
	var doc model.Document
	pg := &model.PageObject{MediaBox: &model.Rectangle{Urx: 612, Ury: 792}}
	doc.Catalog.Pages.Kids = []model.PageNode{pg}
	doc.Catalog.StructTreeRoot = &model.StructureTree{K: []*model.StructureElement{{S: "Document"}}}
	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf, nil))

	spy := &countingAutotagger{}
	cfg := DefaultConfig()
	cfg.WorkDirRoot = ""
	cfg.AutotagAlreadyTaggedPDFs = false
	o := &Orchestrator{Config: cfg, Autotagger: spy}

	_, _, _, err := o.Run(context.Background(), buf.Bytes(), "doc-5")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, spy.pageCounts)
}
