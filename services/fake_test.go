package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/reader"
)

func threePagePDF(t *testing.T) []byte {
	t.Helper()
	var doc model.Document
	doc.Catalog.Pages.Kids = []model.PageNode{
		&model.PageObject{MediaBox: &model.Rectangle{Urx: 612, Ury: 792}},
		&model.PageObject{MediaBox: &model.Rectangle{Urx: 612, Ury: 792}},
		&model.PageObject{MediaBox: &model.Rectangle{Urx: 612, Ury: 792}},
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf, nil))
	return buf.Bytes()
}

func TestFakeAutotaggerMarksAndBuildsStructTree(t *testing.T) {
	tagged, report, err := FakeAutotagger{}.AutotagPdf(context.Background(), threePagePDF(t))
	require.NoError(t, err)
	require.NotEmpty(t, report)

	doc, _, err := reader.ParsePDFReader(bytes.NewReader(tagged), reader.Options{})
	require.NoError(t, err)
	require.NotNil(t, doc.Catalog.MarkInfo)
	assert.True(t, doc.Catalog.MarkInfo.Marked)
	require.NotNil(t, doc.Catalog.StructTreeRoot)
	require.Len(t, doc.Catalog.StructTreeRoot.K, 1)
	assert.EqualValues(t, "Document", doc.Catalog.StructTreeRoot.K[0].S)
	assert.Len(t, doc.Catalog.StructTreeRoot.K[0].K, 3)
}

func TestFakeCheckerReportsPageCount(t *testing.T) {
	_, reportJSON, err := FakeChecker{}.AccessibilityCheck(context.Background(), threePagePDF(t), nil)
	require.NoError(t, err)
	assert.Contains(t, reportJSON, `"pageCount":3`)
}

func TestFakeTitleGeneratorTakesLeadingWords(t *testing.T) {
	title, err := FakeTitleGenerator{}.GenerateTitle(context.Background(), "", "one two three four five six seven eight nine ten")
	require.NoError(t, err)
	assert.Equal(t, "one two three four five six seven eight", title)
}

func TestFakeImageAltTextGeneratorIsNotTheSentinel(t *testing.T) {
	alt, err := FakeImageAltTextGenerator{}.GenerateAltTextForImage(context.Background(), []byte("fake-png-bytes"), "image/png", "", "")
	require.NoError(t, err)
	assert.NotEqual(t, "alt text for image", alt)
}

func TestFakeRasterizerSizesFromMediaBox(t *testing.T) {
	handle, err := FakeRasterizer{}.RasterizeDocument(context.Background(), threePagePDF(t), 216)
	require.NoError(t, err)
	defer handle.Close()

	bmp, err := handle.RenderPage(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 612*216/72, bmp.W)
	assert.Equal(t, 792*216/72, bmp.H)
	assert.Len(t, bmp.BGRA32, bmp.W*bmp.H*4)
}
