package figurealt

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/scan"
	"github.com/benoitkugler/pdfremediate/services"
	"github.com/benoitkugler/pdfremediate/structidx"
)

func TestVectorFigureGeometryUnionsPathsAndTextSkippingClipping(t *testing.T) {
	pg := &model.PageObject{}
	figure := &model.StructureElement{S: "Figure", Pg: pg}
	mcidsByFigure := map[*model.StructureElement][]structidx.PageMCID{
		figure: {{Page: pg, MCID: 3}},
	}
	pageIndexOf := map[*model.PageObject]int{pg: 0}

	ev := &scan.Events{
		Paths: []scan.Path{
			{MCID: 3, Points: [][2]scan.Fl{{10, 10}, {50, 50}}},
			{MCID: 3, IsClippingOnly: true, Points: [][2]scan.Fl{{0, 0}, {1000, 1000}}},
			{MCID: 9, Points: [][2]scan.Fl{{0, 0}, {0, 0}}},
		},
		Text: scan.NewTextAccumulator(),
	}

	pageIdx, bounds, _, _, found := vectorFigureGeometry(figure, mcidsByFigure, pageIndexOf, []*scan.Events{ev}, DefaultOptions())
	require.True(t, found)
	assert.Equal(t, 0, pageIdx)
	assert.Equal(t, model.Rectangle{Llx: 10, Lly: 10, Urx: 50, Ury: 50}, bounds)
}

func TestVectorFigureGeometryNotFoundWithoutDrawingOps(t *testing.T) {
	pg := &model.PageObject{}
	figure := &model.StructureElement{S: "Figure", Pg: pg}
	mcidsByFigure := map[*model.StructureElement][]structidx.PageMCID{
		figure: {{Page: pg, MCID: 3}},
	}
	ev := &scan.Events{Text: scan.NewTextAccumulator()}

	_, _, _, _, found := vectorFigureGeometry(figure, mcidsByFigure, map[*model.PageObject]int{pg: 0}, []*scan.Events{ev}, DefaultOptions())
	assert.False(t, found)
}

func TestCropBitmapClampsAndEnforcesMinimumSize(t *testing.T) {
	mediaBox := model.Rectangle{Urx: 612, Ury: 792}
	bounds := model.Rectangle{Llx: 100, Lly: 100, Urx: 110, Ury: 108} // 10x8pt, tiny
	r := cropBitmap(612*2, 792*2, bounds, mediaBox, 144, 2, 64)
	assert.GreaterOrEqual(t, r.Dx(), 64)
	assert.GreaterOrEqual(t, r.Dy(), 64)
	assert.True(t, r.Min.X >= 0 && r.Max.X <= 612*2)
	assert.True(t, r.Min.Y >= 0 && r.Max.Y <= 792*2)
}

func TestBitmapToImageFlipsBottomToTopIntoTopDown(t *testing.T) {
	// 2x2 bitmap, bottom-to-top: row0 = bottom row (all red), row1 = top row (all blue).
	bmp := services.Bitmap{W: 2, H: 2, BGRA32: []byte{
		0, 0, 255, 255, 0, 0, 255, 255, // bottom row: red (B=0,G=0,R=255)
		255, 0, 0, 255, 255, 0, 0, 255, // top row: blue (B=255,G=0,R=0)
	}}
	img := bitmapToImage(bmp)
	topPixel := img.NRGBAAt(0, 0)
	bottomPixel := img.NRGBAAt(0, 1)
	assert.Equal(t, color.NRGBA{R: 0, G: 0, B: 255, A: 255}, topPixel)
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 0, A: 255}, bottomPixel)
}

func TestEncodeCropPNGProducesStableHash(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	_, hash1, err := encodeCropPNG(img, image.Rect(0, 0, 4, 4), 0)
	require.NoError(t, err)
	_, hash2, err := encodeCropPNG(img, image.Rect(0, 0, 4, 4), 0)
	require.NoError(t, err)
	assert.Equal(t, hash1, hash2)
}

func TestEncodeCropPNGUpscalesRegionsBelowMinCropPx(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	pngBytes, _, err := encodeCropPNG(img, image.Rect(0, 0, 4, 4), 64)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, decoded.Bounds().Dx(), 64)
	assert.GreaterOrEqual(t, decoded.Bounds().Dy(), 64)
}

func TestCropDedupeComputesGenerateOnceForRepeatedHash(t *testing.T) {
	d := newCropDedupe()
	calls := 0
	gen := func() (string, error) {
		calls++
		return "an alt text", nil
	}

	alt1, hit1, err := d.resolve("samehash", gen)
	require.NoError(t, err)
	assert.False(t, hit1)
	assert.Equal(t, "an alt text", alt1)

	alt2, hit2, err := d.resolve("samehash", gen)
	require.NoError(t, err)
	assert.True(t, hit2)
	assert.Equal(t, "an alt text", alt2)
	assert.Equal(t, 1, calls)
}

func TestLazyRasterizerOpensOnceAndPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	rasterizer := failingRasterizer{err: boom, opens: new(int)}
	lazy := newLazyRasterizer(rasterizer, []byte("pdf bytes"), 216)

	_, err := lazy.page(context.Background(), 0)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, rasterizer.calls())
	_, err = lazy.page(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, rasterizer.calls()) // still opened only once
}

type failingRasterizer struct {
	err     error
	opens   *int
}

func (f failingRasterizer) calls() int {
	if f.opens == nil {
		return 0
	}
	return *f.opens
}

func (f failingRasterizer) RasterizeDocument(_ context.Context, _ []byte, _ int) (services.RasterHandle, error) {
	if f.opens != nil {
		*f.opens++
	}
	return nil, f.err
}
