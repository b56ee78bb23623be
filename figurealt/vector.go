package figurealt

import (
	"context"
	"image"

	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/scan"
	"github.com/benoitkugler/pdfremediate/services"
	"github.com/benoitkugler/pdfremediate/structidx"
)

// resolveVectorFigureAlts implements spec.md §4.9's vector-figure path:
// a Figure with no resolved raster image is instead illustrated by
// drawing operations tagged with its MCID. Its union bounding box is
// rasterized, cropped, hashed for dedupe, and sent to the image alt-text
// generator as a PNG.
func resolveVectorFigureAlts(ctx context.Context, doc *model.Document, sourceBytes []byte, pages []*model.PageObject, pageEvents []*scan.Events, idx *structidx.Index, gen services.ImageAltTextGenerator, rasterizer services.Rasterizer, opts Options) error {
	if gen == nil {
		return nil
	}

	mediaBoxes := make([]model.Rectangle, len(pages))
	for i, pg := range pages {
		if pg.MediaBox != nil {
			mediaBoxes[i] = *pg.MediaBox
		} else {
			mediaBoxes[i] = model.Rectangle{Urx: 612, Ury: 792}
		}
	}

	mcidsByFigure := map[*model.StructureElement][]structidx.PageMCID{}
	for key, se := range idx.ByMCID {
		mcidsByFigure[se] = append(mcidsByFigure[se], key)
	}

	pageIndexOf := map[*model.PageObject]int{}
	for i, pg := range pages {
		pageIndexOf[pg] = i
	}

	lazy := newLazyRasterizer(rasterizer, sourceBytes, opts.RasterDPI)
	defer lazy.close()

	dedupe := newCropDedupe()
	pageImageCache := map[int]*image.NRGBA{}

	for _, figure := range idx.ByRole["Figure"] {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !altIsMissing(figure.Alt, opts.ImageAltSentinel) {
			continue
		}

		pageIdx, bounds, before, after, found := vectorFigureGeometry(figure, mcidsByFigure, pageIndexOf, pageEvents, opts)
		if !found {
			continue // no drawing ops found for this Figure; left to the fallback sweep
		}

		img, ok := pageImageCache[pageIdx]
		if !ok {
			bmp, err := lazy.page(ctx, pageIdx)
			if err != nil {
				continue
			}
			img = bitmapToImage(bmp)
			pageImageCache[pageIdx] = img
		}

		region := cropBitmap(img.Bounds().Dx(), img.Bounds().Dy(), bounds, mediaBoxes[pageIdx], opts.RasterDPI, opts.CropPaddingPts, opts.MinCropPx)
		png, hash, err := encodeCropPNG(img, region, opts.MinCropPx)
		if err != nil {
			continue
		}

		alt, _, err := dedupe.resolve(hash, func() (string, error) {
			return gen.GenerateAltTextForImage(ctx, png, "image/png", before, after)
		})
		if err != nil || alt == "" {
			continue
		}
		figure.Alt = alt
	}
	return nil
}

// vectorFigureGeometry locates the page a Figure's drawing operations
// live on and the union bounding box of those operations (paths and, if
// present, text runs), skipping clipping-only paths. It also returns the
// surrounding text context taken from the widest char range touched by
// the figure's MCIDs.
func vectorFigureGeometry(figure *model.StructureElement, mcidsByFigure map[*model.StructureElement][]structidx.PageMCID, pageIndexOf map[*model.PageObject]int, pageEvents []*scan.Events, opts Options) (pageIdx int, bounds model.Rectangle, before, after string, found bool) {
	keys := mcidsByFigure[figure]
	if len(keys) == 0 {
		return 0, model.Rectangle{}, "", "", false
	}

	pg := keys[0].Page
	pageIdx, ok := pageIndexOf[pg]
	if !ok || pageIdx >= len(pageEvents) || pageEvents[pageIdx] == nil {
		return 0, model.Rectangle{}, "", "", false
	}
	ev := pageEvents[pageIdx]

	mcidSet := map[int]bool{}
	for _, k := range keys {
		if k.Page == pg {
			mcidSet[k.MCID] = true
		}
	}

	var rect model.Rectangle
	have := false
	minStart, maxEnd := -1, -1
	for _, p := range ev.Paths {
		if p.IsClippingOnly || !mcidSet[p.MCID] {
			continue
		}
		b := p.Bounds()
		if !have {
			rect, have = b, true
		} else {
			rect = unionRectangle(rect, b)
		}
	}
	for _, t := range ev.TextRuns {
		if !mcidSet[t.MCID] {
			continue
		}
		b := t.Bounds()
		if !have {
			rect, have = b, true
		} else {
			rect = unionRectangle(rect, b)
		}
		if minStart < 0 || t.StartIndex < minStart {
			minStart = t.StartIndex
		}
		if t.EndIndex > maxEnd {
			maxEnd = t.EndIndex
		}
	}
	if !have {
		return 0, model.Rectangle{}, "", "", false
	}
	if minStart >= 0 {
		before, after = ev.Text.Context(minStart, maxEnd, opts.ContextRadius)
	}
	return pageIdx, rect, before, after, true
}

func unionRectangle(a, b model.Rectangle) model.Rectangle {
	r := a
	if b.Llx < r.Llx {
		r.Llx = b.Llx
	}
	if b.Lly < r.Lly {
		r.Lly = b.Lly
	}
	if b.Urx > r.Urx {
		r.Urx = b.Urx
	}
	if b.Ury > r.Ury {
		r.Ury = b.Ury
	}
	return r
}
