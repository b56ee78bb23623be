package figurealt

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"sync"

	"golang.org/x/image/draw"

	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/services"
)

// lazyRasterizer opens a services.RasterHandle for doc's source bytes
// only on the first call to page, and releases it once via close - the
// "opened once when vector-figure work exists, released on document
// completion" scoping spec.md §5 describes.
type lazyRasterizer struct {
	mu         sync.Mutex
	rasterizer services.Rasterizer
	sourceBytes []byte
	dpi        int
	handle     services.RasterHandle
	openErr    error
	opened     bool
}

func newLazyRasterizer(rasterizer services.Rasterizer, sourceBytes []byte, dpi int) *lazyRasterizer {
	return &lazyRasterizer{rasterizer: rasterizer, sourceBytes: sourceBytes, dpi: dpi}
}

func (l *lazyRasterizer) page(ctx context.Context, pageNum int) (services.Bitmap, error) {
	l.mu.Lock()
	if !l.opened {
		l.opened = true
		l.handle, l.openErr = l.rasterizer.RasterizeDocument(ctx, l.sourceBytes, l.dpi)
	}
	handle, err := l.handle, l.openErr
	l.mu.Unlock()
	if err != nil {
		return services.Bitmap{}, err
	}
	return handle.RenderPage(ctx, pageNum)
}

func (l *lazyRasterizer) close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.opened && l.handle != nil {
		return l.handle.Close()
	}
	return nil
}

// cropDedupe deduplicates vector-figure crops by the SHA-256 of their
// encoded PNG bytes: a second request for an already-seen hash waits on
// the first caller's result instead of re-invoking the alt-text
// generator, per spec.md §5's "pending request holds the hash" rule.
type cropDedupe struct {
	mu      sync.Mutex
	pending map[string]*dedupeEntry
}

type dedupeEntry struct {
	wg   sync.WaitGroup
	alt  string
	err  error
}

func newCropDedupe() *cropDedupe {
	return &cropDedupe{pending: map[string]*dedupeEntry{}}
}

// resolve returns the alt text for hash, computing it via generate only
// for the first caller to observe that hash; concurrent or later callers
// for the same hash block on (or replay) that result.
func (d *cropDedupe) resolve(hash string, generate func() (string, error)) (alt string, hit bool, err error) {
	d.mu.Lock()
	entry, exists := d.pending[hash]
	if exists {
		d.mu.Unlock()
		entry.wg.Wait()
		return entry.alt, true, entry.err
	}
	entry = &dedupeEntry{}
	entry.wg.Add(1)
	d.pending[hash] = entry
	d.mu.Unlock()

	entry.alt, entry.err = generate()
	entry.wg.Done()
	return entry.alt, false, entry.err
}

// cropBitmap converts a union bounding box in PDF point space into pixel
// coordinates within bmp, applying spec.md §4.9's vector-figure crop
// recipe: pad 2pt per side, clamp to the page, flip for PDF's
// bottom-left origin, then enforce a minimum 64x64 px crop expanded
// around the centre.
func cropBitmap(imgW, imgH int, bounds, mediaBox model.Rectangle, dpi int, paddingPts model.Fl, minPx int) image.Rectangle {
	padded := model.Rectangle{
		Llx: bounds.Llx - paddingPts,
		Lly: bounds.Lly - paddingPts,
		Urx: bounds.Urx + paddingPts,
		Ury: bounds.Ury + paddingPts,
	}
	padded = clampRect(padded, mediaBox)

	scale := model.Fl(dpi) / 72
	x0 := int((padded.Llx - mediaBox.Llx) * scale)
	x1 := int((padded.Urx - mediaBox.Llx) * scale)
	// PDF y grows up from the bottom; bitmap rows grow down from the top.
	y0 := int((mediaBox.Ury - padded.Ury) * scale)
	y1 := int((mediaBox.Ury - padded.Lly) * scale)

	r := image.Rect(x0, y0, x1, y1)
	r = expandToMin(r, minPx)
	return r.Intersect(image.Rect(0, 0, imgW, imgH))
}

func clampRect(r, bound model.Rectangle) model.Rectangle {
	if r.Llx < bound.Llx {
		r.Llx = bound.Llx
	}
	if r.Lly < bound.Lly {
		r.Lly = bound.Lly
	}
	if r.Urx > bound.Urx {
		r.Urx = bound.Urx
	}
	if r.Ury > bound.Ury {
		r.Ury = bound.Ury
	}
	return r
}

func expandToMin(r image.Rectangle, minPx int) image.Rectangle {
	if r.Dx() >= minPx && r.Dy() >= minPx {
		return r
	}
	cx, cy := (r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2
	w, h := r.Dx(), r.Dy()
	if w < minPx {
		w = minPx
	}
	if h < minPx {
		h = minPx
	}
	return image.Rect(cx-w/2, cy-h/2, cx-w/2+w, cy-h/2+h)
}

// bitmapToImage converts bmp's bottom-to-top BGRA32 raster (services.
// Bitmap's documented row order) into a top-down image.NRGBA, the
// orientation cropBitmap's coordinates and the PNG encoder both expect.
func bitmapToImage(bmp services.Bitmap) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, bmp.W, bmp.H))
	stride := bmp.W * 4
	for topRow := 0; topRow < bmp.H; topRow++ {
		srcRow := bmp.H - 1 - topRow
		srcStart := srcRow * stride
		dstStart := topRow * img.Stride
		for x := 0; x < bmp.W; x++ {
			si := srcStart + x*4
			if si+4 > len(bmp.BGRA32) {
				break
			}
			b, g, r, a := bmp.BGRA32[si], bmp.BGRA32[si+1], bmp.BGRA32[si+2], bmp.BGRA32[si+3]
			di := dstStart + x*4
			img.Pix[di] = r
			img.Pix[di+1] = g
			img.Pix[di+2] = b
			img.Pix[di+3] = a
		}
	}
	return img
}

// encodeCropPNG crops img to region, upscaling the crop when clamping
// against the page edge (in cropBitmap) left it smaller than minPx on
// either side, and encodes it as PNG, returning the bytes and their
// hex-encoded SHA-256 (the dedupe key).
func encodeCropPNG(img *image.NRGBA, region image.Rectangle, minPx int) ([]byte, string, error) {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return nil, "", fmt.Errorf("figurealt: empty crop region")
	}
	sub := image.Image(img.SubImage(region))
	if w, h := region.Dx(), region.Dy(); minPx > 0 && (w < minPx || h < minPx) {
		sub = upscale(sub, minPx)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, sub); err != nil {
		return nil, "", fmt.Errorf("figurealt: encoding crop: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	return buf.Bytes(), hex.EncodeToString(sum[:]), nil
}

// upscale scales src so its shorter side is at least minPx, preserving
// aspect ratio, using a smooth resampling filter rather than
// nearest-neighbour pixel replication.
func upscale(src image.Image, minPx int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return src
	}
	scale := float64(minPx) / float64(w)
	if hScale := float64(minPx) / float64(h); hScale > scale {
		scale = hScale
	}
	dstW, dstH := int(float64(w)*scale+0.5), int(float64(h)*scale+0.5)
	if dstW < minPx {
		dstW = minPx
	}
	if dstH < minPx {
		dstH = minPx
	}
	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
