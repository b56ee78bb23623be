// Package services declares the external-service boundary contracts
// spec.md §6 names (autotagger, accessibility checker, alt-text and
// title generators, page rasterizer). Each interface has a deterministic
// in-memory Fake implementation (fake.go) for tests and a thin real
// adapter calling the vendor over HTTP (http.go).
package services

import "context"

// PageRange restricts AccessibilityCheck to a contiguous page range; a
// nil *PageRange means the whole document.
type PageRange struct {
	FirstPage, LastPage int // 0-based, inclusive
}

// Autotagger submits an untagged (or poorly tagged) PDF to an external
// autotagging backend.
type Autotagger interface {
	// AutotagPdf returns the tagged PDF bytes plus an opaque tagging
	// report. It may fail transiently; callers treat failure as
	// best-effort per spec.md §7.
	AutotagPdf(ctx context.Context, input []byte) (tagged, report []byte, err error)
}

// Checker submits a PDF to an external accessibility checker, producing
// a report JSON whose shape is described in spec.md §6: a
// `"Detailed Report"` object keyed by section, each value an array of
// `{Rule, Status}` objects, plus a `Summary` object of numeric counts.
type Checker interface {
	AccessibilityCheck(ctx context.Context, input []byte, pages *PageRange) (output []byte, reportJSON string, err error)
}

// ImageAltTextGenerator requests alt text for a raster or rasterized
// image.
type ImageAltTextGenerator interface {
	GenerateAltTextForImage(ctx context.Context, imageBytes []byte, mime, contextBefore, contextAfter string) (string, error)
}

// LinkAltTextGenerator requests alt text for a link annotation. target
// is nil when no URI or named destination could be resolved.
type LinkAltTextGenerator interface {
	GenerateAltTextForLink(ctx context.Context, target *string, linkText, contextBefore, contextAfter string) (string, error)
}

// TitleGenerator requests a document title from early-page text.
// Structurally identical to remediate.TitleGenerator's single method
// (minus ctx) so an adapter closure satisfies both without an import
// cycle between services and remediate.
type TitleGenerator interface {
	GenerateTitle(ctx context.Context, currentTitle, extractedText string) (string, error)
}

// Bitmap is a decoded raster page, bottom-to-top BGRA32 as spec.md §6
// describes.
type Bitmap struct {
	W, H   int
	BGRA32 []byte
}

// RasterHandle renders individual pages of a document rasterized at a
// fixed DPI. It is scoped: acquired once per document when vector-figure
// work exists, released via Close.
type RasterHandle interface {
	RenderPage(ctx context.Context, pageNum int) (Bitmap, error)
	Close() error
}

// Rasterizer opens a RasterHandle for a whole input document.
type Rasterizer interface {
	RasterizeDocument(ctx context.Context, input []byte, dpi int) (RasterHandle, error)
}
