// Package figurealt implements the Figure and Link alt-text pipelines
// (spec.md §4.9-§4.10): resolving structure elements to the content that
// realizes them, requesting alt text from an external generator, and
// falling back to a fixed sentinel when nothing else supplied one.
package figurealt

import (
	"context"
	"fmt"
	"strings"

	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/scan"
	"github.com/benoitkugler/pdfremediate/services"
	"github.com/benoitkugler/pdfremediate/structidx"
)

// Options configures both alt-text pipelines.
type Options struct {
	// ContextRadius is the number of characters of surrounding text
	// pulled from each side of an image or link, spec.md §4.9's "up to
	// 800 chars per side".
	ContextRadius int

	// ImageAltSentinel and LinkAltSentinel mark a placeholder value
	// spec.md treats as equivalent to an empty /Alt, so a re-run
	// retries generation instead of treating the placeholder as done.
	ImageAltSentinel string
	LinkAltSentinel  string

	// GenerateLinkAltText feature-gates the Link Alt Pipeline (§4.10);
	// it is off by default.
	GenerateLinkAltText bool

	// RasterDPI is the resolution vector-figure crops are rendered at.
	RasterDPI int

	// CropPaddingPts pads a vector figure's union bounding box before
	// cropping, in PDF points.
	CropPaddingPts model.Fl

	// MinCropPx is the minimum crop side length in pixels, expanded
	// around the crop's centre when the union bbox is smaller.
	MinCropPx int

	// LinkTextProximityPts is how close (in points) a text run's bounds
	// must be to a link's rect to count as that link's visible text.
	LinkTextProximityPts model.Fl
}

// DefaultOptions returns spec.md §6's documented configuration defaults.
func DefaultOptions() Options {
	return Options{
		ContextRadius:        800,
		ImageAltSentinel:     "alt text for image",
		LinkAltSentinel:      "alt text for link",
		GenerateLinkAltText:  false,
		RasterDPI:            216,
		CropPaddingPts:       2,
		MinCropPx:            64,
		LinkTextProximityPts: 1,
	}
}

// Run executes the Figure and (if enabled) Link alt-text pipelines
// against doc, in page order, followed by the fallback safety net that
// guarantees every tagged Figure (and, if enabled, Link) ends up with a
// non-empty /Alt. sourceBytes is doc's own serialization, needed only if
// a vector figure requires rasterization; pass nil when no Rasterizer is
// available, and vector figures are left for the fallback sweep.
func Run(ctx context.Context, doc *model.Document, sourceBytes []byte, imageGen services.ImageAltTextGenerator, linkGen services.LinkAltTextGenerator, rasterizer services.Rasterizer, opts Options) error {
	tree := doc.Catalog.StructTreeRoot
	if tree == nil {
		return nil
	}

	idx := structidx.Build(tree, "Figure", "Link")
	pages := doc.Catalog.Pages.Flatten()

	pageEvents := make([]*scan.Events, len(pages))
	for i, pg := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := scan.Scan(pg)
		if err != nil {
			continue // malformed content stream: skip this page's alt-text work
		}
		pageEvents[i] = ev
	}

	if imageGen != nil {
		for i, pg := range pages {
			if err := ctx.Err(); err != nil {
				return err
			}
			if pageEvents[i] == nil {
				continue
			}
			resolveRasterImageAlts(ctx, pg, pageEvents[i], idx, imageGen, opts)
		}
	}

	if rasterizer != nil && sourceBytes != nil {
		if err := resolveVectorFigureAlts(ctx, doc, sourceBytes, pages, pageEvents, idx, imageGen, rasterizer, opts); err != nil {
			return err
		}
	}

	if opts.GenerateLinkAltText && linkGen != nil {
		for i, pg := range pages {
			if err := ctx.Err(); err != nil {
				return err
			}
			if pageEvents[i] == nil {
				continue
			}
			resolveLinkAlts(ctx, pg, pageEvents[i], idx, linkGen, opts)
		}
	}

	fallbackSweep(tree, opts)
	return nil
}

// altIsMissing reports whether se's current Alt should be treated as
// absent: either literally empty, or equal (case- and whitespace-fold)
// to sentinel.
func altIsMissing(alt, sentinel string) bool {
	if alt == "" {
		return true
	}
	return strings.EqualFold(structidx.NormalizeWhitespace(alt), structidx.NormalizeWhitespace(sentinel))
}

func resolveRasterImageAlts(ctx context.Context, pg *model.PageObject, ev *scan.Events, idx *structidx.Index, gen services.ImageAltTextGenerator, opts Options) {
	for _, img := range ev.Images {
		se := resolveFigure(pg, img.MCID, img.Ref, idx)
		if se == nil || !altIsMissing(se.Alt, opts.ImageAltSentinel) {
			continue
		}
		if img.Obj == nil || len(img.Obj.Content) == 0 {
			continue
		}
		mime := detectMIME(img.Obj.Content)
		before, after := ev.Text.Context(img.CharIndex, img.CharIndex, opts.ContextRadius)
		alt, err := gen.GenerateAltTextForImage(ctx, img.Obj.Content, mime, before, after)
		if err != nil || alt == "" {
			continue
		}
		se.Alt = alt
	}
}

func resolveFigure(pg *model.PageObject, mcid int, ref model.StructParentObject, idx *structidx.Index) *model.StructureElement {
	if ref != nil {
		if se, ok := idx.ByObjRef[structidx.PageObjRef{Page: pg, Obj: ref}]; ok {
			return se
		}
	}
	if se, ok := idx.ByMCID[structidx.PageMCID{Page: pg, MCID: mcid}]; ok {
		return se
	}
	return nil
}

// resolveLinkAlts implements the Link Alt Pipeline (spec.md §4.10).
func resolveLinkAlts(ctx context.Context, pg *model.PageObject, ev *scan.Events, idx *structidx.Index, gen services.LinkAltTextGenerator, opts Options) {
	for _, annot := range pg.Annots {
		link, ok := annot.Subtype.(model.AnnotationLink)
		if !ok {
			continue
		}
		se, ok := idx.ByObjRef[structidx.PageObjRef{Page: pg, Obj: annot}]
		if !ok || !altIsMissing(se.Alt, opts.LinkAltSentinel) {
			continue
		}

		visible, before, after := linkVisibleText(annot.Rect, ev, opts)
		target := linkTarget(link)

		alt, err := gen.GenerateAltTextForLink(ctx, target, visible, before, after)
		if err != nil || alt == "" {
			continue
		}
		se.Alt = alt
	}
}

// linkVisibleText finds the page text overlapping (within
// opts.LinkTextProximityPts of) rect, falling back to the nearest run by
// centre distance, then to empty. It returns the matched text plus the
// context straddling the matched char range.
func linkVisibleText(rect model.Rectangle, ev *scan.Events, opts Options) (visible, before, after string) {
	type match struct {
		run        scan.TextRun
		startIndex int
		endIndex   int
	}
	var overlapping []match
	for _, run := range ev.TextRuns {
		b := run.Bounds()
		if rectsOverlapWithin(rect, b, opts.LinkTextProximityPts) {
			overlapping = append(overlapping, match{run, run.StartIndex, run.EndIndex})
		}
	}
	if len(overlapping) > 0 {
		start, end := overlapping[0].startIndex, overlapping[0].endIndex
		for _, m := range overlapping[1:] {
			if m.startIndex < start {
				start = m.startIndex
			}
			if m.endIndex > end {
				end = m.endIndex
			}
		}
		before, after = ev.Text.Context(start, end, opts.ContextRadius)
		return ev.Text.Slice(start, end), before, after
	}

	var nearest *scan.TextRun
	var nearestDist model.Fl = -1
	rcx, rcy := centre(rect)
	for i := range ev.TextRuns {
		run := ev.TextRuns[i]
		bcx, bcy := centre(run.Bounds())
		d := (bcx-rcx)*(bcx-rcx) + (bcy-rcy)*(bcy-rcy)
		if nearestDist < 0 || d < nearestDist {
			nearestDist = d
			nearest = &ev.TextRuns[i]
		}
	}
	if nearest == nil {
		return "", "", ""
	}
	before, after = ev.Text.Context(nearest.StartIndex, nearest.EndIndex, opts.ContextRadius)
	return ev.Text.Slice(nearest.StartIndex, nearest.EndIndex), before, after
}

func centre(r model.Rectangle) (model.Fl, model.Fl) {
	return (r.Llx + r.Urx) / 2, (r.Lly + r.Ury) / 2
}

func rectsOverlapWithin(a, b model.Rectangle, tolerance model.Fl) bool {
	a.Llx -= tolerance
	a.Lly -= tolerance
	a.Urx += tolerance
	a.Ury += tolerance
	return a.Llx <= b.Urx && b.Llx <= a.Urx && a.Lly <= b.Ury && b.Lly <= a.Ury
}

// linkTarget extracts a link's destination as spec.md §4.10 prefers:
// an /A action's URI first, else the textual form of a /Dest, else nil.
func linkTarget(link model.AnnotationLink) *string {
	if uri, ok := link.A.ActionType.(model.ActionURI); ok && uri.URI != "" {
		t := uri.URI
		return &t
	}
	if link.Dest != nil {
		if t := destinationText(link.Dest); t != "" {
			return &t
		}
	}
	return nil
}

func destinationText(d model.Destination) string {
	switch dest := d.(type) {
	case model.DestinationExplicitIntern:
		return fmt.Sprintf("page destination (%s)", locationText(dest.Location))
	case model.DestinationExplicitExtern:
		return fmt.Sprintf("external page %d destination (%s)", dest.Page, locationText(dest.Location))
	case model.DestinationName:
		return "named destination " + string(dest)
	case model.DestinationString:
		return "named destination " + string(dest)
	default:
		return ""
	}
}

func locationText(loc model.DestinationLocation) string {
	switch l := loc.(type) {
	case model.DestinationLocationFit:
		return string(l)
	case model.DestinationLocationFitDim:
		return string(l.Name)
	case model.DestinationLocationXYZ:
		return "XYZ"
	case model.DestinationLocationFitR:
		return "FitR"
	default:
		return ""
	}
}

// fallbackSweep guarantees spec.md §8's "every tagged Figure has a
// non-empty /Alt" invariant (and the equivalent Link invariant when link
// alt text is enabled) by writing the fixed sentinel to anything still
// missing one after the pipelines above have run.
// fallbackSweep uses an explicit work stack rather than recursion:
// structure-tree depth is unbounded (unlike the Bookmark Builder's
// heading traversal, which is bounded to depth ~6 and is left
// recursive).
func fallbackSweep(tree *model.StructureTree, opts Options) {
	stack := make([]*model.StructureElement, len(tree.K))
	copy(stack, tree.K)

	for len(stack) > 0 {
		se := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if se == nil {
			continue
		}

		switch structidx.ResolveRole(se.S, tree.RoleMap) {
		case "Figure":
			if se.Alt == "" {
				se.Alt = opts.ImageAltSentinel
			}
		case "Link":
			if opts.GenerateLinkAltText && se.Alt == "" {
				se.Alt = opts.LinkAltSentinel
			}
		}

		for i := len(se.K) - 1; i >= 0; i-- {
			if kidSE, ok := se.K[i].(*model.StructureElement); ok {
				stack = append(stack, kidSE)
			}
		}
	}
}
