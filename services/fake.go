package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/reader"
)

// FakeAutotagger is a deterministic, in-memory Autotagger: it parses the
// input, marks it as tagged, and - if it has no structure tree at all -
// builds the smallest possible one (a Document root StructElem with one
// paragraph-role child per page, each referencing that page's first
// marked-content sequence). It never calls out to a real vendor.
type FakeAutotagger struct{}

func (FakeAutotagger) AutotagPdf(_ context.Context, input []byte) ([]byte, []byte, error) {
	doc, _, err := reader.ParsePDFReader(bytes.NewReader(input), reader.Options{})
	if err != nil {
		return nil, nil, fmt.Errorf("fake autotag: %w", err)
	}

	doc.Catalog.MarkInfo = &model.MarkDict{Marked: true}
	if doc.Catalog.StructTreeRoot == nil {
		doc.Catalog.StructTreeRoot = buildMinimalStructTree(&doc)
	}

	var out bytes.Buffer
	if err := doc.Write(&out, nil); err != nil {
		return nil, nil, fmt.Errorf("fake autotag: writing tagged output: %w", err)
	}

	report, _ := json.Marshal(map[string]interface{}{"tagger": "fake", "pages": len(doc.Catalog.Pages.Flatten())})
	return out.Bytes(), report, nil
}

func buildMinimalStructTree(doc *model.Document) *model.StructureTree {
	pages := doc.Catalog.Pages.Flatten()
	root := &model.StructureElement{S: "Document"}
	for _, pg := range pages {
		root.K = append(root.K, &model.StructureElement{
			S:  "P",
			Pg: pg,
			K:  []model.ContentItem{model.ContentItemMarkedReference{MCID: 0, Container: pg}},
		})
	}
	return &model.StructureTree{K: []*model.StructureElement{root}}
}

// FakeChecker is a deterministic Checker returning a report with an
// empty Detailed Report (i.e. nothing failed) and a Summary reflecting
// the input's page count. Tests that want specific Failed rules build
// their own report JSON directly rather than going through this fake.
type FakeChecker struct{}

func (FakeChecker) AccessibilityCheck(_ context.Context, input []byte, _ *PageRange) ([]byte, string, error) {
	doc, _, err := reader.ParsePDFReader(bytes.NewReader(input), reader.Options{})
	pageCount := 0
	if err == nil {
		pageCount = len(doc.Catalog.Pages.Flatten())
	}
	report := map[string]interface{}{
		"Detailed Report": map[string]interface{}{},
		"Summary":         map[string]interface{}{"pageCount": pageCount},
	}
	b, _ := json.Marshal(report)
	return input, string(b), nil
}

// FakeImageAltTextGenerator synthesizes alt text from the image's MIME
// type and byte length - distinct from the "missing" sentinel so a
// second remediation pass treats it as already resolved.
type FakeImageAltTextGenerator struct{}

func (FakeImageAltTextGenerator) GenerateAltTextForImage(_ context.Context, imageBytes []byte, mime, _, _ string) (string, error) {
	return fmt.Sprintf("Generated description of a %s image (%d bytes)", mime, len(imageBytes)), nil
}

// FakeLinkAltTextGenerator synthesizes alt text from the link's visible
// text and target.
type FakeLinkAltTextGenerator struct{}

func (FakeLinkAltTextGenerator) GenerateAltTextForLink(_ context.Context, target *string, linkText, _, _ string) (string, error) {
	if linkText != "" {
		return "Link to " + linkText, nil
	}
	if target != nil && *target != "" {
		return "Link to " + *target, nil
	}
	return "Link", nil
}

// FakeTitleGenerator synthesizes a title from the first handful of
// words of the extracted text.
type FakeTitleGenerator struct{}

func (FakeTitleGenerator) GenerateTitle(_ context.Context, _, extractedText string) (string, error) {
	fields := strings.Fields(extractedText)
	if len(fields) == 0 {
		return "", nil
	}
	n := 8
	if len(fields) < n {
		n = len(fields)
	}
	return strings.Join(fields[:n], " "), nil
}

// FakeRasterizer rasterizes pages as blank white bitmaps sized from each
// page's MediaBox at the requested DPI - enough to drive the
// vector-figure crop geometry in tests without a real rendering engine.
type FakeRasterizer struct{}

func (FakeRasterizer) RasterizeDocument(_ context.Context, input []byte, dpi int) (RasterHandle, error) {
	doc, _, err := reader.ParsePDFReader(bytes.NewReader(input), reader.Options{})
	if err != nil {
		return nil, fmt.Errorf("fake rasterize: %w", err)
	}
	return &fakeRasterHandle{pages: doc.Catalog.Pages.Flatten(), dpi: dpi}, nil
}

type fakeRasterHandle struct {
	pages []*model.PageObject
	dpi   int
}

func (h *fakeRasterHandle) RenderPage(_ context.Context, pageNum int) (Bitmap, error) {
	if pageNum < 0 || pageNum >= len(h.pages) {
		return Bitmap{}, fmt.Errorf("fake rasterize: page %d out of range", pageNum)
	}
	pg := h.pages[pageNum]
	box := model.Rectangle{Urx: 612, Ury: 792} // US Letter default, matches model's MediaBox fallback
	if pg.MediaBox != nil {
		box = *pg.MediaBox
	}
	w := pointsToPixels(box.Width(), h.dpi)
	hgt := pointsToPixels(box.Height(), h.dpi)
	return Bitmap{W: w, H: hgt, BGRA32: make([]byte, w*hgt*4)}, nil
}

func (h *fakeRasterHandle) Close() error { return nil }

func pointsToPixels(points model.Fl, dpi int) int {
	return int(points/72*model.Fl(dpi) + 0.5)
}
