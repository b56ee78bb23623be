package remediate

import (
	"strings"

	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/scan"
	"github.com/benoitkugler/pdfremediate/structidx"
)

// pageMCIDRef identifies a marked-content sequence referenced by a
// StructElem's kid, resolved to the page it lives on.
type pageMCIDRef struct {
	page *model.PageObject
	mcid int
}

// mcidInfo is the resolved text and bounding box of one MCID on a page,
// accumulated across every text run tagged with it.
type mcidInfo struct {
	text      string
	bounds    model.Rectangle
	hasBounds bool
}

// mcidTextCache scans a page's content stream at most once and caches the
// per-MCID text/bounds, shared across every StructElem (heading, table
// cell, ...) that needs to resolve MCID references on that page.
type mcidTextCache struct {
	pages map[*model.PageObject]map[int]*mcidInfo
}

func newMCIDTextCache() *mcidTextCache {
	return &mcidTextCache{pages: map[*model.PageObject]map[int]*mcidInfo{}}
}

func (c *mcidTextCache) infoFor(ref pageMCIDRef) *mcidInfo {
	infos, ok := c.pages[ref.page]
	if !ok {
		infos = scanPageMCIDs(ref.page)
		c.pages[ref.page] = infos
	}
	return infos[ref.mcid]
}

// scanPageMCIDs runs the Content-Stream Scanner over page and folds its
// text runs into a per-MCID accumulator. A scan failure yields a nil map,
// so callers simply see no resolved text for that page - matching
// spec.md's "any failure ... leaves the document unchanged" step policy.
func scanPageMCIDs(page *model.PageObject) map[int]*mcidInfo {
	ev, err := scan.Scan(page)
	if err != nil {
		return nil
	}
	out := map[int]*mcidInfo{}
	for _, tr := range ev.TextRuns {
		if tr.MCID < 0 {
			continue
		}
		info := out[tr.MCID]
		if info == nil {
			info = &mcidInfo{}
			out[tr.MCID] = info
		}
		if info.text == "" {
			info.text = tr.ActualOrRaw
		} else {
			info.text += " " + tr.ActualOrRaw
		}
		b := tr.Bounds()
		if info.hasBounds {
			info.bounds = unionRect(info.bounds, b)
		} else {
			info.bounds = b
			info.hasBounds = true
		}
	}
	return out
}

func unionRect(a, b model.Rectangle) model.Rectangle {
	return model.Rectangle{
		Llx: minFl(a.Llx, b.Llx),
		Lly: minFl(a.Lly, b.Lly),
		Urx: maxFl(a.Urx, b.Urx),
		Ury: maxFl(a.Ury, b.Ury),
	}
}

func minFl(a, b Fl) Fl {
	if a < b {
		return a
	}
	return b
}

func maxFl(a, b Fl) Fl {
	if a > b {
		return a
	}
	return b
}

// collectMCIDRefs walks se's subtree collecting every (page, MCID) pair
// reached through a marked-content reference, inheriting Pg from the
// nearest ancestor that sets it - the same traversal rule spec.md §4.8
// uses to build the Structure-Tree Index.
func collectMCIDRefs(se *model.StructureElement, inheritedPg *model.PageObject) []pageMCIDRef {
	pg := inheritedPg
	if se.Pg != nil {
		pg = se.Pg
	}
	var out []pageMCIDRef
	for _, kid := range se.K {
		switch k := kid.(type) {
		case *model.StructureElement:
			out = append(out, collectMCIDRefs(k, pg)...)
		case model.ContentItemMarkedReference:
			kidPg := pg
			if containerPg, ok := k.Container.(*model.PageObject); ok && containerPg != nil {
				kidPg = containerPg
			}
			if kidPg != nil {
				out = append(out, pageMCIDRef{page: kidPg, mcid: k.MCID})
			}
		}
	}
	return out
}

// resolveElementText concatenates the normalized, word-boundary-aware text
// of every MCID reached from se's subtree, along with the page they live
// on and the maximum top-Y among their bounding boxes.
func resolveElementText(se *model.StructureElement, inheritedPg *model.PageObject, cache *mcidTextCache) (text string, page *model.PageObject, topY Fl, hasTopY bool) {
	refs := collectMCIDRefs(se, inheritedPg)
	var parts []string
	for _, ref := range refs {
		info := cache.infoFor(ref)
		if info == nil {
			continue
		}
		if info.text != "" {
			parts = append(parts, info.text)
		}
		if info.hasBounds && (!hasTopY || info.bounds.Ury > topY) {
			topY = info.bounds.Ury
			hasTopY = true
		}
		if page == nil {
			page = ref.page
		}
	}
	return structidx.NormalizeWhitespace(strings.Join(parts, " ")), page, topY, hasTopY
}
