package ingest

import (
	"regexp"

	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/structidx"
)

// pageRange is a contiguous, inclusive 0-based page range.
type pageRange struct {
	first, last int
}

// chunkRanges splits [0, pageCount) into contiguous ranges of at most
// maxPages pages each, the last possibly smaller, in document order.
func chunkRanges(pageCount, maxPages int) []pageRange {
	if maxPages <= 0 {
		maxPages = pageCount
	}
	var ranges []pageRange
	for start := 0; start < pageCount; start += maxPages {
		end := start + maxPages
		if end > pageCount {
			end = pageCount
		}
		ranges = append(ranges, pageRange{first: start, last: end - 1})
	}
	return ranges
}

var invalidFileIDChar = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// sanitizeFileID replaces every character unsafe for a path component
// with '_', per spec.md §4.12 step 1.
func sanitizeFileID(id string) string {
	if id == "" {
		return "_"
	}
	return invalidFileIDChar.ReplaceAllString(id, "_")
}

// isTriviallyTagged reports whether tree is a StructTreeRoot with a
// single Document-role kid and no further structure: the shape spec.md
// §4.12 says is always re-tagged regardless of AutotagAlreadyTaggedPDFs.
func isTriviallyTagged(tree *model.StructureTree) bool {
	if tree == nil || len(tree.K) != 1 {
		return false
	}
	root := tree.K[0]
	if structidx.ResolveRole(root.S, tree.RoleMap) != "Document" {
		return false
	}
	for _, kid := range root.K {
		if _, ok := kid.(*model.StructureElement); ok {
			return false
		}
	}
	return true
}

// isMeaningfullyTagged reports whether doc already has a usable
// structure tree: non-nil and not merely the trivially-tagged shape.
func isMeaningfullyTagged(tree *model.StructureTree) bool {
	return tree != nil && !isTriviallyTagged(tree)
}

// splitDocument returns one *model.Document per range in ranges, each
// containing doc's pages in [first, last] (0-based, inclusive), sharing
// the original PageObject values (autotagging submits page content, not
// identity, so this is safe: each chunk is serialized independently by
// Document.Write before being handed to the autotagger).
func splitDocument(doc *model.Document, ranges []pageRange) []*model.Document {
	pages := doc.Catalog.Pages.Flatten()
	chunks := make([]*model.Document, len(ranges))
	for i, r := range ranges {
		var chunk model.Document
		chunk.Trailer = doc.Trailer
		kids := make([]model.PageNode, 0, r.last-r.first+1)
		for _, pg := range pages[r.first : r.last+1] {
			kids = append(kids, pg)
		}
		chunk.Catalog.Pages.Kids = kids
		chunks[i] = &chunk
	}
	return chunks
}

// mergeTaggedChunks concatenates each tagged chunk's own pages and
// structure-tree children, in input order, into one document. Each
// chunk keeps its own independently-parsed PageObjects and
// StructureElements (they are never mixed across chunks), so the
// resulting tree's Pg pointers stay internally consistent.
func mergeTaggedChunks(chunks []model.Document) *model.Document {
	var merged model.Document
	var structKids []*model.StructureElement
	roleMap := map[model.Name]model.Name{}
	classMap := map[model.Name][]model.AttributeObject{}
	tagged := false

	for _, c := range chunks {
		merged.Catalog.Pages.Kids = append(merged.Catalog.Pages.Kids, c.Catalog.Pages.Kids...)
		if c.Catalog.StructTreeRoot != nil {
			tagged = true
			structKids = append(structKids, c.Catalog.StructTreeRoot.K...)
			for k, v := range c.Catalog.StructTreeRoot.RoleMap {
				roleMap[k] = v
			}
			for k, v := range c.Catalog.StructTreeRoot.ClassMap {
				classMap[k] = append(classMap[k], v...)
			}
		}
		if c.Catalog.MarkInfo != nil && c.Catalog.MarkInfo.Marked {
			merged.Catalog.MarkInfo = c.Catalog.MarkInfo
		}
		if merged.Catalog.Lang == "" {
			merged.Catalog.Lang = c.Catalog.Lang
		}
	}

	if tagged {
		merged.Catalog.StructTreeRoot = &model.StructureTree{K: structKids, RoleMap: roleMap, ClassMap: classMap}
		// Each chunk's ParentTree numbers its own StructParent keys from
		// zero, so concatenating chunks invalidates them; rebuild the
		// whole tree's ParentTree/IDTree over the merged kids instead of
		// carrying any chunk's stale one forward.
		merged.Catalog.StructTreeRoot.BuildParentTree()
		merged.Catalog.StructTreeRoot.BuildIDTree()
	}
	return &merged
}
