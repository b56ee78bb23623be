package remediate

import "github.com/benoitkugler/pdfremediate/model"

// UntaggedAnnotationRemediate implements the Untagged-Annotation
// Remediator (spec.md §4.7): annotations with no StructParent, or one not
// present in the structure parent tree, are removed. It never inspects an
// annotation's visual content.
func UntaggedAnnotationRemediate(doc *model.Document) {
	tree := doc.Catalog.StructTreeRoot
	if tree == nil {
		return
	}
	hasKey := tree.ParentTree.LookupTable()

	for _, page := range doc.Catalog.Pages.Flatten() {
		kept := page.Annots[:0]
		for _, annot := range page.Annots {
			num, ok := annot.StructParent.(model.ObjInt)
			if !ok {
				continue
			}
			if _, present := hasKey[int(num)]; !present {
				continue
			}
			kept = append(kept, annot)
		}
		page.Annots = kept
	}
}
