package remediate

import "github.com/benoitkugler/pdfremediate/model"

// TabOrderRemediate implements the Tab-Order Remediator (spec.md §4.3): it
// sets every page's /Tabs to /S. It is a no-op on untagged documents.
func TabOrderRemediate(doc *model.Document) {
	if doc.Catalog.StructTreeRoot == nil {
		return
	}
	for _, page := range doc.Catalog.Pages.Flatten() {
		if page.Tabs != "S" {
			page.Tabs = "S"
		}
	}
}
