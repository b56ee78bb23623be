package remediate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageRemediateKeepsExisting(t *testing.T) {
	doc := newTaggedDoc(newTextPage(t, ""))
	doc.Catalog.Lang = "fr-FR"

	err := LanguageRemediate(doc, newEarlyTextCache(doc.Catalog.Pages.Flatten()), DefaultOptions())

	require.NoError(t, err)
	assert.Equal(t, "fr-FR", doc.Catalog.Lang)
}

func TestLanguageRemediateDefaultsWhenNoText(t *testing.T) {
	doc := newTaggedDoc(newTextPage(t, ""))
	opts := DefaultOptions()

	err := LanguageRemediate(doc, newEarlyTextCache(doc.Catalog.Pages.Flatten()), opts)

	require.NoError(t, err)
	assert.Equal(t, opts.DefaultPrimaryLanguage, doc.Catalog.Lang)
}

func TestLanguageRemediateDetectsEnglish(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog and runs away fast ", 3)
	doc := newTaggedDoc(newTextPage(t, tjContent(0, text)))
	opts := DefaultOptions()

	err := LanguageRemediate(doc, newEarlyTextCache(doc.Catalog.Pages.Flatten()), opts)

	require.NoError(t, err)
	assert.NotEmpty(t, doc.Catalog.Lang)
}
