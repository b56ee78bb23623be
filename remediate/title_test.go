package remediate

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/pdfremediate/model"
)

type fakeTitleGenerator struct {
	title string
	err   error
}

func (f fakeTitleGenerator) GenerateTitle(currentTitle, extractedText string) (string, error) {
	return f.title, f.err
}

func newTextPage(t *testing.T, content string) *model.PageObject {
	t.Helper()
	res := model.NewResourcesDict()
	return &model.PageObject{
		Resources: &res,
		Contents:  model.Contents{{Stream: model.Stream{Content: []byte(content)}}},
	}
}

func tjContent(mcid int, text string) string {
	n := strconv.Itoa(mcid)
	return "/P" + n + " <</MCID " + n + ">> BDC\nBT\n/F1 12 Tf\n100 700 Td\n(" + text + ") Tj\nET\nEMC\n"
}

func TestTitleRemediateKeepsExisting(t *testing.T) {
	doc := newTaggedDoc(newTextPage(t, ""))
	doc.Trailer.Info.Title = "Existing Title"

	err := TitleRemediate(doc, newEarlyTextCache(doc.Catalog.Pages.Flatten()), fakeTitleGenerator{}, DefaultOptions())

	require.NoError(t, err)
	assert.Equal(t, "Existing Title", doc.Trailer.Info.Title)
	assert.True(t, doc.Catalog.ViewerPreferences.DisplayDocTitle)
}

func TestTitleRemediatePlaceholderWhenSparse(t *testing.T) {
	doc := newTaggedDoc(newTextPage(t, tjContent(0, "Just a few words")))
	opts := DefaultOptions()

	err := TitleRemediate(doc, newEarlyTextCache(doc.Catalog.Pages.Flatten()), fakeTitleGenerator{}, opts)

	require.NoError(t, err)
	assert.Equal(t, opts.TitlePlaceholder, doc.Trailer.Info.Title)
}

func TestTitleRemediateGeneratesFromText(t *testing.T) {
	words := strings.Repeat("word ", 150)
	doc := newTaggedDoc(newTextPage(t, tjContent(0, words)))
	opts := DefaultOptions()

	err := TitleRemediate(doc, newEarlyTextCache(doc.Catalog.Pages.Flatten()), fakeTitleGenerator{title: "A Generated Title"}, opts)

	require.NoError(t, err)
	assert.Equal(t, "A Generated Title", doc.Trailer.Info.Title)
}

func TestTitleRemediatePropagatesGeneratorError(t *testing.T) {
	words := strings.Repeat("word ", 150)
	doc := newTaggedDoc(newTextPage(t, tjContent(0, words)))
	opts := DefaultOptions()
	wantErr := errors.New("backend unavailable")

	err := TitleRemediate(doc, newEarlyTextCache(doc.Catalog.Pages.Flatten()), fakeTitleGenerator{title: "", err: wantErr}, opts)

	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, opts.TitlePlaceholder, doc.Trailer.Info.Title)
}
