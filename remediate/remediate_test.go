package remediate

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemediateRunsAllStepsAndLogsThem(t *testing.T) {
	words := strings.Repeat("word ", 150)
	page := newTextPage(t, tjContent(0, words))
	doc := newTaggedDoc(page)
	page.Tabs = "R"

	var buf bytes.Buffer
	logger := &StepLogger{Logger: log.New(&buf, "", 0), FileID: "doc-1"}

	err := Remediate(doc, fakeTitleGenerator{title: "Generated"}, DefaultOptions(), logger)

	require.NoError(t, err)
	assert.Equal(t, "Generated", doc.Trailer.Info.Title)
	assert.EqualValues(t, "S", page.Tabs)

	out := buf.String()
	for _, step := range []string{"title", "language", "tab-order", "bookmarks", "layout-table-demotion", "table-summary", "untagged-annotations"} {
		assert.Contains(t, out, "step="+step, "missing log line for step %q", step)
		assert.Contains(t, out, "file=doc-1")
	}
}

func TestRemediateNilDocumentErrors(t *testing.T) {
	err := Remediate(nil, fakeTitleGenerator{}, DefaultOptions(), nil)
	require.Error(t, err)
}

func TestRemediateSkipsLayoutDemotionWhenDisabled(t *testing.T) {
	doc := newTaggedDoc(newTextPage(t, ""))
	opts := DefaultOptions()
	opts.DemoteLayoutTables = false

	var buf bytes.Buffer
	logger := &StepLogger{Logger: log.New(&buf, "", 0)}

	err := Remediate(doc, fakeTitleGenerator{}, opts, logger)

	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "step=layout-table-demotion")
}

func TestRemediatePropagatesTitleGeneratorFailure(t *testing.T) {
	words := strings.Repeat("word ", 150)
	doc := newTaggedDoc(newTextPage(t, tjContent(0, words)))

	err := Remediate(doc, fakeTitleGenerator{err: assert.AnError}, DefaultOptions(), nil)

	require.Error(t, err)
	// the title step still set DisplayDocTitle although its generator failed.
	assert.True(t, doc.Catalog.ViewerPreferences.DisplayDocTitle)
}
