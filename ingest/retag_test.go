package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTryShouldRetagTriggersOnFixedSetFailure(t *testing.T) {
	report := `{"Detailed Report": {"PageContent": [{"Rule":"Tagged content","Status":"Failed"}]}}`
	should, triggers := TryShouldRetag(report)
	assert.True(t, should)
	assert.Equal(t, []string{"PageContent: TaggedContent"}, triggers)
}

func TestTryShouldRetagIgnoresTabOrderAlone(t *testing.T) {
	report := `{"Detailed Report": {"PageContent": [{"Rule":"Tab order","Status":"Failed"}]}}`
	should, triggers := TryShouldRetag(report)
	assert.False(t, should)
	assert.Empty(t, triggers)
}

func TestTryShouldRetagCaseAndWhitespaceInsensitive(t *testing.T) {
	report := `{"Detailed Report": {"document": [{"Rule":"  tagged PDF ","Status":"failed"}]}}`
	should, _ := TryShouldRetag(report)
	assert.True(t, should)
}

func TestTryShouldRetagFalseOnMalformedJSON(t *testing.T) {
	should, triggers := TryShouldRetag("not json")
	assert.False(t, should)
	assert.Empty(t, triggers)
}

func TestTryShouldRetagOrderIndependent(t *testing.T) {
	a := `{"Detailed Report": {"PageContent": [{"Rule":"Tagged content","Status":"Failed"},{"Rule":"Tab order","Status":"Failed"}]}}`
	b := `{"Detailed Report": {"PageContent": [{"Rule":"Tab order","Status":"Failed"},{"Rule":"Tagged content","Status":"Failed"}]}}`
	should1, t1 := TryShouldRetag(a)
	should2, t2 := TryShouldRetag(b)
	assert.Equal(t, should1, should2)
	assert.Equal(t, t1, t2)
}
