package remediate

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/benoitkugler/pdfremediate/model"
)

// ErrNotTagged is returned by callers that require a tagged document (a
// non-nil StructTreeRoot) and receive one without it. Remediate itself
// never returns it: every step here is defined as a no-op on an untagged
// document, not a failure.
var ErrNotTagged = errors.New("remediate: document has no structure tree")

// StepLogger emits one line per remediation step: name, outcome, and
// duration. A zero StepLogger writes to the standard logger; tests may
// set Logger to one built around a bytes.Buffer to assert on output.
type StepLogger struct {
	Logger *log.Logger
	FileID string
}

func (l *StepLogger) logger() *log.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return log.Default()
}

// run executes fn, timing it, and logs step=name file=l.FileID
// duration=... outcome=(ok|failed: <err>). It never stops the caller: a
// non-nil error is logged and returned, never panicked on.
func (l *StepLogger) run(step string, fn func() error) error {
	start := time.Now()
	err := fn()
	outcome := "ok"
	if err != nil {
		outcome = fmt.Sprintf("failed: %s", err)
	}
	l.logger().Printf("step=%s file=%s duration=%s outcome=%s", step, l.FileID, time.Since(start), outcome)
	return err
}

// skippable runs fn and, on error, logs the step as skipped rather than
// failed - used for steps spec.md defines as "never fails the pipeline",
// e.g. Bookmark Builder's own "any failure ... leaves the document
// unchanged" rule.
func (l *StepLogger) skippable(step string, fn func() error) {
	start := time.Now()
	err := fn()
	outcome := "ok"
	if err != nil {
		outcome = fmt.Sprintf("skipped: %s", err)
	}
	l.logger().Printf("step=%s file=%s duration=%s outcome=%s", step, l.FileID, time.Since(start), outcome)
}

// Remediate runs every remediation step from spec.md §4 against doc, in
// the fixed order §4's component list defines: Title, Language,
// Tab-Order, Bookmarks, Layout-Table Demotion, Table-Summary, then
// Untagged-Annotation pruning. Each step is individually a no-op (not an
// error) when its preconditions are not met, so Remediate itself only
// returns an error if the Title generator backend fails outright; every
// other step's internal failure is logged and absorbed.
func Remediate(doc *model.Document, gen TitleGenerator, opts Options, logger *StepLogger) error {
	if logger == nil {
		logger = &StepLogger{}
	}
	if doc == nil {
		return fmt.Errorf("remediate: nil document")
	}

	cache := newEarlyTextCache(doc.Catalog.Pages.Flatten())

	titleErr := logger.run("title", func() error {
		return TitleRemediate(doc, cache, gen, opts)
	})

	logger.skippable("language", func() error {
		return LanguageRemediate(doc, cache, opts)
	})

	logger.skippable("tab-order", func() error {
		TabOrderRemediate(doc)
		return nil
	})

	logger.skippable("bookmarks", func() error {
		return BookmarkBuild(doc, opts)
	})

	if opts.DemoteLayoutTables {
		logger.skippable("layout-table-demotion", func() error {
			LayoutTableDemote(doc, opts)
			return nil
		})
	}

	logger.skippable("table-summary", func() error {
		TableSummaryRemediate(doc, opts)
		return nil
	})

	logger.skippable("untagged-annotations", func() error {
		UntaggedAnnotationRemediate(doc)
		return nil
	})

	if titleErr != nil {
		return fmt.Errorf("remediate: title step: %w", titleErr)
	}
	return nil
}
