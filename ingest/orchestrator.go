package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/benoitkugler/pdfremediate/figurealt"
	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/reader"
	"github.com/benoitkugler/pdfremediate/remediate"
	"github.com/benoitkugler/pdfremediate/services"
)

// PhaseLogger emits one line per orchestrator phase: name, file id,
// duration, and outcome. A zero PhaseLogger writes to the standard
// logger.
type PhaseLogger struct {
	Logger *log.Logger
	FileID string
}

func (l *PhaseLogger) logger() *log.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return log.Default()
}

func (l *PhaseLogger) bestEffort(phase string, fn func() error) {
	start := time.Now()
	err := fn()
	outcome := "ok"
	if err != nil {
		outcome = fmt.Sprintf("skipped: %s", err)
	}
	l.logger().Printf("phase=%s file=%s duration=%s outcome=%s", phase, l.FileID, time.Since(start), outcome)
}

// Orchestrator drives one document through spec.md §4.12's pipeline.
// Every service field may be nil, in which case the corresponding step
// is skipped (equivalent to that feature being unavailable).
type Orchestrator struct {
	Config Config

	Autotagger  services.Autotagger
	Checker     services.Checker
	TitleGen    services.TitleGenerator
	ImageAltGen services.ImageAltTextGenerator
	LinkAltGen  services.LinkAltTextGenerator
	Rasterizer  services.Rasterizer

	Logger *log.Logger
}

// Run executes the full ingest pipeline against input, returning the
// remediated PDF bytes plus the Before/After accessibility report JSON
// (either may be empty if the Checker failed or is unset).
func (o *Orchestrator) Run(ctx context.Context, input []byte, fileID string) (finalPDF []byte, beforeReport, afterReport string, err error) {
	phases := &PhaseLogger{Logger: o.Logger, FileID: fileID}

	doc, _, parseErr := reader.ParsePDFReader(bytes.NewReader(input), reader.Options{})
	if parseErr != nil {
		return nil, "", "", fmt.Errorf("%w: %s", ErrMalformedInput, parseErr)
	}

	workDir, err := o.prepareWorkDir(fileID, input)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %s", ErrFatal, err)
	}

	phases.bestEffort("before-check", func() error {
		var err error
		beforeReport, err = o.check(ctx, input, workDir, "before.json")
		return err
	})

	effective := doc
	if o.Config.UseAutotagging && o.Autotagger != nil {
		if err := ctx.Err(); err != nil {
			return nil, beforeReport, "", err
		}
		phases.bestEffort("autotag", func() error {
			tagged, tagErr := o.autotag(ctx, &doc, input, workDir)
			if tagErr != nil {
				return tagErr
			}
			if tagged != nil {
				effective = *tagged
			}
			return nil
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, beforeReport, "", err
	}

	remediateOpts := remediate.DefaultOptions()
	remediateOpts.TitlePlaceholder = o.Config.TitlePlaceholder
	remediateOpts.DefaultPrimaryLanguage = o.Config.DefaultPrimaryLanguage
	remediateOpts.DemoteLayoutTables = o.Config.DemoteSmallTablesWithoutHeaders

	var titleAdapter remediate.TitleGenerator
	if o.TitleGen != nil {
		titleAdapter = titleGeneratorAdapter{ctx: ctx, gen: o.TitleGen}
	}

	stepLogger := &remediate.StepLogger{Logger: o.Logger, FileID: fileID}
	if err := remediate.Remediate(&effective, titleAdapter, remediateOpts, stepLogger); err != nil {
		o.logger().Printf("phase=remediate file=%s outcome=failed: %s", fileID, err)
	}

	var preAltBuf bytes.Buffer
	_ = effective.Write(&preAltBuf, nil)

	figurealtOpts := figurealt.DefaultOptions()
	figurealtOpts.GenerateLinkAltText = o.Config.GenerateLinkAltText
	figurealtOpts.ImageAltSentinel = o.Config.ImageAltSentinel
	figurealtOpts.LinkAltSentinel = o.Config.LinkAltSentinel
	figurealtOpts.RasterDPI = o.Config.RasterDPI

	if err := figurealt.Run(ctx, &effective, preAltBuf.Bytes(), o.ImageAltGen, o.LinkAltGen, o.Rasterizer, figurealtOpts); err != nil {
		if ctx.Err() != nil {
			return nil, beforeReport, "", err
		}
		o.logger().Printf("phase=figurealt file=%s outcome=failed: %s", fileID, err)
	}

	var finalBuf bytes.Buffer
	if err := effective.Write(&finalBuf, nil); err != nil {
		return nil, beforeReport, "", fmt.Errorf("%w: writing remediated output: %s", ErrFatal, err)
	}
	finalPDF = finalBuf.Bytes()

	if workDir != "" {
		_ = os.WriteFile(filepath.Join(workDir, "output.pdf"), finalPDF, 0o644)
	}

	phases.bestEffort("after-check", func() error {
		var err error
		afterReport, err = o.check(ctx, finalPDF, workDir, "after.json")
		return err
	})

	return finalPDF, beforeReport, afterReport, nil
}

func (o *Orchestrator) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

// prepareWorkDir creates and returns the per-file working directory
// under Config.WorkDirRoot and writes the source bytes into it, per
// spec.md §4.12 step 1. An empty WorkDirRoot disables disk I/O
// entirely (useful for tests).
func (o *Orchestrator) prepareWorkDir(fileID string, input []byte) (string, error) {
	if o.Config.WorkDirRoot == "" {
		return "", nil
	}
	dir := filepath.Join(o.Config.WorkDirRoot, sanitizeFileID(fileID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating work dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "source.pdf"), input, 0o644); err != nil {
		return "", fmt.Errorf("writing source: %w", err)
	}
	return dir, nil
}

func (o *Orchestrator) check(ctx context.Context, pdfBytes []byte, workDir, filename string) (string, error) {
	if o.Checker == nil {
		return "", nil
	}
	_, reportJSON, err := o.Checker.AccessibilityCheck(ctx, pdfBytes, nil)
	if err != nil {
		return "", err
	}
	if workDir != "" {
		_ = os.WriteFile(filepath.Join(workDir, filename), []byte(reportJSON), 0o644)
	}
	return reportJSON, nil
}

// autotag implements spec.md §4.12 step 3: whole-document submission
// when the page count fits in one chunk, else split/submit/merge.
// Returns nil (no change) when autotagging is skipped because the
// document already appears meaningfully tagged.
func (o *Orchestrator) autotag(ctx context.Context, doc *model.Document, sourceBytes []byte, workDir string) (*model.Document, error) {
	tree := doc.Catalog.StructTreeRoot
	trivial := isTriviallyTagged(tree)
	if !trivial && isMeaningfullyTagged(tree) && !o.Config.AutotagAlreadyTaggedPDFs {
		return nil, nil
	}

	pages := doc.Catalog.Pages.Flatten()
	maxPages := o.Config.MaxPagesPerChunk
	if maxPages <= 0 || len(pages) <= maxPages {
		tagged, _, err := o.Autotagger.AutotagPdf(ctx, sourceBytes)
		if err != nil {
			return nil, err
		}
		taggedDoc, _, err := reader.ParsePDFReader(bytes.NewReader(tagged), reader.Options{})
		if err != nil {
			return nil, fmt.Errorf("parsing tagged output: %w", err)
		}
		if workDir != "" {
			_ = os.WriteFile(filepath.Join(workDir, "tagged.pdf"), tagged, 0o644)
		}
		return &taggedDoc, nil
	}

	ranges := chunkRanges(len(pages), maxPages)
	chunkDocs := splitDocument(doc, ranges)
	taggedChunks := make([]model.Document, len(chunkDocs))
	for i, cd := range chunkDocs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := cd.Write(&buf, nil); err != nil {
			taggedChunks[i] = *cd
			continue
		}
		tagged, _, err := o.Autotagger.AutotagPdf(ctx, buf.Bytes())
		if err != nil {
			taggedChunks[i] = *cd // best-effort: keep this chunk untagged rather than abort
			continue
		}
		taggedDoc, _, err := reader.ParsePDFReader(bytes.NewReader(tagged), reader.Options{})
		if err != nil {
			taggedChunks[i] = *cd
			continue
		}
		if workDir != "" {
			_ = os.WriteFile(filepath.Join(workDir, fmt.Sprintf("chunk-%d.pdf", i)), tagged, 0o644)
		}
		taggedChunks[i] = taggedDoc
	}

	return mergeTaggedChunks(taggedChunks), nil
}

// titleGeneratorAdapter satisfies remediate.TitleGenerator by closing
// over a context.Context, bridging it to the ctx-ful
// services.TitleGenerator the Orchestrator is configured with.
type titleGeneratorAdapter struct {
	ctx context.Context
	gen services.TitleGenerator
}

func (a titleGeneratorAdapter) GenerateTitle(currentTitle, extractedText string) (string, error) {
	return a.gen.GenerateTitle(a.ctx, currentTitle, extractedText)
}
