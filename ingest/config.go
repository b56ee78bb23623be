// Package ingest implements the Ingest Orchestrator (spec.md §4.12): it
// owns a per-file working directory, drives the external autotagging
// and accessibility-checking services, chunks oversized documents,
// merges tagged chunks back together, and invokes the Remediation
// Engine and the Figure/Link alt-text pipelines in the fixed order
// spec.md §5 specifies.
package ingest

import "errors"

// ErrMalformedInput is returned when the input bytes cannot be parsed
// as a PDF at all (spec.md §7's "malformed input" kind).
var ErrMalformedInput = errors.New("ingest: malformed input PDF")

// ErrFatal wraps an error the orchestrator cannot recover from (e.g. it
// cannot create its working directory). Best-effort failures from the
// autotagger, checker, or individual remediation steps are logged and
// absorbed instead of surfacing as ErrFatal.
var ErrFatal = errors.New("ingest: fatal error")

// Config configures one Orchestrator.Run call. Zero value is not
// generally useful; start from DefaultConfig.
type Config struct {
	// MaxPagesPerChunk bounds how many pages are submitted to the
	// autotagger in one request; larger documents are split into
	// contiguous page-range chunks.
	MaxPagesPerChunk int

	// WorkDirRoot is the root directory the orchestrator creates a
	// per-file working directory under.
	WorkDirRoot string

	// UseAutotagging enables step 3 of spec.md §4.12. When false, the
	// source PDF is remediated as-is.
	UseAutotagging bool

	// AutotagAlreadyTaggedPDFs, when false (the default), skips
	// autotagging a PDF that already appears "meaningfully tagged" —
	// except a "trivially tagged" PDF (a StructTreeRoot with a single
	// Document-role kid and no further structure), which is always
	// re-tagged regardless of this setting.
	AutotagAlreadyTaggedPDFs bool

	// GenerateLinkAltText feature-gates the Link Alt Pipeline.
	GenerateLinkAltText bool

	// DemoteSmallTablesWithoutHeaders feature-gates the Layout-Table
	// Demotion remediator.
	DemoteSmallTablesWithoutHeaders bool

	// DefaultPrimaryLanguage and TitlePlaceholder are forwarded to
	// remediate.Options.
	DefaultPrimaryLanguage string
	TitlePlaceholder       string

	// ImageAltSentinel and LinkAltSentinel are forwarded to
	// figurealt.Options.
	ImageAltSentinel string
	LinkAltSentinel  string

	// RasterDPI is forwarded to figurealt.Options.
	RasterDPI int
}

// DefaultConfig returns spec.md §6's documented configuration defaults.
func DefaultConfig() Config {
	return Config{
		MaxPagesPerChunk:                200,
		WorkDirRoot:                     "/tmp",
		UseAutotagging:                  true,
		AutotagAlreadyTaggedPDFs:        false,
		GenerateLinkAltText:             false,
		DemoteSmallTablesWithoutHeaders: true,
		DefaultPrimaryLanguage:          "en-US",
		TitlePlaceholder:                "Untitled PDF document",
		ImageAltSentinel:                "alt text for image",
		LinkAltSentinel:                 "alt text for link",
		RasterDPI:                       216,
	}
}
