// This tool runs one PDF through the ingest pipeline: autotagging (if
// enabled), remediation, and figure/link alt-text generation, then
// writes the remediated PDF plus the before/after accessibility report
// JSON next to the input file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/pdfremediate/ingest"
	"github.com/benoitkugler/pdfremediate/services"
)

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func main() {
	var (
		workDir     = flag.String("work-dir", "", "working directory root (disables disk artifacts if empty)")
		maxPages    = flag.Int("max-pages-per-chunk", 200, "max pages submitted to the autotagger per request")
		useReal     = flag.Bool("use-real-services", false, "call real HTTP-backed services instead of the in-memory fakes")
		autotagURL  = flag.String("autotag-url", "", "base URL of the autotagging service (with -use-real-services)")
		checkURL    = flag.String("check-url", "", "base URL of the accessibility-checking service (with -use-real-services)")
		imageAltURL = flag.String("image-alt-url", "", "base URL of the image alt-text service (with -use-real-services)")
		linkAltURL  = flag.String("link-alt-url", "", "base URL of the link alt-text service (with -use-real-services)")
		titleURL    = flag.String("title-url", "", "base URL of the title-generation service (with -use-real-services)")
		rasterURL   = flag.String("raster-url", "", "base URL of the page rasterizer service (with -use-real-services)")
		genLinkAlt  = flag.Bool("generate-link-alt-text", false, "enable the Link Alt Pipeline")
		autotagOld  = flag.Bool("autotag-already-tagged", false, "re-run autotagging on PDFs that already appear meaningfully tagged")
	)
	flag.Parse()

	input := flag.Arg(0)
	if input == "" {
		fmt.Fprintln(os.Stderr, "usage: remediate-pdf [flags] <input.pdf>")
		os.Exit(2)
	}

	src, err := os.ReadFile(input)
	check(err)

	cfg := ingest.DefaultConfig()
	cfg.WorkDirRoot = *workDir
	cfg.MaxPagesPerChunk = *maxPages
	cfg.GenerateLinkAltText = *genLinkAlt
	cfg.AutotagAlreadyTaggedPDFs = *autotagOld

	o := &ingest.Orchestrator{Config: cfg}
	if *useReal {
		o.Autotagger = services.HTTPAutotagger{BaseURL: *autotagURL}
		o.Checker = services.HTTPChecker{BaseURL: *checkURL}
		o.ImageAltGen = services.HTTPImageAltTextGenerator{BaseURL: *imageAltURL}
		o.LinkAltGen = services.HTTPLinkAltTextGenerator{BaseURL: *linkAltURL}
		o.TitleGen = services.HTTPTitleGenerator{BaseURL: *titleURL}
		o.Rasterizer = services.HTTPRasterizer{BaseURL: *rasterURL}
	} else {
		o.Autotagger = services.FakeAutotagger{}
		o.Checker = services.FakeChecker{}
		o.ImageAltGen = services.FakeImageAltTextGenerator{}
		o.LinkAltGen = services.FakeLinkAltTextGenerator{}
		o.TitleGen = services.FakeTitleGenerator{}
		o.Rasterizer = services.FakeRasterizer{}
	}

	fileID := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	final, before, after, err := o.Run(context.Background(), src, fileID)
	check(err)

	outPath := strings.TrimSuffix(input, filepath.Ext(input)) + ".remediated.pdf"
	check(os.WriteFile(outPath, final, 0o644))

	if before != "" {
		check(os.WriteFile(outPath+".before.json", []byte(before), 0o644))
	}
	if after != "" {
		check(os.WriteFile(outPath+".after.json", []byte(after), 0o644))
	}

	fmt.Println("wrote", outPath)
}
