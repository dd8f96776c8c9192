package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/michaelalavelle/stagnesofassisi/bulletin"
	"github.com/michaelalavelle/stagnesofassisi/config"
	"github.com/michaelalavelle/stagnesofassisi/site"
)

func main() {
	if os.Getenv("DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var cfgPath string
	var outDir string
	var pdf bool
	flag.StringVar(&cfgPath, "config", config.DefaultPath(), "path to a TOML config")
	flag.StringVar(&outDir, "out", "", "output directory (overrides output_directory)")
	flag.BoolVar(&pdf, "pdf", false, "also print the bulletin to PDF")
	flag.Parse()

	// Read config and create if default is missing
	conf, err := config.Read(cfgPath)
	if errors.Is(err, os.ErrNotExist) && cfgPath == config.DefaultPath() {
		if err := config.Write(cfgPath, conf); err != nil {
			log.Fatalf("failed to write default config with %s", err)
		}
	} else if err != nil {
		log.Fatalf("failed to read config with %s", err)
	}
	if outDir == "" {
		outDir = conf.OutputDirectory
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	builder, err := site.NewBuilder(conf, nil)
	if err != nil {
		log.Fatalf("failed to initialize site builder with %s", err)
	}

	built, err := builder.Build(ctx, outDir)
	if errors.Is(err, context.Canceled) {
		slog.Info("interrupted by user, exiting gracefully")
		return
	}
	if err != nil {
		log.Fatalf("failed to build site with %s", err)
	}

	totalEntries := 0
	for _, s := range built.Sections {
		totalEntries += len(s.Entries)
	}
	slog.Info("site generated", "path", outDir, "sections", len(built.Sections), "entries", totalEntries)

	// Generate PDF bulletin
	if pdf || conf.Bulletin.Enabled {
		pdfPath := conf.Bulletin.Path
		if pdfPath == "" {
			pdfPath = "bulletin.pdf"
		}
		if !filepath.IsAbs(pdfPath) {
			pdfPath = filepath.Join(outDir, pdfPath)
		}
		if err := bulletin.Generate(ctx, filepath.Join(outDir, site.BulletinPage), pdfPath, conf.Bulletin); err != nil {
			slog.Error("failed to generate PDF", "error", err)
		}
	}
}
