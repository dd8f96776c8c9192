package bulletin

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/playwright-community/playwright-go"

	"github.com/michaelalavelle/stagnesofassisi/config"
)

// B5 paper size: 176mm x 250mm
const (
	defaultWidth  = "176mm"
	defaultHeight = "250mm"
	defaultMargin = "15mm"
)

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// Options returns the PDF settings for the bulletin written to pdfPath
func Options(pdfPath string, page config.BulletinConfig) playwright.PagePdfOptions {
	margin := orDefault(page.Margin, defaultMargin)
	return playwright.PagePdfOptions{
		Path:            playwright.String(pdfPath),
		Width:           playwright.String(orDefault(page.Width, defaultWidth)),
		Height:          playwright.String(orDefault(page.Height, defaultHeight)),
		PrintBackground: playwright.Bool(true),
		Margin: &playwright.Margin{
			Top:    playwright.String(margin),
			Right:  playwright.String(margin),
			Bottom: playwright.String(margin),
			Left:   playwright.String(margin),
		},
	}
}

// Generate prints the rendered bulletin page at htmlPath to pdfPath with headless Chromium.
// The page is printed with print media styles once its images and fonts have loaded.
func Generate(ctx context.Context, htmlPath, pdfPath string, page config.BulletinConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	absPath, err := filepath.Abs(htmlPath)
	if err != nil {
		return fmt.Errorf("could not resolve bulletin page '%s' with %w", htmlPath, err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return fmt.Errorf("bulletin page is missing with %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(pdfPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for '%s' with %w", pdfPath, err)
	}

	// Chromium is downloaded on first use only
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		return fmt.Errorf("could not install chromium with %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("could not start playwright with %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch()
	if err != nil {
		return fmt.Errorf("could not launch chromium with %w", err)
	}
	defer browser.Close()

	tab, err := browser.NewPage()
	if err != nil {
		return fmt.Errorf("could not open bulletin tab with %w", err)
	}
	defer tab.Close()

	fileURL := "file://" + filepath.ToSlash(absPath)
	if _, err := tab.Goto(fileURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return fmt.Errorf("could not load bulletin page with %w", err)
	}
	if err := tab.EmulateMedia(playwright.PageEmulateMediaOptions{Media: playwright.MediaPrint}); err != nil {
		return fmt.Errorf("could not switch to print media with %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := tab.PDF(Options(pdfPath, page)); err != nil {
		return fmt.Errorf("could not print bulletin with %w", err)
	}

	slog.Info("bulletin PDF generated", "path", pdfPath, "width", orDefault(page.Width, defaultWidth), "height", orDefault(page.Height, defaultHeight))
	return nil
}
