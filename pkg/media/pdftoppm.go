package media

import (
	"bytes"
	"context"
	"detector/pkg/serrors"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Pdftoppm rasterizes PDFs by running the poppler pdftoppm tool.
type Pdftoppm struct {
	// Binary is the executable path; "pdftoppm" is looked up in PATH when empty.
	Binary string
	// DPI is the rendering resolution. Defaults to 150.
	DPI int
	// MaxPages limits how many leading pages are rendered. Defaults to 1.
	MaxPages int
}

var _ Rasterizer = (*Pdftoppm)(nil)

// Rasterize renders the first MaxPages pages of pdf as PNG images.
func (p *Pdftoppm) Rasterize(ctx context.Context, pdf []byte) ([]Image, error) {
	binary := p.Binary
	if binary == "" {
		binary = "pdftoppm"
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 150
	}
	maxPages := p.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	dir, err := os.MkdirTemp("", "detector-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("could not create temp dir: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(dir)
	}()

	in := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("could not write pdf: %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, //nolint: gosec
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", "1",
		"-l", strconv.Itoa(maxPages),
		in,
		filepath.Join(dir, "page"))
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, serrors.Wrap(serrors.ErrUnreadableInput, err,
				"the pdf could not be rendered: %s", strings.TrimSpace(stderr.String()))
		}

		return nil, fmt.Errorf("could not run %s: %w", binary, err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, fmt.Errorf("could not list rendered pages: %w", err)
	}
	// pdftoppm zero-pads page numbers to a common width, so lexical order is page order.
	sort.Strings(files)

	pages := make([]Image, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("could not read rendered page: %w", err)
		}
		pages = append(pages, Image{Data: b, MediaType: TypePNG})
	}

	return pages, nil
}
