package html2pdf

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"
)

// PDF user space units.
const pointsPerMM = 72 / mmPerInch

// A4 in points, used when a page carries no media box.
var a4MediaBox = types.NewRectangle(0, 0, 595.28, 841.89)

var disableConfigDir sync.Once

// pdfConfiguration returns a fresh pdfcpu configuration that never touches
// the user config directory.
func pdfConfiguration() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount returns the number of pages in pdf.
func PageCount(pdf []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(pdf), pdfConfiguration())
	if err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	return n, nil
}

// maskFooters hides the footer band on every page after the first when mode
// is FooterFirstPageOnly. The overlay is visual only: footer text stays in
// the text layer. Any failure is logged and the input returned unchanged.
func maskFooters(pdf []byte, mode FooterDisplay, bandMM float64, logger *zap.Logger) []byte {
	if mode != FooterFirstPageOnly {
		return pdf
	}

	masked, pages, err := overlayFooterBand(pdf, bandMM*pointsPerMM)
	if err != nil {
		logger.Warn("footer masking failed, returning unmasked document", zap.Error(err))
		return pdf
	}
	if pages > 1 {
		logger.Debug("footer masked", zap.Int("pages", pages), zap.Int("masked", pages-1))
	}
	return masked
}

// overlayFooterBand paints an opaque white band of the given height (in
// points) across the bottom of pages 2..N and re-serializes the document.
// Documents with a single page come back as the same slice.
func overlayFooterBand(pdf []byte, band float64) (out []byte, pages int, err error) {
	defer func() {
		// pdfcpu may panic on hostile input; the mask must never take a request down.
		if r := recover(); r != nil {
			out, pages, err = nil, 0, fmt.Errorf("%w: %v", ErrPostProcess, r)
		}
	}()

	ctx, err := api.ReadContext(bytes.NewReader(pdf), pdfConfiguration())
	if err != nil {
		return nil, 0, fmt.Errorf("%w: parsing: %v", ErrPostProcess, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, 0, fmt.Errorf("%w: validating: %v", ErrPostProcess, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, 0, fmt.Errorf("%w: counting pages: %v", ErrPostProcess, err)
	}

	pages = ctx.PageCount
	if pages <= 1 {
		return pdf, pages, nil
	}

	// pdfcpu numbers pages from 1; page 1 keeps its footer.
	for nr := 2; nr <= pages; nr++ {
		if err := coverPageFooter(ctx, nr, band); err != nil {
			return nil, pages, fmt.Errorf("%w: page %d: %v", ErrPostProcess, nr, err)
		}
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, pages, fmt.Errorf("%w: writing: %v", ErrPostProcess, err)
	}
	return buf.Bytes(), pages, nil
}

// coverPageFooter wraps the page content in q/Q so its graphics state cannot
// leak, then appends a stream filling the footer band in white.
func coverPageFooter(ctx *model.Context, pageNr int, band float64) error {
	d, _, inh, err := ctx.PageDict(pageNr, false)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("missing page dictionary")
	}

	box := a4MediaBox
	if inh != nil && inh.MediaBox != nil {
		box = inh.MediaBox
	}

	open, err := newContentStream(ctx, "q\n")
	if err != nil {
		return err
	}
	draw, err := newContentStream(ctx, fmt.Sprintf(
		"Q\nq\n1 1 1 rg\n%.2f %.2f %.2f %.2f re\nf\nQ\n",
		box.LL.X, box.LL.Y, box.Width(), band,
	))
	if err != nil {
		return err
	}

	existing, err := pageContents(ctx, d)
	if err != nil {
		return err
	}

	contents := make(types.Array, 0, len(existing)+2)
	contents = append(contents, *open)
	contents = append(contents, existing...)
	contents = append(contents, *draw)
	d.Update("Contents", contents)
	return nil
}

// pageContents returns the page's content streams as a flat list of
// references. Contents may be a single stream, an array, or a reference to
// an array.
func pageContents(ctx *model.Context, d types.Dict) (types.Array, error) {
	obj, found := d.Find("Contents")
	if !found || obj == nil {
		return nil, nil
	}

	if ref, ok := obj.(types.IndirectRef); ok {
		target, err := ctx.Dereference(ref)
		if err != nil {
			return nil, err
		}
		if arr, ok := target.(types.Array); ok {
			return arr, nil
		}
		return types.Array{ref}, nil
	}

	if arr, ok := obj.(types.Array); ok {
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected Contents type %T", obj)
}

// newContentStream registers a flate-encoded stream holding ops.
func newContentStream(ctx *model.Context, ops string) (*types.IndirectRef, error) {
	sd, err := ctx.NewStreamDictForBuf([]byte(ops))
	if err != nil {
		return nil, err
	}
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return ctx.IndRefForNewObject(*sd)
}
