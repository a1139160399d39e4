package html2pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// A4 paper in inches, as Chrome expects.
const (
	a4WidthInches  = 210 / mmPerInch
	a4HeightInches = 297 / mmPerInch
	mmPerInch      = 25.4
)

// pipeline drives one session from HTML to PDF bytes.
type pipeline struct {
	loadTimeout time.Duration
	settleDelay time.Duration
}

// render loads html, lets deferred content settle, and captures the page.
// The settle delay is a heuristic for fonts and client-side rendering, not a
// readiness guarantee.
func (p *pipeline) render(ctx context.Context, sess Session, html string) ([]byte, error) {
	if err := sess.Load(ctx, html, p.loadTimeout); err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}

	if err := settle(ctx, p.settleDelay); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPageLoad, err)
	}

	pdf, err := sess.PrintPDF(ctx, buildPDFOptions())
	if err != nil {
		return nil, fmt.Errorf("capturing PDF: %w", err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrPDFGeneration)
	}
	return pdf, nil
}

// settle waits for d, or until ctx ends.
func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// buildPDFOptions returns A4 print settings with no engine margins.
// PreferCSSPageSize lets @page rules in the document win, so margins the
// author set there are kept as written.
func buildPDFOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:          floatPtr(a4WidthInches),
		PaperHeight:         floatPtr(a4HeightInches),
		MarginTop:           floatPtr(0),
		MarginBottom:        floatPtr(0),
		MarginLeft:          floatPtr(0),
		MarginRight:         floatPtr(0),
		PrintBackground:     true,
		PreferCSSPageSize:   true,
		DisplayHeaderFooter: false,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
