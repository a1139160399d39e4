// Package html2pdf renders HTML documents to PDF using a pooled headless Chrome.
//
// # Quick Start
//
// Create a renderer, render HTML, and close when done:
//
//	r := html2pdf.New()
//	defer r.Close()
//
//	res, err := r.Render(ctx, html2pdf.Request{
//	    HTML: "<h1>Hello</h1>",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(res.Filename, res.PDF, 0644)
//
// # Rendering Pipeline
//
// Each Render call goes through these stages:
//
//  1. Validation (non-empty, valid UTF-8, size ceiling)
//  2. Engine acquisition from the EnginePool (launch, reuse or replace)
//  3. A fresh incognito session with one A4-sized page
//  4. Content load, bounded by the load timeout, then a short settle delay
//  5. PDF capture: A4, zero engine margins, backgrounds printed, CSS @page wins
//  6. Footer masking when FooterFirstPageOnly is requested
//
// The session is always torn down, whatever the outcome. The engine is not:
// it stays in the pool for the next request.
//
// # Engine Pool
//
// One browser serves every request. It is launched on first use and replaced
// when it crashes or has been idle longer than the idle timeout (5 minutes by
// default). Concurrent requests arriving while no engine exists share a single
// launch.
//
//	pool := html2pdf.NewEnginePool(
//	    html2pdf.LaunchRod(html2pdf.DefaultBrowserConfig(), logger),
//	    html2pdf.WithIdleTimeout(10*time.Minute),
//	)
//	defer pool.Close()
//
//	r := html2pdf.New(html2pdf.WithEnginePool(pool))
//
// # Footer Masking
//
// Documents often repeat a footer on every page through CSS. With
// FooterFirstPageOnly, a white band (15mm by default) is painted over the
// bottom of every page but the first. This is a visual overlay: text under
// the band is still present in the document and can be selected or extracted.
// Masking failures are logged and the unmasked document is returned.
//
// # Errors
//
// Errors wrap sentinel values and can be classified with KindOf:
//
//	res, err := r.Render(ctx, req)
//	switch html2pdf.KindOf(err) {
//	case html2pdf.KindValidation:
//	    // bad input
//	case html2pdf.KindLoadTimeout:
//	    // document took too long to load
//	}
package html2pdf
