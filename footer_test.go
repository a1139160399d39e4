package html2pdf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"
)

func readPDF(t *testing.T, pdf []byte) *model.Context {
	t.Helper()

	ctx, err := api.ReadContext(bytes.NewReader(pdf), pdfConfiguration())
	if err != nil {
		t.Fatalf("reading PDF: %v", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		t.Fatalf("counting pages: %v", err)
	}
	return ctx
}

func contentsOf(t *testing.T, ctx *model.Context, pageNr int) types.Array {
	t.Helper()

	d, _, _, err := ctx.PageDict(pageNr, false)
	if err != nil {
		t.Fatalf("PageDict(%d): %v", pageNr, err)
	}
	arr, err := pageContents(ctx, d)
	if err != nil {
		t.Fatalf("pageContents(%d): %v", pageNr, err)
	}
	return arr
}

func decodedStream(t *testing.T, ctx *model.Context, obj types.Object) string {
	t.Helper()

	sd, _, err := ctx.DereferenceStreamDict(obj)
	if err != nil || sd == nil {
		t.Fatalf("dereferencing stream: %v", err)
	}
	if err := sd.Decode(); err != nil {
		t.Fatalf("decoding stream: %v", err)
	}
	return string(sd.Content)
}

// ---------------------------------------------------------------------------
// maskFooters
// ---------------------------------------------------------------------------

func TestMaskFooters_AllIsUnchanged(t *testing.T) {
	t.Parallel()

	in := testPDF(t, 3)
	out := maskFooters(in, FooterAll, DefaultFooterBandMM, zap.NewNop())

	if !bytes.Equal(out, in) {
		t.Error("FooterAll modified the document")
	}
}

func TestMaskFooters_SinglePageIsByteIdentical(t *testing.T) {
	t.Parallel()

	in := testPDF(t, 1)
	all := maskFooters(in, FooterAll, DefaultFooterBandMM, zap.NewNop())
	first := maskFooters(in, FooterFirstPageOnly, DefaultFooterBandMM, zap.NewNop())

	if !bytes.Equal(first, all) {
		t.Error("FooterFirstPageOnly on a single page differs from FooterAll")
	}
}

func TestMaskFooters_MultiPage(t *testing.T) {
	t.Parallel()

	for _, pages := range []int{2, 3, 5} {
		in := testPDF(t, pages)
		out := maskFooters(in, FooterFirstPageOnly, DefaultFooterBandMM, zap.NewNop())

		if bytes.Equal(out, in) {
			t.Fatalf("%d pages: document was not modified", pages)
		}

		n, err := PageCount(out)
		if err != nil {
			t.Fatalf("%d pages: PageCount() error = %v", pages, err)
		}
		if n != pages {
			t.Errorf("%d pages: masked document has %d pages", pages, n)
		}

		ctx := readPDF(t, out)
		orig := readPDF(t, in)

		// First page keeps its original content streams.
		if got, want := len(contentsOf(t, ctx, 1)), len(contentsOf(t, orig, 1)); got != want {
			t.Errorf("%d pages: page 1 has %d content streams, want %d", pages, got, want)
		}

		for nr := 2; nr <= pages; nr++ {
			contents := contentsOf(t, ctx, nr)
			want := len(contentsOf(t, orig, nr)) + 2
			if len(contents) != want {
				t.Fatalf("%d pages: page %d has %d content streams, want %d", pages, nr, len(contents), want)
			}

			if got := decodedStream(t, ctx, contents[0]); strings.TrimSpace(got) != "q" {
				t.Errorf("page %d: opening stream = %q, want q", nr, got)
			}
			band := decodedStream(t, ctx, contents[len(contents)-1])
			for _, op := range []string{"Q\n", "1 1 1 rg", "0.00 0.00 595.28 42.52 re", "f\n"} {
				if !strings.Contains(band, op) {
					t.Errorf("page %d: band stream %q missing %q", nr, band, op)
				}
			}
		}
	}
}

func TestMaskFooters_BandHeight(t *testing.T) {
	t.Parallel()

	out := maskFooters(testPDF(t, 2), FooterFirstPageOnly, 10, zap.NewNop())
	ctx := readPDF(t, out)
	contents := contentsOf(t, ctx, 2)

	band := decodedStream(t, ctx, contents[len(contents)-1])
	if !strings.Contains(band, " 28.35 re") {
		t.Errorf("band stream %q, want a 10mm (28.35pt) rectangle", band)
	}
}

func TestMaskFooters_MalformedInputReturnsOriginal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []byte
	}{
		{"not a PDF", []byte("definitely not a pdf")},
		{"truncated PDF", testPDF(t, 3)[:200]},
		{"empty", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := maskFooters(tt.in, FooterFirstPageOnly, DefaultFooterBandMM, zap.NewNop())
			if !bytes.Equal(out, tt.in) {
				t.Error("malformed input was not returned unchanged")
			}
		})
	}
}

func TestOverlayFooterBand_ReportsPostProcessError(t *testing.T) {
	t.Parallel()

	_, _, err := overlayFooterBand([]byte("junk"), 42.52)
	if err == nil {
		t.Fatal("overlayFooterBand() error = nil, want error")
	}
	if !strings.Contains(err.Error(), ErrPostProcess.Error()) {
		t.Errorf("overlayFooterBand() error = %v, want ErrPostProcess", err)
	}
}

// ---------------------------------------------------------------------------
// PageCount
// ---------------------------------------------------------------------------

func TestPageCount(t *testing.T) {
	t.Parallel()

	for _, pages := range []int{1, 4} {
		n, err := PageCount(testPDF(t, pages))
		if err != nil {
			t.Fatalf("PageCount() error = %v", err)
		}
		if n != pages {
			t.Errorf("PageCount() = %d, want %d", n, pages)
		}
	}

	if _, err := PageCount([]byte("nope")); err == nil {
		t.Error("PageCount() on junk: error = nil, want error")
	}
}
