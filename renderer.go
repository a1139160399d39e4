package html2pdf

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Renderer turns HTML documents into PDF bytes using a shared browser engine.
// A Renderer is safe for concurrent use: every Render gets its own isolated
// session on the pooled engine.
type Renderer struct {
	cfg      rendererConfig
	pool     *EnginePool
	ownsPool bool
	logger   *zap.Logger
	pipeline *pipeline
}

// New creates a Renderer. Without WithEnginePool, the renderer owns a pool
// that launches Chrome through go-rod on first use; Close releases it.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		cfg: rendererConfig{
			maxHTMLBytes: DefaultMaxHTMLBytes,
			loadTimeout:  DefaultLoadTimeout,
			settleDelay:  DefaultSettleDelay,
			footerBandMM: DefaultFooterBandMM,
			browser:      DefaultBrowserConfig(),
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.pool == nil {
		r.pool = NewEnginePool(
			LaunchRod(r.cfg.browser, r.logger),
			WithPoolLogger(r.logger),
		)
		r.ownsPool = true
	}

	r.pipeline = &pipeline{
		loadTimeout: r.cfg.loadTimeout,
		settleDelay: r.cfg.settleDelay,
	}
	return r
}

// Render validates req, renders it to PDF and applies the footer mode.
// The context bounds this request only: cancelling it never interrupts a
// browser launch other requests are waiting on.
// Recovers from internal panics so a single bad document cannot crash the caller.
func (r *Renderer) Render(ctx context.Context, req Request) (res *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("render panicked", zap.Any("panic", rec))
			res, err = nil, fmt.Errorf("internal error: %v", rec)
		}
	}()

	if err := req.Validate(r.cfg.maxHTMLBytes); err != nil {
		return nil, err
	}

	start := time.Now()

	eng, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := eng.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	defer r.closeSession(sess)

	pdf, err := r.pipeline.render(ctx, sess, req.HTML)
	if err != nil {
		return nil, err
	}

	pdf = maskFooters(pdf, req.FooterDisplay, r.cfg.footerBandMM, r.logger)

	filename := req.Filename
	if filename == "" {
		filename = DefaultFilename
	}

	elapsed := time.Since(start)
	r.logger.Debug("document rendered",
		zap.Int("html_bytes", len(req.HTML)),
		zap.Int("pdf_bytes", len(pdf)),
		zap.Stringer("footer", req.FooterDisplay),
		zap.Duration("elapsed", elapsed),
	)

	return &Result{
		PDF:         pdf,
		Filename:    filename,
		ContentType: ContentTypePDF,
		Duration:    elapsed,
	}, nil
}

// closeSession tears a session down. Teardown failures never replace the
// render outcome.
func (r *Renderer) closeSession(sess Session) {
	if err := sess.Close(); err != nil {
		r.logger.Warn("closing render session", zap.Error(err))
	}
}

// EngineState reports the state of the underlying browser engine.
func (r *Renderer) EngineState() EngineState {
	return r.pool.State()
}

// Close releases the browser if this renderer owns its pool.
func (r *Renderer) Close() error {
	if r.ownsPool {
		r.pool.Close()
	}
	return nil
}
