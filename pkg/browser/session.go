// Package browser implements the domscope driver contract on top of a real
// Chromium instance, driven over the Chrome DevTools Protocol via chromedp.
// It is the only package that knows how elements are actually found and
// poked; everything above it sees api/driver interfaces.
package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/domscope/api/driver"
	"github.com/xkilldash9x/domscope/pkg/config"
)

// Session is a single browser tab implementing driver.Session. It owns the
// exec allocator and tab contexts and must be closed to release the browser
// process. Not safe for concurrent use.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	cfg    config.BrowserConfig
}

var _ driver.Session = (*Session)(nil)

// NewSession launches (or connects to) a Chromium instance and opens one
// tab. The parent ctx bounds the whole session lifetime.
func NewSession(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight))
	}
	if cfg.IgnoreTLSErrors {
		opts = append(opts, chromedp.Flag("ignore-certificate-errors", true))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	cancel := func() {
		cancelTab()
		cancelAlloc()
	}

	// Start the browser and enable the DOM domain; cdproto commands are
	// issued directly from here on.
	if err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return dom.Enable().Do(ctx)
	})); err != nil {
		cancel()
		return nil, fmt.Errorf("starting browser session: %w", err)
	}

	sessionID := uuid.New().String()
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		id:     sessionID,
		ctx:    tabCtx,
		cancel: cancel,
		logger: logger.Named("browser").With(zap.String("session_id", sessionID)),
		cfg:    cfg,
	}
	s.logger.Debug("browser session started", zap.Bool("headless", cfg.Headless))
	return s, nil
}

// ID returns the session correlation id used in logs.
func (s *Session) ID() string { return s.id }

func (s *Session) String() string { return "page" }

// Navigate loads url and waits for the navigation to settle, bounded by the
// configured navigation timeout.
func (s *Session) Navigate(ctx context.Context, url string) error {
	opCtx, cancel := s.op(ctx)
	defer cancel()
	if s.cfg.NavigationTimeout > 0 {
		var cancelTimeout context.CancelFunc
		opCtx, cancelTimeout = context.WithTimeout(opCtx, s.cfg.NavigationTimeout)
		defer cancelTimeout()
	}
	s.logger.Debug("navigating", zap.String("url", url))
	if err := chromedp.Run(opCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// FindElement locates the first element matching by under the document root.
func (s *Session) FindElement(ctx context.Context, by driver.By) (driver.Handle, error) {
	execCtx, cancel := s.exec(ctx)
	defer cancel()
	root, err := s.documentRoot(execCtx)
	if err != nil {
		return nil, err
	}
	return findOne(execCtx, s, root, by)
}

// FindElements locates all elements matching by under the document root.
func (s *Session) FindElements(ctx context.Context, by driver.By) ([]driver.Handle, error) {
	execCtx, cancel := s.exec(ctx)
	defer cancel()
	root, err := s.documentRoot(execCtx)
	if err != nil {
		return nil, err
	}
	return findAll(execCtx, s, root, by)
}

// Close tears down the tab and the browser process.
func (s *Session) Close() error {
	s.logger.Debug("closing browser session")
	s.cancel()
	return nil
}

// documentRoot fetches the current document's root node id. Fetched fresh
// per find so navigations and full re-renders are picked up.
func (s *Session) documentRoot(execCtx context.Context) (cdp.NodeID, error) {
	doc, err := dom.GetDocument().Do(execCtx)
	if err != nil {
		return 0, classify(err)
	}
	return doc.NodeID, nil
}

// op derives an operation context from the session context that also ends
// when the caller's ctx does.
func (s *Session) op(ctx context.Context) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithCancel(s.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

// exec is op plus the cdproto executor, for issuing raw CDP commands.
func (s *Session) exec(ctx context.Context) (context.Context, context.CancelFunc) {
	opCtx, cancel := s.op(ctx)
	target := chromedp.FromContext(s.ctx).Target
	return cdp.WithExecutor(opCtx, target), cancel
}
