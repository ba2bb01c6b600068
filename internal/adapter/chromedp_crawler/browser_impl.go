package chromedp_crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/user/playlist-scraper/internal/proxy"
	"github.com/user/playlist-scraper/internal/repository"
	"go.uber.org/zap"
)

// Options configures the browser processes started by ChromedpBrowser.
type Options struct {
	Headless          bool
	NavigationTimeout time.Duration
}

type browserProcess struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// ChromedpBrowser renders pages in headless Chrome. One browser process is
// started per proxy and each opened page lives in its own tab.
type ChromedpBrowser struct {
	proxies *proxy.Manager
	opts    Options
	logger  *zap.Logger

	mu        sync.Mutex
	processes map[string]*browserProcess
}

// NewChromedpBrowser creates a new browser implementation using chromedp.
func NewChromedpBrowser(proxies *proxy.Manager, opts Options, logger *zap.Logger) *ChromedpBrowser {
	return &ChromedpBrowser{
		proxies:   proxies,
		opts:      opts,
		logger:    logger,
		processes: make(map[string]*browserProcess),
	}
}

func (b *ChromedpBrowser) allocatorOptions(proxyURL string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if proxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(proxyURL))
	}
	return opts
}

// process returns the browser bound to proxyURL, starting it on first use.
func (b *ChromedpBrowser) process(proxyURL string) (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := b.processes[proxyURL]; ok {
		return p.ctx, nil
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), b.allocatorOptions(proxyURL)...)
	sugar := b.logger.Sugar()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Errorf),
	)
	// The first Run starts the browser; tabs opened later do not own it.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	b.processes[proxyURL] = &browserProcess{
		ctx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
	}
	b.logger.Info("Browser started", zap.Bool("proxied", proxyURL != ""))
	return browserCtx, nil
}

// Open navigates a new tab to url.
func (b *ChromedpBrowser) Open(ctx context.Context, url string) (repository.Page, error) {
	browserCtx, err := b.process(b.proxies.GetProxy())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrNavigationFailed, err)
	}

	tabCtx, cancel := chromedp.NewContext(browserCtx)
	p := &chromedpPage{tabCtx: tabCtx, cancel: cancel}

	// The first Run creates the target and ties its event loop to the ctx it
	// is given, so it runs on tabCtx itself and never on a deadline.
	stop := context.AfterFunc(ctx, cancel)
	err = chromedp.Run(tabCtx)
	stop()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: failed to open tab: %w", repository.ErrNavigationFailed, err)
	}

	actions := []chromedp.Action{}
	if ua := b.proxies.GetUserAgent(); ua != "" {
		actions = append(actions, emulation.SetUserAgentOverride(ua))
	}
	actions = append(actions, chromedp.Navigate(url))

	if err := p.run(ctx, b.opts.NavigationTimeout, actions...); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %s: %w", repository.ErrNavigationFailed, url, err)
	}
	return p, nil
}

// Close shuts down every browser process.
func (b *ChromedpBrowser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, p := range b.processes {
		p.cancel()
		delete(b.processes, key)
	}
}

type chromedpPage struct {
	tabCtx context.Context
	cancel context.CancelFunc
}

// run executes actions in the tab, bounded by timeout and by the caller's ctx.
func (p *chromedpPage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(p.tabCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(p.tabCtx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *chromedpPage) URL(ctx context.Context) (string, error) {
	var location string
	if err := p.run(ctx, 0, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("failed to read page location: %w", err)
	}
	return location, nil
}

func (p *chromedpPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	err := p.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
	return classifyWaitError(ctx, selector, err)
}

func (p *chromedpPage) Content(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, 0, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

func (p *chromedpPage) ClickAndWaitForNavigation(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	navigated := make(chan struct{}, 1)
	listenCtx, stopListening := context.WithCancel(p.tabCtx)
	defer stopListening()

	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		if isNavigationSettled(ev) {
			select {
			case navigated <- struct{}{}:
			default:
			}
		}
	})

	if err := p.run(ctx, timeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return "", fmt.Errorf("failed to click %s: %w", selector, classifyWaitError(ctx, selector, err))
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-navigated:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", fmt.Errorf("%w: no navigation after clicking %s", repository.ErrPageLoadTimeout, selector)
	}

	return p.URL(ctx)
}

func (p *chromedpPage) Close() error {
	p.cancel()
	return nil
}

// isNavigationSettled reports whether ev signals that the main frame moved to a
// new document or a new history entry.
func isNavigationSettled(ev interface{}) bool {
	switch e := ev.(type) {
	case *page.EventFrameNavigated:
		return e.Frame != nil && e.Frame.ParentID == ""
	case *page.EventNavigatedWithinDocument:
		return true
	}
	return false
}

// classifyWaitError maps a timeout of the action itself to ErrPageLoadTimeout.
// Cancellation of the caller's ctx is passed through unchanged.
func classifyWaitError(ctx context.Context, selector string, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: waiting for %s", repository.ErrPageLoadTimeout, selector)
	}
	return err
}
