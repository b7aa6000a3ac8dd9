package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"nichescout/internal/config"
	"nichescout/internal/monitoring"
)

// Kind selects the readiness condition a fetch waits for.
type Kind string

const (
	KindProduct Kind = "product"
	KindSearch  Kind = "search"
	KindStore   Kind = "store"
)

const (
	MethodBrowser  = "browser"
	MethodFallback = "fallback"
)

// RawPage is a fully rendered page handed to the extractor.
type RawPage struct {
	URL    string
	HTML   string
	Method string // MethodBrowser or MethodFallback
}

// Fetcher loads a marketplace page and returns its rendered HTML.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string, kind Kind) (*RawPage, error)
}

// Browser fetches pages with a headless browser, falling back to a static
// HTTP GET for product pages when browser automation fails.
type Browser struct {
	cfg     *config.Config
	metrics *monitoring.Metrics
	logger  *zap.Logger
	ua      *uaRotator
	static  *resty.Client
	ctxPool sync.Pool
}

func NewBrowser(cfg *config.Config, m *monitoring.Metrics, l *zap.Logger) *Browser {
	b := &Browser{
		cfg:     cfg,
		metrics: m,
		logger:  l,
		ua:      newUARotator(),
		static: resty.New().
			SetTimeout(30 * time.Second).
			SetHeaders(map[string]string{
				"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
				"Accept-Language":           "en-US,en;q=0.5",
				"Connection":                "keep-alive",
				"Upgrade-Insecure-Requests": "1",
			}),
	}
	b.ctxPool.New = func() interface{} {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", ""),
			chromedp.Flag("disable-dev-shm-usage", ""),
			chromedp.UserAgent(b.ua.Next()),
		)
		allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
		return allocCtx
	}
	return b
}

// Fetch loads pageURL with the browser. For product pages a failed browser
// fetch is retried once over plain HTTP; the returned page records which
// path produced it.
func (b *Browser) Fetch(ctx context.Context, pageURL string, kind Kind) (*RawPage, error) {
	page, err := b.fetchBrowser(pageURL, kind)
	if err == nil {
		b.metrics.IncPagesFetched(string(kind), MethodBrowser)
		return page, nil
	}
	b.metrics.IncFetchErrors(string(kind), Reason(err))

	if kind != KindProduct {
		return nil, err
	}

	b.logger.Warn("browser fetch failed, trying static fallback",
		zap.String("url", pageURL), zap.Error(err))
	page, fbErr := b.fetchStatic(ctx, pageURL)
	if fbErr != nil {
		b.metrics.IncFetchErrors(string(kind), Reason(fbErr))
		// Deliberately opaque: a doubly failed fetch has no single reason
		// the caller can act on, so it surfaces as a plain internal error.
		return nil, fmt.Errorf("browser fetch: %v; static fallback: %v", err, fbErr)
	}
	b.metrics.IncPagesFetched(string(kind), MethodFallback)
	return page, nil
}

func (b *Browser) fetchBrowser(pageURL string, kind Kind) (*RawPage, error) {
	allocCtx := b.ctxPool.Get().(context.Context)
	defer b.ctxPool.Put(allocCtx)

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	// Release the browsing context on every exit path.
	defer taskCancel()

	navCtx, navCancel := context.WithTimeout(taskCtx, time.Duration(b.cfg.NavigationTimeout)*time.Second)
	defer navCancel()

	settle := time.Duration(b.cfg.SettleDelay) * time.Second
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
	); err != nil {
		return nil, classifyBrowserErr(err)
	}

	switch kind {
	case KindSearch:
		waitCtx, waitCancel := context.WithTimeout(taskCtx, time.Duration(b.cfg.ReadinessTimeout)*time.Second)
		defer waitCancel()
		if err := chromedp.Run(waitCtx,
			chromedp.WaitVisible(SearchResultsMarker, chromedp.ByQuery),
		); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s", ErrReadinessTimeout, SearchResultsMarker)
			}
			return nil, classifyBrowserErr(err)
		}
	case KindStore:
		if err := b.scrollToEnd(navCtx); err != nil {
			return nil, classifyBrowserErr(err)
		}
	}

	var html string
	if err := chromedp.Run(navCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return nil, classifyBrowserErr(err)
	}
	return &RawPage{URL: pageURL, HTML: html, Method: MethodBrowser}, nil
}

// scrollToEnd forces lazy-loaded listings to render by scrolling to the
// bottom until the page height stops growing.
func (b *Browser) scrollToEnd(ctx context.Context) error {
	settle := time.Duration(b.cfg.ScrollSettleDelay) * time.Second
	var prevHeight int64 = -1
	for {
		var height int64
		if err := chromedp.Run(ctx, chromedp.Evaluate(scrollHeightScript, &height)); err != nil {
			return err
		}
		if height == prevHeight {
			return nil
		}
		prevHeight = height
		if err := chromedp.Run(ctx,
			chromedp.Evaluate(scrollToBottom, nil),
			chromedp.Sleep(settle),
		); err != nil {
			return err
		}
	}
}

func (b *Browser) fetchStatic(ctx context.Context, pageURL string) (*RawPage, error) {
	resp, err := b.static.R().
		SetContext(ctx).
		SetHeader("User-Agent", b.ua.Random()).
		Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}
	if resp.StatusCode() >= 400 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode()}
	}
	return &RawPage{URL: pageURL, HTML: resp.String(), Method: MethodFallback}, nil
}

// SearchURL builds the marketplace search URL for a keyword.
func SearchURL(baseURL, keyword string) string {
	return baseURL + "/Browse/Search:" + url.PathEscape(keyword)
}
