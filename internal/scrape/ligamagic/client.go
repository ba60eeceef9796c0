package ligamagic

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

const (
	// Origin of the marketplace; relative card links are resolved against
	// it. No www prefix: resolved URLs must match the ones already stored
	// in older snapshots.
	Origin = "https://ligamagic.com.br"

	// UserAgent for requests
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// collectionTableID is the element the listing page renders its
	// results into. Its absence after tableWaitTimeout means the page is
	// past the end of the collection.
	collectionTableID = "listacolecao"

	// tableWaitTimeout bounds the wait for the client-rendered table.
	tableWaitTimeout = 8 * time.Second

	// navigationTimeout bounds a full page load.
	navigationTimeout = 30 * time.Second

	// MinRequestInterval between page loads to stay polite
	MinRequestInterval = 1 * time.Second
)

// Client drives a headless browser over marketplace listing pages. The
// listing content is client-rendered, so a plain HTTP GET returns an
// empty shell; every page goes through chromedp.
type Client struct {
	lastRequest time.Time
	interval    time.Duration

	// Chromedp context for headless browser
	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewClient starts a headless browser allocator for listing fetches.
// Callers own the client and must Close it on every exit path.
func NewClient() (*Client, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Client{
		lastRequest: time.Time{},
		interval:    MinRequestInterval,
		allocCtx:    allocCtx,
		cancel:      cancel,
	}, nil
}

// SetRequestInterval overrides the minimum delay between page loads.
// Non-positive values fall back to MinRequestInterval.
func (c *Client) SetRequestInterval(d time.Duration) {
	if d <= 0 {
		d = MinRequestInterval
	}
	c.interval = d
}

// Close releases the browser session.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// FetchPage renders one listing page and returns its HTML. A missing
// results table is not an error here: the HTML is returned as-is and the
// caller decides whether that terminates pagination. Navigation or
// render faults are errors.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (string, error) {
	// Enforce rate limiting between page loads
	if !c.lastRequest.IsZero() {
		elapsed := time.Since(c.lastRequest)
		if elapsed < c.interval {
			waitTime := c.interval - elapsed
			log.Printf("Rate limiting: waiting %v before next page", waitTime)
			time.Sleep(waitTime)
		}
	}

	html, err := c.fetch(ctx, pageURL)
	c.lastRequest = time.Now()

	return html, err
}

// fetch performs the actual page render using chromedp
func (c *Client) fetch(ctx context.Context, pageURL string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, navigationTimeout)
	defer cancel()

	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp navigate %s: %w", pageURL, err)
	}

	// Wait up to tableWaitTimeout for the results table. Timing out is
	// the normal end-of-collection signal, so only other faults abort.
	waitCtx, waitCancel := context.WithTimeout(browserCtx, tableWaitTimeout)
	err = chromedp.Run(waitCtx,
		chromedp.WaitVisible("#"+collectionTableID, chromedp.ByID),
	)
	waitCancel()
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return "", fmt.Errorf("waiting for results table: %w", err)
	}

	var htmlContent string
	err = chromedp.Run(browserCtx,
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp error: %w", err)
	}

	if htmlContent == "" {
		return "", fmt.Errorf("empty HTML content returned")
	}

	return htmlContent, nil
}

// ParseHTML converts raw HTML to a goquery Document for parsing
func ParseHTML(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
