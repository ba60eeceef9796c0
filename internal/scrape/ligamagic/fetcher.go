package ligamagic

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/arenhart/tradepost/internal/roster"
)

// DefaultMaxPages caps pagination per list. The listing has no total
// count; an empty page is the only exhaustion signal, so the cap bounds
// worst-case runtime against a misbehaving source.
const DefaultMaxPages = 25

// PageLoader renders one listing page into HTML. *Client satisfies it;
// tests substitute a canned loader.
type PageLoader interface {
	FetchPage(ctx context.Context, pageURL string) (string, error)
}

// Fetcher walks the pages of one listing URL and normalizes every data
// row into card records.
type Fetcher struct {
	loader   PageLoader
	maxPages int
}

// NewFetcher creates a fetcher over a page loader.
func NewFetcher(loader PageLoader) *Fetcher {
	return &Fetcher{loader: loader, maxPages: DefaultMaxPages}
}

// NewFetcherWithMaxPages creates a fetcher with a custom page cap.
func NewFetcherWithMaxPages(loader PageLoader, maxPages int) *Fetcher {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Fetcher{loader: loader, maxPages: maxPages}
}

// FetchList fetches every page of a listing in page order. An empty URL
// means no list is configured and returns no records and no error.
// Pagination stops when the results table is missing or holds no data
// rows. A render fault aborts the whole list with an error so callers
// can tell "empty list" from "fetch failed".
func (f *Fetcher) FetchList(ctx context.Context, listURL string) ([]roster.CardRecord, error) {
	if listURL == "" {
		return nil, nil
	}

	var records []roster.CardRecord

	for page := 1; page <= f.maxPages; page++ {
		pageURL, err := setPageParam(listURL, page)
		if err != nil {
			return nil, fmt.Errorf("invalid listing URL %q: %w", listURL, err)
		}

		htmlContent, err := f.loader.FetchPage(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetching page %d: %w", page, err)
		}

		doc, err := ParseHTML(htmlContent)
		if err != nil {
			return nil, fmt.Errorf("parsing page %d: %w", page, err)
		}

		rows, hasTable := CollectionRows(doc)
		if !hasTable || len(rows) == 0 {
			// Past the end of the collection
			break
		}

		for _, row := range rows {
			if record := ParseCardRow(row); record != nil {
				records = append(records, *record)
			}
		}
	}

	log.Printf("  Fetched %d cards from %s", len(records), listURL)
	return records, nil
}

// setPageParam rewrites the URL's page query parameter.
func setPageParam(listURL string, page int) (string, error) {
	u, err := url.Parse(listURL)
	if err != nil {
		return "", err
	}

	query := u.Query()
	query.Set("page", strconv.Itoa(page))
	u.RawQuery = query.Encode()

	return u.String(), nil
}
