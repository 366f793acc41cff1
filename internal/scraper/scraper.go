package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/MrE12345/kundeavis-scraper/internal/config"
)

// Client fetches circular listing pages and page images. One http.Client
// is shared across calls; the pipeline is sequential so no further
// synchronization is needed.
type Client struct {
	httpClient  *http.Client
	imageClient *http.Client
	limiter     *rate.Limiter
	baseURL     string
	userAgent   string
}

func New(cfg *config.Config) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.HTTPTimeout},
		imageClient: &http.Client{Timeout: cfg.ImageTimeout},
		// Two requests per second keeps the crawler polite; a circular
		// rarely has more than a few dozen pages.
		limiter:   rate.NewLimiter(rate.Limit(2), 1),
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
	}
}

// candidateURLs lists the listing views to try, in order. The grid view
// exposes every page image at once; the plain view is the fallback for
// older circulars.
func (c *Client) candidateURLs(circularID string) []string {
	id := url.QueryEscape(circularID)
	return []string{
		fmt.Sprintf("%sapp/?grid=1&id=%s&p=1", c.baseURL, id),
		fmt.Sprintf("%s?id=%s", c.baseURL, id),
	}
}

// ResolveImageURLs determines the ordered, deduplicated page image URLs
// for a circular. Candidates are tried in order and the first one yielding
// at least one image-like link wins; a candidate that fails to fetch is
// logged and skipped. An empty result with a nil error means no candidate
// yielded images; fatality is the caller's call.
func (c *Client) ResolveImageURLs(ctx context.Context, circularID string) ([]string, error) {
	var imgs []string
	for _, candidate := range c.candidateURLs(circularID) {
		doc, err := c.fetchDocument(ctx, candidate)
		if err != nil {
			slog.Warn("Failed to fetch listing candidate", "url", candidate, "error", err)
			continue
		}
		imgs = collectImageLinks(doc, candidate)
		if len(imgs) > 0 {
			break
		}
	}

	seen := make(map[string]struct{}, len(imgs))
	ordered := make([]string, 0, len(imgs))
	for _, u := range imgs {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		ordered = append(ordered, u)
	}
	slog.Info("Resolved page images", "count", len(ordered))
	return ordered, nil
}

// collectImageLinks walks anchor and img elements and keeps every target
// that looks like a JPEG, resolved to absolute form against the document's
// own URL.
func collectImageLinks(doc *goquery.Document, docURL string) []string {
	base, err := url.Parse(docURL)
	if err != nil {
		return nil
	}

	var imgs []string
	doc.Find("a, img").Each(func(_ int, s *goquery.Selection) {
		target := firstAttr(s, "href", "src", "data-src")
		if target == "" {
			return
		}
		lower := strings.ToLower(target)
		if !strings.Contains(lower, ".jpg") && !strings.Contains(lower, ".jpeg") {
			return
		}
		ref, err := url.Parse(target)
		if err != nil {
			return
		}
		imgs = append(imgs, base.ResolveReference(ref).String())
	})
	return imgs
}

func firstAttr(s *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v, ok := s.Attr(name); ok && v != "" {
			return v
		}
	}
	return ""
}

// FetchMeta returns the parsed document of the first listing candidate
// that fetches successfully, for title/validity extraction. All candidates
// failing is not fatal to the run; the caller persists the circular with
// absent meta fields.
func (c *Client) FetchMeta(ctx context.Context, circularID string) (*goquery.Document, error) {
	var lastErr error
	for _, candidate := range c.candidateURLs(circularID) {
		doc, err := c.fetchDocument(ctx, candidate)
		if err != nil {
			lastErr = err
			continue
		}
		return doc, nil
	}
	return nil, fmt.Errorf("no listing candidate reachable: %w", lastErr)
}

// FetchImage retrieves the raw bytes of one page image with a bounded
// timeout. Any transport or status failure is returned to the caller,
// which skips that page; retries, if ever wanted, belong there too.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", imageURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.imageClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image %s: %w", imageURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image %s: status code %d", imageURL, res.StatusCode)
	}
	return io.ReadAll(res.Body)
}

func (c *Client) fetchDocument(ctx context.Context, urlStr string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", urlStr, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", urlStr, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status code %d", urlStr, res.StatusCode)
	}
	return goquery.NewDocumentFromReader(res.Body)
}
