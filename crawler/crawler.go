package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/rankforge/backend/models"
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// Fetcher retrieves a page snapshot for analysis.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*models.PageData, error)
}

// Crawler fetches and parses pages into models.PageData. One instance is
// shared by all pipeline runs; it holds no per-run state.
type Crawler struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	Robots    *RobotsChecker
}

// Options configures a Crawler.
type Options struct {
	UserAgent      string
	RequestsPerSec float64
	Timeout        time.Duration
}

// New creates a Crawler with a pooled transport and a polite outbound rate
// limit shared across all runs.
func New(opts Options, robots *RobotsChecker) *Crawler {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if opts.UserAgent == "" {
		opts.UserAgent = "RankForgeBot/1.0"
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Crawler{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		limiter:   rate.NewLimiter(rate.Limit(opts.RequestsPerSec), int(opts.RequestsPerSec)),
		userAgent: opts.UserAgent,
		Robots:    robots,
	}
}

// Client exposes the tuned HTTP client for collaborators that share the
// connection pool (robots checker, sitemap probe).
func (c *Crawler) Client() *http.Client {
	return c.client
}

// Fetch retrieves url and extracts the full document snapshot. Failures are
// always *models.FetchError with a classified reason.
func (c *Crawler) Fetch(ctx context.Context, pageURL string) (*models.PageData, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &models.FetchError{URL: pageURL, Reason: models.FetchTimeout, Err: err}
	}

	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, &models.FetchError{URL: pageURL, Reason: models.FetchMalformed, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &models.FetchError{URL: pageURL, Reason: classifyNetError(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return nil, &models.FetchError{URL: pageURL, Reason: models.FetchBlocked}
	}
	if resp.StatusCode >= 400 {
		return nil, &models.FetchError{URL: pageURL, Reason: models.FetchNetwork}
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if _, err := io.Copy(buf, resp.Body); err != nil {
		return nil, &models.FetchError{URL: pageURL, Reason: models.FetchNetwork, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, &models.FetchError{URL: pageURL, Reason: models.FetchMalformed, Err: err}
	}

	loadTime := time.Since(startTime)

	page := c.Parse(doc, pageURL)
	page.Performance = models.PageTiming{
		LoadTimeMs: int(loadTime.Milliseconds()),
		PageSize:   buf.Len(),
	}
	page.HasSitemap = c.probeSitemap(ctx, pageURL)

	return page, nil
}

// Parse extracts the document snapshot from an already-parsed HTML tree.
// Split out from Fetch so tests can feed static HTML.
func (c *Crawler) Parse(doc *goquery.Document, pageURL string) *models.PageData {
	page := &models.PageData{
		URL:      pageURL,
		Hreflang: make(map[string]string),
		OGData:   make(map[string]string),
	}

	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	page.MetaDescription, _ = doc.Find("meta[name='description']").Attr("content")
	page.MetaKeywords, _ = doc.Find("meta[name='keywords']").Attr("content")
	page.Canonical, _ = doc.Find("link[rel='canonical']").Attr("href")

	doc.Find("link[rel='alternate'][hreflang]").Each(func(_ int, s *goquery.Selection) {
		lang, _ := s.Attr("hreflang")
		href, _ := s.Attr("href")
		if lang != "" {
			page.Hreflang[lang] = href
		}
	})

	doc.Find("meta[property]").Each(func(_ int, s *goquery.Selection) {
		prop, _ := s.Attr("property")
		if strings.HasPrefix(prop, "og:") || strings.HasPrefix(prop, "twitter:") {
			content, _ := s.Attr("content")
			page.OGData[prop] = content
		}
	})

	for _, tag := range []string{"h1", "h2", "h3"} {
		var headings []string
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			headings = append(headings, strings.TrimSpace(s.Text()))
		})
		switch tag {
		case "h1":
			page.H1 = headings
		case "h2":
			page.H2 = headings
		case "h3":
			page.H3 = headings
		}
	}

	page.BodyText = strings.TrimSpace(doc.Find("body").Text())
	page.WordCount = len(strings.Fields(page.BodyText))

	page.Images = extractImages(doc)
	page.Links = extractLinks(doc, pageURL)
	page.Schemas = extractSchemas(doc)
	page.HasLists = doc.Find("ol, ul").Length() > 0
	page.HasTables = doc.Find("table").Length() > 0

	return page
}

func extractImages(doc *goquery.Document) models.ImageStats {
	var imgs models.ImageStats
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		alt, hasAlt := s.Attr("alt")
		hasAlt = hasAlt && strings.TrimSpace(alt) != ""

		imgs.Total++
		if !hasAlt {
			imgs.WithoutAlt++
		}
		if len(imgs.Sources) < 10 {
			imgs.Sources = append(imgs.Sources, models.Image{Src: src, Alt: alt, HasAlt: hasAlt})
		}
	})
	return imgs
}

func extractLinks(doc *goquery.Document, baseURL string) models.LinkStats {
	var links models.LinkStats

	base, err := url.Parse(baseURL)
	if err != nil {
		return links
	}

	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || href == "#" || strings.HasPrefix(href, "javascript:") {
			return
		}

		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		abs := resolved.String()
		if seen[abs] {
			return
		}
		seen[abs] = true

		if resolved.Host == base.Host {
			links.InternalCount++
			if len(links.Internal) < 20 {
				links.Internal = append(links.Internal, abs)
			}
		} else if resolved.Scheme == "http" || resolved.Scheme == "https" {
			links.ExternalCount++
			if len(links.External) < 20 {
				links.External = append(links.External, abs)
			}
		}
	})

	return links
}

// extractSchemas collects JSON-LD blocks, flattening @graph containers the
// way search engines do.
func extractSchemas(doc *goquery.Document) []models.SchemaBlock {
	var schemas []models.SchemaBlock

	appendBlock := func(m map[string]any) {
		block := models.SchemaBlock{Raw: m}
		if t, ok := m["@type"].(string); ok {
			block.Type = t
		}
		if entities, ok := m["mainEntity"].([]any); ok {
			block.EntityCount = len(entities)
		}
		schemas = append(schemas, block)
	}

	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		var parsed any
		if err := json.Unmarshal([]byte(s.Text()), &parsed); err != nil {
			return // skip malformed JSON-LD
		}

		switch v := parsed.(type) {
		case map[string]any:
			if graph, ok := v["@graph"].([]any); ok {
				for _, item := range graph {
					if m, ok := item.(map[string]any); ok {
						appendBlock(m)
					}
				}
				return
			}
			appendBlock(v)
		case []any:
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					appendBlock(m)
				}
			}
		}
	})

	return schemas
}

// probeSitemap checks the conventional sitemap location.
func (c *Crawler) probeSitemap(ctx context.Context, pageURL string) bool {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	sitemapURL := parsed.Scheme + "://" + parsed.Host + "/sitemap.xml"

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, "HEAD", sitemapURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func classifyNetError(err error) string {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.FetchTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.FetchTimeout
	}
	return models.FetchNetwork
}
