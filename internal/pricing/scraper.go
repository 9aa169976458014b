package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	scraperMaxRetries = 3
	scraperRetryWait  = 2 * time.Second
	scrapeCacheTTL    = 24 * time.Hour
	scrapeCacheMiss   = "__miss__"
)

// MarketScraper is the primary price source. It searches a grocery market
// site for the ingredient and reads the price text off the first listing.
// Raw results are cached in Redis for a day so repeated lookups across
// processes do not hammer the site.
type MarketScraper struct {
	baseURL string
	client  *http.Client
	redis   *redis.Client
	logger  *zap.Logger
	headers map[string]string
}

// NewMarketScraper creates a scraper against the given market site base URL.
// redisClient may be nil, in which case results are not cached.
func NewMarketScraper(baseURL string, redisClient *redis.Client, logger *zap.Logger) *MarketScraper {
	return &MarketScraper{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		redis:   redisClient,
		logger:  logger.Named("market-scraper"),
		headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			"Accept":          "text/html,application/xhtml+xml",
			"Accept-Language": "vi-VN,vi;q=0.9,en;q=0.5",
		},
	}
}

// Name returns the name of the source
func (s *MarketScraper) Name() string {
	return "market-scraper"
}

// FetchRaw searches the market site for the ingredient and returns the price
// text of the first matching listing, or (nil, nil) when nothing matches.
func (s *MarketScraper) FetchRaw(ctx context.Context, name, unit string) (*RawPrice, error) {
	if cached, ok := s.cacheGet(ctx, name); ok {
		return cached, nil
	}

	searchURL := fmt.Sprintf("%s/tim-kiem?q=%s", s.baseURL, url.QueryEscape(name))
	content, err := s.fetchURL(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	raw := parseFirstListing(doc)
	if raw == nil {
		s.logger.Info("no listing found", zap.String("ingredient", name))
		s.cacheSet(ctx, name, nil)
		return nil, nil
	}

	s.logger.Info("scraped price",
		zap.String("ingredient", name),
		zap.String("text", raw.Text),
		zap.String("unit", raw.Unit))
	s.cacheSet(ctx, name, raw)
	return raw, nil
}

// parseFirstListing pulls price and unit text from the first product card.
func parseFirstListing(doc *goquery.Document) *RawPrice {
	item := doc.Find(".product-item, .sp-item, li.product").First()
	if item.Length() == 0 {
		return nil
	}

	priceText := strings.TrimSpace(item.Find(".product-price, .price, .gia").First().Text())
	if priceText == "" {
		return nil
	}

	unitText := strings.TrimSpace(item.Find(".product-unit, .unit, .dvt").First().Text())
	return &RawPrice{Text: priceText, Unit: unitText}
}

// fetchURL retrieves the content of a URL with retry logic.
func (s *MarketScraper) fetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= scraperMaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		for key, value := range s.headers {
			req.Header.Set(key, value)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			s.logger.Warn("HTTP request failed",
				zap.Error(err), zap.String("url", rawURL), zap.Int("attempt", attempt))
		} else {
			body, readErr := readBody(resp)
			if readErr == nil {
				return body, nil
			}
			lastErr = readErr
			s.logger.Warn("bad response",
				zap.Error(readErr), zap.String("url", rawURL), zap.Int("attempt", attempt))
		}

		if attempt < scraperMaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(scraperRetryWait):
			}
		}
	}
	return nil, fmt.Errorf("failed to fetch URL after %d attempts: %w", scraperMaxRetries, lastErr)
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status code %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

func (s *MarketScraper) cacheKey(name string) string {
	return fmt.Sprintf("price:raw:%s", strings.ToLower(strings.TrimSpace(name)))
}

func (s *MarketScraper) cacheGet(ctx context.Context, name string) (*RawPrice, bool) {
	if s.redis == nil {
		return nil, false
	}
	data, err := s.redis.Get(ctx, s.cacheKey(name)).Bytes()
	if err != nil {
		return nil, false
	}
	if string(data) == scrapeCacheMiss {
		return nil, true
	}
	var raw RawPrice
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	return &raw, true
}

func (s *MarketScraper) cacheSet(ctx context.Context, name string, raw *RawPrice) {
	if s.redis == nil {
		return
	}
	payload := []byte(scrapeCacheMiss)
	if raw != nil {
		data, err := json.Marshal(raw)
		if err != nil {
			return
		}
		payload = data
	}
	if err := s.redis.Set(ctx, s.cacheKey(name), payload, scrapeCacheTTL).Err(); err != nil {
		s.logger.Warn("failed to cache scrape result", zap.String("ingredient", name), zap.Error(err))
	}
}
