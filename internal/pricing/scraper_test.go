package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const listingHTML = `
<html><body>
  <ul>
    <li class="product-item">
      <span class="product-name">Thịt ba chỉ tươi</span>
      <span class="product-price">150.000đ/kg</span>
      <span class="product-unit">kg</span>
    </li>
    <li class="product-item">
      <span class="product-name">Thịt ba chỉ đông lạnh</span>
      <span class="product-price">120.000đ/kg</span>
    </li>
  </ul>
</body></html>`

func TestParseFirstListing(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingHTML))
	require.NoError(t, err)

	raw := parseFirstListing(doc)
	require.NotNil(t, raw)
	assert.Equal(t, "150.000đ/kg", raw.Text)
	assert.Equal(t, "kg", raw.Unit)
}

func TestParseFirstListingNoProducts(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><p>không tìm thấy</p></body></html>"))
	require.NoError(t, err)
	assert.Nil(t, parseFirstListing(doc))
}

func TestMarketScraperFetchRaw(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(listingHTML))
	}))
	defer srv.Close()

	s := NewMarketScraper(srv.URL, nil, zap.NewNop())
	raw, err := s.FetchRaw(context.Background(), "thịt ba chỉ", "g")
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.Equal(t, "150.000đ/kg", raw.Text)
	assert.Equal(t, "thịt ba chỉ", gotQuery)
}

func TestMarketScraperMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body></body></html>"))
	}))
	defer srv.Close()

	s := NewMarketScraper(srv.URL, nil, zap.NewNop())
	raw, err := s.FetchRaw(context.Background(), "không tồn tại", "g")
	require.NoError(t, err)
	assert.Nil(t, raw)
}
