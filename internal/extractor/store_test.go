package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nichescout/internal/fetcher"
)

const storeHTML = `<!DOCTYPE html>
<html><body>
<h1 class="StorePageHeader-module__storeName--z1">Reading Corner</h1>
<p class="StorePageHeader-module__contentAbout--z2">Phonics resources for early readers.</p>
<div class="RatingsLabel-module__ratingsLabelContainer--z3"><div>4.9</div><span>(5,120)</span></div>
<input id="searchResources" placeholder="Search 214 resources">

<div id="product-row-10">
  <h2><a href="/Product/phonics-bundle-111">Phonics Bundle</a></h2>
  <span class="ProductPrice-module__price--a1">$4.99</span>
  <div class="RatingsLabel-module__ratingsLabelContainer--b2"><div>4.8</div><span>(1,234)</span></div>
</div>
<div id="product-row-11">
  <h2><a href="/Product/sight-words-333">Sight Words Pack</a></h2>
  <span class="ProductPrice-module__price--a1">$2.25</span>
  <div class="RatingsLabel-module__ratingsLabelContainer--b2"><div>4.5</div><span>(96 ratings)</span></div>
</div>
</body></html>`

func TestStorePage(t *testing.T) {
	page := &fetcher.RawPage{URL: "https://example.com/store/Reading-Corner", HTML: storeHTML, Method: fetcher.MethodBrowser}
	got, err := Store(page, 10)
	require.NoError(t, err)

	require.Equal(t, "Reading Corner", got.SellerName)
	require.Equal(t, "Phonics resources for early readers.", got.About)
	require.Equal(t, 4.9, got.AverageRating)
	require.Equal(t, 214, got.DeclaredListingCount)

	require.Len(t, got.Listings, 2)
	require.Equal(t, "Phonics Bundle", got.Listings[0].Title)
	require.Equal(t, 1234, got.Listings[0].RatingCount)
	require.Equal(t, 2.25, got.Listings[1].Price)
	require.Equal(t, 960, got.Listings[1].EstimatedSales)
}

func TestStorePageSparse(t *testing.T) {
	page := &fetcher.RawPage{URL: "https://example.com/store/Empty-Shop", HTML: `<html><body><h1 class="StorePageHeader-module__storeName--z1">Empty Shop</h1></body></html>`, Method: fetcher.MethodBrowser}
	got, err := Store(page, 10)
	require.NoError(t, err)
	require.Equal(t, "Empty Shop", got.SellerName)
	require.Zero(t, got.AverageRating)
	require.Zero(t, got.DeclaredListingCount)
	require.Empty(t, got.Listings)
}
