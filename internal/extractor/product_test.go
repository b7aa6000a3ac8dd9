package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nichescout/internal/fetcher"
)

const productHTMLWithLD = `<!DOCTYPE html>
<html><head>
<script type="application/ld+json">
{
  "@type": "Product",
  "name": "Phonics Worksheets Mega Bundle",
  "description": "Printable phonics practice for K-2.",
  "image": ["https://cdn.example.com/thumb.jpg"],
  "releaseDate": "2024-03-15T00:00:00Z",
  "offers": {"price": "4.99"},
  "brand": {"name": "Reading Corner"},
  "aggregateRating": {"ratingValue": 4.8, "reviewCount": 312}
}
</script>
</head><body>
<a href="/store/Reading-Corner">Reading Corner</a>
<div class="ProductRowCard-module__cardMetadata--x1"><section>
  <div class="MetadataFacetSection__row"><span>1st - 2nd</span><span>Phonics, Reading, Spelling</span></div>
</section></div>
<div class="StandardsList-module"><div>RF.1.2,</div><div>RF.1.3</div></div>
<p>48 pages of practice</p>
</body></html>`

func TestProductFromJSONLD(t *testing.T) {
	page := &fetcher.RawPage{URL: "https://example.com/Product/phonics-123", HTML: productHTMLWithLD, Method: fetcher.MethodBrowser}
	report, err := Product(page, 10)
	require.NoError(t, err)

	require.Equal(t, "Phonics Worksheets Mega Bundle", report.Title)
	require.Equal(t, "Printable phonics practice for K-2.", report.Description)
	require.Equal(t, 4.99, report.Price)
	require.Equal(t, "Reading Corner", report.SellerName)
	require.Equal(t, "/store/Reading-Corner", report.SellerURL)
	require.Equal(t, 4.8, report.AverageRating)
	require.Equal(t, 312, report.RatingCount)
	require.Equal(t, "https://cdn.example.com/thumb.jpg", report.ImageURL)
	require.Equal(t, "Mar 15, 2024", report.DateAdded)
	require.Equal(t, []string{"phonics", "reading", "spelling"}, report.Tags)
	require.Equal(t, []string{"RF.1.2", "RF.1.3"}, report.CCSS)
	require.Equal(t, 48, report.PageCount)
	require.Equal(t, fetcher.MethodBrowser, report.ExtractionMethod)

	require.Equal(t, 3120, report.EstimatedSales)
	require.InDelta(t, 4.99*3120, report.EstimatedRevenue, 0.001)
}

const productHTMLSelectors = `<!DOCTYPE html>
<html><body>
<h1 itemprop="name"><span>Fraction Task Cards</span></h1>
<span itemprop="price">$3.50</span>
<div class="RatingsLabel-module__ratingsLabelContainer--q9"><div>4.6</div><span>(87 ratings)</span></div>
</body></html>`

func TestProductFromSelectors(t *testing.T) {
	page := &fetcher.RawPage{URL: "https://example.com/Product/fractions-9", HTML: productHTMLSelectors, Method: fetcher.MethodBrowser}
	report, err := Product(page, 10)
	require.NoError(t, err)

	require.Equal(t, "Fraction Task Cards", report.Title)
	require.Equal(t, 3.50, report.Price)
	require.Equal(t, 87, report.RatingCount)
	require.Equal(t, 4.6, report.AverageRating)
}

const productHTMLBare = `<!DOCTYPE html>
<html><body>
<h1>Science Lab Journal</h1>
<p>Loved it, 4.2 out of 5 across 53 ratings. Get it for $6.25 today. 30 pages.</p>
<script>var junk = "$9999";</script>
</body></html>`

func TestProductRegexFallback(t *testing.T) {
	page := &fetcher.RawPage{URL: "https://example.com/Product/science-7", HTML: productHTMLBare, Method: fetcher.MethodFallback}
	report, err := Product(page, 10)
	require.NoError(t, err)

	require.Equal(t, "Science Lab Journal", report.Title)
	require.Equal(t, 6.25, report.Price)
	require.Equal(t, 53, report.RatingCount)
	require.Equal(t, 4.2, report.AverageRating)
	require.Equal(t, 30, report.PageCount)
	require.Equal(t, fetcher.MethodFallback, report.ExtractionMethod)
}

func TestProductUnknownFieldsStayZero(t *testing.T) {
	page := &fetcher.RawPage{URL: "https://example.com/Product/empty", HTML: `<html><body><h1>Mystery</h1></body></html>`, Method: fetcher.MethodBrowser}
	report, err := Product(page, 10)
	require.NoError(t, err)

	require.Equal(t, "Mystery", report.Title)
	require.Zero(t, report.Price)
	require.Zero(t, report.RatingCount)
	require.Zero(t, report.AverageRating)
	require.Zero(t, report.EstimatedSales)
	require.Zero(t, report.EstimatedRevenue)
}
