package extractor

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"nichescout/internal/domain"
	"nichescout/internal/fetcher"
)

// jsonLDProduct is the structured product descriptor embedded in detail
// pages. Numeric fields arrive as either strings or numbers depending on
// the template, hence the raw types.
type jsonLDProduct struct {
	Type            string          `json:"@type"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Image           json.RawMessage `json:"image"`
	ReleaseDate     string          `json:"releaseDate"`
	Offers          struct {
		Price json.RawMessage `json:"price"`
	} `json:"offers"`
	Brand struct {
		Name string `json:"name"`
	} `json:"brand"`
	AggregateRating struct {
		RatingValue json.RawMessage `json:"ratingValue"`
		ReviewCount json.RawMessage `json:"reviewCount"`
	} `json:"aggregateRating"`
}

// Product extracts a single listing from a product detail page. Fields no
// strategy resolves stay at their unknown zero value; the request still
// succeeds.
func Product(page *fetcher.RawPage, salesFactor int) (*domain.ProductReport, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, err
	}

	report := &domain.ProductReport{ExtractionMethod: page.Method}
	report.URL = page.URL

	// Strategy 1: structured JSON-LD block, when typed as a Product.
	if ld := findProductLD(doc); ld != nil {
		report.Title = strings.TrimSpace(ld.Name)
		report.Description = strings.TrimSpace(ld.Description)
		report.Price = floatFromRaw(ld.Offers.Price)
		report.SellerName = strings.TrimSpace(ld.Brand.Name)
		report.AverageRating = parseRating(stringFromRaw(ld.AggregateRating.RatingValue))
		report.RatingCount = intFromRaw(ld.AggregateRating.ReviewCount)
		report.ImageURL = firstImage(ld.Image)
		if ld.ReleaseDate != "" {
			if t, err := time.Parse(time.RFC3339, ld.ReleaseDate); err == nil {
				report.DateAdded = t.Format("Jan 2, 2006")
			}
		}
	}

	// Strategy 2/3: template selectors for anything the descriptor missed.
	if report.Title == "" {
		report.Title = strings.TrimSpace(doc.Find(selProductTitle).First().Text())
	}
	if report.Title == "" {
		report.Title = strings.TrimSpace(doc.Find(selProductTitleAlt).First().Text())
	}
	if report.Price == 0 {
		report.Price = parsePrice(doc.Find(selProductPrice).First().Text())
	}
	if report.RatingCount == 0 {
		report.RatingCount = labelCount(doc.Find(selProductRatingWrap).First().Text())
	}
	if report.AverageRating == 0 {
		report.AverageRating = parseRating(doc.Find(selProductRatingWrap).Find("div").First().Text())
	}

	// Strategy 4: regex scan over visible page text.
	text := visibleText(doc)
	if report.Price == 0 {
		report.Price = priceFromText(text)
	}
	if report.RatingCount == 0 {
		report.RatingCount = ratingCountFromText(text)
	}
	if report.AverageRating == 0 {
		report.AverageRating = ratingFromText(text)
	}

	report.Tags = metadataTags(doc.Selection)
	report.CCSS = standards(doc)
	report.PageCount = pageCountFromText(text)
	report.SellerURL = storeLink(doc, report.SellerName)

	report.EstimatedSales = report.RatingCount * salesFactor
	report.EstimatedRevenue = report.Price * float64(report.EstimatedSales)

	return report, nil
}

// findProductLD scans the embedded JSON-LD blocks for a Product descriptor.
func findProductLD(doc *goquery.Document) *jsonLDProduct {
	var found *jsonLDProduct
	doc.Find(selJSONLD).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var ld jsonLDProduct
		if err := json.Unmarshal([]byte(s.Text()), &ld); err != nil {
			return true
		}
		if ld.Type != "Product" {
			return true
		}
		found = &ld
		return false
	})
	return found
}

// metadataTags reads the grade/subject metadata rows. Tags only appear on
// rows labelled with a grade range.
func metadataTags(root *goquery.Selection) []string {
	var raw []string
	root.Find(selProductMetadata).Find(selMetadataRow).Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Children().First().Text())
		if !isGradeLabel(label) {
			return
		}
		raw = append(raw, splitTagText(row.Children().Last().Text())...)
	})
	return CleanTags(raw, maxTagsPerListing)
}

// standards collects CCSS identifiers from the standards list, when present.
func standards(doc *goquery.Document) []string {
	var out []string
	doc.Find(selStandardsList).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSuffix(strings.TrimSpace(s.Text()), ",")
		if len(text) > 1 {
			out = append(out, text)
		}
	})
	return out
}

// storeLink prefers a link matching the extracted seller name, falling back
// to the first store link on the page.
func storeLink(doc *goquery.Document, sellerName string) string {
	if sellerName != "" {
		slug := strings.ReplaceAll(sellerName, " ", "-")
		href, ok := doc.Find(`a[href*="/store/` + slug + `"]`).First().Attr("href")
		if ok && href != "" {
			return href
		}
	}
	href, _ := doc.Find(selStoreLink).First().Attr("href")
	return href
}

// visibleText returns the page's body text with scripts and styles removed.
func visibleText(doc *goquery.Document) string {
	doc.Find("script, style").Remove()
	return doc.Find("body").Text()
}

func floatFromRaw(raw json.RawMessage) float64 {
	return parsePrice(stringFromRaw(raw))
}

func intFromRaw(raw json.RawMessage) int {
	return parseCount(stringFromRaw(raw))
}

func stringFromRaw(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

func firstImage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}
