package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"nichescout/internal/domain"
	"nichescout/internal/fetcher"
)

// StorePage is the raw yield of one storefront page.
type StorePage struct {
	SellerName           string
	About                string
	AverageRating        float64
	DeclaredListingCount int
	Listings             []domain.Listing
}

// Store extracts the storefront header and every listing card rendered
// after incremental scrolling.
func Store(page *fetcher.RawPage, salesFactor int) (*StorePage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, err
	}

	out := &StorePage{
		SellerName:    strings.TrimSpace(doc.Find(selStoreName).First().Text()),
		About:         strings.TrimSpace(doc.Find(selStoreAbout).First().Text()),
		AverageRating: parseRating(doc.Find(selStoreRating).First().Text()),
	}

	// The resource search box advertises the store's listing total in its
	// placeholder ("Search 214 resources").
	if placeholder, ok := doc.Find(selStoreSearch).First().Attr("placeholder"); ok {
		out.DeclaredListingCount = parseCount(placeholder)
	}

	doc.Find(selListingCard).Each(func(_ int, card *goquery.Selection) {
		out.Listings = append(out.Listings, listingFromCard(card, salesFactor))
	})
	return out, nil
}
