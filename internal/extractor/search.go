package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"nichescout/internal/domain"
	"nichescout/internal/fetcher"
)

// SearchPage is the raw yield of one search results page: the page-declared
// listing total plus every card actually extracted.
type SearchPage struct {
	TotalListings int
	Listings      []domain.Listing
}

// Search extracts the results header and every listing card from a keyword
// search page.
func Search(page *fetcher.RawPage, salesFactor int) (*SearchPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, err
	}

	out := &SearchPage{}
	header := doc.Find(selSearchHeader).First().Text()
	if header == "" {
		header = doc.Find(selSearchHeaderAlt).First().Text()
	}
	out.TotalListings = headerCount(header)

	doc.Find(selListingCard).Each(func(_ int, card *goquery.Selection) {
		out.Listings = append(out.Listings, listingFromCard(card, salesFactor))
	})
	return out, nil
}

// listingFromCard extracts one listing from a result/storefront card. The
// same card template is shared by search pages and storefronts.
func listingFromCard(card *goquery.Selection, salesFactor int) domain.Listing {
	l := domain.Listing{}

	titleLink := card.Find(selCardTitleLink).First()
	l.Title = strings.TrimSpace(titleLink.Text())
	l.URL, _ = titleLink.Attr("href")

	l.Price = parsePrice(card.Find(selCardPrice).First().Text())
	l.RatingCount = labelCount(card.Find(selCardRatings).First().Text())
	l.AverageRating = parseRating(card.Find(selCardRatingValue).First().Text())

	storeLink := card.Find(selStoreLink).First()
	l.SellerName = strings.TrimSpace(storeLink.Text())
	l.SellerURL, _ = storeLink.Attr("href")

	l.Tags = CleanTags(cardTags(card), maxTagsPerListing)
	l.IsNew = card.Find(selCardNewBadge).Length() > 0

	l.EstimatedSales = l.RatingCount * salesFactor
	l.EstimatedRevenue = l.Price * float64(l.EstimatedSales)
	return l
}

// cardTags reads tags from a card's metadata section, trying the compact
// detail cell first and the grade-row layout as the template variant.
func cardTags(card *goquery.Selection) []string {
	if text := strings.TrimSpace(card.Find(selCardTags).First().Text()); text != "" {
		return splitTagText(text)
	}
	var raw []string
	card.Find(selProductMetadata).Find(selMetadataRow).Each(func(_ int, row *goquery.Selection) {
		if !isGradeLabel(strings.TrimSpace(row.Children().First().Text())) {
			return
		}
		raw = append(raw, splitTagText(row.Children().Last().Text())...)
	})
	return raw
}
