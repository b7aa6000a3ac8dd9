package analyzer

import (
	"math"
	"sort"

	"nichescout/internal/domain"
)

// Caps on the derived collections.
const (
	TopListingsCap     = 10
	NewListingsCap     = 5
	RelatedKeywordsCap = 10
)

// AveragePrice is the mean over listings with a known positive price,
// rounded to 2 decimals. Listings missing a price are excluded from the
// mean, not treated as zero. Returns 0 when no listing qualifies.
func AveragePrice(listings []domain.Listing) float64 {
	var sum float64
	var n int
	for _, l := range listings {
		if l.Price > 0 {
			sum += l.Price
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return round(sum/float64(n), 2)
}

// AverageRating is the mean over listings with a positive rating count and
// a known rating, rounded to 1 decimal. Returns 0 when no listing qualifies.
func AverageRating(listings []domain.Listing) float64 {
	var sum float64
	var n int
	for _, l := range listings {
		if l.RatingCount > 0 && l.AverageRating > 0 {
			sum += l.AverageRating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return round(sum/float64(n), 1)
}

// TopListings returns the listings sorted by rating count descending,
// stable on ties, truncated to TopListingsCap.
func TopListings(listings []domain.Listing) []domain.Listing {
	sorted := make([]domain.Listing, len(listings))
	copy(sorted, listings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RatingCount > sorted[j].RatingCount
	})
	if len(sorted) > TopListingsCap {
		sorted = sorted[:TopListingsCap]
	}
	return sorted
}

// NewListings returns listings carrying the page's "new" marker, in input
// order, truncated to NewListingsCap.
func NewListings(listings []domain.Listing) []domain.Listing {
	var out []domain.Listing
	for _, l := range listings {
		if l.IsNew {
			out = append(out, l)
			if len(out) >= NewListingsCap {
				break
			}
		}
	}
	return out
}

// RelatedKeywords builds a frequency table over every tag across every
// listing, sorted by count descending then alphabetically, truncated to
// RelatedKeywordsCap.
func RelatedKeywords(listings []domain.Listing) []domain.KeywordCount {
	counts := make(map[string]int)
	for _, l := range listings {
		for _, tag := range l.Tags {
			counts[tag]++
		}
	}
	out := make([]domain.KeywordCount, 0, len(counts))
	for word, count := range counts {
		out = append(out, domain.KeywordCount{Word: word, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > RelatedKeywordsCap {
		out = out[:RelatedKeywordsCap]
	}
	return out
}

// Totals sums estimated sales and revenue across listings.
func Totals(listings []domain.Listing) (sales int, revenue float64) {
	for _, l := range listings {
		sales += l.EstimatedSales
		revenue += l.EstimatedRevenue
	}
	return sales, revenue
}

func round(v float64, decimals int) float64 {
	shift := math.Pow10(decimals)
	return math.Round(v*shift) / shift
}
