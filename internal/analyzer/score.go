package analyzer

import (
	"errors"
	"math"
)

// Tier is the discrete competition bucket for a keyword.
type Tier string

const (
	TierLow      Tier = "Low"
	TierMedium   Tier = "Medium"
	TierHigh     Tier = "High"
	TierVeryHigh Tier = "Very High"
)

// ErrNegativeListingCount rejects invalid scorer input instead of clamping.
var ErrNegativeListingCount = errors.New("listing count cannot be negative")

// Competition tier breakpoints by total listing count.
const (
	lowUpper    = 10000
	mediumUpper = 50000
	highUpper   = 100000
)

// ScoreCompetition maps a total listing count into a tier and a [0,100]
// score interpolated linearly within the tier's band: Low covers 0-25,
// Medium 25-55, High 55-75, Very High 75-100.
func ScoreCompetition(totalListings int) (Tier, int, error) {
	if totalListings < 0 {
		return "", 0, ErrNegativeListingCount
	}
	n := float64(totalListings)
	switch {
	case totalListings < lowUpper:
		return TierLow, int(math.Round(n / lowUpper * 25)), nil
	case totalListings < mediumUpper:
		return TierMedium, 25 + int(math.Round((n-lowUpper)/(mediumUpper-lowUpper)*30)), nil
	case totalListings < highUpper:
		return TierHigh, 55 + int(math.Round((n-mediumUpper)/(highUpper-mediumUpper)*20)), nil
	default:
		score := 75 + int(math.Round((n-highUpper)/1000))
		if score > 100 {
			score = 100
		}
		return TierVeryHigh, score, nil
	}
}

// OpportunityInput is what the opportunity heuristic sees.
type OpportunityInput struct {
	Tier          Tier
	AveragePrice  float64
	AverageRating float64
	TotalListings int
}

// OpportunityScorer maps keyword metrics onto a 0-100 desirability score.
// Implementations must be pure so the heuristic can be swapped without
// touching the pipeline.
type OpportunityScorer interface {
	Score(in OpportunityInput) (int, error)
}

// OpportunityWeights are the fixed point awards of the weighted-sum
// heuristic. Business tuning knobs, not derived statistics.
type OpportunityWeights struct {
	TierLow    int
	TierMedium int
	TierHigh   int
	TierOther  int

	PriceOver5 int
	PriceOver3 int
	PriceOver1 int

	RatingOver40 int
	RatingOver35 int

	ListingsUnder5000  int
	ListingsUnder15000 int
	ListingsUnder30000 int
}

// DefaultOpportunityWeights returns the stock point awards.
func DefaultOpportunityWeights() OpportunityWeights {
	return OpportunityWeights{
		TierLow:    40,
		TierMedium: 25,
		TierHigh:   10,
		TierOther:  5,

		PriceOver5: 25,
		PriceOver3: 15,
		PriceOver1: 10,

		RatingOver40: 15,
		RatingOver35: 10,

		ListingsUnder5000:  20,
		ListingsUnder15000: 15,
		ListingsUnder30000: 5,
	}
}

// WeightedScorer is the stock OpportunityScorer: a fixed point-award sum
// capped at 100.
type WeightedScorer struct {
	Weights OpportunityWeights
}

func NewWeightedScorer() *WeightedScorer {
	return &WeightedScorer{Weights: DefaultOpportunityWeights()}
}

func (s *WeightedScorer) Score(in OpportunityInput) (int, error) {
	if in.TotalListings < 0 {
		return 0, ErrNegativeListingCount
	}
	w := s.Weights
	score := 0

	switch in.Tier {
	case TierLow:
		score += w.TierLow
	case TierMedium:
		score += w.TierMedium
	case TierHigh:
		score += w.TierHigh
	default:
		score += w.TierOther
	}

	switch {
	case in.AveragePrice > 5:
		score += w.PriceOver5
	case in.AveragePrice > 3:
		score += w.PriceOver3
	case in.AveragePrice > 1:
		score += w.PriceOver1
	}

	switch {
	case in.AverageRating > 4.0:
		score += w.RatingOver40
	case in.AverageRating > 3.5:
		score += w.RatingOver35
	}

	switch {
	case in.TotalListings < 5000:
		score += w.ListingsUnder5000
	case in.TotalListings < 15000:
		score += w.ListingsUnder15000
	case in.TotalListings < 30000:
		score += w.ListingsUnder30000
	}

	if score > 100 {
		score = 100
	}
	return score, nil
}
