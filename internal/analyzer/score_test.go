package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nichescout/internal/domain"
)

func TestScoreCompetitionTiers(t *testing.T) {
	testCases := []struct {
		name      string
		listings  int
		wantTier  Tier
		wantScore int
	}{
		{"zero listings", 0, TierLow, 0},
		{"low band", 4000, TierLow, 10},
		{"low band upper", 9999, TierLow, 25},
		{"medium band lower", 10000, TierMedium, 25},
		{"medium band", 30000, TierMedium, 40},
		{"high band lower", 50000, TierHigh, 55},
		{"high band", 75000, TierHigh, 65},
		{"very high lower", 100000, TierVeryHigh, 75},
		{"very high mid", 110000, TierVeryHigh, 85},
		{"very high capped", 500000, TierVeryHigh, 100},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tier, score, err := ScoreCompetition(tc.listings)
			require.NoError(t, err)
			require.Equal(t, tc.wantTier, tier)
			require.Equal(t, tc.wantScore, score)
		})
	}
}

func TestScoreCompetitionRange(t *testing.T) {
	for _, n := range []int{0, 1, 9999, 10000, 49999, 50000, 99999, 100000, 125000, 10000000} {
		_, score, err := ScoreCompetition(n)
		require.NoError(t, err)
		require.GreaterOrEqual(t, score, 0)
		require.LessOrEqual(t, score, 100)
	}
}

func TestScoreCompetitionNegative(t *testing.T) {
	_, _, err := ScoreCompetition(-1)
	require.ErrorIs(t, err, ErrNegativeListingCount)
}

func TestWeightedScorer(t *testing.T) {
	scorer := NewWeightedScorer()

	testCases := []struct {
		name string
		in   OpportunityInput
		want int
	}{
		{
			name: "best case sums to 100",
			in:   OpportunityInput{Tier: TierLow, AveragePrice: 6.50, AverageRating: 4.8, TotalListings: 1200},
			want: 100, // 40 + 25 + 15 + 20
		},
		{
			name: "medium keyword",
			in:   OpportunityInput{Tier: TierMedium, AveragePrice: 3.50, AverageRating: 3.8, TotalListings: 20000},
			want: 55, // 25 + 15 + 10 + 5
		},
		{
			name: "saturated keyword",
			in:   OpportunityInput{Tier: TierVeryHigh, AveragePrice: 0.99, AverageRating: 3.0, TotalListings: 150000},
			want: 5, // tier-other only
		},
		{
			name: "unknown averages score no points",
			in:   OpportunityInput{Tier: TierHigh, AveragePrice: 0, AverageRating: 0, TotalListings: 60000},
			want: 10,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := scorer.Score(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestWeightedScorerCap(t *testing.T) {
	scorer := NewWeightedScorer()
	scorer.Weights.TierLow = 90
	got, err := scorer.Score(OpportunityInput{Tier: TierLow, AveragePrice: 10, AverageRating: 5, TotalListings: 100})
	require.NoError(t, err)
	require.Equal(t, 100, got)
}

func TestWeightedScorerNegativeListings(t *testing.T) {
	_, err := NewWeightedScorer().Score(OpportunityInput{Tier: TierLow, TotalListings: -5})
	require.ErrorIs(t, err, ErrNegativeListingCount)
}

// The scorer only depends on aggregates, so reordering the listings that
// produced them cannot move the score.
func TestScorerOrderInvariance(t *testing.T) {
	listings := []domain.Listing{
		{Price: 4.99, RatingCount: 120, AverageRating: 4.7},
		{Price: 2.50, RatingCount: 30, AverageRating: 4.1},
		{Price: 8.25, RatingCount: 400, AverageRating: 4.9},
	}
	reversed := []domain.Listing{listings[2], listings[1], listings[0]}

	scorer := NewWeightedScorer()
	a, err := scorer.Score(OpportunityInput{
		Tier:          TierLow,
		AveragePrice:  AveragePrice(listings),
		AverageRating: AverageRating(listings),
		TotalListings: 3,
	})
	require.NoError(t, err)
	b, err := scorer.Score(OpportunityInput{
		Tier:          TierLow,
		AveragePrice:  AveragePrice(reversed),
		AverageRating: AverageRating(reversed),
		TotalListings: 3,
	})
	require.NoError(t, err)
	require.Equal(t, a, b)
}
