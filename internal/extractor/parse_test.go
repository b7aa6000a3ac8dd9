package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		raw  string
		want float64
	}{
		{"$4.99", 4.99},
		{"  $ 12.50 ", 12.5},
		{"3,99", 3.99},
		{"1.234,56", 1234.56},
		{"FREE", 0},
		{"", 0},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.want, parsePrice(tc.raw), "raw=%q", tc.raw)
	}
}

func TestParseCount(t *testing.T) {
	require.Equal(t, 58213, parseCount("58,213 results"))
	require.Equal(t, 42, parseCount("(42)"))
	require.Equal(t, 0, parseCount("no ratings yet"))
}

func TestParseRating(t *testing.T) {
	require.Equal(t, 4.8, parseRating("4.8"))
	require.Equal(t, 0.0, parseRating("5.1"))
	require.Equal(t, 0.0, parseRating("-1"))
	require.Equal(t, 0.0, parseRating("n/a"))
}

func TestHeaderCount(t *testing.T) {
	require.Equal(t, 58000, headerCount("58,000+ results for phonics worksheets"))
	require.Equal(t, 0, headerCount("results"))
}

func TestTextFallbacks(t *testing.T) {
	text := "Rated 4.7 out of 5 by 312 ratings. Now only $3.75! 24 pages of drills."
	require.Equal(t, 3.75, priceFromText(text))
	require.Equal(t, 312, ratingCountFromText(text))
	require.Equal(t, 4.7, ratingFromText(text))
	require.Equal(t, 24, pageCountFromText(text))
}

func TestTextFallbackBounds(t *testing.T) {
	require.Equal(t, 0.0, priceFromText("only $9999 per seat"))
	require.Equal(t, 0, ratingCountFromText("2000000 ratings"))
}

func TestCleanTag(t *testing.T) {
	require.Equal(t, "phonics", CleanTag("  Phonics! "))
	require.Equal(t, "", CleanTag("K5"))
	require.Equal(t, "", CleanTag("--"))
	require.Equal(t, "sight words", CleanTag("Sight Words"))
}

func TestCleanTags(t *testing.T) {
	got := CleanTags([]string{"Phonics", "phonics!", "K5", "Reading", "reading"}, 15)
	require.Equal(t, []string{"phonics", "reading"}, got)

	many := make([]string, 0, 20)
	for _, s := range []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliet", "kilo", "lima", "mike", "november", "oscar", "papa", "quebec"} {
		many = append(many, s)
	}
	require.Len(t, CleanTags(many, maxTagsPerListing), maxTagsPerListing)
}

func TestSplitTagText(t *testing.T) {
	require.Equal(t, []string{"Phonics", "Reading", "Spelling"}, splitTagText(" Phonics, Reading , Spelling,"))
}

func TestIsGradeLabel(t *testing.T) {
	require.True(t, isGradeLabel("4th - 6th"))
	require.True(t, isGradeLabel("2nd"))
	require.True(t, isGradeLabel("1st"))
	require.False(t, isGradeLabel("Subjects"))
}
