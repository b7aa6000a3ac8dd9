package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonPriceRunes = regexp.MustCompile(`[^0-9.,]`)
	nonDigits     = regexp.MustCompile(`[^0-9]`)
	nonAlnum      = regexp.MustCompile(`[^a-z0-9\s]`)
	countToken    = regexp.MustCompile(`\d[\d,.]*`)
	parenCountRe  = regexp.MustCompile(`\((\d[\d,]*)\)`)
	pageCountRe   = regexp.MustCompile(`(?i)(\d+)\s*pages?`)

	// Visible-text fallbacks, bounded to plausible ranges so a stray number
	// elsewhere on the page cannot masquerade as the field.
	priceTextRe       = regexp.MustCompile(`\$\s*(\d+(?:\.\d{2})?)`)
	ratingCountTextRe = regexp.MustCompile(`(?i)(\d+)\s*(?:ratings?|reviews?)`)
	ratingTextRe      = regexp.MustCompile(`(\d(?:\.\d)?)\s*(?:out of 5|/5|stars?)`)
)

// parsePrice strips everything but digits and separators before conversion.
// A parse failure or negative result is absent (0), never a guess.
func parsePrice(raw string) float64 {
	cleaned := nonPriceRunes.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	// Multiple separators can survive thousands formatting; keep the last
	// dot as the decimal point.
	if n := strings.Count(cleaned, "."); n > 1 {
		last := strings.LastIndex(cleaned, ".")
		cleaned = strings.ReplaceAll(cleaned[:last], ".", "") + cleaned[last:]
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// parseCount extracts a non-negative integer from arbitrary text.
func parseCount(raw string) int {
	cleaned := nonDigits.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return v
}

// parseRating extracts a rating in (0,5]; anything else is absent.
func parseRating(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v <= 0 || v > 5 {
		return 0
	}
	return v
}

// headerCount pulls the listing total out of a results-header string like
// "58,000+ results for phonics".
func headerCount(raw string) int {
	m := countToken.FindString(raw)
	if m == "" {
		return 0
	}
	return parseCount(m)
}

// labelCount pulls the review count out of a ratings label like
// "4.6 (87 ratings)" or "4.8 (1,234)". The label also carries the rating
// value, so a plain digit sweep would merge the two numbers.
func labelCount(raw string) int {
	if m := parenCountRe.FindStringSubmatch(raw); m != nil {
		return parseCount(m[1])
	}
	return ratingCountFromText(raw)
}

func priceFromText(text string) float64 {
	m := priceTextRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 || v > 500 {
		return 0
	}
	return v
}

func ratingCountFromText(text string) int {
	m := ratingCountTextRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.Atoi(m[1])
	if err != nil || v <= 0 || v > 100000 {
		return 0
	}
	return v
}

func ratingFromText(text string) float64 {
	m := ratingTextRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 || v > 5 {
		return 0
	}
	return v
}

func pageCountFromText(text string) int {
	m := pageCountRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, _ := strconv.Atoi(m[1])
	return v
}

// CleanTag case-folds a tag and strips non-alphanumeric runes. Returns ""
// for tags too short to be useful keywords.
func CleanTag(tag string) string {
	cleaned := nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(tag)), "")
	cleaned = strings.TrimSpace(cleaned)
	if len(cleaned) <= 2 {
		return ""
	}
	return cleaned
}

// CleanTags cleans and deduplicates tags preserving first-seen order,
// capped at limit.
func CleanTags(tags []string, limit int) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		cleaned := CleanTag(t)
		if cleaned == "" {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// splitTagText splits a comma-separated metadata cell into raw tags.
func splitTagText(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isGradeLabel reports whether a metadata row label looks like a grade
// range ("1st", "2nd", "4th - 6th"), which is where the subject tags live.
func isGradeLabel(label string) bool {
	return strings.Contains(label, "th") ||
		strings.Contains(label, "nd") ||
		strings.Contains(label, "st")
}
