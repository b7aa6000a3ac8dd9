package fetcher

// Readiness markers and page scripts. These reach into the marketplace's
// page structure and are expected to need maintenance when templates change;
// keep them here rather than inline in the fetch logic.
const (
	// SearchResultsMarker signals that a search results page has rendered
	// its dynamic content.
	SearchResultsMarker = ".SearchResultsHeader__headingWithCount"

	scrollHeightScript = `document.body.scrollHeight`
	scrollToBottom     = `window.scrollTo(0, document.body.scrollHeight)`
)
