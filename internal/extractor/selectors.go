package extractor

// Selector lists per page template. These mirror the marketplace's current
// markup (including its hashed CSS-module class prefixes) and are swappable
// configuration, not logic: when a template changes, only this file should
// need to move.
const (
	selJSONLD = `script[type="application/ld+json"]`

	// Product detail page
	selProductTitle      = `h1[itemprop="name"] span`
	selProductTitleAlt   = `h1`
	selProductPrice      = `span[itemprop="price"]`
	selProductMetadata   = `div[class*="ProductRowCard-module__cardMetadata--"] section`
	selMetadataRow       = `div[class*="MetadataFacetSection__row"]`
	selStandardsList     = `div[class*="StandardsList"] > div`
	selStoreLink         = `a[href*="/store/"]`
	selProductRatingWrap = `div[class*="RatingsLabel-module__ratingsLabelContainer--"]`

	// Search results page
	selSearchHeader    = `.SearchResultsHeader__headingWithCount div`
	selSearchHeaderAlt = `.SearchResultsHeader__headingWithCount`
	selListingCard     = `[id^="product-row-"]`
	selCardTitleLink   = `h2 a[href*="/Product/"]`
	selCardPrice       = `[class*="ProductPrice-module__price--"]`
	selCardRatings     = `[class*="RatingsLabel-module__ratingsLabelContainer--"]`
	selCardRatingValue = `[class*="RatingsLabel-module__ratingsLabelContainer--"] > div`
	selCardTags        = `[class*="MetadataFacetSection"] > div[class*="Text-module__detail"]`

	// Storefront page
	selStoreName    = `h1[class*="StorePageHeader-module__storeName--"]`
	selStoreAbout   = `p[class*="StorePageHeader-module__contentAbout--"]`
	selStoreRating  = `div[class*="RatingsLabel-module__ratingsLabelContainer--"] > div`
	selStoreSearch  = `#searchResources`
	selCardNewBadge = `[class*="ProductRowLayoutCard-module__newBadge--"]`
)

// maxTagsPerListing caps the tags kept for any single listing.
const maxTagsPerListing = 15
