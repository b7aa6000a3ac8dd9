package billing

// Plan identifies a subscription tier.
type Plan string

const (
	PlanFree   Plan = "free"
	PlanPro    Plan = "pro"
	PlanExpert Plan = "expert"
)

// Feature names a metered operation.
type Feature string

const (
	FeatureProductAnalysis Feature = "product_analysis"
	FeatureKeywordResearch Feature = "keyword_research"
	FeatureStoreAnalysis   Feature = "store_analysis"
)

// Unlimited marks a feature without a daily cap.
const Unlimited = -1

// planLimits is the daily allowance per feature for each plan.
var planLimits = map[Plan]map[Feature]int{
	PlanFree: {
		FeatureProductAnalysis: 5,
		FeatureKeywordResearch: 3,
		FeatureStoreAnalysis:   1,
	},
	PlanPro: {
		FeatureProductAnalysis: 50,
		FeatureKeywordResearch: 25,
		FeatureStoreAnalysis:   10,
	},
	PlanExpert: {
		FeatureProductAnalysis: Unlimited,
		FeatureKeywordResearch: Unlimited,
		FeatureStoreAnalysis:   Unlimited,
	},
}

// Limit returns the daily allowance for a plan and feature. Unknown plans
// fall back to the free tier.
func Limit(plan Plan, feature Feature) int {
	limits, ok := planLimits[plan]
	if !ok {
		limits = planLimits[PlanFree]
	}
	limit, ok := limits[feature]
	if !ok {
		return 0
	}
	return limit
}

// Allowed reports whether a request numbered used (1-based, counting this
// request) fits within the plan's daily allowance.
func Allowed(plan Plan, feature Feature, used int64) bool {
	limit := Limit(plan, feature)
	if limit == Unlimited {
		return true
	}
	return used <= int64(limit)
}
