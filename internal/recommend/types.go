package recommend

// Recommendations is the five-list answer returned by every generator.
type Recommendations struct {
	UrgentActions          []string `json:"urgentActions" jsonschema:"required,description=Problems customers raise that need fixing now"`
	GrowthStrategies       []string `json:"growthStrategies" jsonschema:"required,description=Ways to build on existing strengths"`
	MarketingIdeas         []string `json:"marketingIdeas" jsonschema:"required,description=Campaigns that use what reviewers praise"`
	CompetitivePositioning []string `json:"competitivePositioning" jsonschema:"required,description=How to stand out from similar venues"`
	FutureScenarios        []string `json:"futureScenarios" jsonschema:"required,description=Likely developments to prepare for"`
}

// Empty reports whether all five lists are empty.
func (r *Recommendations) Empty() bool {
	return len(r.UrgentActions) == 0 &&
		len(r.GrowthStrategies) == 0 &&
		len(r.MarketingIdeas) == 0 &&
		len(r.CompetitivePositioning) == 0 &&
		len(r.FutureScenarios) == 0
}

// normalize trims items, drops blanks and replaces nil lists with empty ones
// so the JSON form always carries arrays.
func (r *Recommendations) normalize() {
	for _, list := range []*[]string{
		&r.UrgentActions,
		&r.GrowthStrategies,
		&r.MarketingIdeas,
		&r.CompetitivePositioning,
		&r.FutureScenarios,
	} {
		out := make([]string, 0, len(*list))
		for _, item := range *list {
			if item = trimItem(item); item != "" {
				out = append(out, item)
			}
		}
		*list = out
	}
}
