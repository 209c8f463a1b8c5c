package analytics

// Analysis is the full derived view over one review set.
type Analysis struct {
	Reviews       []Review          `json:"reviews"`
	Metrics       Metrics           `json:"metrics"`
	Themes        []ThemeAnalysis   `json:"themes"`
	Sentiment     SentimentAnalysis `json:"sentiment"`
	StaffMentions []StaffMention    `json:"staffMentions"`
	Trends        TrendData         `json:"trends"`
}

// Metrics holds the headline counts and rates.
type Metrics struct {
	TotalReviews       int     `json:"totalReviews"`
	AvgRating          float64 `json:"avgRating"`
	PositiveReviews    int     `json:"positiveReviews"`
	NeutralReviews     int     `json:"neutralReviews"`
	NegativeReviews    int     `json:"negativeReviews"`
	ResponsesFromOwner int     `json:"responsesFromOwner"`
	ResponseRate       float64 `json:"responseRate"`
}

// ThemeAnalysis aggregates every mention of one theme. ReviewIndices point
// into Analysis.Reviews.
type ThemeAnalysis struct {
	Theme            string  `json:"theme"`
	Count            int     `json:"count"`
	AverageSentiment float64 `json:"sentiment"`
	ReviewIndices    []int   `json:"reviews"`
}

// StaffMention aggregates every mention of one staff member.
type StaffMention struct {
	Name             string  `json:"name"`
	Count            int     `json:"count"`
	AverageSentiment float64 `json:"sentiment"`
	ReviewIndices    []int   `json:"reviews"`
}

type SentimentAnalysis struct {
	Overall float64            `json:"overall"`
	ByMonth []MonthlySentiment `json:"byMonth"`
	ByTheme []ThemeSentiment   `json:"byTheme"`
}

type MonthlySentiment struct {
	Month     string  `json:"month"`
	Sentiment float64 `json:"sentiment"`
	Count     int     `json:"count"`
}

type ThemeSentiment struct {
	Theme     string  `json:"theme"`
	Sentiment float64 `json:"sentiment"`
}

type TrendData struct {
	RatingTrend []MonthlyRating `json:"ratingTrend"`
	ThemeTrend  []MonthlyThemes `json:"themeTrend"`
}

type MonthlyRating struct {
	Month     string  `json:"month"`
	AvgRating float64 `json:"avgRating"`
	Count     int     `json:"count"`
}

type MonthlyThemes struct {
	Month  string       `json:"month"`
	Themes []ThemeCount `json:"themes"`
}

type ThemeCount struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
}
